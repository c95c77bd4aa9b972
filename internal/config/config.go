package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Cloud    CloudConfig    `mapstructure:"cloud"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Review   ReviewConfig   `mapstructure:"review"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type CloudConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	UserID        string `mapstructure:"user_id"`
	RetryAttempts int    `mapstructure:"retry_attempts"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ReviewConfig struct {
	BatchSize             int `mapstructure:"batch_size" validate:"gt=0"`
	SaveQuiescenceSeconds int `mapstructure:"save_quiescence_seconds" validate:"gt=0"`
}

type AnalysisConfig struct {
	DailyTime string `mapstructure:"daily_time" validate:"clocktime"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/benkyo")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.path", filepath.Join("data", "benkyo.db"))
	v.SetDefault("cloud.retry_attempts", 3)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("review.batch_size", 10)
	v.SetDefault("review.save_quiescence_seconds", 3)
	v.SetDefault("analysis.daily_time", "21:30")

	// Bind cloud credentials to environment variables only (not from config file)
	if err := v.BindEnv("cloud.api_key", "CLOUD_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind CLOUD_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("cloud.user_id", "CLOUD_USER_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind CLOUD_USER_ID environment variable: %w", err)
	}

	// Bind OpenAI config to environment variables only (not from config file)
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("openai.model", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_MODEL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
