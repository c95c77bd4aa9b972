package main

import (
	"context"
	"fmt"

	"github.com/benkyo-app/benkyo/internal/config"
	"github.com/benkyo-app/benkyo/internal/database"
	"github.com/benkyo-app/benkyo/internal/inference"
	"github.com/benkyo-app/benkyo/internal/inference/openai"
	"github.com/benkyo-app/benkyo/internal/store"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loader.Load() > %w", err)
	}
	return cfg, nil
}

// openRepository opens the SQLite database and ensures the schema exists. The
// returned close function must be called when the command is done.
func openRepository(ctx context.Context, cfg *config.Config) (*store.SQLiteRepository, func(), error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}

	repo := store.NewSQLiteRepository(db)
	if err := repo.Init(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("repo.Init() > %w", err)
	}
	return repo, func() { _ = db.Close() }, nil
}

// newOpenAIClient builds the inference client, failing when no API key is
// configured.
func newOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, inference.DefaultMaxRetryAttempts), nil
}

// loadStore reads the persisted snapshot into a fresh in-memory store.
func loadStore(ctx context.Context, repo *store.SQLiteRepository) (*store.Store, error) {
	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.Load() > %w", err)
	}

	st := store.New()
	st.LoadSnapshot(snap)
	return st, nil
}
