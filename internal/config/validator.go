package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("clocktime", isClockTime); err != nil {
		return nil, nil, fmt.Errorf("failed to register clocktime validation: %w", err)
	}
	if err := validate.RegisterTranslation("clocktime", trans, func(ut ut.Translator) error {
		return ut.Add("clocktime", "{0} must be a time of day in HH:MM format", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("clocktime", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register clocktime translation: %w", err)
	}

	return validate, trans, nil
}

func isClockTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}
