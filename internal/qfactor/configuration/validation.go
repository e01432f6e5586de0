package configuration

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

func (c QfactorConfig) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return errors.WithMessage(err, "invalid logging config")
	}
	validate := validator.New()
	validate.RegisterStructValidation(retryConfigValidation, RetryConfig{})
	validate.RegisterStructValidation(limitsConfigValidation, LimitsConfig{})
	validate.RegisterStructValidation(backendConfigValidation, BackendConfig{})
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.ResultCacheTtl < 0 {
		return errors.Errorf("resultCacheTtl must not be negative, got %s", c.ResultCacheTtl)
	}
	return nil
}

func retryConfigValidation(sl validator.StructLevel) {
	config := sl.Current().Interface().(RetryConfig)
	if config.BaseDelay < 0 {
		sl.ReportError(config.BaseDelay, "BaseDelay", "BaseDelay", "gte", "0")
	}
}

func limitsConfigValidation(sl validator.StructLevel) {
	config := sl.Current().Interface().(LimitsConfig)
	if config.MaxDuration < 0 {
		sl.ReportError(config.MaxDuration, "MaxDuration", "MaxDuration", "gte", "0")
	}
}

func backendConfigValidation(sl validator.StructLevel) {
	config := sl.Current().Interface().(BackendConfig)
	if config.Type != RemoteBackend {
		return
	}
	if config.Url == "" {
		sl.ReportError(config.Url, "Url", "Url", "required", "")
	} else if _, err := url.ParseRequestURI(config.Url); err != nil {
		sl.ReportError(config.Url, "Url", "Url", "url", "")
	}
	if config.PollInterval < 0 {
		sl.ReportError(config.PollInterval, "PollInterval", "PollInterval", "gte", "0")
	}
	if config.Timeout < 0 {
		sl.ReportError(config.Timeout, "Timeout", "Timeout", "gte", "0")
	}
}
