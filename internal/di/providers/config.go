// Package providers contains dependency injection providers for the Nextt server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/WhiskeyCoder/Nextt/internal/config"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/validation"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Nextt Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}

// ProvideValidator provides the struct validator used by the settings layer.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
