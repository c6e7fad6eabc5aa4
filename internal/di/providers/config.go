// Package providers contains dependency injection providers for the AniLog server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/anilogapp/anilog-server/internal/config"
	"github.com/anilogapp/anilog-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
	})

	log.Info("Starting AniLog Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"catalog_base_url", cfg.Catalog.BaseURL,
		"state_path", cfg.Remote.Path,
	)

	return log, nil
}
