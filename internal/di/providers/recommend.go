package providers

import (
	"github.com/samber/do/v2"

	"github.com/anilogapp/anilog-server/internal/catalog"
	"github.com/anilogapp/anilog-server/internal/config"
	"github.com/anilogapp/anilog-server/internal/logger"
	"github.com/anilogapp/anilog-server/internal/recommend"
)

// ProvideCatalogClient provides the rate-limited catalog API client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.New(catalog.Config{
		BaseURL:        cfg.Catalog.BaseURL,
		PageSize:       cfg.Catalog.PageSize,
		RPS:            cfg.Catalog.RPS,
		Burst:          cfg.Catalog.Burst,
		RetryAttempts:  cfg.Catalog.RetryAttempts,
		RetryBaseDelay: cfg.Catalog.RetryBaseDelay,
	}, log.Logger), nil
}

// ProvideRecommendationEngine provides the recommendation engine.
func ProvideRecommendationEngine(i do.Injector) (*recommend.Engine, error) {
	client := do.MustInvoke[*catalog.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return recommend.NewEngine(client, log.Logger), nil
}
