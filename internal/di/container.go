// Package di provides dependency injection configuration for the AniLog server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/anilogapp/anilog-server/internal/catalog"
	"github.com/anilogapp/anilog-server/internal/config"
	"github.com/anilogapp/anilog-server/internal/di/providers"
	"github.com/anilogapp/anilog-server/internal/logger"
	"github.com/anilogapp/anilog-server/internal/recommend"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Event and storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideRemoteStore)
	do.Provide(injector, providers.ProvideSessions)

	// Recommendation layer
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideRecommendationEngine)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.RemoteStoreHandle](injector)
	_ = do.MustInvoke[*providers.SessionsHandle](injector)
	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*recommend.Engine](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
