// Package di provides dependency injection configuration for the Nextt server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/WhiskeyCoder/Nextt/internal/config"
	"github.com/WhiskeyCoder/Nextt/internal/di/providers"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/service"
	"github.com/WhiskeyCoder/Nextt/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSettings)

	// Upstream clients
	do.Provide(injector, providers.ProvidePacer)
	do.Provide(injector, providers.ProvideClientFactory)

	// Business services
	do.Provide(injector, providers.ProvideSyncService)
	do.Provide(injector, providers.ProvideRecommendationService)
	do.Provide(injector, providers.ProvideConnectionService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SettingsHandle](injector)
	_ = do.MustInvoke[*providers.PacerHandle](injector)
	_ = do.MustInvoke[*service.Factory](injector)

	// Business services
	_ = do.MustInvoke[*service.SyncService](injector)
	_ = do.MustInvoke[*service.RecommendationService](injector)
	_ = do.MustInvoke[*service.ConnectionService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
