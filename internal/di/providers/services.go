package providers

import (
	"github.com/samber/do/v2"

	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/service"
)

// ProvideSyncService provides the library sync service.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	settingsHandle := do.MustInvoke[*SettingsHandle](i)
	factory := do.MustInvoke[*service.Factory](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSyncService(storeHandle.Store, settingsHandle.Manager, factory, log), nil
}

// ProvideRecommendationService provides the recommendation read and request service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	settingsHandle := do.MustInvoke[*SettingsHandle](i)
	factory := do.MustInvoke[*service.Factory](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendationService(storeHandle.Store, settingsHandle.Manager, factory, log), nil
}

// ProvideConnectionService provides the upstream connection test service.
func ProvideConnectionService(i do.Injector) (*service.ConnectionService, error) {
	settingsHandle := do.MustInvoke[*SettingsHandle](i)
	factory := do.MustInvoke[*service.Factory](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewConnectionService(settingsHandle.Manager, factory, log), nil
}
