package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/WhiskeyCoder/Nextt/internal/config"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/settings"
	"github.com/WhiskeyCoder/Nextt/internal/validation"
)

// SettingsHandle wraps the settings manager with its file watcher lifecycle.
type SettingsHandle struct {
	*settings.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SettingsHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideSettings provides the settings manager and starts the file watcher.
func ProvideSettings(i do.Injector) (*SettingsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	manager, err := settings.NewManager(cfg.SettingsPath(), validator, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := manager.Watch(ctx); err != nil {
			log.Warn("Settings watcher stopped", "error", err)
		}
	}()

	log.Info("Settings loaded", "path", cfg.SettingsPath())

	return &SettingsHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}
