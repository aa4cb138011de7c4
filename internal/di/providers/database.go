package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/WhiskeyCoder/Nextt/internal/config"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite cache store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store, err := sqlite.Open(cfg.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Cache store opened", "path", cfg.DatabasePath())

	return &StoreHandle{Store: store}, nil
}
