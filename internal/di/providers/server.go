package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/WhiskeyCoder/Nextt/internal/api"
	"github.com/WhiskeyCoder/Nextt/internal/config"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	settingsHandle := do.MustInvoke[*SettingsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Sync:            do.MustInvoke[*service.SyncService](i),
		Recommendations: do.MustInvoke[*service.RecommendationService](i),
		Connections:     do.MustInvoke[*service.ConnectionService](i),
		Settings:        settingsHandle.Manager,
	}

	handler := api.NewServer(cfg, services, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
