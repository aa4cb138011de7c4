package api

import (
	"github.com/WhiskeyCoder/Nextt/internal/service"
	"github.com/WhiskeyCoder/Nextt/internal/settings"
)

// Services groups the service dependencies handlers need.
type Services struct {
	Sync            *service.SyncService
	Recommendations *service.RecommendationService
	Connections     *service.ConnectionService
	Settings        *settings.Manager
}
