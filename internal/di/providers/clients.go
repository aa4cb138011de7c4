package providers

import (
	"github.com/samber/do/v2"

	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/ratelimit"
	"github.com/WhiskeyCoder/Nextt/internal/service"
)

// Upstream pacing rates in requests per second. The catalog and broker are
// shared public services, so they get a gentler pace than the media server
// on the local network.
const (
	providerRPS   = 5.0
	providerBurst = 10
	catalogRPS    = 4.0
	catalogBurst  = 8
	brokerRPS     = 2.0
	brokerBurst   = 4
)

// PacerHandle wraps the upstream rate limiter with shutdown capability.
type PacerHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *PacerHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvidePacer provides the keyed rate limiter that paces outbound calls
// during a sync.
func ProvidePacer(i do.Injector) (*PacerHandle, error) {
	pacer := ratelimit.New(catalogRPS, catalogBurst)
	pacer.Configure(ratelimit.KeyProvider, providerRPS, providerBurst)
	pacer.Configure(ratelimit.KeyCatalog, catalogRPS, catalogBurst)
	pacer.Configure(ratelimit.KeyBroker, brokerRPS, brokerBurst)

	return &PacerHandle{KeyedRateLimiter: pacer}, nil
}

// ProvideClientFactory provides the factory that builds upstream clients
// from settings snapshots.
func ProvideClientFactory(i do.Injector) (*service.Factory, error) {
	pacer := do.MustInvoke[*PacerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFactory(pacer.KeyedRateLimiter, log), nil
}
