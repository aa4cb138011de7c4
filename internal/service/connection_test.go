package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
)

func TestConnectionTest_Provider(t *testing.T) {
	source := &fakeSource{}
	factory := &fakeFactory{source: source, catalog: &fakeCatalog{}}

	svc := NewConnectionService(newTestSettings(t, nil), factory, testLogger())

	require.NoError(t, svc.Test(context.Background(), "plex"))
	require.Len(t, factory.sourceCfg, 1)
	assert.Equal(t, domain.ProviderPlex, factory.sourceCfg[0].Provider)
}

func TestConnectionTest_InactiveProvider(t *testing.T) {
	// The active provider is plex, but jellyfin credentials should still be
	// testable before switching over.
	factory := &fakeFactory{source: &fakeSource{name: "jellyfin"}}
	svc := NewConnectionService(newTestSettings(t, nil), factory, testLogger())

	require.NoError(t, svc.Test(context.Background(), "jellyfin"))
	require.Len(t, factory.sourceCfg, 1)
	assert.Equal(t, domain.ProviderJellyfin, factory.sourceCfg[0].Provider)
}

func TestConnectionTest_Catalog(t *testing.T) {
	svc := NewConnectionService(newTestSettings(t, nil), &fakeFactory{catalog: &fakeCatalog{}}, testLogger())
	assert.NoError(t, svc.Test(context.Background(), "tmdb"))
}

func TestConnectionTest_CatalogFailure(t *testing.T) {
	catalog := &fakeCatalog{pingErr: domainerrors.Upstream("catalog rejected the API key: status 401")}
	svc := NewConnectionService(newTestSettings(t, nil), &fakeFactory{catalog: catalog}, testLogger())

	err := svc.Test(context.Background(), "tmdb")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUpstream))
}

func TestConnectionTest_BrokerNotConfigured(t *testing.T) {
	svc := NewConnectionService(newTestSettings(t, nil), &fakeFactory{}, testLogger())

	err := svc.Test(context.Background(), "overseerr")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotConfigured))
}

func TestConnectionTest_UnknownService(t *testing.T) {
	svc := NewConnectionService(newTestSettings(t, nil), &fakeFactory{}, testLogger())

	err := svc.Test(context.Background(), "sonarr")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}
