package settings

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/validation"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	log := logger.New(logger.Config{Writer: io.Discard, Format: "json", Level: slog.LevelError})
	m, err := NewManager(path, validation.New(), log)
	require.NoError(t, err)
	return m
}

func validSettings() domain.Settings {
	return domain.Settings{
		Provider:          domain.ProviderPlex,
		PlexURL:           "http://localhost:32400",
		PlexToken:         "plex-token",
		TMDBAPIKey:        "tmdb-key",
		RatingSeedLimit:   10,
		WatchHistoryLimit: 25,
	}
}

func TestNewManager_MissingFileUsesDefaults(t *testing.T) {
	m := newTestManager(t)

	got := m.Get()
	assert.Equal(t, domain.ProviderPlex, got.Provider)
	assert.Equal(t, domain.DefaultRatingSeedLimit, got.RatingSeedLimit)
	assert.Equal(t, domain.DefaultWatchHistoryLimit, got.WatchHistoryLimit)
}

func TestNewManager_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	log := logger.New(logger.Config{Writer: io.Discard, Format: "json", Level: slog.LevelError})
	_, err := NewManager(path, validation.New(), log)
	assert.Error(t, err)
}

func TestUpdate_PersistsAndSwaps(t *testing.T) {
	m := newTestManager(t)

	s := validSettings()
	s.UseWatchHistory = true

	got, err := m.Update(s)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, s, m.Get())

	// The file on disk matches the snapshot.
	data, err := os.ReadFile(m.path)
	require.NoError(t, err)

	var persisted domain.Settings
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, s, persisted)

	// Tokens are written with restricted permissions.
	info, err := os.Stat(m.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestUpdate_FillsDefaultLimits(t *testing.T) {
	m := newTestManager(t)

	s := validSettings()
	s.RatingSeedLimit = 0
	s.WatchHistoryLimit = 0

	got, err := m.Update(s)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRatingSeedLimit, got.RatingSeedLimit)
	assert.Equal(t, domain.DefaultWatchHistoryLimit, got.WatchHistoryLimit)
}

func TestUpdate_RejectsInvalidProvider(t *testing.T) {
	m := newTestManager(t)

	s := validSettings()
	s.Provider = "emby"

	_, err := m.Update(s)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestUpdate_RequiresProviderCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Settings)
		field  string
	}{
		{
			name:   "plex without token",
			mutate: func(s *domain.Settings) { s.PlexToken = "" },
			field:  "plex_token",
		},
		{
			name: "jellyfin without user id",
			mutate: func(s *domain.Settings) {
				s.Provider = domain.ProviderJellyfin
				s.JellyfinURL = "http://localhost:8096"
				s.JellyfinAPIKey = "jf-key"
			},
			field: "jellyfin_user_id",
		},
		{
			name:   "overseerr url without key",
			mutate: func(s *domain.Settings) { s.OverseerrURL = "http://localhost:5055" },
			field:  "overseerr_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)

			s := validSettings()
			tt.mutate(&s)

			_, err := m.Update(s)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, domainerrors.As(err, &domainErr))

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestUpdate_DoesNotSwapOnValidationFailure(t *testing.T) {
	m := newTestManager(t)

	valid := validSettings()
	_, err := m.Update(valid)
	require.NoError(t, err)

	bad := valid
	bad.PlexURL = "not-a-url"
	_, err = m.Update(bad)
	require.Error(t, err)

	assert.Equal(t, valid, m.Get())
}

func TestReload_PicksUpExternalEdit(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Update(validSettings())
	require.NoError(t, err)

	edited := validSettings()
	edited.RatingSeedLimit = 42
	data, err := json.Marshal(edited)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(m.path, data, 0o600))

	m.reload()

	assert.Equal(t, 42, m.Get().RatingSeedLimit)
}

func TestReload_KeepsSnapshotOnBadFile(t *testing.T) {
	m := newTestManager(t)

	valid := validSettings()
	_, err := m.Update(valid)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(m.path, []byte("{broken"), 0o600))

	m.reload()

	assert.Equal(t, valid, m.Get())
}
