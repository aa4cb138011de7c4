// Package settings manages the user-editable runtime configuration. Settings
// are persisted as a JSON file in the data directory and reloaded when the
// file changes on disk, so edits made outside the API are picked up without a
// restart.
package settings

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/WhiskeyCoder/Nextt/internal/domain"
	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/logger"
	"github.com/WhiskeyCoder/Nextt/internal/validation"
)

// reloadDebounce coalesces bursts of fsnotify write events into one reload.
const reloadDebounce = 250 * time.Millisecond

// Manager owns the settings file and serves a consistent in-memory snapshot.
type Manager struct {
	path      string
	validator *validation.Validator
	logger    *logger.Logger

	mu      sync.RWMutex
	current domain.Settings
}

// Defaults returns the settings used before the user has configured anything.
func Defaults() domain.Settings {
	return domain.Settings{
		Provider:          domain.ProviderPlex,
		RatingSeedLimit:   domain.DefaultRatingSeedLimit,
		WatchHistoryLimit: domain.DefaultWatchHistoryLimit,
	}
}

// NewManager loads settings from path, falling back to defaults when the file
// does not exist yet. A malformed file is an error: silently replacing user
// configuration would lose credentials.
func NewManager(path string, validator *validation.Validator, log *logger.Logger) (*Manager, error) {
	m := &Manager{
		path:      path,
		validator: validator,
		logger:    log,
	}

	loaded, err := m.load()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		loaded = Defaults()
		log.Info("no settings file found, using defaults", "path", path)
	}

	m.current = loaded
	return m, nil
}

// Get returns a snapshot of the current settings.
func (m *Manager) Get() domain.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update validates, persists, and swaps in the new settings.
func (m *Manager) Update(s domain.Settings) (domain.Settings, error) {
	if err := m.validator.Validate(s); err != nil {
		return domain.Settings{}, err
	}
	if err := validateProviderFields(&s); err != nil {
		return domain.Settings{}, err
	}

	if s.RatingSeedLimit == 0 {
		s.RatingSeedLimit = domain.DefaultRatingSeedLimit
	}
	if s.WatchHistoryLimit == 0 {
		s.WatchHistoryLimit = domain.DefaultWatchHistoryLimit
	}

	if err := m.save(s); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.logger.Info("settings updated", "provider", s.Provider)
	return s, nil
}

// validateProviderFields enforces the credential pairs the struct tags cannot
// express: each provider needs its own URL and token.
func validateProviderFields(s *domain.Settings) error {
	fields := make(map[string]string)

	switch s.Provider {
	case domain.ProviderPlex:
		if s.PlexURL == "" {
			fields["plex_url"] = "is required for the plex provider"
		}
		if s.PlexToken == "" {
			fields["plex_token"] = "is required for the plex provider"
		}
	case domain.ProviderJellyfin:
		if s.JellyfinURL == "" {
			fields["jellyfin_url"] = "is required for the jellyfin provider"
		}
		if s.JellyfinAPIKey == "" {
			fields["jellyfin_api_key"] = "is required for the jellyfin provider"
		}
		if s.JellyfinUserID == "" {
			fields["jellyfin_user_id"] = "is required for the jellyfin provider"
		}
	}

	// One broker credential without the other is always a mistake.
	if (s.OverseerrURL == "") != (s.OverseerrAPIKey == "") {
		fields["overseerr_url"] = "url and api key must be set together"
	}

	if len(fields) > 0 {
		return domainerrors.ValidationWithDetails("validation failed", fields)
	}
	return nil
}

// Watch reloads settings when the file changes on disk. It blocks until the
// context is canceled. The parent directory is watched rather than the file
// itself because atomic saves replace the inode.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("watch settings dir: %w", err)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			m.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.WithError(err).Warn("settings watcher error")
		}
	}
}

// reload re-reads the file and swaps the snapshot if it parses.
func (m *Manager) reload() {
	loaded, err := m.load()
	if err != nil {
		m.logger.WithError(err).Warn("failed to reload settings file, keeping current settings")
		return
	}

	// An externally edited file that fails validation is kept out of the
	// snapshot for the same reason a bad Update is rejected.
	if err := m.validator.Validate(loaded); err != nil {
		m.logger.WithError(err).Warn("reloaded settings are invalid, keeping current settings")
		return
	}

	m.mu.Lock()
	m.current = loaded
	m.mu.Unlock()

	m.logger.Info("settings reloaded from disk", "provider", loaded.Provider)
}

// load reads and parses the settings file.
func (m *Manager) load() (domain.Settings, error) {
	file, err := os.Open(m.path)
	if err != nil {
		return domain.Settings{}, err
	}
	defer file.Close()

	var s domain.Settings
	if err := json.UnmarshalRead(file, &s); err != nil {
		return domain.Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// save writes settings atomically via a temp file and rename. The file is
// 0600 because it holds API tokens.
func (m *Manager) save(s domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := json.MarshalWrite(tmp, s); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod settings: %w", err)
	}

	return os.Rename(tmpName, m.path)
}
