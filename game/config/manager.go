package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultCampaign is preferred as the default when present
const DefaultCampaign = "classic"

// Extensions tried, in order, when a campaign is named without one
var campaignExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles campaign loading and caching
type Manager struct {
	configDir  string
	logger     *zap.Logger
	defaultID  string
	defaultCat *engine.Catalog
	configs    map[string]*engine.Catalog
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string, logger *zap.Logger) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		configDir: configDir,
		logger:    logger.Named("config"),
		configs:   make(map[string]*engine.Catalog),
	}
	m.loadDefaultConfig()
	return m, nil
}

// ConfigDir returns the directory campaigns are read from
func (m *Manager) ConfigDir() string {
	return m.configDir
}

// LoadConfig loads a campaign by ID. The ID is the file name with or
// without its extension.
func (m *Manager) LoadConfig(name string) (*engine.Catalog, error) {
	id := configID(name)

	m.mu.RLock()
	// Check cache first
	if catalog, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return catalog, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if catalog, exists := m.configs[id]; exists {
		return catalog, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		// the built-in campaign has no file
		if id == m.defaultID && m.defaultCat != nil {
			return m.defaultCat, nil
		}
		return nil, err
	}
	catalog, err := engine.ReadCatalogFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	m.configs[id] = catalog
	m.logger.Debug("campaign loaded", zap.String("config_id", id), zap.String("path", path))
	return catalog, nil
}

// resolve finds the file behind a campaign name
func (m *Manager) resolve(name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	if _, err := engine.FormatFromPath(name); err == nil {
		return filepath.Join(m.configDir, name), nil
	}
	for _, ext := range campaignExtensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// ListConfigs returns information about all available campaigns
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := engine.FormatFromPath(entry.Name())
		if err != nil {
			continue
		}
		id := configID(entry.Name())
		if seen[id] {
			m.logger.Warn("duplicate campaign id, skipping file", zap.String("file", entry.Name()))
			continue
		}

		catalog, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid campaigns
			m.logger.Warn("skipping invalid campaign", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        catalog.Name,
			Description: catalog.Description,
			Format:      string(format),
			RoomCount:   len(catalog.Rooms),
			PuzzleCount: len(catalog.Puzzles),
			ItemCount:   len(catalog.Items),
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default campaign and its ID
func (m *Manager) GetDefault() (string, *engine.Catalog) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID, m.defaultCat
}

// SetDefault sets the default campaign by ID
func (m *Manager) SetDefault(name string) error {
	catalog, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = configID(name)
	m.defaultCat = catalog
	return nil
}

// Invalidate drops a cached campaign so the next load reads the file again
func (m *Manager) Invalidate(name string) {
	id := configID(name)
	m.mu.Lock()
	delete(m.configs, id)
	isDefault := id == m.defaultID
	m.mu.Unlock()

	if isDefault {
		m.loadDefaultConfig()
	}
}

// RefreshCache reloads all cached campaigns from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.Catalog)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, else the first valid campaign, else the
// built-in one
func (m *Manager) loadDefaultConfig() {
	id, catalog := DefaultCampaign, (*engine.Catalog)(nil)
	if c, err := m.LoadConfig(DefaultCampaign); err == nil {
		catalog = c
	} else if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
		if c, err := m.LoadConfig(configs[0].Filename); err == nil {
			id, catalog = configs[0].ConfigID, c
		}
	}
	if catalog == nil {
		m.logger.Warn("no valid campaign found, using built-in default", zap.String("dir", m.configDir))
		id, catalog = "default", engine.DefaultCatalog()
	}

	m.mu.Lock()
	m.defaultID = id
	m.defaultCat = catalog
	m.mu.Unlock()
}

// SaveConfig validates a campaign and writes it to disk. An existing YAML
// file stays YAML; everything else is written as JSON.
func (m *Manager) SaveConfig(name string, catalog *engine.Catalog) error {
	if catalog == nil {
		return fmt.Errorf("%w: empty campaign", ErrInvalidConfig)
	}
	catalog.Normalize()
	if err := engine.ValidateCatalog(catalog); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	path, err := m.resolve(name)
	if errors.Is(err, ErrConfigNotFound) && validName(name) {
		path, err = filepath.Join(m.configDir, configID(name)+".json"), nil
	}
	if err != nil {
		return err
	}

	format, err := engine.FormatFromPath(path)
	if err != nil {
		return err
	}
	var data []byte
	switch format {
	case engine.FormatYAML:
		data, err = yaml.Marshal(catalog)
	default:
		data, err = json.MarshalIndent(catalog, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configID(name)] = catalog
	m.mu.Unlock()

	m.logger.Info("campaign saved", zap.String("config_id", configID(name)), zap.String("path", path))
	return nil
}

// Watch drops cached campaigns whose files change until ctx is cancelled
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.configDir); err != nil {
		return fmt.Errorf("watch %s: %w", m.configDir, err)
	}
	m.logger.Info("watching campaigns", zap.String("dir", m.configDir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, err := engine.FormatFromPath(event.Name); err != nil {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				name := filepath.Base(event.Name)
				m.logger.Info("campaign changed", zap.String("file", name), zap.String("op", event.Op.String()))
				m.Invalidate(name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// configID strips a campaign file extension
func configID(name string) string {
	ext := filepath.Ext(name)
	for _, known := range campaignExtensions {
		if strings.EqualFold(ext, known) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// validName rejects names that would escape the config directory
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
