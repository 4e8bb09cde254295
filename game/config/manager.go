package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the campaign used when none is requested
const DefaultConfigName = "castle"

// extensions lists the supported campaign file formats in lookup order
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles campaign configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.CampaignConfig
	configs       map[string]*engine.CampaignConfig
	mu            sync.RWMutex
}

var _ service.ConfigManager = (*Manager)(nil)

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.CampaignConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a campaign by name. The name may carry a .json, .yaml or
// .yml extension; without one each format is tried in turn.
func (m *Manager) LoadConfig(name string) (*engine.CampaignConfig, error) {
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.resolvePath(name)
	if err != nil {
		return nil, err
	}

	config, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all valid campaign files
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !IsCampaignFile(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Levels:      len(config.Levels),
			MaxLives:    config.MaxLives,
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})
	return configs, nil
}

// GetDefault returns the default campaign
func (m *Manager) GetDefault() *engine.CampaignConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default campaign by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops all cached campaigns and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.CampaignConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig picks castle, then the first valid file, then a
// built-in one-level campaign
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = createMinimalConfig()
		} else if config, err = m.LoadConfig(configs[0].Filename); err != nil {
			config = createMinimalConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

func (m *Manager) resolvePath(name string) (string, error) {
	if IsCampaignFile(name) {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrConfigNotFound
		}
		return path, nil
	}
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// ParseFile reads and validates a campaign file outside any manager
func ParseFile(path string) (*engine.CampaignConfig, error) {
	if !IsCampaignFile(path) {
		return nil, fmt.Errorf("%w: unsupported file type %s", ErrInvalidConfig, filepath.Ext(path))
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	}
	return parseFile(path)
}

func parseFile(path string) (*engine.CampaignConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.CampaignConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	if err := engine.ValidateCampaignConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &config, nil
}

// IsCampaignFile reports whether name has a JSON or YAML extension
func IsCampaignFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// configID strips a supported extension from a file or config name
func configID(name string) string {
	if IsCampaignFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// createMinimalConfig creates a minimal valid campaign
func createMinimalConfig() *engine.CampaignConfig {
	config := &engine.CampaignConfig{
		Name:        "default",
		Description: "Default minimal campaign",
		Levels: []engine.LevelConfig{
			{
				Name: "Courtyard",
				Layout: []string{
					"#######",
					"#....E#",
					"#.###.#",
					"#.....#",
					"#######",
				},
				RequiredCoins: 1,
				Collectibles:  []engine.Coordinate{{Row: 3, Col: 3}},
			},
		},
	}
	_ = engine.ValidateCampaignConfig(config)
	return config
}
