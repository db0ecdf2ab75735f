package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"issuesearch/internal/domain"
	"issuesearch/internal/eventbus"
	"issuesearch/internal/features"
)

// Backend names accepted in the config file
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// DefaultRecentLimit mirrors the upstream autocomplete limit for recent searches
const DefaultRecentLimit = 3

// Config represents the application configuration
type Config struct {
	Version      int                 `toml:"version"`
	Organization string              `toml:"organization"`
	Features     []string            `toml:"features"`
	Backend      string              `toml:"backend"`
	SQLitePath   string              `toml:"sqlite_path"`
	PostgresDSN  string              `toml:"postgres_dsn"`
	APIURL       string              `toml:"api_url"`
	APIToken     string              `toml:"api_token"`
	ListenAddr   string              `toml:"listen_addr"`
	RecentLimit  int                 `toml:"recent_limit"`
	LogLevel     string              `toml:"log_level"`
	LogFile      string              `toml:"log_file"`
	SavedSearch  *domain.SavedSearch `toml:"saved_search,omitempty"`
	Tags         map[string][]string `toml:"tags"` // tag key -> known values
}

// Capabilities decodes the feature list once, at the config boundary
func (c *Config) Capabilities() features.Set {
	return features.FromFlags(c.Features)
}

// Validate reports configuration that cannot be started
func (c *Config) Validate() error {
	if c.Organization == "" {
		return errors.New("organization is required")
	}
	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres_dsn is required for the postgres backend")
		}
	case BackendRemote:
		if c.APIURL == "" {
			return errors.New("api_url is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.RecentLimit < 0 {
		return fmt.Errorf("recent_limit must not be negative, got %d", c.RecentLimit)
	}
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultDir returns the per-user config directory for issuesearch
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "issuesearch")
}

// NewConfigService creates a config service reading config.toml from DefaultDir
func NewConfigService() ConfigService {
	return NewConfigServiceAt(filepath.Join(DefaultDir(), "config.toml"))
}

// NewConfigServiceAt creates a config service bound to an explicit file
func NewConfigServiceAt(path string) ConfigService {
	return &configService{filePath: path}
}

// WithBus attaches an event bus so loads and saves are published
func WithBus(svc ConfigService, bus eventbus.EventBus) ConfigService {
	if cs, ok := svc.(*configService); ok {
		cs.bus = bus
	}
	return svc
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads the bound file, falling back to defaults when it does not exist
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:         cs.filePath,
			Organization: cfg.Organization,
		})
	}
	return cfg, nil
}

// Save writes the config to the bound file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Missing fields take defaults.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Tags == nil {
		cfg.Tags = make(map[string][]string)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		Organization: "default",
		Features:     []string{features.FlagRecentSearches},
		Backend:      BackendSQLite,
		SQLitePath:   filepath.Join(DefaultDir(), "recent.db"),
		ListenAddr:   "127.0.0.1:8765",
		RecentLimit:  DefaultRecentLimit,
		LogLevel:     "info",
		LogFile:      "issuesearch.log",
		Tags: map[string][]string{
			"browser": {"Chrome 34", "Firefox 60", "Safari 12"},
			"level":   {"error", "warning", "info", "fatal"},
		},
	}
}
