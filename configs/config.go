// Package configs provides configuration management for confnav.
//
// Configuration is stored as YAML in ~/.config/confnav/config.yaml and holds
// the connection settings for the configuration store plus user preferences
// such as the last browsed namespace and group and favourite namespaces.
// Missing or unreadable files fall back to defaults.
package configs

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

const (
	userConfigDir  = ".config/confnav"
	configFileName = "config.yaml"
	logFileName    = "confnav.log"
)

// Supported backends.
const (
	BackendAPI        = "api"
	BackendNacos      = "nacos"
	BackendKubernetes = "kubernetes"
)

// Config holds connection settings and the user state that persists between
// sessions.
type Config struct {
	// Backend selects the store implementation: api, nacos or kubernetes.
	Backend string `yaml:"backend"`

	// Server is the base URL of the api or nacos backend.
	Server string `yaml:"server"`

	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// Kubeconfig overrides the kubeconfig path for the kubernetes backend.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	PageSize int `yaml:"page_size"`

	// RequestTimeout bounds each remote call, in seconds.
	RequestTimeout int `yaml:"request_timeout_seconds"`

	// WatchInterval is the polling interval of watched entries, in seconds.
	WatchInterval int `yaml:"watch_interval_seconds"`

	LastNamespace string `yaml:"last_namespace,omitempty"`
	LastGroup     string `yaml:"last_group,omitempty"`

	// FavoriteNamespaces are listed first in the namespace navigator.
	FavoriteNamespaces []string `yaml:"favorite_namespaces,omitempty"`

	// LogFile receives the structured log. Empty means the default path.
	LogFile string `yaml:"log_file,omitempty"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendAPI,
		Server:         "http://localhost:8000",
		PageSize:       10,
		RequestTimeout: 15,
		WatchInterval:  5,
		LastNamespace:  "public",
	}
}

// Path returns the path of the configuration file.
func Path() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, userConfigDir, configFileName), nil
}

// DefaultLogFile returns the log path used when LogFile is unset.
func DefaultLogFile() string {
	home, err := osUserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), logFileName)
	}
	return filepath.Join(home, userConfigDir, logFileName)
}

// Load reads the configuration from disk.
// A missing or invalid file yields the defaults without error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path. A missing or unparsable file
// yields the defaults; other read errors are returned.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), nil
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.WatchInterval <= 0 {
		c.WatchInterval = d.WatchInterval
	}
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the configuration to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Credentials may be stored here.
	return os.WriteFile(path, data, 0600)
}

// Timeout returns RequestTimeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Interval returns WatchInterval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.WatchInterval) * time.Second
}

// SetLast records the last browsed namespace and group.
func (c *Config) SetLast(namespace, group string) {
	c.LastNamespace = namespace
	c.LastGroup = group
}

// AddFavorite adds a namespace to the favourites if it's not already present.
func (c *Config) AddFavorite(ns string) {
	if c.IsFavorite(ns) {
		return
	}
	c.FavoriteNamespaces = append(c.FavoriteNamespaces, ns)
}

// RemoveFavorite removes a namespace from the favourites.
func (c *Config) RemoveFavorite(ns string) {
	for i, f := range c.FavoriteNamespaces {
		if f == ns {
			c.FavoriteNamespaces = append(c.FavoriteNamespaces[:i], c.FavoriteNamespaces[i+1:]...)
			return
		}
	}
}

// ToggleFavorite flips the favourite flag of ns and returns the new state.
func (c *Config) ToggleFavorite(ns string) bool {
	if c.IsFavorite(ns) {
		c.RemoveFavorite(ns)
		return false
	}
	c.AddFavorite(ns)
	return true
}

// IsFavorite checks whether ns is a favourite.
func (c *Config) IsFavorite(ns string) bool {
	for _, f := range c.FavoriteNamespaces {
		if f == ns {
			return true
		}
	}
	return false
}
