package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the configuration file inside a data directory.
const ConfigFile = "noteblocks.yaml"

// Storage backends.
const (
	StorageFS     = "fs"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config is the on-disk configuration of a data directory.
type Config struct {
	Storage string       `yaml:"storage"`
	Format  string       `yaml:"format"`
	Remote  RemoteConfig `yaml:"remote,omitempty"`
}

// RemoteConfig describes the remote service and the linked account.
type RemoteConfig struct {
	URL     string        `yaml:"url,omitempty"`
	Account string        `yaml:"account,omitempty"`
	Token   string        `yaml:"token,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{Storage: StorageFS, Format: "json"}
}

// LoadConfig reads dir/noteblocks.yaml. A missing file yields DefaultConfig.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	return cfg, cfg.validate()
}

// SaveConfig writes cfg to dir/noteblocks.yaml. The file may hold a token, so it is
// readable by the owner only.
func SaveConfig(dir string, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageFS, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	switch c.Format {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
