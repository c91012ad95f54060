// Package config loads the process-level configuration for cmd/roscacored:
// where to store data, which address is the chain admin, and how the demo
// harness logs and serves metrics. The harness reads data_dir, log_env and
// use_leveldb; it does not read admin_address or metrics_addr, and it does
// not serve metrics. This is distinct from native/rosca's
// on-chain Config entity, which bounds group creation parameters and lives
// entirely inside the deterministic core's own storage keyspace.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level process configuration, loaded from a TOML file.
type Config struct {
	DataDir     string `toml:"data_dir"`
	AdminAddr   string `toml:"admin_address"`
	LogEnv      string `toml:"log_env"`
	MetricsAddr string `toml:"metrics_addr"`
	UseLevelDB  bool   `toml:"use_leveldb"`
}

// createDefault returns the configuration used when no file exists yet, so
// a fresh checkout can start the demo harness without any setup step.
func createDefault() *Config {
	return &Config{
		DataDir:     "./data",
		LogEnv:      "development",
		MetricsAddr: "127.0.0.1:9464",
		UseLevelDB:  false,
	}
}

// Load reads the TOML configuration at path, writing out a default file if
// none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		def := createDefault()
		if err := def.Save(path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return def, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	return &cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
