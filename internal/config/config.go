package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Store         StoreConfig      `json:"store"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	WriteLimitMs  int64            `json:"write_limit_ms"`
	Backup        BackupConfig     `json:"backup"`
}

type StoreConfig struct {
	Type            string `json:"type"`
	Driver          string `json:"driver"`
	DSN             string `json:"dsn"`
	CacheSize       int    `json:"cache_size"`
	CacheTTLSeconds int64  `json:"cache_ttl_seconds"`
}

type BackupConfig struct {
	Enabled   bool            `json:"enabled"`
	Spec      string          `json:"spec"`
	FileStore FileStoreConfig `json:"file_store"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ClientConfig configures the CLI side: where the store server lives and
// where the local state file (identity, theme) is kept.
type ClientConfig struct {
	Server    string
	StatePath string
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	cfg.Store.Type = strings.ToLower(strings.TrimSpace(cfg.Store.Type))
	if cfg.Store.Type == "" {
		cfg.Store.Type = "sql"
	}
	switch cfg.Store.Type {
	case "memory":
	case "sql":
		if cfg.Store.Driver == "" {
			cfg.Store.Driver = "sqlite"
		}
		if cfg.Store.Driver != "sqlite" && cfg.Store.Driver != "postgres" {
			return fmt.Errorf("store.driver must be sqlite or postgres")
		}
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for sql store")
		}
	default:
		return fmt.Errorf("store.type must be memory or sql")
	}
	if cfg.Store.CacheSize < 0 {
		cfg.Store.CacheSize = 0
	}
	if cfg.Store.CacheTTLSeconds == 0 {
		cfg.Store.CacheTTLSeconds = 60
	}
	if cfg.Backup.Enabled {
		if cfg.Backup.Spec == "" {
			cfg.Backup.Spec = "0 3 * * *"
		}
		if cfg.Backup.FileStore.Type == "" {
			return fmt.Errorf("backup.file_store.type is required when backup is enabled")
		}
	}
	return nil
}

func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".notetool-state.yaml"
	}
	return filepath.Join(home, ".notetool", "state.yaml")
}
