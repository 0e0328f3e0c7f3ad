package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk CLI configuration (~/.sessionctl/config.yaml).
type fileConfig struct {
	APIURL     string `yaml:"api_url"`
	StateDir   string `yaml:"state_dir"`
	DeviceName string `yaml:"device_name"`
	// RedisAddr enables cross-process session sync; empty disables it.
	RedisAddr string `yaml:"redis_addr"`
	Channel   string `yaml:"channel"`
	AuditLog  string `yaml:"audit_log"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func defaultConfigPath(home string) string {
	return filepath.Join(home, "config.yaml")
}
