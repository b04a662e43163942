package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// decodeFile reads the TOML file at path into cfg.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
