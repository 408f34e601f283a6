package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

var ErrNoSources = errors.New("no sources configured")

// TomlSource represents a blog in the sources file
type TomlSource struct {
	Name   string `toml:"name"`
	URL    string `toml:"url"`
	Avatar string `toml:"avatar,omitempty"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Sources []TomlSource `toml:"sources"`
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if len(config.Sources) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSources)
	}

	return &config, nil
}

// SaveConfig writes the configuration back to path, replacing the file
func SaveConfig(path string, config *TomlConfig) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
