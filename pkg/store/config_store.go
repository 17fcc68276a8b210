package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/borgmon/ics-importer/pkg/models"
	"gopkg.in/yaml.v3"
)

// ConfigStore handles configuration persistence in a YAML file
type ConfigStore struct {
	Path string
}

// NewConfigStore creates a new ConfigStore instance
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{Path: path}
}

// DefaultConfigPath returns ics-importer/config.yaml under the user config
// directory, or config.yaml in the working directory when that is unknown.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "ics-importer", "config.yaml")
}

// Load reads the configuration. A missing file yields the defaults; fields
// absent from the file keep their default values.
func (cs *ConfigStore) Load() (*models.Config, error) {
	config := models.DefaultConfig()

	data, err := os.ReadFile(cs.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for i, source := range config.Sources {
		if !source.Validate() {
			return nil, fmt.Errorf("source %d (%q): missing url", i, source.Name)
		}
		if source.Name == "" {
			config.Sources[i].Name = models.SourceName(source.URL)
		}
	}

	return config, nil
}

// Save writes the configuration, creating the directory if needed
func (cs *ConfigStore) Save(config *models.Config) error {
	if err := os.MkdirAll(filepath.Dir(cs.Path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cs.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
