package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is the config path used when --config is not provided.
const DefaultConfigFile = "config.yml"

// ValidateConfigPath checks that the given path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML reads and decodes a YAML file into the provided structure.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig loads the application configuration from a YAML file. A missing
// file is only an error when the user pointed at it explicitly; the implicit
// default path falls back to built-in defaults so the tool runs without a
// config file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if err := LoadYAML(configPath, config); err != nil {
		if os.IsNotExist(err) && configPath == DefaultConfigFile {
			return config, nil
		}
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}
