package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile applies the fields present in a YAML file on top of c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Quality != "" {
		q, err := ParseQuality(string(c.Quality))
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		c.Quality = q
	}
	return nil
}
