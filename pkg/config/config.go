// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Expand replaces $VAR and ${VAR} with environment values.
// ${VAR:-fallback} yields fallback when VAR is unset or empty.
func Expand(s string) string {
	return os.Expand(s, func(key string) string {
		name, fallback, ok := strings.Cut(key, ":-")
		if v := os.Getenv(name); v != "" || !ok {
			return v
		}
		return fallback
	})
}

func validate(target any) error {
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal([]byte(Expand(string(data))), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return validate(target)
}

// LoadOrDefaults loads filename into target when it exists. A missing
// file leaves target's defaults in place; they are still validated.
// The boolean reports whether the file was read.
func LoadOrDefaults[T any](filename string, target *T) (bool, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return false, validate(target)
	}
	if err := Load(filename, target); err != nil {
		return false, err
	}
	return true, nil
}
