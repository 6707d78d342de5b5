// Package config provides configuration management for label index
// operations. The copy-on-write mode is resolved here once at process start
// and injected into every mutation guard; it is never re-read mid-run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config represents the process-wide configuration.
type Config struct {
	// CopyOnWrite selects the mutation-guard mode: derived views become
	// logically independent via copy-on-first-write. Fixed for the process
	// lifetime.
	CopyOnWrite bool `json:"copy_on_write" yaml:"copy_on_write"`

	// LookupLoadFactor sizes the hashed label lookup structure relative to
	// the index length. Zero selects the default.
	LookupLoadFactor float64 `json:"lookup_load_factor" yaml:"lookup_load_factor"`

	// VerboseLogging enables verbose diagnostics in the CLI.
	VerboseLogging bool `json:"verbose_logging" yaml:"verbose_logging"`
}

// Default configuration values
const (
	DefaultLookupLoadFactor = 1.0
)

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		CopyOnWrite:      false,
		LookupLoadFactor: DefaultLookupLoadFactor,
		VerboseLogging:   false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.LookupLoadFactor < 0 {
		return fmt.Errorf("LookupLoadFactor must be non-negative, got %f", c.LookupLoadFactor)
	}
	return nil
}

// WithDefaults returns a new configuration with default values filled in
// for zero values. Boolean fields are left as set so an explicit false is
// distinguishable from unset.
func (c Config) WithDefaults() Config {
	if c.LookupLoadFactor == 0 {
		c.LookupLoadFactor = DefaultLookupLoadFactor
	}
	return c
}

// SetGlobalConfig sets the global configuration. Intended for process
// startup only; guards constructed afterwards observe the new mode.
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() Config {
	config := NewConfig()

	if val := os.Getenv("LABELINDEX_COPY_ON_WRITE"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.CopyOnWrite = parsed
		}
	}

	if val := os.Getenv("LABELINDEX_LOOKUP_LOAD_FACTOR"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.LookupLoadFactor = parsed
		}
	}

	if val := os.Getenv("LABELINDEX_VERBOSE_LOGGING"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerboseLogging = parsed
		}
	}

	return config
}
