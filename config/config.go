package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for calscope.
type Config struct {
	API          APIConfig          `yaml:"api"`
	USDA         USDAConfig         `yaml:"usda"`
	Autocomplete AutocompleteConfig `yaml:"autocomplete"`
	Storage      StorageConfig      `yaml:"storage"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// APIConfig points at the calorie-lookup and auth service.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// USDAConfig holds FoodData Central settings.
type USDAConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"` // Environment variable for the API key
	Timeout   time.Duration `yaml:"timeout"`
}

type AutocompleteConfig struct {
	DebounceMS        int           `yaml:"debounce_ms"`
	MinQueryLen       int           `yaml:"min_query_len"`
	MaxSuggestions    int           `yaml:"max_suggestions"`
	MaxDescriptionLen int           `yaml:"max_description_len"`
	RawLimit          int           `yaml:"raw_limit"`
	CacheSize         int           `yaml:"cache_size"` // 0 disables the search cache
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

// StorageConfig selects the persistence backend for the client stores.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "bolt", "sqlite", "memory"
	Path   string `yaml:"path"`   // Empty uses the state directory
}

type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "silent"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 15 * time.Second,
		},
		USDA: USDAConfig{
			BaseURL:   "https://api.nal.usda.gov/fdc/v1",
			APIKeyEnv: "USDA_API_KEY",
			Timeout:   10 * time.Second,
		},
		Autocomplete: AutocompleteConfig{
			DebounceMS:        300,
			MinQueryLen:       2,
			MaxSuggestions:    10,
			MaxDescriptionLen: 100,
			RawLimit:          20,
			CacheSize:         128,
			CacheTTL:          5 * time.Minute,
		},
		Storage: StorageConfig{
			Driver: "bolt",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Debounce returns the autocomplete quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Autocomplete.DebounceMS) * time.Millisecond
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "bolt", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Autocomplete.DebounceMS < 0 {
		return fmt.Errorf("autocomplete.debounce_ms must not be negative")
	}
	if c.Autocomplete.MinQueryLen < 1 {
		return fmt.Errorf("autocomplete.min_query_len must be at least 1")
	}
	if c.Autocomplete.MaxSuggestions < 1 || c.Autocomplete.RawLimit < 1 {
		return fmt.Errorf("autocomplete.max_suggestions and raw_limit must be positive")
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir looks for calscope.yaml, then .calscope/config.yaml.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "calscope.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".calscope", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StateDBPath returns the default state database path for driver.
func StateDBPath(dir, driver string) string {
	name := "state.db"
	if driver == "sqlite" {
		name = "state.sqlite"
	}
	return filepath.Join(dir, ".calscope", name)
}

// EnsureStateDir ensures the .calscope directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".calscope"), 0755)
}
