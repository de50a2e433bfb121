package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix for environment variable overrides (SWU_DATA_DIR, ...).
const EnvPrefix = "SWU"

// Storage backends for the catalog and collection.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	// Local data layout
	Data DataConfig `toml:"data" envconfig:"DATA"`

	// Remote catalog API
	API APIConfig `toml:"api" envconfig:"API"`

	// Partitions synced when none are given explicitly
	DefaultSets []string `toml:"default_sets" envconfig:"DEFAULT_SETS"`

	// Catalog search
	Search SearchConfig `toml:"search" envconfig:"SEARCH"`

	// Application configuration
	App AppConfig `toml:"app" envconfig:"APP"`
}

// DataConfig describes where catalog, collection, decks and images live.
// Relative paths are resolved against Dir.
type DataConfig struct {
	Dir            string `toml:"dir" envconfig:"DIR"`
	CardsFile      string `toml:"cards_file" envconfig:"CARDS_FILE"`
	CollectionFile string `toml:"collection_file" envconfig:"COLLECTION_FILE"`
	DeckFolder     string `toml:"deck_folder" envconfig:"DECK_FOLDER"`
	ImageFolder    string `toml:"image_folder" envconfig:"IMAGE_FOLDER"`
	Backend        string `toml:"backend" envconfig:"BACKEND"`         // "json" or "sqlite"
	SQLitePath     string `toml:"sqlite_path" envconfig:"SQLITE_PATH"` // used by the sqlite backend
}

// APIConfig contains remote catalog API settings.
type APIConfig struct {
	BaseURL       string            `toml:"base_url" envconfig:"BASE_URL"`
	Timeout       string            `toml:"timeout" envconfig:"TIMEOUT"`       // Per-request timeout (e.g., "30s")
	RetryAttempts int               `toml:"retry_attempts" envconfig:"RETRY_ATTEMPTS"`
	RateLimit     string            `toml:"rate_limit" envconfig:"RATE_LIMIT"` // Minimum spacing between requests ("0s" disables)
	Headers       map[string]string `toml:"headers" envconfig:"HEADERS"`
}

// SearchConfig contains catalog search settings.
type SearchConfig struct {
	FuzzyThreshold int `toml:"fuzzy_threshold" envconfig:"FUZZY_THRESHOLD"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool   `toml:"debug_mode" envconfig:"DEBUG_MODE"` // Enable debug logging
	LogFormat string `toml:"log_format" envconfig:"LOG_FORMAT"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:            defaultDataDir(),
			CardsFile:      "cards.json",
			CollectionFile: "collection.json",
			DeckFolder:     "decks",
			ImageFolder:    "images",
			Backend:        BackendJSON,
			SQLitePath:     "swu.db",
		},
		API: APIConfig{
			BaseURL:       "https://api.swu-db.com",
			Timeout:       "30s",
			RetryAttempts: 3,
			RateLimit:     "100ms",
			Headers: map[string]string{
				"User-Agent": "SWU-Companion/1.0",
			},
		},
		DefaultSets: []string{"sor", "shd", "twi", "jtl"},
		Search: SearchConfig{
			FuzzyThreshold: 80,
		},
		App: AppConfig{
			DebugMode: false,
			LogFormat: "text",
		},
	}
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".swu-companion"
	}
	return filepath.Join(homeDir, ".swu-companion")
}

// DefaultPath returns the path to the configuration file in the default data directory.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom loads the configuration from path, then applies SWU_* environment
// overrides (a .env file in the working directory is honored).
// Returns the default config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	return config, nil
}

// SaveTo writes the configuration to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	switch c.Data.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Data.Backend)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url cannot be empty")
	}

	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid api timeout %q: %w", c.API.Timeout, err)
	}

	if _, err := time.ParseDuration(c.API.RateLimit); err != nil {
		return fmt.Errorf("invalid api rate limit %q: %w", c.API.RateLimit, err)
	}

	if c.API.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1: %d", c.API.RetryAttempts)
	}

	if c.Search.FuzzyThreshold < 0 || c.Search.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy threshold must be within 0-100: %d", c.Search.FuzzyThreshold)
	}

	switch c.App.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.App.LogFormat)
	}

	return nil
}

// GetAPITimeout returns the per-request API timeout as a duration.
func (c *Config) GetAPITimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.Timeout)
}

// GetAPIRateLimit returns the minimum spacing between API requests.
func (c *Config) GetAPIRateLimit() (time.Duration, error) {
	return time.ParseDuration(c.API.RateLimit)
}

// Resolve joins a data-relative path onto the data directory.
func (c *Config) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}

// CardsPath returns the catalog file path.
func (c *Config) CardsPath() string { return c.Resolve(c.Data.CardsFile) }

// CollectionPath returns the collection file path.
func (c *Config) CollectionPath() string { return c.Resolve(c.Data.CollectionFile) }

// DeckRoot returns the root directory of the deck folder tree.
func (c *Config) DeckRoot() string { return c.Resolve(c.Data.DeckFolder) }

// ImageRoot returns the artwork cache directory.
func (c *Config) ImageRoot() string { return c.Resolve(c.Data.ImageFolder) }

// SQLitePath returns the SQLite database path.
func (c *Config) SQLitePath() string { return c.Resolve(c.Data.SQLitePath) }
