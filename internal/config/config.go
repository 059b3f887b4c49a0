package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// External catalog
	CatalogURL string
	CatalogKey string

	// Derived-data tuning
	StatsTTLHours        int // Hours before a cached stats report goes stale (default: 24)
	CatalogCacheMinutes  int // Minutes to cache catalog metadata (default: 360)
	MaxConcurrentFetches int // Parallel catalog fetches during reconciliation (default: 5)

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/seenlog.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("STATS_TTL_HOURS", 24)
	viper.SetDefault("CATALOG_CACHE_MINUTES", 360)
	viper.SetDefault("MAX_CONCURRENT_FETCHES", 5)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "seenlog")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// External catalog
		CatalogURL: viper.GetString("CATALOG_URL"),
		CatalogKey: viper.GetString("CATALOG_KEY"),

		// Derived-data tuning
		StatsTTLHours:        viper.GetInt("STATS_TTL_HOURS"),
		CatalogCacheMinutes:  viper.GetInt("CATALOG_CACHE_MINUTES"),
		MaxConcurrentFetches: viper.GetInt("MAX_CONCURRENT_FETCHES"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "seenlog.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.CatalogURL == "" {
		return nil, fmt.Errorf("CATALOG_URL is required")
	}
	if config.CatalogKey == "" {
		return nil, fmt.Errorf("CATALOG_KEY is required")
	}

	return config, nil
}
