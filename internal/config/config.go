// Package config loads the engine's runtime configuration from environment
// variables, with an optional .env preload for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the engine's runtime configuration.
type Config struct {
	// SpillFolder is where the triple store writes Parquet spill shards.
	// Empty means in-memory mode (no spilling).
	SpillFolder string
	// Workers bounds concurrent fan-out in expansion and store operations.
	Workers int
	// SpillChunkBytes is loaded with the other settings but read by no other
	// package; the driver sizes expansion chunks against
	// store.MaxSpillFileBytes.
	SpillChunkBytes int64
	// CatalogDSN is the gorm DSN for the call/bucket manifest database.
	CatalogDSN string
	// LogLevel is one of debug/info/warning/error.
	LogLevel string
	// DefaultTemplatePrefix/DefaultPredicatePrefixIRI seed
	// template.DefaultTemplateOptions when a table has no authored template.
	DefaultTemplatePrefix     string
	DefaultPredicatePrefixIRI string
}

// LoadConfig loads configuration from the environment, first preloading a
// .env file at path via godotenv.Load (if non-empty and present).
func LoadConfig(envPath string) *Config {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		SpillFolder:               os.Getenv("OTTR_SPILL_FOLDER"),
		Workers:                   8,
		SpillChunkBytes:           50 * 1024 * 1024,
		CatalogDSN:                os.Getenv("OTTR_CATALOG_DSN"),
		LogLevel:                  os.Getenv("OTTR_LOG_LEVEL"),
		DefaultTemplatePrefix:     os.Getenv("OTTR_DEFAULT_TEMPLATE_PREFIX"),
		DefaultPredicatePrefixIRI: os.Getenv("OTTR_DEFAULT_PREDICATE_PREFIX"),
	}

	if cfg.CatalogDSN == "" {
		cfg.CatalogDSN = "ottr_catalog.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if workersStr := os.Getenv("OTTR_WORKERS"); workersStr != "" {
		if workers, err := strconv.Atoi(workersStr); err == nil && workers > 0 {
			cfg.Workers = workers
		}
	}
	if chunkStr := os.Getenv("OTTR_SPILL_CHUNK_BYTES"); chunkStr != "" {
		if chunk, err := strconv.ParseInt(chunkStr, 10, 64); err == nil && chunk > 0 {
			cfg.SpillChunkBytes = chunk
		}
	}

	return cfg
}
