package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mehdihou95/middleware-mapper/internal/store"
)

// Config is the main configuration structure, loaded from a JSON file with
// environment overrides for deployment-specific values
type Config struct {
	// HTTP server
	Port     string `json:"port"`
	LogLevel string `json:"logLevel"`

	// Directory with per-interface mapping-rule files
	RulesDir string `json:"rulesDir"`

	// Base directory for drop-dir document ingestion
	AllowedBaseDir string `json:"allowedBaseDir"`

	// Pending-document queue capacity
	QueueSize int `json:"queueSize"`

	Store StoreConfig `json:"store"`
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	// Backend is "memory", "mongo" or "delivery"
	Backend  string               `json:"backend"`
	Mongo    MongoConfig          `json:"mongo"`
	Delivery store.DeliveryConfig `json:"delivery"`
}

// MongoConfig configures the MongoDB backend
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// Default returns a config usable without a config file
func Default() *Config {
	return &Config{
		Port:           "8080",
		LogLevel:       "info",
		RulesDir:       "./rules",
		AllowedBaseDir: "/data/incoming",
		QueueSize:      1000,
		Store:          StoreConfig{Backend: "memory"},
	}
}

// Load reads configuration from a JSON file and applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if dir := os.Getenv("ALLOWED_BASE_DIR"); dir != "" {
		cfg.AllowedBaseDir = dir
	}
	if dir := os.Getenv("MAPPER_RULES_DIR"); dir != "" {
		cfg.RulesDir = dir
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "memory", "":
	case "mongo":
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" {
			return fmt.Errorf("store.mongo.uri and store.mongo.database are required for the mongo backend")
		}
	case "delivery":
		if c.Store.Delivery.Endpoint == "" {
			return fmt.Errorf("store.delivery.endpoint is required for the delivery backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
