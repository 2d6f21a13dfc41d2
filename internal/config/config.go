package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address            string `yaml:"address"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	BlacklistPrefix    string `yaml:"blacklist_prefix"`
	SnapshotPrefix     string `yaml:"snapshot_prefix"`
	SnapshotTTLMinutes int    `yaml:"snapshot_ttl_minutes"`
}

// SessionConfig holds game session settings
type SessionConfig struct {
	MaxBosses    int `yaml:"max_bosses"`
	CachedStores int `yaml:"cached_stores"` // per-boss stores kept in memory
}

// DatabaseConfig holds the save database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig holds the transaction rules
type EngineConfig struct {
	Capacities           CapacityConfig `yaml:"capacities"`
	ConsumeWithoutEffect *bool          `yaml:"consume_without_effect"`
	CraftSlots           int            `yaml:"craft_slots"`
	StartingHP           int            `yaml:"starting_hp"`
	StartingEnergy       int            `yaml:"starting_energy"`
	StartingItems        []StartingItem `yaml:"starting_items"`
	// StartingTraits raises each listed trait by one rank; repeat an id for rank 2.
	StartingTraits []string `yaml:"starting_traits"`
}

// StartingItem is granted into every new save
type StartingItem struct {
	Container string `yaml:"container"`
	Item      string `yaml:"item"`
	Quantity  int    `yaml:"quantity"`
}

// CapacityConfig is the number of distinct stacks each container holds
type CapacityConfig struct {
	Player  int `yaml:"player"`
	Safe    int `yaml:"safe"`
	Storage int `yaml:"storage"`
}

// CatalogConfig points at the static item and recipe tables
type CatalogConfig struct {
	ItemsPath   string `yaml:"items_path"`
	RecipesPath string `yaml:"recipes_path"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// ConsumesWithoutEffect reports whether a capped consumable is still used up.
func (e EngineConfig) ConsumesWithoutEffect() bool {
	return e.ConsumeWithoutEffect == nil || *e.ConsumeWithoutEffect
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Redis.SnapshotPrefix == "" {
		cfg.Redis.SnapshotPrefix = "snapshot:"
	}
	if cfg.Redis.SnapshotTTLMinutes == 0 {
		cfg.Redis.SnapshotTTLMinutes = 15
	}
	if cfg.Session.MaxBosses == 0 {
		cfg.Session.MaxBosses = 100
	}
	if cfg.Session.CachedStores == 0 {
		cfg.Session.CachedStores = 256
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/saves.db"
	}
	if cfg.Engine.Capacities.Player == 0 {
		cfg.Engine.Capacities.Player = 20
	}
	if cfg.Engine.Capacities.Safe == 0 {
		cfg.Engine.Capacities.Safe = 5
	}
	if cfg.Engine.Capacities.Storage == 0 {
		cfg.Engine.Capacities.Storage = 10
	}
	if cfg.Engine.CraftSlots == 0 {
		cfg.Engine.CraftSlots = 3
	}
	if cfg.Engine.StartingHP == 0 {
		cfg.Engine.StartingHP = 100
	}
	if cfg.Engine.StartingEnergy == 0 {
		cfg.Engine.StartingEnergy = 100
	}
	if cfg.Catalog.ItemsPath == "" {
		cfg.Catalog.ItemsPath = "./configs/items.yaml"
	}
	if cfg.Catalog.RecipesPath == "" {
		cfg.Catalog.RecipesPath = "./configs/recipes.yaml"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Engine.CraftSlots < 1 || cfg.Engine.CraftSlots > 3 {
		return nil, fmt.Errorf("engine.craft_slots must be between 1 and 3, got %d", cfg.Engine.CraftSlots)
	}
	for i := range cfg.Engine.StartingItems {
		if cfg.Engine.StartingItems[i].Container == "" {
			cfg.Engine.StartingItems[i].Container = "player"
		}
		if cfg.Engine.StartingItems[i].Quantity == 0 {
			cfg.Engine.StartingItems[i].Quantity = 1
		}
	}
	if cfg.Session.CachedStores < cfg.Session.MaxBosses {
		return nil, fmt.Errorf("session.cached_stores (%d) must be at least session.max_bosses (%d)", cfg.Session.CachedStores, cfg.Session.MaxBosses)
	}
	caps := cfg.Engine.Capacities
	if caps.Player < 0 || caps.Safe < 0 || caps.Storage < 0 {
		return nil, fmt.Errorf("engine.capacities must not be negative")
	}

	return &cfg, nil
}
