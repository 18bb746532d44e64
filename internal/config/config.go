// Package config defines all configuration structures for coscheck.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SourceConfig describes one spreadsheet source: either the canonical
// ingredient registry or one regulatory annex.
type SourceConfig struct {
	// Name is the unique source identifier within the active set
	// (e.g. "Annex II").
	Name string `mapstructure:"name"`

	// URL is the fetch locator of the versioned artifact.
	URL string `mapstructure:"url"`

	// Path is an optional local file override used instead of URL.
	Path string `mapstructure:"path"`

	// HeaderRow is the 0-based row index of the header row. The COSING
	// exports carry seven rows of preamble before the header.
	HeaderRow int `mapstructure:"header_row"`
}

// SourcesConfig holds the canonical registry plus the ordered annex list.
// Annex order is search priority order.
type SourcesConfig struct {
	Registry SourceConfig   `mapstructure:"registry"`
	Annexes  []SourceConfig `mapstructure:"annexes"`
}

// PubChemConfig holds External Identity Client parameters.
type PubChemConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// BatchDelay is the fixed pause inserted between consecutive external
	// calls in a batch, respecting PubChem's implicit rate limits.
	BatchDelay  time.Duration `mapstructure:"batch_delay"`
	MaxSynonyms int           `mapstructure:"max_synonyms"`
}

// FreshnessConfig holds Source Freshness Tracker parameters.
type FreshnessConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// StateStore selects the SourceVersionState backend: "file" | "postgres".
	StateStore string `mapstructure:"state_store"`
	StatePath  string `mapstructure:"state_path"`
	// PublishArtifacts enables upload of changed artifacts to object storage.
	PublishArtifacts bool `mapstructure:"publish_artifacts"`
	// EmitEvents enables Kafka change events.
	EmitEvents bool `mapstructure:"emit_events"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the optional
// postgres-backed version-state store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the table cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the change-event producer parameters.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// MinIOConfig holds object-storage parameters for artifact publication.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MatchConfig holds default matching behaviour.
type MatchConfig struct {
	// CASPolicy selects the CAS matching policy: "substring" | "exact".
	// Substring tolerates compound cells (multiple CAS numbers or
	// annotations in one cell) at the cost of occasional prefix matches.
	CASPolicy string `mapstructure:"cas_policy"`

	// Mode is the default name matching mode: "exact" | "fuzzy".
	Mode string `mapstructure:"mode"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
}

// Config is the root configuration structure for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	PubChem   PubChemConfig   `mapstructure:"pubchem"`
	Freshness FreshnessConfig `mapstructure:"freshness"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Match     MatchConfig     `mapstructure:"match"`
	Log       LogConfig       `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Sources.Registry.Name == "" {
		return fmt.Errorf("config: sources.registry.name is required")
	}
	if c.Sources.Registry.URL == "" && c.Sources.Registry.Path == "" {
		return fmt.Errorf("config: sources.registry needs a url or a path")
	}
	seen := map[string]bool{c.Sources.Registry.Name: true}
	for i, a := range c.Sources.Annexes {
		if a.Name == "" {
			return fmt.Errorf("config: sources.annexes[%d].name is required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("config: duplicate source name %q", a.Name)
		}
		seen[a.Name] = true
		if a.URL == "" && a.Path == "" {
			return fmt.Errorf("config: source %q needs a url or a path", a.Name)
		}
		if a.HeaderRow < 0 {
			return fmt.Errorf("config: source %q header_row must be ≥ 0", a.Name)
		}
	}

	if c.PubChem.BaseURL == "" {
		return fmt.Errorf("config: pubchem.base_url is required")
	}
	if c.PubChem.RequestTimeout <= 0 {
		return fmt.Errorf("config: pubchem.request_timeout must be positive")
	}
	if c.PubChem.BatchDelay < 0 {
		return fmt.Errorf("config: pubchem.batch_delay must be ≥ 0")
	}

	switch c.Freshness.StateStore {
	case "file", "postgres":
	default:
		return fmt.Errorf("config: freshness.state_store %q is invalid; expected file|postgres", c.Freshness.StateStore)
	}
	if c.Freshness.StateStore == "file" && c.Freshness.StatePath == "" {
		return fmt.Errorf("config: freshness.state_path is required for the file state store")
	}
	if c.Freshness.StateStore == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required for the postgres state store")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required for the postgres state store")
		}
	}
	if c.Freshness.FetchTimeout <= 0 {
		return fmt.Errorf("config: freshness.fetch_timeout must be positive")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Freshness.EmitEvents && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker when events are enabled")
	}
	if c.Freshness.PublishArtifacts && c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required when artifact publication is enabled")
	}

	switch c.Match.CASPolicy {
	case "substring", "exact":
	default:
		return fmt.Errorf("config: match.cas_policy %q is invalid; expected substring|exact", c.Match.CASPolicy)
	}
	switch c.Match.Mode {
	case "exact", "fuzzy":
	default:
		return fmt.Errorf("config: match.mode %q is invalid; expected exact|fuzzy", c.Match.Mode)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
