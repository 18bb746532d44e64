// Package config provides configuration loading, defaults, and validation for
// coscheck.
package config

import "time"

// Default value constants.
const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	// DefaultCOSINGBaseURL is the static download location of the COSING
	// annex workbooks published by the European Commission.
	DefaultCOSINGBaseURL = "https://ec.europa.eu/growth/tools-databases/cosing/assets/data"

	// DefaultPubChemBaseURL is the PubChem PUG REST endpoint root.
	DefaultPubChemBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

	DefaultPubChemTimeout    = 15 * time.Second
	DefaultPubChemBatchDelay = time.Second
	DefaultMaxSynonyms       = 10

	// DefaultHeaderRow is the header offset of the COSING exports: seven
	// rows of preamble precede the column labels.
	DefaultHeaderRow = 7

	DefaultFreshnessInterval = 24 * time.Hour
	DefaultFetchTimeout      = 30 * time.Second
	DefaultStatePath         = "annexes_state.json"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "coscheck"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "coscheck:"

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "coscheck.source-changes"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "coscheck-sources"

	DefaultCASPolicy = "substring"
	DefaultMatchMode = "exact"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the platform
// default. Fields that have already been set by the caller are left unchanged
// so that explicit configuration always wins. It must be called after
// unmarshalling and before Validate() so optional-but-defaulted fields are
// never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Sources.Registry.Name == "" {
		cfg.Sources.Registry.Name = "Ingredients Inventory"
	}
	if cfg.Sources.Registry.URL == "" && cfg.Sources.Registry.Path == "" {
		cfg.Sources.Registry.URL = DefaultCOSINGBaseURL + "/COSING_Ingredients-Fragrance Inventory_v2.xlsx"
	}
	if cfg.Sources.Registry.HeaderRow == 0 {
		cfg.Sources.Registry.HeaderRow = DefaultHeaderRow
	}
	if len(cfg.Sources.Annexes) == 0 {
		for _, roman := range []string{"II", "III", "IV", "V", "VI"} {
			cfg.Sources.Annexes = append(cfg.Sources.Annexes, SourceConfig{
				Name:      "Annex " + roman,
				URL:       DefaultCOSINGBaseURL + "/COSING_Annex_" + roman + "_v2.xlsx",
				HeaderRow: DefaultHeaderRow,
			})
		}
	}

	if cfg.PubChem.BaseURL == "" {
		cfg.PubChem.BaseURL = DefaultPubChemBaseURL
	}
	if cfg.PubChem.RequestTimeout == 0 {
		cfg.PubChem.RequestTimeout = DefaultPubChemTimeout
	}
	if cfg.PubChem.BatchDelay == 0 {
		cfg.PubChem.BatchDelay = DefaultPubChemBatchDelay
	}
	if cfg.PubChem.MaxSynonyms == 0 {
		cfg.PubChem.MaxSynonyms = DefaultMaxSynonyms
	}

	if cfg.Freshness.Interval == 0 {
		cfg.Freshness.Interval = DefaultFreshnessInterval
	}
	if cfg.Freshness.FetchTimeout == 0 {
		cfg.Freshness.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Freshness.StateStore == "" {
		cfg.Freshness.StateStore = "file"
	}
	if cfg.Freshness.StatePath == "" {
		cfg.Freshness.StatePath = DefaultStatePath
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	if cfg.Match.CASPolicy == "" {
		cfg.Match.CASPolicy = DefaultCASPolicy
	}
	if cfg.Match.Mode == "" {
		cfg.Match.Mode = DefaultMatchMode
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
// It validates, so it is safe to use directly in tests and local tooling.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
