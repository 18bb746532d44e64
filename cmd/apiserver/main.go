// Command apiserver runs the HTTP API of the regulatory cross-reference
// engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coscheck/coscheck/internal/application/checker"
	"github.com/coscheck/coscheck/internal/application/enrichment"
	"github.com/coscheck/coscheck/internal/application/ingest"
	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/domain/match"
	"github.com/coscheck/coscheck/internal/infrastructure/cache"
	"github.com/coscheck/coscheck/internal/infrastructure/database/postgres"
	"github.com/coscheck/coscheck/internal/infrastructure/excel"
	"github.com/coscheck/coscheck/internal/infrastructure/fetch"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/prometheus"
	"github.com/coscheck/coscheck/internal/infrastructure/pubchem"
	"github.com/coscheck/coscheck/internal/infrastructure/state"
	httpserver "github.com/coscheck/coscheck/internal/interfaces/http"
	"github.com/coscheck/coscheck/internal/interfaces/http/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (env-only when empty)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(logging.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		config.Watch(*configPath, func(_ *config.Config) {
			logger.Info("configuration file changed on disk; restart to apply")
		})
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("apiserver exited", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	metrics := prometheus.New()

	tables, closeCache, err := newTableCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	store, closeStore, err := newStateStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	fetcher := fetch.NewFetcher(cfg.Freshness.FetchTimeout, logger)
	reader := excel.NewReader(logger)
	loader := ingest.NewLoader(reader, fetcher, tables, store, logger)

	logger.Info("loading regulatory sources",
		logging.Int("annexes", len(cfg.Sources.Annexes)),
		logging.String("registry", cfg.Sources.Registry.Name),
	)
	catalog, statuses, err := loader.Load(ctx, cfg.Sources)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		outcome := "ok"
		switch {
		case st.Error != "":
			outcome = "error"
		case st.Cached:
			outcome = "cached"
		}
		metrics.SourceLoadsTotal.WithLabelValues(st.Name, outcome).Inc()
	}

	resolver := checker.NewResolver(catalog, logger)
	searcher := checker.NewAnnexSearcher(catalog, logger)
	enricher := enrichment.NewService(
		pubchem.NewClient(pubchem.Config{
			BaseURL: cfg.PubChem.BaseURL,
			Timeout: cfg.PubChem.RequestTimeout,
		}, logger),
		logger,
		enrichment.WithBatchDelay(cfg.PubChem.BatchDelay),
		enrichment.WithMaxSynonyms(cfg.PubChem.MaxSynonyms),
	)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		CheckHandler:   handlers.NewCheckHandler(resolver, searcher, match.ParseCASPolicy(cfg.Match.CASPolicy), metrics),
		EnrichHandler:  handlers.NewEnrichHandler(enricher, metrics),
		SourcesHandler: handlers.NewSourcesHandler(catalog, statuses),
		HealthHandler:  handlers.NewHealthHandler(catalog),
		Logger:         logger,
		Metrics:        metrics,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)
	return srv.Run(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// newTableCache picks Redis when enabled, falling back to the in-process
// cache otherwise.
func newTableCache(ctx context.Context, cfg *config.Config, logger logging.Logger) (cache.TableCache, func(), error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), func() {}, nil
	}
	rc, err := cache.NewRedisCache(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, nil, err
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Warn("redis close failed", logging.Err(err))
		}
	}, nil
}

// newStateStore picks the configured SourceVersionState backend.
func newStateStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (state.Store, func(), error) {
	if cfg.Freshness.StateStore != "postgres" {
		return state.NewFileStore(cfg.Freshness.StatePath, logger), func() {}, nil
	}
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.Migrate(); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return postgres.NewVersionStore(conn), func() {
		if err := conn.Close(); err != nil {
			logger.Warn("postgres close failed", logging.Err(err))
		}
	}, nil
}
