// Command worker runs the source freshness tracker: it periodically
// re-fetches every configured spreadsheet, compares version markers, and on
// change publishes the artifact, emits a change event, and invalidates the
// table cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coscheck/coscheck/internal/application/freshness"
	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/infrastructure/cache"
	"github.com/coscheck/coscheck/internal/infrastructure/database/postgres"
	"github.com/coscheck/coscheck/internal/infrastructure/excel"
	"github.com/coscheck/coscheck/internal/infrastructure/fetch"
	"github.com/coscheck/coscheck/internal/infrastructure/messaging/kafka"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/prometheus"
	miniostorage "github.com/coscheck/coscheck/internal/infrastructure/storage/minio"
	"github.com/coscheck/coscheck/internal/infrastructure/state"
)

const defaultHealthPort = 8081

func main() {
	configPath := flag.String("config", "", "path to configuration file (env-only when empty)")
	healthPort := flag.Int("health-port", defaultHealthPort, "health and metrics port")
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *healthPort, *once); err != nil {
		logger.Error("worker exited", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger, healthPort int, once bool) error {
	metrics := prometheus.New()

	store, closeStore, err := newStateStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	opts, closeSideEffects, err := trackerOptions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSideEffects()

	tracker := freshness.NewTracker(
		fetch.NewFetcher(cfg.Freshness.FetchTimeout, logger),
		excel.NewReader(logger),
		store,
		logger,
		opts...,
	)

	targets := refreshTargets(cfg.Sources)
	logger.Info("freshness tracker starting",
		logging.Int("targets", len(targets)),
		logging.Duration("interval", cfg.Freshness.Interval),
	)

	healthSrv := startHealthServer(healthPort, metrics, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown failed", logging.Err(err))
		}
	}()

	cycle := func() {
		reports, err := tracker.Check(ctx, targets)
		if err != nil {
			metrics.FreshnessCycleErrors.Inc()
			logger.Error("freshness cycle failed", logging.Err(err))
		}
		for _, r := range reports {
			if r.Changed {
				metrics.FreshnessChangesTotal.WithLabelValues(r.Source).Inc()
			}
		}
	}

	cycle()
	if once {
		return nil
	}

	ticker := time.NewTicker(cfg.Freshness.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("freshness tracker stopping")
			return nil
		case <-ticker.C:
			cycle()
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

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

// trackerOptions wires the optional change side effects: artifact
// publication, change events, and cache invalidation.
func trackerOptions(ctx context.Context, cfg *config.Config, logger logging.Logger) ([]freshness.TrackerOption, func(), error) {
	var opts []freshness.TrackerOption
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Freshness.PublishArtifacts {
		pub, err := miniostorage.NewPublisher(ctx, cfg.MinIO, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opts = append(opts, freshness.WithPublisher(pub))
	}

	if cfg.Freshness.EmitEvents {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka close failed", logging.Err(err))
			}
		})
		opts = append(opts, freshness.WithNotifier(&kafkaNotifier{producer: producer}))
	}

	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := rc.Close(); err != nil {
				logger.Warn("redis close failed", logging.Err(err))
			}
		})
		opts = append(opts, freshness.WithTableCache(rc))
	}

	return opts, closeAll, nil
}

// kafkaNotifier adapts the event producer to the tracker's Notifier.
type kafkaNotifier struct {
	producer *kafka.Producer
}

func (n *kafkaNotifier) SourceChanged(ctx context.Context, ch freshness.Change) error {
	return n.producer.SourceChanged(ctx, kafka.ChangeEvent{
		Source:     ch.Source,
		OldMarker:  ch.OldMarker,
		NewMarker:  ch.NewMarker,
		ObservedAt: ch.ObservedAt,
	})
}

func refreshTargets(sources config.SourcesConfig) []freshness.Target {
	var targets []freshness.Target
	if sources.Registry.URL != "" {
		targets = append(targets, freshness.Target{Name: sources.Registry.Name, URL: sources.Registry.URL})
	}
	for _, a := range sources.Annexes {
		if a.URL != "" {
			targets = append(targets, freshness.Target{Name: a.Name, URL: a.URL})
		}
	}
	return targets
}

func startHealthServer(port int, metrics *prometheus.Metrics, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		logger.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}
