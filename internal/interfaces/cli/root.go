// Package cli implements the coscheck command-line interface.
package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coscheck/coscheck/internal/application/checker"
	"github.com/coscheck/coscheck/internal/application/enrichment"
	"github.com/coscheck/coscheck/internal/application/ingest"
	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/domain/registry"
	"github.com/coscheck/coscheck/internal/infrastructure/cache"
	"github.com/coscheck/coscheck/internal/infrastructure/excel"
	"github.com/coscheck/coscheck/internal/infrastructure/fetch"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/internal/infrastructure/pubchem"
	"github.com/coscheck/coscheck/internal/infrastructure/state"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	NoColor    bool
	JSONOutput bool
}

// deps carries the lazily initialized dependency graph shared by the
// subcommands.
type deps struct {
	cfg    *config.Config
	logger logging.Logger

	catalog  *registry.Catalog
	statuses []ingest.SourceStatus

	resolver checker.Resolver
	searcher checker.AnnexSearcher
	enricher enrichment.Service

	fetcher fetch.Fetcher
	reader  excel.Reader
	store   state.Store
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	d := &deps{}

	cmd := &cobra.Command{
		Use:     "coscheck",
		Short:   "Cross-reference cosmetic ingredients against regulatory annex tables",
		Long:    "coscheck resolves CAS numbers and ingredient names against the COSING\ncanonical registry and regulatory annexes, and enriches unresolved\nidentifiers through PubChem.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initDeps(d, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.BoolVar(&opts.JSONOutput, "json", false, "emit JSON instead of tables")

	cmd.AddCommand(
		newCheckCommand(d, opts),
		newIngredientsCommand(d, opts),
		newEnrichCommand(d, opts),
		newRefreshCommand(d, opts),
		newSourcesCommand(d, opts),
	)
	return cmd
}

// initDeps loads config and builds the shared services. The catalog is built
// lazily because the refresh command does not need loaded tables.
func initDeps(d *deps, opts *RootOptions) error {
	if opts.NoColor {
		color.NoColor = true
	}

	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	logger, err := logging.NewLogger(logging.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	d.cfg = cfg
	d.logger = logger
	d.fetcher = fetch.NewFetcher(cfg.Freshness.FetchTimeout, logger)
	d.reader = excel.NewReader(logger)
	d.store = state.NewFileStore(cfg.Freshness.StatePath, logger)
	d.enricher = enrichment.NewService(
		pubchem.NewClient(pubchem.Config{
			BaseURL: cfg.PubChem.BaseURL,
			Timeout: cfg.PubChem.RequestTimeout,
		}, logger),
		logger,
		enrichment.WithBatchDelay(cfg.PubChem.BatchDelay),
		enrichment.WithMaxSynonyms(cfg.PubChem.MaxSynonyms),
	)
	return nil
}

// ensureCatalog loads the sources on first use.
func (d *deps) ensureCatalog(cmd *cobra.Command) error {
	if d.catalog != nil {
		return nil
	}

	loader := ingest.NewLoader(d.reader, d.fetcher, cache.NewMemoryCache(), d.store, d.logger)
	start := time.Now()
	catalog, statuses, err := loader.Load(cmd.Context(), d.cfg.Sources)
	if err != nil {
		return err
	}
	d.catalog = catalog
	d.statuses = statuses
	d.resolver = checker.NewResolver(catalog, d.logger)
	d.searcher = checker.NewAnnexSearcher(catalog, d.logger)

	d.logger.Debug("catalog loaded", logging.Duration("elapsed", time.Since(start)))
	return nil
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
