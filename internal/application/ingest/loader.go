// Package ingest assembles the active catalog: it loads every configured
// source, normalizes it, and reports how each one fared.
package ingest

import (
	"context"

	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/domain/registry"
	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/cache"
	"github.com/coscheck/coscheck/internal/infrastructure/excel"
	"github.com/coscheck/coscheck/internal/infrastructure/fetch"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/internal/infrastructure/state"
)

// SourceStatus reports the load outcome of one source. A source that could
// not be read still appears in the catalog with an empty table, so searches
// skip it instead of failing.
type SourceStatus struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Cached bool   `json:"cached"`
	Error  string `json:"error,omitempty"`
}

// Loader builds catalogs from configured sources.
type Loader struct {
	reader  excel.Reader
	fetcher fetch.Fetcher
	tables  cache.TableCache
	store   state.Store
	logger  logging.Logger
}

// NewLoader builds a Loader. The cache and state store are optional; without
// them every load parses from scratch and cache keys fall back to a fixed
// marker.
func NewLoader(reader excel.Reader, fetcher fetch.Fetcher, tables cache.TableCache, store state.Store, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{
		reader:  reader,
		fetcher: fetcher,
		tables:  tables,
		store:   store,
		logger:  logger.Named("ingest"),
	}
}

// Load assembles a catalog from the configured registry and annex sources.
// Per-source failures are soft; the returned statuses carry them.
func (l *Loader) Load(ctx context.Context, cfg config.SourcesConfig) (*registry.Catalog, []SourceStatus, error) {
	versions := l.loadVersions(ctx)

	var statuses []SourceStatus

	reg, st := l.loadSource(ctx, cfg.Registry, registry.KindRegistry, versions)
	statuses = append(statuses, st)

	annexes := make([]*registry.Source, 0, len(cfg.Annexes))
	for _, sc := range cfg.Annexes {
		src, st := l.loadSource(ctx, sc, registry.KindAnnex, versions)
		annexes = append(annexes, src)
		statuses = append(statuses, st)
	}

	catalog, err := registry.NewCatalog(reg, annexes)
	if err != nil {
		return nil, statuses, err
	}
	return catalog, statuses, nil
}

func (l *Loader) loadVersions(ctx context.Context) state.Versions {
	if l.store == nil {
		return state.Versions{}
	}
	v, err := l.store.Load(ctx)
	if err != nil {
		l.logger.Warn("version state unavailable", logging.Err(err))
		return state.Versions{}
	}
	return v
}

func (l *Loader) loadSource(ctx context.Context, sc config.SourceConfig, kind registry.Kind, versions state.Versions) (*registry.Source, SourceStatus) {
	st := SourceStatus{Name: sc.Name}
	src := &registry.Source{Name: sc.Name, Kind: kind}

	marker := versions[sc.Name]
	if marker == "" {
		marker = "unversioned"
	}

	if l.tables != nil {
		if nt, ok, err := l.tables.Get(ctx, sc.Name, marker); err == nil && ok {
			src.Table = nt
			st.Rows = nt.Len()
			st.Cached = true
			return src, st
		}
	}

	raw, err := l.readRaw(ctx, sc)
	if err != nil {
		st.Error = err.Error()
		l.logger.Warn("source unreadable, continuing without it",
			logging.String("source", sc.Name),
			logging.Err(err),
		)
		return src, st
	}

	nt, err := table.Normalize(raw, sc.HeaderRow, sc.HeaderRow-1)
	if err != nil {
		st.Error = err.Error()
		l.logger.Warn("source shorter than header offset",
			logging.String("source", sc.Name),
			logging.Int("header_row", sc.HeaderRow),
		)
		return src, st
	}
	src.Table = nt
	st.Rows = nt.Len()

	if l.tables != nil {
		if err := l.tables.Put(ctx, sc.Name, marker, nt); err != nil {
			l.logger.Warn("cache write failed",
				logging.String("source", sc.Name),
				logging.Err(err),
			)
		}
	}

	l.logger.Info("source loaded",
		logging.String("source", sc.Name),
		logging.String("kind", kind.String()),
		logging.Int("rows", st.Rows),
	)
	return src, st
}

// readRaw prefers the local path override, then the remote locator.
func (l *Loader) readRaw(ctx context.Context, sc config.SourceConfig) (table.RawTable, error) {
	if sc.Path != "" {
		return l.reader.ReadFile(ctx, sc.Path)
	}
	artifact, err := l.fetcher.Fetch(ctx, sc.URL)
	if err != nil {
		return table.RawTable{}, err
	}
	return l.reader.ReadBytes(ctx, sc.Name, artifact.Body)
}
