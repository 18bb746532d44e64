// Package checker provides the application-level services that resolve
// ingredient identifiers against the canonical registry and search CAS
// numbers across the regulatory annex tables.
package checker

import (
	"context"

	"github.com/coscheck/coscheck/internal/domain/match"
	"github.com/coscheck/coscheck/internal/domain/registry"
	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

// Resolver resolves identifier batches against the canonical registry.
type Resolver interface {
	// Resolve produces exactly one Result per query, in query order.
	// Queries that match nothing yield an explicit not-found record.
	Resolve(ctx context.Context, queries []match.Query, mode match.Mode) ([]match.Result, error)

	// LookupCAS returns the registry rows whose CAS column matches the
	// given CAS number under the selected policy. Substring tolerates
	// compound cells holding several CAS numbers.
	LookupCAS(ctx context.Context, cas string, policy match.CASPolicy) (match.Result, error)
}

type resolver struct {
	catalog *registry.Catalog
	logger  logging.Logger
}

// NewResolver builds a Resolver over the given catalog.
func NewResolver(catalog *registry.Catalog, logger logging.Logger) Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &resolver{catalog: catalog, logger: logger.Named("resolver")}
}

// registrySource validates that the catalog carries a registry searchable
// by name and picks the first name-candidate column; later candidates are
// display-only. A registry without a recognizable name column is a schema
// fault that fails the whole batch.
func (r *resolver) registrySource() (*registry.Source, table.Column, error) {
	src := r.catalog.Registry()
	if src == nil || src.Table == nil {
		return nil, table.Column{}, errors.New(errors.ErrCodeSchemaError, "no canonical registry loaded")
	}
	cols := src.NameColumns()
	if len(cols) == 0 {
		return nil, table.Column{}, errors.Newf(errors.ErrCodeSchemaError,
			"registry %q has no name column", src.Name)
	}
	return src, cols[0], nil
}

func (r *resolver) Resolve(ctx context.Context, queries []match.Query, mode match.Mode) ([]match.Result, error) {
	src, col, err := r.registrySource()
	if err != nil {
		return nil, err
	}

	results := make([]match.Result, 0, len(queries))
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "resolution cancelled")
		}
		res := match.Result{Query: q, Source: src.Name, Mode: mode}
		if !q.Empty() {
			res.Hits = scanRows(src, []table.Column{col}, func(cell string) bool {
				return q.NameMatches(cell, mode)
			})
		}
		results = append(results, res)
	}

	r.logger.Debug("resolved identifier batch",
		logging.String("source", src.Name),
		logging.String("mode", mode.String()),
		logging.Int("queries", len(queries)),
		logging.Int("found", countFound(results)),
	)
	return results, nil
}

func (r *resolver) LookupCAS(ctx context.Context, cas string, policy match.CASPolicy) (match.Result, error) {
	src := r.catalog.Registry()
	if src == nil || src.Table == nil {
		return match.Result{}, errors.New(errors.ErrCodeSchemaError, "no canonical registry loaded")
	}
	cols := src.CASColumns()
	if len(cols) == 0 {
		return match.Result{}, errors.Newf(errors.ErrCodeSchemaError,
			"registry %q has no CAS column", src.Name)
	}

	if err := ctx.Err(); err != nil {
		return match.Result{}, errors.Wrap(err, errors.CodeInternal, "lookup cancelled")
	}

	q := match.NewQuery(cas)
	res := match.Result{Query: q, Source: src.Name}
	if !q.Empty() {
		res.Hits = scanRows(src, cols, func(cell string) bool {
			return q.CASMatches(cell, policy)
		})
	}
	return res, nil
}

// scanRows collects every row where any of the given columns satisfies the
// predicate. A row is collected at most once.
func scanRows(src *registry.Source, cols []table.Column, pred func(string) bool) []match.Hit {
	var hits []match.Hit
	t := src.Table
	for i := 0; i < t.Len(); i++ {
		for _, c := range cols {
			if pred(t.Cell(i, c.Index)) {
				hits = append(hits, makeHit(t, i))
				break
			}
		}
	}
	return hits
}

// makeHit copies one body row into a label-keyed map for display.
func makeHit(t *table.NormalizedTable, row int) match.Hit {
	values := make(map[string]string, t.Width())
	for j, label := range t.Header() {
		values[label] = t.Cell(row, j)
	}
	return match.Hit{Row: row, Values: values}
}

func countFound(results []match.Result) int {
	n := 0
	for _, r := range results {
		if r.Found() {
			n++
		}
	}
	return n
}
