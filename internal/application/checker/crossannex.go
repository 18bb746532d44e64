package checker

import (
	"context"

	"github.com/coscheck/coscheck/internal/domain/match"
	"github.com/coscheck/coscheck/internal/domain/registry"
	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

// AnnexSearcher resolves CAS-number batches across the ordered annex
// sources of the catalog.
type AnnexSearcher interface {
	// SearchCAS produces exactly one CrossAnnexResult per query, in query
	// order. Within one source the search stops at the first CAS-candidate
	// column that matches; across sources every annex is visited, so a CAS
	// listed in several annexes reports all of them.
	SearchCAS(ctx context.Context, queries []match.Query, policy match.CASPolicy) ([]match.CrossAnnexResult, error)

	// SearchName resolves ingredient names across every annex source that
	// carries a name column, using the given resolver mode per cell.
	SearchName(ctx context.Context, queries []match.Query, mode match.Mode) ([]match.CrossAnnexResult, error)
}

type annexSearcher struct {
	catalog *registry.Catalog
	logger  logging.Logger
}

// NewAnnexSearcher builds an AnnexSearcher over the given catalog.
func NewAnnexSearcher(catalog *registry.Catalog, logger logging.Logger) AnnexSearcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &annexSearcher{catalog: catalog, logger: logger.Named("annex-search")}
}

func (s *annexSearcher) SearchCAS(ctx context.Context, queries []match.Query, policy match.CASPolicy) ([]match.CrossAnnexResult, error) {
	results := make([]match.CrossAnnexResult, 0, len(queries))
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "annex search cancelled")
		}
		res := match.CrossAnnexResult{Query: q}
		if !q.Empty() {
			for _, src := range s.catalog.Annexes() {
				if sh, ok := searchSource(src, src.CASColumns(), func(cell string) bool {
					return q.CASMatches(cell, policy)
				}); ok {
					res.Sources = append(res.Sources, sh)
				}
			}
		}
		results = append(results, res)
	}

	s.logger.Debug("searched annexes by CAS",
		logging.String("policy", policy.String()),
		logging.Int("queries", len(queries)),
		logging.Int("found", countCrossFound(results)),
	)
	return results, nil
}

func (s *annexSearcher) SearchName(ctx context.Context, queries []match.Query, mode match.Mode) ([]match.CrossAnnexResult, error) {
	results := make([]match.CrossAnnexResult, 0, len(queries))
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "annex search cancelled")
		}
		res := match.CrossAnnexResult{Query: q}
		if !q.Empty() {
			for _, src := range s.catalog.Annexes() {
				if sh, ok := searchSource(src, src.NameColumns(), func(cell string) bool {
					return q.NameMatches(cell, mode)
				}); ok {
					res.Sources = append(res.Sources, sh)
				}
			}
		}
		results = append(results, res)
	}

	s.logger.Debug("searched annexes by name",
		logging.String("mode", mode.String()),
		logging.Int("queries", len(queries)),
		logging.Int("found", countCrossFound(results)),
	)
	return results, nil
}

// searchSource tries each candidate column in header order and returns the
// hits of the first column that matches anything. Sources with no candidate
// columns are silently skipped: they are not searchable for this role.
func searchSource(src *registry.Source, cols []table.Column, pred func(string) bool) (match.SourceHits, bool) {
	for _, col := range cols {
		var hits []match.Hit
		t := src.Table
		for i := 0; i < t.Len(); i++ {
			if pred(t.Cell(i, col.Index)) {
				hits = append(hits, makeHit(t, i))
			}
		}
		if len(hits) > 0 {
			return match.SourceHits{Source: src.Name, Column: col.Label, Hits: hits}, true
		}
	}
	return match.SourceHits{}, false
}

func countCrossFound(results []match.CrossAnnexResult) int {
	n := 0
	for _, r := range results {
		if r.Found() {
			n++
		}
	}
	return n
}
