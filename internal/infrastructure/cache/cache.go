// Package cache holds loaded tables keyed by source identity plus version
// marker, with explicit invalidation when the freshness tracker reports a
// change.
package cache

import (
	"context"

	"github.com/coscheck/coscheck/internal/domain/table"
)

// TableCache stores at most one normalized table per source. A Get only hits
// when the stored version marker equals the requested one, so a version bump
// naturally misses even before the old entry is invalidated.
type TableCache interface {
	Get(ctx context.Context, source, version string) (*table.NormalizedTable, bool, error)
	Put(ctx context.Context, source, version string, t *table.NormalizedTable) error
	Invalidate(ctx context.Context, source string) error
}
