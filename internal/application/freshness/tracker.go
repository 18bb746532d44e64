// Package freshness decides whether remote regulatory sources moved since
// the last observed version and signals re-ingestion when they did.
package freshness

import (
	"context"
	"time"

	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/cache"
	"github.com/coscheck/coscheck/internal/infrastructure/excel"
	"github.com/coscheck/coscheck/internal/infrastructure/fetch"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/internal/infrastructure/state"
	"github.com/coscheck/coscheck/pkg/errors"
)

// Change describes one observed version move.
type Change struct {
	Source     string
	OldMarker  string
	NewMarker  string
	ObservedAt time.Time
}

// Notifier fans a Change out to interested consumers.
type Notifier interface {
	SourceChanged(ctx context.Context, ch Change) error
}

// Publisher uploads a changed artifact and returns its storage key.
type Publisher interface {
	PublishArtifact(ctx context.Context, source, marker string, data []byte) (string, error)
}

// Target names one remote source to track.
type Target struct {
	Name string
	URL  string
}

// Report is the per-source outcome of one freshness cycle.
type Report struct {
	Source    string     `json:"source"`
	Previous  string     `json:"previous,omitempty"`
	Marker    string     `json:"marker,omitempty"`
	Kind      MarkerKind `json:"kind,omitempty"`
	Changed   bool       `json:"changed"`
	Published string     `json:"published,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Tracker runs freshness cycles. Publisher, Notifier and cache are optional;
// a nil value disables that side effect.
type Tracker struct {
	fetcher   fetch.Fetcher
	reader    excel.Reader
	store     state.Store
	publisher Publisher
	notifier  Notifier
	tables    cache.TableCache
	now       func() time.Time
	logger    logging.Logger
}

// TrackerOption tweaks construction.
type TrackerOption func(*Tracker)

// WithPublisher enables artifact publication on change.
func WithPublisher(p Publisher) TrackerOption {
	return func(t *Tracker) { t.publisher = p }
}

// WithNotifier enables change events.
func WithNotifier(n Notifier) TrackerOption {
	return func(t *Tracker) { t.notifier = n }
}

// WithTableCache enables cache invalidation on change.
func WithTableCache(c cache.TableCache) TrackerOption {
	return func(t *Tracker) { t.tables = c }
}

func withClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker builds a Tracker.
func NewTracker(fetcher fetch.Fetcher, reader excel.Reader, store state.Store, logger logging.Logger, opts ...TrackerOption) *Tracker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	t := &Tracker{
		fetcher: fetcher,
		reader:  reader,
		store:   store,
		now:     time.Now,
		logger:  logger.Named("freshness"),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Check runs one cycle over the given targets. Per-source failures are soft:
// the source keeps its previous marker and the cycle continues. The state
// mapping is rewritten as a whole, and only when at least one source moved.
func (t *Tracker) Check(ctx context.Context, targets []Target) ([]Report, error) {
	versions, err := t.store.Load(ctx)
	if err != nil {
		t.logger.Warn("version state unavailable, starting from empty", logging.Err(err))
		versions = state.Versions{}
	}
	next := versions.Clone()

	reports := make([]Report, 0, len(targets))
	changed := false
	for _, target := range targets {
		r := t.checkOne(ctx, target, versions[target.Name])
		if r.Changed {
			next[target.Name] = r.Marker
			changed = true
		}
		reports = append(reports, r)
	}

	if changed {
		if err := t.store.Save(ctx, next); err != nil {
			return reports, errors.Wrap(err, errors.ErrCodePersistence, "persist version state")
		}
	}
	return reports, nil
}

func (t *Tracker) checkOne(ctx context.Context, target Target, previous string) Report {
	r := Report{Source: target.Name, Previous: previous}

	artifact, err := t.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		r.Error = err.Error()
		t.logger.Warn("fetch failed, keeping previous marker",
			logging.String("source", target.Name),
			logging.Err(err),
		)
		return r
	}

	// An unreadable workbook still yields a marker via the header or hash
	// rungs, so parse failures are not fatal here.
	raw, err := t.reader.ReadBytes(ctx, target.Name, artifact.Body)
	if err != nil {
		raw = table.RawTable{}
	}

	r.Marker, r.Kind = ExtractMarker(artifact, raw)
	if r.Marker == previous {
		t.logger.Debug("source unchanged",
			logging.String("source", target.Name),
			logging.String("marker", r.Marker),
		)
		return r
	}
	r.Changed = true

	if t.publisher != nil {
		key, err := t.publisher.PublishArtifact(ctx, target.Name, r.Marker, artifact.Body)
		if err != nil {
			r.Error = err.Error()
			t.logger.Warn("artifact publication failed",
				logging.String("source", target.Name),
				logging.Err(err),
			)
		} else {
			r.Published = key
		}
	}
	if t.notifier != nil {
		ch := Change{
			Source:     target.Name,
			OldMarker:  previous,
			NewMarker:  r.Marker,
			ObservedAt: t.now(),
		}
		if err := t.notifier.SourceChanged(ctx, ch); err != nil {
			t.logger.Warn("change notification failed",
				logging.String("source", target.Name),
				logging.Err(err),
			)
		}
	}
	if t.tables != nil {
		if err := t.tables.Invalidate(ctx, target.Name); err != nil {
			t.logger.Warn("cache invalidation failed",
				logging.String("source", target.Name),
				logging.Err(err),
			)
		}
	}

	t.logger.Info("source changed",
		logging.String("source", target.Name),
		logging.String("previous", previous),
		logging.String("marker", r.Marker),
		logging.String("kind", string(r.Kind)),
	)
	return r
}
