// Package enrichment resolves ingredient identifiers against the external
// chemical database and normalizes the answers into identity records.
package enrichment

import (
	"context"
	"time"

	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/internal/infrastructure/pubchem"
	"github.com/coscheck/coscheck/pkg/cas"
	"github.com/coscheck/coscheck/pkg/errors"
)

// Status classifies the outcome of one external resolution. Callers can tell
// "not in the database" apart from "the service failed" without inspecting
// error strings.
type Status int

const (
	// StatusFound means an identity record was produced, possibly partial.
	StatusFound Status = iota
	// StatusNotFound means the database has no compound for the query.
	StatusNotFound
	// StatusServiceError means the lookup failed for transport or service
	// reasons; the compound may or may not exist.
	StatusServiceError
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	default:
		return "service_error"
	}
}

// Identity is the normalized record for one resolved compound. It is
// ephemeral: valid for the current resolution cycle only, never persisted.
type Identity struct {
	Query            string   `json:"query"`
	CID              int64    `json:"cid"`
	IUPACName        string   `json:"iupac_name,omitempty"`
	MolecularFormula string   `json:"molecular_formula,omitempty"`
	MolecularWeight  float64  `json:"molecular_weight,omitempty"`
	InChIKey         string   `json:"inchi_key,omitempty"`
	CanonicalSMILES  string   `json:"canonical_smiles,omitempty"`
	Synonyms         []string `json:"synonyms,omitempty"`
	CAS              string   `json:"cas,omitempty"`
	ReferenceURL     string   `json:"reference_url"`
	// Partial marks a record where the compound handle resolved but the
	// property fetch failed; only CID and ReferenceURL are reliable.
	Partial bool `json:"partial,omitempty"`
}

// Outcome pairs one query with its typed resolution result. Identity is
// non-nil exactly when Status is StatusFound.
type Outcome struct {
	Query    string    `json:"query"`
	Status   Status    `json:"status"`
	Identity *Identity `json:"identity,omitempty"`
	Reason   string    `json:"reason,omitempty"`
}

// Service performs external identity resolution.
type Service interface {
	// Enrich resolves a single name or CAS number.
	Enrich(ctx context.Context, query string) Outcome

	// EnrichBatch resolves each query in order, producing exactly one
	// Outcome per input and pausing between consecutive lookups to stay
	// inside the public API's rate limits.
	EnrichBatch(ctx context.Context, queries []string) []Outcome
}

type service struct {
	client      pubchem.Client
	batchDelay  time.Duration
	maxSynonyms int
	sleep       func(context.Context, time.Duration)
	logger      logging.Logger
}

// Option tweaks service construction.
type Option func(*service)

// WithBatchDelay overrides the pause between consecutive batch lookups.
func WithBatchDelay(d time.Duration) Option {
	return func(s *service) { s.batchDelay = d }
}

// WithMaxSynonyms overrides the synonym cap per identity.
func WithMaxSynonyms(n int) Option {
	return func(s *service) { s.maxSynonyms = n }
}

// withSleep replaces the delay primitive in tests.
func withSleep(fn func(context.Context, time.Duration)) Option {
	return func(s *service) { s.sleep = fn }
}

// NewService builds an enrichment Service over the given client.
func NewService(client pubchem.Client, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &service{
		client:      client,
		batchDelay:  time.Second,
		maxSynonyms: 10,
		sleep:       contextSleep,
		logger:      logger.Named("enrichment"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func contextSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *service) Enrich(ctx context.Context, query string) Outcome {
	out := Outcome{Query: query}

	cid, err := s.client.CIDByName(ctx, query)
	if err != nil {
		if errors.IsNotFound(err) {
			out.Status = StatusNotFound
		} else {
			out.Status = StatusServiceError
			out.Reason = err.Error()
		}
		return out
	}

	id := &Identity{
		Query:        query,
		CID:          cid,
		ReferenceURL: pubchem.CompoundURL(cid),
	}
	out.Status = StatusFound
	out.Identity = id

	props, err := s.client.GetProperties(ctx, cid)
	if err != nil {
		// The handle resolved, so the compound exists; keep the partial
		// record rather than discarding the CID.
		id.Partial = true
		out.Reason = err.Error()
		s.logger.Warn("property fetch failed, keeping partial identity",
			logging.String("query", query),
			logging.Int64("cid", cid),
			logging.Err(err),
		)
		return out
	}
	id.IUPACName = props.IUPACName
	id.MolecularFormula = props.MolecularFormula
	id.MolecularWeight = props.MolecularWeight
	id.InChIKey = props.InChIKey
	id.CanonicalSMILES = props.CanonicalSMILES

	// Synonyms are best-effort: a failure here degrades the record but
	// never the status.
	syns, err := s.client.Synonyms(ctx, cid, s.maxSynonyms)
	if err != nil {
		s.logger.Debug("synonym fetch failed",
			logging.String("query", query),
			logging.Int64("cid", cid),
			logging.Err(err),
		)
		return out
	}
	id.Synonyms = syns
	if c, ok := cas.ExtractFirst(syns); ok {
		id.CAS = c
	}
	return out
}

func (s *service) EnrichBatch(ctx context.Context, queries []string) []Outcome {
	outcomes := make([]Outcome, 0, len(queries))
	for i, q := range queries {
		if i > 0 && s.batchDelay > 0 {
			s.sleep(ctx, s.batchDelay)
		}
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{
				Query:  q,
				Status: StatusServiceError,
				Reason: err.Error(),
			})
			continue
		}
		outcomes = append(outcomes, s.Enrich(ctx, q))
	}
	return outcomes
}
