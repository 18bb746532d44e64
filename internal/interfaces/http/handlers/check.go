package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coscheck/coscheck/internal/application/checker"
	"github.com/coscheck/coscheck/internal/domain/match"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/prometheus"
	"github.com/coscheck/coscheck/pkg/cas"
)

// CheckHandler serves identifier resolution and cross-annex search.
type CheckHandler struct {
	resolver      checker.Resolver
	searcher      checker.AnnexSearcher
	defaultPolicy match.CASPolicy
	metrics       *prometheus.Metrics
}

// NewCheckHandler builds a CheckHandler.
func NewCheckHandler(resolver checker.Resolver, searcher checker.AnnexSearcher, defaultPolicy match.CASPolicy, metrics *prometheus.Metrics) *CheckHandler {
	return &CheckHandler{
		resolver:      resolver,
		searcher:      searcher,
		defaultPolicy: defaultPolicy,
		metrics:       metrics,
	}
}

type checkCASRequest struct {
	// CAS carries one or more CAS numbers, separated by newlines, commas
	// or semicolons.
	CAS string `json:"cas" binding:"required"`
	// Policy selects "substring" or "exact"; empty uses the configured
	// default.
	Policy string `json:"policy"`
	// Registry additionally resolves each CAS against the canonical
	// registry to recover the ingredient name.
	Registry bool `json:"registry"`
}

type checkCASResponse struct {
	Policy  string                   `json:"policy"`
	Results []match.CrossAnnexResult `json:"results"`
	Names   []match.Result           `json:"names,omitempty"`
}

// CheckCAS resolves a CAS batch across the annex tables.
func (h *CheckHandler) CheckCAS(c *gin.Context) {
	var req checkCASRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must carry a non-empty \"cas\" field")
		return
	}

	policy := h.defaultPolicy
	if req.Policy != "" {
		policy = match.ParseCASPolicy(req.Policy)
	}

	queries := toQueries(cas.SplitList(req.CAS))
	if len(queries) == 0 {
		badRequest(c, "no CAS numbers in input")
		return
	}

	results, err := h.searcher.SearchCAS(c.Request.Context(), queries, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	h.countLookups("cas", policy.String(), len(results), countAnnexHits(results))

	resp := checkCASResponse{Policy: policy.String(), Results: results}
	if req.Registry {
		for _, q := range queries {
			r, err := h.resolver.LookupCAS(c.Request.Context(), q.String(), policy)
			if err != nil {
				respondError(c, err)
				return
			}
			resp.Names = append(resp.Names, r)
		}
	}
	c.JSON(http.StatusOK, resp)
}

type checkIngredientsRequest struct {
	// Names carries one or more ingredient names, separated by newlines,
	// commas or semicolons.
	Names string `json:"names" binding:"required"`
	// Mode selects "exact" or "fuzzy" registry matching.
	Mode string `json:"mode"`
	// Annexes additionally searches the annex name columns.
	Annexes bool `json:"annexes"`
}

type checkIngredientsResponse struct {
	Mode    string                   `json:"mode"`
	Results []match.Result           `json:"results"`
	Annexes []match.CrossAnnexResult `json:"annexes,omitempty"`
}

// CheckIngredients resolves a name batch against the canonical registry.
func (h *CheckHandler) CheckIngredients(c *gin.Context) {
	var req checkIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must carry a non-empty \"names\" field")
		return
	}

	mode := match.ParseMode(req.Mode)
	queries := toQueries(cas.SplitList(req.Names))
	if len(queries) == 0 {
		badRequest(c, "no names in input")
		return
	}

	results, err := h.resolver.Resolve(c.Request.Context(), queries, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	h.countLookups("name", mode.String(), len(results), countResolverHits(results))

	resp := checkIngredientsResponse{Mode: mode.String(), Results: results}
	if req.Annexes {
		annexHits, err := h.searcher.SearchName(c.Request.Context(), queries, match.ModeFuzzy)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Annexes = annexHits
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckHandler) countLookups(kind, mode string, total, hits int) {
	if h.metrics == nil {
		return
	}
	h.metrics.LookupsTotal.WithLabelValues(kind, mode).Add(float64(total))
	h.metrics.LookupHitsTotal.WithLabelValues(kind).Add(float64(hits))
}

func toQueries(parts []string) []match.Query {
	var qs []match.Query
	for _, p := range parts {
		q := match.NewQuery(p)
		if !q.Empty() {
			qs = append(qs, q)
		}
	}
	return qs
}

func countResolverHits(results []match.Result) int {
	n := 0
	for _, r := range results {
		if r.Found() {
			n++
		}
	}
	return n
}

func countAnnexHits(results []match.CrossAnnexResult) int {
	n := 0
	for _, r := range results {
		if r.Found() {
			n++
		}
	}
	return n
}
