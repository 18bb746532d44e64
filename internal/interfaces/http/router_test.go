package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coscheck/coscheck/internal/application/checker"
	"github.com/coscheck/coscheck/internal/application/enrichment"
	"github.com/coscheck/coscheck/internal/application/ingest"
	"github.com/coscheck/coscheck/internal/domain/match"
	"github.com/coscheck/coscheck/internal/domain/registry"
	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/prometheus"
	"github.com/coscheck/coscheck/internal/interfaces/http/handlers"
	"github.com/coscheck/coscheck/internal/interfaces/http/middleware"
)

func testCatalog(t *testing.T) *registry.Catalog {
	t.Helper()
	newTable := func(header []string, rows ...[]string) *table.NormalizedTable {
		all := append([][]string{header}, rows...)
		nt, err := table.Normalize(table.NewRawTable(all), 0, -1)
		require.NoError(t, err)
		return nt
	}

	reg := &registry.Source{
		Name: "ingredients",
		Kind: registry.KindRegistry,
		Table: newTable([]string{"INCI name", "CAS No"},
			[]string{"Ethanol", "64-17-5"},
			[]string{"Aqua Extract", "7732-18-5"},
		),
	}
	annex := &registry.Source{
		Name: "annex_ii",
		Kind: registry.KindAnnex,
		Table: newTable([]string{"Chemical name", "CAS Number"},
			[]string{"Spironolactone", "52-01-7"},
		),
	}
	c, err := registry.NewCatalog(reg, []*registry.Source{annex})
	require.NoError(t, err)
	return c
}

type stubEnricher struct{}

func (stubEnricher) Enrich(_ context.Context, q string) enrichment.Outcome {
	return enrichment.Outcome{Query: q, Status: enrichment.StatusNotFound}
}

func (s stubEnricher) EnrichBatch(ctx context.Context, qs []string) []enrichment.Outcome {
	outs := make([]enrichment.Outcome, 0, len(qs))
	for _, q := range qs {
		outs = append(outs, s.Enrich(ctx, q))
	}
	return outs
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	catalog := testCatalog(t)
	resolver := checker.NewResolver(catalog, nil)
	searcher := checker.NewAnnexSearcher(catalog, nil)
	metrics := prometheus.New()

	return NewRouter(RouterConfig{
		CheckHandler:   handlers.NewCheckHandler(resolver, searcher, match.PolicySubstring, metrics),
		EnrichHandler:  handlers.NewEnrichHandler(stubEnricher{}, metrics),
		SourcesHandler: handlers.NewSourcesHandler(catalog, []ingest.SourceStatus{{Name: "ingredients", Rows: 2}}),
		HealthHandler:  handlers.NewHealthHandler(catalog),
		Metrics:        metrics,
	})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCheckCAS(t *testing.T) {
	r := testRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/v1/check/cas", map[string]interface{}{
		"cas": "52-01-7, 9999-99-9",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Policy  string `json:"policy"`
		Results []struct {
			Query   string `json:"query"`
			Sources []struct {
				Source string `json:"source"`
			} `json:"sources"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "substring", resp.Policy)
	require.Len(t, resp.Results, 2)
	require.Len(t, resp.Results[0].Sources, 1)
	assert.Equal(t, "annex_ii", resp.Results[0].Sources[0].Source)
	assert.Empty(t, resp.Results[1].Sources)
}

func TestCheckCASWithRegistryLookup(t *testing.T) {
	r := testRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/v1/check/cas", map[string]interface{}{
		"cas":      "64-17-5",
		"registry": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Names []struct {
			Hits []struct {
				Values map[string]string `json:"values"`
			} `json:"hits"`
		} `json:"names"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Names, 1)
	require.Len(t, resp.Names[0].Hits, 1)
	assert.Equal(t, "Ethanol", resp.Names[0].Hits[0].Values["INCI name"])
}

func TestCheckCASExplicitExactPolicy(t *testing.T) {
	r := testRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/v1/check/cas", map[string]interface{}{
		"cas":    "52-01",
		"policy": "exact",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Policy  string            `json:"policy"`
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "exact", resp.Policy)
}

func TestCheckCASEmptyBody(t *testing.T) {
	r := testRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/v1/check/cas", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckIngredients(t *testing.T) {
	r := testRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/v1/check/ingredients", map[string]interface{}{
		"names": "Aqua; missing",
		"mode":  "fuzzy",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Mode    string `json:"mode"`
		Results []struct {
			Query string `json:"query"`
			Hits  []struct {
				Values map[string]string `json:"values"`
			} `json:"hits"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fuzzy", resp.Mode)
	require.Len(t, resp.Results, 2)
	require.Len(t, resp.Results[0].Hits, 1)
	assert.Equal(t, "Aqua Extract", resp.Results[0].Hits[0].Values["INCI name"])
	assert.Empty(t, resp.Results[1].Hits)
}

func TestEnrich(t *testing.T) {
	r := testRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/v1/enrich", map[string]interface{}{
		"queries": "ethanol\naqua",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Outcomes []struct {
			Query  string `json:"query"`
			Status int    `json:"status"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, "ethanol", resp.Outcomes[0].Query)
}

func TestSources(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sources []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"sources"`
		Load []struct {
			Name string `json:"name"`
			Rows int    `json:"rows"`
		} `json:"load"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "registry", resp.Sources[0].Kind)
	require.Len(t, resp.Load, 1)
	assert.Equal(t, 2, resp.Load[0].Rows)
}

func TestHealthEndpoints(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "test-correlation-id")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "test-correlation-id", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestIDGenerated(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}
