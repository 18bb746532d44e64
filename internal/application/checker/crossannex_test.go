package checker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coscheck/coscheck/internal/domain/match"
	"github.com/coscheck/coscheck/internal/domain/registry"
)

func newAnnexCatalog(t *testing.T) *registry.Catalog {
	t.Helper()
	annexII := &registry.Source{
		Name: "annex_ii",
		Kind: registry.KindAnnex,
		Table: newTable(t, []string{"Reference", "Chemical name", "CAS Number"},
			[]string{"1", "Deanol aceglumate", "3342-61-8"},
			[]string{"2", "Spironolactone", "52-01-7"},
		),
	}
	annexIII := &registry.Source{
		Name: "annex_iii",
		Kind: registry.KindAnnex,
		Table: newTable(t, []string{"Reference", "INCI name", "CAS No", "Restrictions"},
			[]string{"1", "2-Acetoxyethyltrimethylammonium", "51-84-3", ""},
			[]string{"2", "Boric acid", "10043-35-3 / 11113-50-1", "max 5%"},
		),
	}
	// No CAS-candidate column at all: skipped by CAS searches.
	annexIV := &registry.Source{
		Name:  "annex_iv",
		Kind:  registry.KindAnnex,
		Table: newTable(t, []string{"Reference", "Colour"}, []string{"1", "CI 10006"}),
	}
	c, err := registry.NewCatalog(nil, []*registry.Source{annexII, annexIII, annexIV})
	require.NoError(t, err)
	return c
}

func TestSearchCASOneResultPerQuery(t *testing.T) {
	s := NewAnnexSearcher(newAnnexCatalog(t), nil)

	qs := queries("51-84-3", "", "unknown")
	results, err := s.SearchCAS(context.Background(), qs, match.PolicySubstring)
	require.NoError(t, err)
	assert.Len(t, results, len(qs))
	for i, res := range results {
		assert.Equal(t, qs[i], res.Query)
	}
}

func TestSearchCASOnlyMatchingSourcesListed(t *testing.T) {
	s := NewAnnexSearcher(newAnnexCatalog(t), nil)

	results, err := s.SearchCAS(context.Background(), queries("51-84-3"), match.PolicySubstring)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.True(t, res.Found())
	// Only annex_iii matched; annex_ii is absent, not present with zero hits.
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "annex_iii", res.Sources[0].Source)
	assert.Equal(t, "CAS No", res.Sources[0].Column)
	require.Len(t, res.Sources[0].Hits, 1)
	assert.Equal(t, "2-Acetoxyethyltrimethylammonium", res.Sources[0].Hits[0].Values["INCI name"])
}

func TestSearchCASAggregatesAcrossSources(t *testing.T) {
	first := &registry.Source{
		Name: "annex_ii",
		Kind: registry.KindAnnex,
		Table: newTable(t, []string{"Chemical name", "CAS Number"},
			[]string{"Ethanol", "64-17-5"},
		),
	}
	second := &registry.Source{
		Name: "annex_iii",
		Kind: registry.KindAnnex,
		Table: newTable(t, []string{"INCI name", "CAS No"},
			[]string{"Alcohol", "64-17-5"},
		),
	}
	c, err := registry.NewCatalog(nil, []*registry.Source{first, second})
	require.NoError(t, err)

	s := NewAnnexSearcher(c, nil)
	results, err := s.SearchCAS(context.Background(), queries("64-17-5"), match.PolicySubstring)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Sources, 2)
	assert.Equal(t, "annex_ii", results[0].Sources[0].Source)
	assert.Equal(t, "annex_iii", results[0].Sources[1].Source)
}

func TestSearchCASShortCircuitsWithinSource(t *testing.T) {
	// Both CAS-candidate columns contain the query; only the first column
	// in header order is reported.
	src := &registry.Source{
		Name: "annex_iii",
		Kind: registry.KindAnnex,
		Table: newTable(t, []string{"CAS Number", "CAS No 2"},
			[]string{"64-17-5", "irrelevant"},
			[]string{"irrelevant", "64-17-5"},
		),
	}
	c, err := registry.NewCatalog(nil, []*registry.Source{src})
	require.NoError(t, err)

	s := NewAnnexSearcher(c, nil)
	results, err := s.SearchCAS(context.Background(), queries("64-17-5"), match.PolicySubstring)
	require.NoError(t, err)
	require.Len(t, results[0].Sources, 1)
	assert.Equal(t, "CAS Number", results[0].Sources[0].Column)
	require.Len(t, results[0].Sources[0].Hits, 1)
	assert.Equal(t, 0, results[0].Sources[0].Hits[0].Row)
}

func TestSearchCASSubstringInCompoundCell(t *testing.T) {
	s := NewAnnexSearcher(newAnnexCatalog(t), nil)

	results, err := s.SearchCAS(context.Background(), queries("11113-50-1"), match.PolicySubstring)
	require.NoError(t, err)
	require.True(t, results[0].Found())
	assert.Equal(t, "annex_iii", results[0].Sources[0].Source)
}

func TestSearchCASExactPolicy(t *testing.T) {
	s := NewAnnexSearcher(newAnnexCatalog(t), nil)

	// The compound cell "10043-35-3 / 11113-50-1" matches under substring
	// but not under exact.
	sub, err := s.SearchCAS(context.Background(), queries("10043-35-3"), match.PolicySubstring)
	require.NoError(t, err)
	assert.True(t, sub[0].Found())

	exact, err := s.SearchCAS(context.Background(), queries("10043-35-3"), match.PolicyExact)
	require.NoError(t, err)
	assert.False(t, exact[0].Found())
}

func TestSearchCASNotFoundAnywhere(t *testing.T) {
	s := NewAnnexSearcher(newAnnexCatalog(t), nil)

	results, err := s.SearchCAS(context.Background(), queries("1234567-89-0"), match.PolicySubstring)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Found())
	assert.Empty(t, results[0].Sources)
}

func TestSearchName(t *testing.T) {
	s := NewAnnexSearcher(newAnnexCatalog(t), nil)

	results, err := s.SearchName(context.Background(), queries("boric"), match.ModeFuzzy)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Found())
	assert.Equal(t, "annex_iii", results[0].Sources[0].Source)
	assert.Equal(t, "INCI name", results[0].Sources[0].Column)
}

func TestSearchNameSkipsSourcesWithoutNameColumn(t *testing.T) {
	src := &registry.Source{
		Name:  "annex_iv",
		Kind:  registry.KindAnnex,
		Table: newTable(t, []string{"Reference", "Colour"}, []string{"1", "CI 10006"}),
	}
	c, err := registry.NewCatalog(nil, []*registry.Source{src})
	require.NoError(t, err)

	s := NewAnnexSearcher(c, nil)
	results, err := s.SearchName(context.Background(), queries("CI 10006"), match.ModeExact)
	require.NoError(t, err)
	assert.False(t, results[0].Found())
}

func TestSearchCASCancelledContext(t *testing.T) {
	s := NewAnnexSearcher(newAnnexCatalog(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SearchCAS(ctx, queries("64-17-5"), match.PolicySubstring)
	assert.Error(t, err)
}
