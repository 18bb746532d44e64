package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coscheck/coscheck/internal/config"
)

func TestParseQueriesSplitsAndTrims(t *testing.T) {
	qs := parseQueries("7732-18-5, 10043-35-3;\nCAS 131-57-7")
	require.Len(t, qs, 3)
	assert.Equal(t, "7732-18-5", qs[0].String())
	assert.Equal(t, "10043-35-3", qs[1].String())
	assert.Equal(t, "131-57-7", qs[2].String())
}

func TestParseQueriesDropsBlanks(t *testing.T) {
	assert.Empty(t, parseQueries(" , ;\n"))
}

func TestSplitNamesSplitsOnCommasAndNewlines(t *testing.T) {
	qs := splitNames("Aqua,Glycerin\nBoric acid")
	require.Len(t, qs, 3)
	assert.Equal(t, "Aqua", qs[0].String())
	assert.Equal(t, "Boric acid", qs[2].String())
}

func TestRefreshTargetsRegistryFirstURLOnly(t *testing.T) {
	sources := config.SourcesConfig{
		Registry: config.SourceConfig{Name: "COSING", URL: "https://example.test/cosing.xlsx"},
		Annexes: []config.SourceConfig{
			{Name: "Annex II", URL: "https://example.test/a2.xlsx"},
			{Name: "Annex III", Path: "/data/a3.xlsx"},
		},
	}

	targets := refreshTargets(sources)
	require.Len(t, targets, 2)
	assert.Equal(t, "COSING", targets[0].Name)
	assert.Equal(t, "Annex II", targets[1].Name)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"check", "ingredients", "enrich", "refresh", "sources"} {
		assert.Contains(t, names, want)
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("json"))
}
