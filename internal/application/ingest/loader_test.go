package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/cache"
	"github.com/coscheck/coscheck/internal/infrastructure/fetch"
	"github.com/coscheck/coscheck/internal/infrastructure/state"
	"github.com/coscheck/coscheck/pkg/errors"
)

type fakeFetcher struct {
	bodies map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Artifact, error) {
	if b, ok := f.bodies[url]; ok {
		return &fetch.Artifact{URL: url, Body: b}, nil
	}
	return nil, errors.New(errors.ErrCodeSourceFetch, "unreachable "+url)
}

type fakeReader struct {
	byName map[string][][]string
	byPath map[string][][]string
}

func (r *fakeReader) ReadBytes(_ context.Context, name string, _ []byte) (table.RawTable, error) {
	if rows, ok := r.byName[name]; ok {
		return table.NewRawTable(rows), nil
	}
	return table.RawTable{}, errors.New(errors.ErrCodeSourceUnreadable, "unreadable "+name)
}

func (r *fakeReader) ReadFile(_ context.Context, path string) (table.RawTable, error) {
	if rows, ok := r.byPath[path]; ok {
		return table.NewRawTable(rows), nil
	}
	return table.RawTable{}, errors.New(errors.ErrCodeSourceUnreadable, "unreadable "+path)
}

type staticStore struct{ v state.Versions }

func (s *staticStore) Load(context.Context) (state.Versions, error) { return s.v.Clone(), nil }
func (s *staticStore) Save(context.Context, state.Versions) error   { return nil }

func sourcesCfg() config.SourcesConfig {
	return config.SourcesConfig{
		Registry: config.SourceConfig{Name: "ingredients", URL: "http://src/registry.xlsx", HeaderRow: 0},
		Annexes: []config.SourceConfig{
			{Name: "annex_ii", URL: "http://src/annex_ii.xlsx", HeaderRow: 1},
		},
	}
}

func TestLoadBuildsCatalog(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"http://src/registry.xlsx": []byte("r"),
		"http://src/annex_ii.xlsx": []byte("a"),
	}}
	reader := &fakeReader{byName: map[string][][]string{
		"ingredients": {
			{"INCI name", "CAS No"},
			{"Ethanol", "64-17-5"},
		},
		"annex_ii": {
			{"Substance Name", "CAS Number"},
			{"Unnamed: 0", "CAS Number"},
			{"Spironolactone", "52-01-7"},
		},
	}}

	l := NewLoader(reader, fetcher, nil, nil, nil)
	catalog, statuses, err := l.Load(context.Background(), sourcesCfg())
	require.NoError(t, err)

	require.NotNil(t, catalog.Registry())
	assert.Equal(t, 1, catalog.Registry().Table.Len())
	require.Len(t, catalog.Annexes(), 1)
	// The placeholder header cell was renamed from the fallback row.
	assert.Equal(t, []string{"Substance Name", "CAS Number"}, catalog.Annexes()[0].Table.Header())

	require.Len(t, statuses, 2)
	assert.Empty(t, statuses[0].Error)
	assert.Equal(t, 1, statuses[1].Rows)
}

func TestLoadPrefersLocalPath(t *testing.T) {
	reader := &fakeReader{byPath: map[string][][]string{
		"/data/registry.xlsx": {{"INCI name"}, {"Aqua"}},
	}}

	cfg := config.SourcesConfig{
		Registry: config.SourceConfig{Name: "ingredients", Path: "/data/registry.xlsx", HeaderRow: 0},
	}
	l := NewLoader(reader, &fakeFetcher{}, nil, nil, nil)
	catalog, statuses, err := l.Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.Registry().Table.Len())
	assert.Empty(t, statuses[0].Error)
}

func TestLoadUnreadableSourceIsSoft(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"http://src/registry.xlsx": []byte("r"),
		"http://src/annex_ii.xlsx": []byte("a"),
	}}
	reader := &fakeReader{byName: map[string][][]string{
		"ingredients": {{"INCI name"}, {"Aqua"}},
		// annex_ii intentionally missing: parse fails.
	}}

	l := NewLoader(reader, fetcher, nil, nil, nil)
	catalog, statuses, err := l.Load(context.Background(), sourcesCfg())
	require.NoError(t, err)

	require.Len(t, catalog.Annexes(), 1)
	assert.Nil(t, catalog.Annexes()[0].Table)
	assert.NotEmpty(t, statuses[1].Error)
	// The broken annex has no searchable columns and is skipped by searches.
	assert.Empty(t, catalog.Annexes()[0].CASColumns())
}

func TestLoadFetchFailureIsSoft(t *testing.T) {
	l := NewLoader(&fakeReader{}, &fakeFetcher{}, nil, nil, nil)
	catalog, statuses, err := l.Load(context.Background(), sourcesCfg())
	require.NoError(t, err)
	require.NotNil(t, catalog)
	for _, st := range statuses {
		assert.NotEmpty(t, st.Error)
	}
}

func TestLoadUsesCache(t *testing.T) {
	tables := cache.NewMemoryCache()
	nt, err := table.Normalize(table.NewRawTable([][]string{
		{"INCI name", "CAS No"},
		{"Ethanol", "64-17-5"},
	}), 0, -1)
	require.NoError(t, err)
	require.NoError(t, tables.Put(context.Background(), "ingredients", "15/03/2024", nt))

	store := &staticStore{v: state.Versions{"ingredients": "15/03/2024"}}
	cfg := config.SourcesConfig{
		Registry: config.SourceConfig{Name: "ingredients", URL: "http://src/registry.xlsx"},
	}

	// Neither the fetcher nor the reader knows this source; only the cache
	// can satisfy the load.
	l := NewLoader(&fakeReader{}, &fakeFetcher{}, tables, store, nil)
	catalog, statuses, err := l.Load(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, statuses[0].Cached)
	assert.Equal(t, 1, catalog.Registry().Table.Len())
}

func TestLoadStaleCacheIsMiss(t *testing.T) {
	tables := cache.NewMemoryCache()
	nt, err := table.Normalize(table.NewRawTable([][]string{{"INCI name"}, {"Aqua"}}), 0, -1)
	require.NoError(t, err)
	require.NoError(t, tables.Put(context.Background(), "ingredients", "12/01/2024", nt))

	store := &staticStore{v: state.Versions{"ingredients": "15/03/2024"}}
	fetcher := &fakeFetcher{bodies: map[string][]byte{"http://src/registry.xlsx": []byte("r")}}
	reader := &fakeReader{byName: map[string][][]string{
		"ingredients": {{"INCI name"}, {"Aqua"}, {"Ethanol"}},
	}}

	cfg := config.SourcesConfig{
		Registry: config.SourceConfig{Name: "ingredients", URL: "http://src/registry.xlsx"},
	}
	l := NewLoader(reader, fetcher, tables, store, nil)
	catalog, statuses, err := l.Load(context.Background(), cfg)
	require.NoError(t, err)

	assert.False(t, statuses[0].Cached)
	assert.Equal(t, 2, catalog.Registry().Table.Len())

	// The fresh parse was cached under the new marker.
	_, ok, err := tables.Get(context.Background(), "ingredients", "15/03/2024")
	require.NoError(t, err)
	assert.True(t, ok)
}
