package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coscheck/coscheck/pkg/errors"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Wed, 21 Aug 2024 07:28:00 GMT")
		w.Write([]byte("workbook bytes"))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(5*time.Second, nil)
	a, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("workbook bytes"), a.Body)
	assert.Equal(t, "Wed, 21 Aug 2024 07:28:00 GMT", a.LastModified)
	assert.Equal(t, srv.URL, a.URL)
	assert.False(t, a.FetchedAt.IsZero())
}

func TestFetchNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(5*time.Second, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSourceFetch))
}

func TestFetchConnectionRefused(t *testing.T) {
	f := NewFetcher(time.Second, nil)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/source.xlsx")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSourceFetch))
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(5*time.Second, nil)
	_, err := f.Fetch(ctx, srv.URL)
	assert.Error(t, err)
}
