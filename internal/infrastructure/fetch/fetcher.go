// Package fetch downloads remote source artifacts.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

// Artifact is one fetched payload plus the transport metadata the freshness
// tracker needs.
type Artifact struct {
	URL          string
	Body         []byte
	LastModified string
	FetchedAt    time.Time
}

// Fetcher retrieves remote artifacts over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Artifact, error)
}

type httpFetcher struct {
	hc     *http.Client
	logger logging.Logger
}

// NewFetcher builds a Fetcher with the given timeout. A zero timeout falls
// back to 60 seconds; annex workbooks run to several megabytes.
func NewFetcher(timeout time.Duration, logger logging.Logger) Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &httpFetcher{
		hc:     &http.Client{Timeout: timeout},
		logger: logger.Named("fetch"),
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (*Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceFetch, "build request for "+url)
	}

	start := time.Now()
	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceFetch, "fetch "+url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodeSourceFetch, "fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceFetch, "read body of "+url)
	}

	f.logger.Debug("fetched artifact",
		logging.String("url", url),
		logging.Int("bytes", len(body)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return &Artifact{
		URL:          url,
		Body:         body,
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    time.Now(),
	}, nil
}
