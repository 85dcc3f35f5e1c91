package parse

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/httpclient"
)

const maxPageBytes = 5 << 20

// Fetcher retrieves raw page content with a fixed identifying User-Agent.
// One GET per call, no retries; transport errors propagate unchanged and
// callers treat any failure as "page unreachable".
type Fetcher struct {
	client    *httpclient.Client
	userAgent string
}

// NewFetcher creates a page fetcher. The client should be built with
// httpclient.NoRetryConfig.
func NewFetcher(client *httpclient.Client, userAgent string) *Fetcher {
	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch performs a single GET of the URL and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := newGetRequest(ctx, pageURL, f.userAgent)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}
	return body, nil
}

// newGetRequest builds a GET request carrying the bot's User-Agent.
func newGetRequest(ctx context.Context, pageURL, userAgent string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}
