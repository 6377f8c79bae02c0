package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// Some job boards refuse requests without a browser-like UA.
	fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	fetchAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	// Upper bound on a fetched response body; pages past this are cut off
	// before text conversion anyway.
	maxFetchBytes = 2 << 20
)

// Fetcher retrieves job pages and converts them to plain text.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// FetchPageText performs a GET against url and returns the page body as
// plain text, capped at maxFetchedChars. The request is bounded by the
// fetcher timeout and the caller's context.
func (f *Fetcher) FetchPageText(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", fetchAccept)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return HTMLToText(string(body), maxFetchedChars), nil
}
