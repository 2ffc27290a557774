package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/nluflow/internal/models"
)

const (
	MAX_PAGE_BYTES     = 2 << 20
	PAGE_FETCH_TIMEOUT = 15 * time.Second
	FETCH_USER_AGENT   = "nluflow-fetcher/1.0 (+https://github.com/spacesedan/nluflow)"
)

// PageFetcher downloads the page behind a URL request so it can be analyzed
// locally.
type PageFetcher struct {
	Client *http.Client
}

func NewPageFetcher() *PageFetcher {
	return &PageFetcher{Client: &http.Client{Timeout: PAGE_FETCH_TIMEOUT}}
}

func (f *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("[PageFetcher] failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", FETCH_USER_AGENT)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("[PageFetcher] request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MAX_PAGE_BYTES))
	if err != nil {
		return "", fmt.Errorf("[PageFetcher] failed to read page: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &models.HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	slog.Debug("[PageFetcher] Fetched page",
		slog.String("url", url),
		slog.Int("bytes", len(body)))
	return string(body), nil
}
