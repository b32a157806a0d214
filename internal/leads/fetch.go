package leads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	maxAttempts  = 3
	maxFeedBytes = 5 << 20
)

type fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

func newFetcher(timeout time.Duration, logger *zap.Logger) *fetcher {
	return &fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: "JobTracker-Importer/1.0",
		logger:    logger,
	}
}

// fetch downloads the feed body, retrying transport errors and 5xx/429
// responses with a linear backoff.
func (f *fetcher) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			f.logger.Debug("retrying feed request",
				zap.String("url", feedURL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retry, err := f.once(ctx, feedURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("feed request failed after retries: %w", lastErr)
}

func (f *fetcher) once(ctx context.Context, feedURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("get feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read feed body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		f.logger.Warn("feed server error",
			zap.String("url", feedURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, true, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
