package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"regdocs/internal/config"
)

// Scraper errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrBodyTooLarge         = errors.New("response body exceeds size limit")
)

const acceptHeader = "text/html,application/xhtml+xml,application/pdf," +
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document,*/*;q=0.8"

// Scraper performs rate-limited, timed HTTP GETs with a browser-like identity.
// It never retries: a failed request is reported to the caller as is.
type Scraper struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBytes  int64
}

// NewScraperWithConfig creates a scraper from the HTTP settings.
func NewScraperWithConfig(cfg *config.HTTPConfig) *Scraper {
	return NewScraperWithClient(&http.Client{Timeout: cfg.GetTimeout()}, cfg)
}

// NewScraperWithClient creates a scraper around an existing client.
func NewScraperWithClient(client *http.Client, cfg *config.HTTPConfig) *Scraper {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Scraper{
		client:    client,
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes(),
	}
}

// FetchWithMetrics returns (body, statusCode, duration, error).
func (s *Scraper) FetchWithMetrics(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, 0, 0, fmt.Errorf("rate limiter: %w", err)
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent to avoid being blocked
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, time.Since(startTime), fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, time.Since(startTime), fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if s.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, s.maxBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, resp.StatusCode, time.Since(startTime), fmt.Errorf("failed to read response body: %w", err)
	}

	if s.maxBytes > 0 && int64(len(body)) > s.maxBytes {
		return nil, resp.StatusCode, time.Since(startTime), fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, s.maxBytes)
	}

	return body, resp.StatusCode, time.Since(startTime), nil
}

// Fetch fetches and returns the body of the given URL.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, _, _, err := s.FetchWithMetrics(ctx, url)

	return body, err
}
