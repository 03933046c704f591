// Package feed retrieves registrar catalog feeds from the web or disk.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"schedconv/internal/config"
	"schedconv/internal/logger"
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrFeedTooLarge         = errors.New("feed exceeds size limit")
)

// DefaultMaxBytes caps a single feed download. A full semester is a few MB.
const DefaultMaxBytes = 64 << 20

const userAgent = "schedconv/1.0 (+registrar feed converter)"

// Feed is one retrieved registrar export.
type Feed struct {
	LastModified time.Time
	Source       string
	Body         []byte
	NotModified  bool
}

// Fetcher downloads feeds with config-driven retry logic.
type Fetcher struct {
	client   *retryablehttp.Client
	log      *logger.Logger
	maxBytes int64
}

// NewFetcher creates a fetcher whose retries and backoff follow policy.
// 429 and 5xx responses and connection errors are retried.
func NewFetcher(policy config.RetryPolicy, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = policy.MaxAttempts - 1
	client.RetryWaitMin = policy.GetRetryDelay(2)
	client.RetryWaitMax = time.Duration(policy.MaxDelayMs) * time.Millisecond
	client.Backoff = func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		// attemptNum counts retries from zero; the policy counts attempts from one.
		return policy.GetRetryDelay(attemptNum + 2)
	}
	client.HTTPClient.Timeout = policy.GetTimeout()
	client.Logger = log

	return &Fetcher{
		client:   client,
		log:      log,
		maxBytes: DefaultMaxBytes,
	}
}

// WithMaxBytes overrides the download size limit.
func (f *Fetcher) WithMaxBytes(n int64) *Fetcher {
	f.maxBytes = n

	return f
}

// Fetch retrieves the feed described by src. When since is non-zero a feed
// not modified after since is reported with NotModified and no body.
func (f *Fetcher) Fetch(ctx context.Context, src config.SourceConfig, since time.Time) (*Feed, error) {
	if src.IsLocalFile() {
		return f.readLocal(src.File, since)
	}

	return f.download(ctx, src.URL, since)
}

func (f *Fetcher) download(ctx context.Context, url string, since time.Time) (*Feed, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

	if !since.IsZero() {
		req.Header.Set("If-Modified-Since", since.UTC().Format(http.TimeFormat))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.log.Warn("failed to close response body", "url", url, "error", closeErr)
		}
	}()

	feed := &Feed{Source: url}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if parsed, parseErr := http.ParseTime(lm); parseErr == nil {
			feed.LastModified = parsed
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		feed.NotModified = true

		return feed, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// Some servers ignore If-Modified-Since; compare Last-Modified ourselves.
	if !since.IsZero() && !feed.LastModified.IsZero() && !feed.LastModified.After(since) {
		feed.NotModified = true

		return feed, nil
	}

	body, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	feed.Body = body

	return feed, nil
}

func (f *Fetcher) readLocal(path string, since time.Time) (*Feed, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}

	feed := &Feed{Source: path, LastModified: info.ModTime()}

	if !since.IsZero() && !info.ModTime().After(since) {
		feed.NotModified = true

		return feed, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file %s: %w", path, err)
	}
	defer file.Close()

	body, err := f.readLimited(file)
	if err != nil {
		return nil, err
	}

	feed.Body = body

	return feed, nil
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFeedTooLarge, f.maxBytes)
	}

	return body, nil
}
