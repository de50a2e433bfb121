// Package swudb fetches raw card partitions from the swu-db catalog API.
package swudb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL       = "https://api.swu-db.com"
	defaultTimeout       = 30 * time.Second
	defaultRetryAttempts = 3
	defaultRateLimit     = 100 * time.Millisecond
	maxErrorBody         = 512
)

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration     // Per-request timeout
	RetryAttempts int               // Total attempts per partition
	RateLimit     time.Duration     // Minimum spacing between requests (0 = unlimited)
	Headers       map[string]string // Sent with every request
	HTTPClient    *http.Client      // Overrides the default client (Timeout is then ignored)
	Logger        *slog.Logger

	// Sleep waits between retry attempts. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOptions returns sensible default client options.
func DefaultOptions() Options {
	return Options{
		BaseURL:       defaultBaseURL,
		Timeout:       defaultTimeout,
		RetryAttempts: defaultRetryAttempts,
		RateLimit:     defaultRateLimit,
		Headers: map[string]string{
			"User-Agent": "SWU-Companion/1.0",
		},
	}
}

// Client is a swu-db API client with rate limiting and retries.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	rateLimiter   *rate.Limiter
	headers       map[string]string
	retryAttempts int
	sleep         func(time.Duration)
	logger        *slog.Logger
}

// NewClient creates a new swu-db API client.
func NewClient(options Options) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultTimeout
	}
	if options.RetryAttempts < 1 {
		options.RetryAttempts = defaultRetryAttempts
	}
	if options.Sleep == nil {
		options.Sleep = time.Sleep
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.Timeout}
	}

	limit := rate.Inf
	if options.RateLimit > 0 {
		limit = rate.Every(options.RateLimit)
	}

	return &Client{
		baseURL:       strings.TrimRight(options.BaseURL, "/"),
		httpClient:    httpClient,
		rateLimiter:   rate.NewLimiter(limit, 1),
		headers:       options.Headers,
		retryAttempts: options.RetryAttempts,
		sleep:         options.Sleep,
		logger:        options.Logger,
	}
}

// PartitionURL returns the request URL for a partition code.
func (c *Client) PartitionURL(code string) string {
	return fmt.Sprintf("%s/cards/%s?format=json", c.baseURL, url.PathEscape(code))
}

// FetchPartition retrieves every raw card record of one partition (set).
//
// Transport failures, non-2xx statuses and undecodable bodies are retried.
// After failed attempt i the client sleeps 2^i seconds, except after the
// last attempt. A decodable body without a data array is not retried.
func (c *Client) FetchPartition(ctx context.Context, code string) ([]RawCard, error) {
	requestURL := c.PartitionURL(code)

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		records, err := c.fetchOnce(ctx, code, requestURL)
		if err == nil {
			return records, nil
		}

		var malformed *MalformedResponseError
		if errors.As(err, &malformed) {
			return nil, err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &FetchError{Partition: code, Attempts: attempt + 1, Err: err}
		}

		lastErr = err
		c.logger.Warn("Partition fetch failed",
			"partition", code,
			"attempt", attempt+1,
			"of", c.retryAttempts,
			"error", err)

		if attempt < c.retryAttempts-1 {
			c.sleep(Backoff(attempt))
		}
	}

	return nil, &FetchError{Partition: code, Attempts: c.retryAttempts, Err: lastErr}
}

// Backoff returns the wait after failed attempt i (0-indexed): 2^i seconds.
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// fetchOnce performs a single request and decodes the partition envelope.
func (c *Client) fetchOnce(ctx context.Context, code, requestURL string) ([]RawCard, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{URL: requestURL, StatusCode: resp.StatusCode, Body: snippet}
	}

	var envelope partitionResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if envelope.Data == nil {
		return nil, &MalformedResponseError{Partition: code, Reason: `missing "data" key`}
	}
	if bytes.Equal(bytes.TrimSpace(envelope.Data), []byte("null")) {
		return nil, &MalformedResponseError{Partition: code, Reason: `"data" is null`}
	}

	var records []RawCard
	if err := json.Unmarshal(envelope.Data, &records); err != nil {
		return nil, &MalformedResponseError{Partition: code, Reason: fmt.Sprintf(`"data" is not a card array: %v`, err)}
	}

	c.logger.Debug("Fetched partition", "partition", code, "records", len(records))
	return records, nil
}
