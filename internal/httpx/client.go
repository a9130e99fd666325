package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "PriceScanner-Aggregator/1.0"

// Client is an HTTP client with request throttling and retry logic.
// All external calls (vendor search backend, enrichment, exchange-rate
// source) go through it.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     RetryConfig
}

// NewClient creates a new throttled HTTP client
func NewClient(config RetryConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		config:  config,
	}
}

// NewClientDefault creates a new HTTP client with default settings
func NewClientDefault() *Client {
	return NewClient(DefaultRetryConfig())
}

// Get performs a GET request with throttling and retry logic
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// GetJSON performs a GET request and decodes the 2xx response body into v.
// Non-2xx responses surface as *StatusError after retries are exhausted.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// Do performs an HTTP request with throttling and retry logic.
// Retryable failures (network errors, 429, 5xx) are re-attempted with
// exponential backoff up to the configured maximum.
func (c *Client) Do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.config.MaxRetries {
				if err := sleep(ctx, Backoff(attempt, c.config)); err != nil {
					return nil, err
				}
				continue
			}
			break
		}

		lastStatus = resp.StatusCode

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		resp.Body.Close()

		if !IsRetryableStatus(resp.StatusCode) {
			return nil, &StatusError{URL: url, Status: resp.StatusCode}
		}

		if attempt < c.config.MaxRetries {
			delay := Backoff(attempt, c.config)
			if resp.StatusCode == http.StatusTooManyRequests {
				delay = RateLimitBackoff(attempt, c.config, resp.Header.Get("Retry-After"))
			}
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	return nil, &RetryError{
		URL:        url,
		Attempts:   c.config.MaxRetries + 1,
		LastStatus: lastStatus,
		LastError:  lastErr,
	}
}

// sleep blocks for d or until the context is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
