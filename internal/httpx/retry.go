package httpx

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig holds throttling and retry configuration
type RetryConfig struct {
	RequestsPerSecond float64       `json:"requestsPerSecond"`
	Burst             int           `json:"burst"`
	MaxRetries        int           `json:"maxRetries"`
	InitialBackoff    time.Duration `json:"initialBackoff"`
	MaxBackoff        time.Duration `json:"maxBackoff"`
	RequestTimeout    time.Duration `json:"requestTimeout"`
}

// DefaultRetryConfig returns the default client configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		RequestsPerSecond: 5,
		Burst:             10,
		MaxRetries:        2,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		RequestTimeout:    15 * time.Second,
	}
}

// StatusError reports a non-retryable HTTP status
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

// RetryError reports that all retry attempts were exhausted
type RetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *RetryError) Error() string {
	msg := "failed to fetch " + e.URL + " after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *RetryError) Unwrap() error {
	return e.LastError
}

// IsRetryableStatus checks if an HTTP status code is retryable.
// Retryable: 429, 5xx.
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Backoff calculates the exponential backoff delay for a given attempt,
// with 0-25% jitter to avoid thundering herds.
func Backoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialBackoff) * math.Pow(2, float64(attempt))
	delay = math.Min(delay, float64(config.MaxBackoff))
	jitter := rand.Float64() * 0.25 * delay
	return time.Duration(delay + jitter)
}

// RateLimitBackoff calculates the delay after an HTTP 429. A server
// Retry-After header wins; otherwise backoff grows faster (3x) than for
// ordinary failures.
func RateLimitBackoff(attempt int, config RetryConfig, retryAfter string) time.Duration {
	if retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	delay := float64(config.InitialBackoff) * math.Pow(3, float64(attempt))
	delay = math.Min(delay, float64(config.MaxBackoff))
	jitter := rand.Float64() * 0.25 * delay
	return time.Duration(delay + jitter)
}
