// Package httpclient fetches remote documents over HTTP with size limits and retries.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultTimeout is used when a zero timeout is given
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps the size of a response body
	MaxResponseSize = 100 * 1024 * 1024

	// UserAgent is sent with every request
	UserAgent = "crate-sync/1.0"
)

// Client fetches the body of a remote URL
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Option configures a client
type Option func(*defaultClient)

// WithRetries sets how many times a failed request is retried. Zero disables retries.
func WithRetries(retries int) Option {
	return func(c *defaultClient) {
		if retries >= 0 {
			c.retries = retries
		}
	}
}

// WithBackOff replaces the exponential backoff used between retries
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *defaultClient) {
		c.newBackOff = newBackOff
	}
}

type defaultClient struct {
	httpClient *http.Client
	retries    int
	newBackOff func() backoff.BackOff
}

// NewDefaultClient creates a client with the given timeout
func NewDefaultClient(timeout time.Duration, opts ...Option) Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &defaultClient{
		httpClient: &http.Client{Timeout: timeout},
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request and returns the response body. Network errors,
// 429 and 5xx responses are retried; any other status fails immediately.
func (c *defaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		data, err := c.get(ctx, url)
		if err == nil {
			return data, nil
		}
		if !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		if attempt <= c.retries {
			slog.Warn("Retrying request", "url", url, "attempt", attempt, "error", err)
		}
		return nil, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.retries+1)),
	)
}

func (c *defaultClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &requestError{err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, url, http.StatusText(resp.StatusCode))
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, &requestError{err: sizeError(resp.ContentLength)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, &requestError{err: sizeError(int64(len(data)))}
	}

	return data, nil
}

func sizeError(size int64) error {
	return fmt.Errorf("response size %d bytes exceeds maximum allowed size of %.2f MB",
		size, float64(MaxResponseSize)/(1024*1024))
}

// requestError marks failures that will not go away on retry
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}

	return true
}
