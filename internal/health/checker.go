// Package health implements the application health contract check.
//
// The production image serves GET /health returning HTTP 200 with the
// literal body "healthy\n". Both the status code AND the exact body are
// part of the contract: a reverse proxy returning a styled 200 error page
// must not pass.
package health

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// expectedBody is the exact response body of a healthy endpoint.
var expectedBody = []byte("healthy\n")

// maxBodySize bounds how much of a response body is read. A healthy body
// is 8 bytes; anything near the limit is by definition unhealthy.
const maxBodySize = 4096

// Checker polls an HTTP health endpoint until it reports healthy or a
// deadline expires.
type Checker struct {
	// URL is the full health endpoint URL,
	// e.g. "http://localhost:3000/health".
	URL string

	// Timeout is the overall deadline for Wait.
	Timeout time.Duration

	// Interval is the delay between poll attempts in Wait.
	Interval time.Duration

	// HTTPClient performs the requests. Defaults to a client with a
	// per-request timeout of Interval, so one hung request never eats
	// the whole deadline.
	HTTPClient *http.Client
}

// NewChecker creates a Checker with the given endpoint and timing.
func NewChecker(url string, timeout, interval time.Duration) *Checker {
	return &Checker{
		URL:      url,
		Timeout:  timeout,
		Interval: interval,
		HTTPClient: &http.Client{
			Timeout: interval,
		},
	}
}

// Check performs a single probe. It returns nil only when the endpoint
// answers HTTP 200 with the exact body "healthy\n".
func (c *Checker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("reading health response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	if !bytes.Equal(body, expectedBody) {
		return fmt.Errorf("health endpoint returned unexpected body %q", string(body))
	}
	return nil
}

// Wait polls Check on the configured interval until it succeeds or the
// timeout elapses. The first probe fires immediately; a freshly started
// nginx is usually ready before the first interval ticks over.
//
// Returns a CLIError with ExitHealthCheckFailed carrying the last probe
// error when the deadline expires.
func (c *Checker) Wait(ctx context.Context) error {
	deadline := time.Now().Add(c.Timeout)

	var lastErr error
	for {
		if err := c.Check(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if time.Now().After(deadline) {
			break
		}

		select {
		case <-ctx.Done():
			return model.WrapCLIError(
				model.ExitHealthCheckFailed,
				"health check canceled",
				ctx.Err(),
			)
		case <-time.After(c.Interval):
		}
	}

	return model.WrapCLIError(
		model.ExitHealthCheckFailed,
		fmt.Sprintf("health check did not pass within %s", c.Timeout),
		lastErr,
	)
}
