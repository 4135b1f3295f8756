// Package infra provides shared infrastructure components used across
// the application: the rate-limited HTTP client, the retry policy, and
// logger construction.
package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// StatusError is returned by HTTPClient.Get for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	Headers   map[string]string // sent with every request
	RateLimit int               // requests per second; <= 0 disables limiting
	Logger    zerolog.Logger
}

// HTTPClient is a rate-limited GET client. Deadlines come from the caller's
// context; the client itself never retries.
type HTTPClient struct {
	rc      *resty.Client
	limiter *rate.Limiter
}

// NewHTTPClient creates a client with the given default headers and rate limit.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	rc := resty.New().
		SetHeaders(opts.Headers).
		SetRetryCount(0).
		SetLogger(restyLogger{opts.Logger})

	c := &HTTPClient{rc: rc}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}
	return c
}

// Get performs a GET request and returns the body of a 2xx response.
// Non-2xx responses return *StatusError.
func (c *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit GET %s: %w", url, err)
		}
	}

	start := time.Now()
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("url", url).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("http get")

	if !resp.IsSuccess() {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }
