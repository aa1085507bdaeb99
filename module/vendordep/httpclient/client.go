// Package httpclient is the transport used by the fetcher: GET with
// streaming bodies, bounded retries with exponential backoff and jitter on
// transient failures, and typed errors for everything else. 4xx responses
// are never retried.
package httpclient

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/frctools/vendordep/module/vendordep/types"
)

// Response is the slice of http.Response the fetch pipeline needs: a
// streamable body, the status code, and the declared content length (-1 when
// the server did not declare one).
type Response struct {
	Body          io.ReadCloser
	StatusCode    int
	ContentLength int64
}

type Client struct {
	rc *retryablehttp.Client
}

// Option mutates the client during construction.
type Option func(*Client)

// WithRetryMax overrides the retry budget for transient failures.
func WithRetryMax(n int) Option {
	return func(c *Client) { c.rc.RetryMax = n }
}

// WithHeaderTimeout bounds how long a single attempt may wait for response
// headers. Exceeding it counts as a transient failure and is retried.
func WithHeaderTimeout(d time.Duration) Option {
	return func(c *Client) {
		if t, ok := c.rc.HTTPClient.Transport.(*http.Transport); ok {
			t.ResponseHeaderTimeout = d
		}
	}
}

// NewClient builds the transport with the defaults the fetcher wants:
// 3 retries, 1s-30s backoff window, pooled connections.
func NewClient(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 30 * time.Second
	rc.Backoff = jitterBackoff
	rc.Logger = leveledLogger{log.Logger}
	rc.HTTPClient = &http.Client{Transport: cleanhttp.DefaultPooledTransport()}

	c := &Client{rc: rc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET and returns the streamed response. Transient failures
// (connection errors, timeouts, 5xx) are retried internally; the error
// returned after the budget is exhausted is a FetchError with Transient set.
// Non-2xx statuses surface immediately as terminal FetchErrors.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}

	resp, err := c.rc.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: url, Transient: true, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &types.FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	return &Response{
		Body:          resp.Body,
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
	}, nil
}

// jitterBackoff layers jitter over the default exponential backoff so
// synchronized clients do not stampede a recovering vendor host.
func jitterBackoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	d := retryablehttp.DefaultBackoff(min, max, attemptNum, resp)
	if d <= 0 {
		return d
	}
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}

// leveledLogger adapts zerolog to retryablehttp's logging interface.
type leveledLogger struct {
	l zerolog.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.l.Error().Fields(kv).Msg(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.l.Warn().Fields(kv).Msg(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.l.Debug().Fields(kv).Msg(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.l.Debug().Fields(kv).Msg(msg) }
