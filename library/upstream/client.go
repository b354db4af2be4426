// Package upstream issues outbound requests to third-party HTTP APIs.
package upstream

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	appLog "github.com/Laisky/wordjobs/library/log"
)

// logBodyLimit caps the number of response bytes logged for debugging.
const logBodyLimit = 4096

// Result is the raw outcome of one upstream call.
type Result struct {
	Body       []byte
	StatusCode int
}

// Fetcher performs a single GET against an upstream.
type Fetcher interface {
	Get(ctx context.Context, target string, header http.Header) (*Result, error)
}

// Option customises a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying http client, primarily for testing.
func WithHTTPClient(cli *http.Client) Option {
	return func(c *Client) {
		if cli != nil {
			c.httpClient = cli
		}
	}
}

// WithTimeout bounds every round trip. Zero or negative disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger overrides the fallback logger used when the context carries none.
func WithLogger(logger logSDK.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client sends bodyless GET requests and hands back body and status verbatim.
// Non-2xx statuses are not errors at this layer.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     logSDK.Logger
}

// NewClient builds a Client. Without WithHTTPClient it creates one via go-utils.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		logger: appLog.Logger.Named("upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		var err error
		if c.timeout > 0 {
			c.httpClient, err = gutils.NewHTTPClient(gutils.WithHTTPClientTimeout(c.timeout))
		} else {
			c.httpClient, err = gutils.NewHTTPClient()
		}
		if err != nil {
			return nil, errors.Wrap(err, "new http client")
		}
		if c.timeout <= 0 {
			c.httpClient.Timeout = 0
		}
	}

	return c, nil
}

// Get sends one GET to target with the given headers and reads the whole body.
//
// A "Host" entry in header overrides the request host instead of being sent
// as a regular header.
func (c *Client) Get(ctx context.Context, target string, header http.Header) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request to `%s`", target)
	}
	for key, values := range header {
		if strings.EqualFold(key, "Host") {
			if len(values) > 0 && values[0] != "" {
				req.Host = values[0]
			}
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	logger := c.logger
	logger.Debug("outgoing http request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("host", req.Host),
	)

	startAt := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "send request to `%s`", req.URL.Redacted())
	}
	defer resp.Body.Close() // nolint: errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	truncatedBody, truncated := truncateForLog(body, logBodyLimit)
	logger.Debug("incoming http response",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncatedBody),
		zap.Bool("body_truncated", truncated),
		zap.Duration("cost", time.Since(startAt)),
	)

	return &Result{
		Body:       body,
		StatusCode: resp.StatusCode,
	}, nil
}

func truncateForLog(body []byte, limit int) (string, bool) {
	if len(body) <= limit {
		return string(body), false
	}
	return string(body[:limit]), true
}
