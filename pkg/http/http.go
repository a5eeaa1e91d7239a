package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/NamanBalaji/modsync/internal/logger"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultIdleTimeout    = 90 * time.Second
	defaultHeaderTimeout  = 30 * time.Second
	keepAlivePeriod       = 30 * time.Second
	maxIdleConns          = 100
	tlsHandshakeTimeout   = 10 * time.Second
	expectContinueTimeout = 1 * time.Second
	maxConnsPerHost       = 16

	DefaultUserAgent = "modsync/1.0"
)

type Client struct {
	*http.Client

	userAgent string
}

type ClientOption func(*Client, *http.Transport)

// WithUserAgent overrides the User-Agent sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client, _ *http.Transport) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithResponseHeaderTimeout bounds the wait for response headers. The body
// itself is never subject to a deadline, large files may stream for a long time.
func WithResponseHeaderTimeout(d time.Duration) ClientOption {
	return func(_ *Client, t *http.Transport) {
		if d > 0 {
			t.ResponseHeaderTimeout = d
		}
	}
}

// WithTransport replaces the underlying RoundTripper, mostly for tests.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client, _ *http.Transport) {
		c.Client.Transport = rt
	}
}

// NewClient creates a new HTTP client with custom transport settings.
func NewClient(opts ...ClientOption) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultConnectTimeout,
			KeepAlive: keepAlivePeriod,
		}).DialContext,
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       defaultIdleTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
		ResponseHeaderTimeout: defaultHeaderTimeout,
		DisableCompression:    true,
		MaxConnsPerHost:       maxConnsPerHost,
	}

	c := &Client{
		Client:    &http.Client{Transport: transport},
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c, transport)
	}

	return c
}

// Get performs a GET request and returns the response with its body still
// open. The caller must close the body. Error statuses are classified and
// returned as errors.
func (c *Client) Get(ctx context.Context, urlStr string) (*http.Response, error) {
	req, err := generateRequest(ctx, urlStr, http.MethodGet, nil, c.userAgent)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Sending GET request to %s", urlStr)

	resp, err := c.Do(req)
	if err != nil {
		logger.Errorf("GET request failed for %s: %v", urlStr, err)
		return nil, ClassifyError(err)
	}

	logger.Debugf("GET response for %s: status=%d, content-length=%d", urlStr, resp.StatusCode, resp.ContentLength)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("Failed to close response body for %s: %v", urlStr, err)
		}

		logger.Errorf("GET request returned error status %d for %s", resp.StatusCode, urlStr)

		return nil, &StatusError{Code: resp.StatusCode, Err: ClassifyHTTPError(resp.StatusCode)}
	}

	return resp, nil
}

// generateRequest creates a new HTTP request with the specified method and URL.
func generateRequest(ctx context.Context, urlStr, method string, headers map[string]string, userAgent string) (*http.Request, error) {
	logger.Debugf("Creating %s request for URL: %s", method, urlStr)

	req, err := http.NewRequestWithContext(ctx, method, urlStr, http.NoBody)
	if err != nil {
		logger.Errorf("Failed to create %s request for %s: %v", method, urlStr, err)
		return nil, ErrRequestCreation
	}

	req.Header.Set("User-Agent", userAgent)

	for key, value := range headers {
		req.Header.Set(key, value)
		logger.Debugf("Set custom header: %s", key)
	}

	return req, nil
}
