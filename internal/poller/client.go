package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/jpalmerr/linkmonitor/internal/proxy"
)

const maxResponseBodySize = 1 << 20 // 1MB

// UserAgent is presented on every request to avoid trivial bot blocking.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// connection pooling limits; targets are polled one at a time so these stay small
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 2
	defaultIdleConnTimeout     = 60 * time.Second
)

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the time from sending the request to receiving the
	// response headers.
	Latency time.Duration

	// Error contains any transport error. nil means a response was received,
	// whatever its status code.
	Error error

	// ProxyFailed is set when a proxy is configured and the request failed
	// before a connection through the proxy was established. Failures after
	// the proxy accepted a CONNECT tunnel, such as a bad TLS certificate on
	// the target, belong to the target.
	ProxyFailed bool
}

// Client is an HTTP client wrapper used by [Prober].
//
// Client uses per-request timeouts via context rather than a global timeout,
// so proxied and direct requests can use different limits.
type Client struct {
	httpClient *http.Client
	proxied    bool
}

// NewClient creates a [Client] that routes every request through p, or
// connects directly when p is nil.
func NewClient(p *proxy.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:                  p.ProxyFunc(),
				OnProxyConnectResponse: markTunnel,
				MaxIdleConns:           defaultMaxIdleConns,
				MaxIdleConnsPerHost:    defaultMaxIdleConnsPerHost,
				IdleConnTimeout:        defaultIdleConnTimeout,
			},
		},
		proxied: p != nil,
	}
}

// Proxied reports whether requests go through a proxy.
func (c *Client) Proxied() bool {
	return c.proxied
}

// Fetch performs a GET request and returns a structured [Response].
//
// The timeout is applied via context cancellation. The response body is
// drained up to 1MB so the connection can be reused, then discarded.
//
// Fetch always returns a Response; errors are captured in the Error field
// rather than returned separately.
func (c *Client) Fetch(ctx context.Context, url string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var connected, tunneled atomic.Bool
	ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { connected.Store(true) },
	})
	ctx = context.WithValue(ctx, tunnelKey{}, &tunneled)

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return Response{
			Latency:     latency,
			Error:       fmt.Errorf("request failed: %w", err),
			ProxyFailed: c.proxied && isProxyFailure(err, connected.Load() || tunneled.Load()),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))

	return Response{
		StatusCode: resp.StatusCode,
		Latency:    latency,
	}
}

// tunnelKey carries the *atomic.Bool that [markTunnel] sets for a request.
type tunnelKey struct{}

// markTunnel records that the proxy answered CONNECT with 200. The dial
// context keeps the request context's values, so the flag reaches the
// request that asked for the connection.
func markTunnel(ctx context.Context, _ *url.URL, _ *http.Request, resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	if tunneled, ok := ctx.Value(tunnelKey{}).(*atomic.Bool); ok {
		tunneled.Store(true)
	}
	return nil
}

// isProxyFailure decides whether a transport error through a proxy belongs
// to the proxy. Dialing the proxy fails with a "proxyconnect" op error; any
// other failure before the target was reached (rejected CONNECT, proxy
// timeout, unparseable proxy URL) is also the proxy's. reachedTarget is set
// once a connection was handed out or a CONNECT tunnel was open.
func isProxyFailure(err error, reachedTarget bool) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "proxyconnect" {
		return true
	}
	return !reachedTarget
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
