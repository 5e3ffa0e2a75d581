// Package httpx provides the shared outbound HTTP client used by every
// probe and tool in the service. Pooled connections matter here: a single
// scan issues one request at a time but can issue hundreds against the same
// host, so connection reuse dominates total latency.
package httpx

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/scandeck/scandeck/pkg/duration"
)

// Config holds outbound client options.
type Config struct {
	// Timeout is the total request timeout (default: duration.HTTPFuzzing).
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification. Scan targets
	// frequently run self-signed staging certs, so this defaults to true.
	InsecureSkipVerify bool

	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string

	// MaxIdleConns caps idle connections across all hosts (default: 100).
	MaxIdleConns int

	// MaxConnsPerHost caps connections per host (default: 10).
	MaxConnsPerHost int

	// FollowRedirects controls redirect handling. Detectors need to see the
	// raw redirect response, so the default is false.
	FollowRedirects bool
}

// DefaultConfig returns the settings used by the probing pipeline.
func DefaultConfig() Config {
	return Config{
		Timeout:            duration.HTTPFuzzing,
		InsecureSkipVerify: true,
		MaxIdleConns:       100,
		MaxConnsPerHost:    10,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns the shared, pre-configured client. It is safe for
// concurrent use across scans.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// New creates a client with the given configuration. Prefer Default unless
// the call site needs non-default settings.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.HTTPFuzzing
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 10
	}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext:         dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	if cfg.Proxy != "" {
		if proxyURL, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		// Malformed proxy URLs are ignored; probing continues direct.
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// WithTimeout returns DefaultConfig with only the timeout changed.
func WithTimeout(timeout time.Duration) Config {
	cfg := DefaultConfig()
	cfg.Timeout = timeout
	return cfg
}
