// Package probe issues the outbound test requests for a scan and captures
// their responses. Dispatch is strictly sequential: one in-flight request per
// scan, each awaited before the next, which both bounds target load and
// preserves the short-circuit-after-first-hit semantics the detectors rely
// on. Individual request failures are the caller's to swallow; the
// dispatcher reports them but never retries.
package probe

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/scandeck/scandeck/pkg/defaults"
	"github.com/scandeck/scandeck/pkg/httpx"
	"github.com/scandeck/scandeck/pkg/metrics"
)

// Capture is the recorded outcome of one successful probe request.
type Capture struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// BasicAuth carries credentials attached to every probe request of a scan
// when the caller enables authenticated probing.
type BasicAuth struct {
	Username string
	Password string
}

// Options configures a Dispatcher.
type Options struct {
	// Client defaults to the shared httpx client.
	Client *http.Client

	// Auth, when non-nil, is attached to every request the dispatcher sends.
	Auth *BasicAuth

	// RequestsPerSecond throttles outbound probes. Zero means unlimited.
	// Throttling never reorders requests.
	RequestsPerSecond float64

	Logger *slog.Logger
}

// Dispatcher sends probe requests with the fixed scanner identity header.
type Dispatcher struct {
	client  *http.Client
	auth    *BasicAuth
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a dispatcher.
func New(opts Options) *Dispatcher {
	client := opts.Client
	if client == nil {
		client = httpx.Default()
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		client:  client,
		auth:    opts.Auth,
		limiter: limiter,
		logger:  logger,
	}
}

// Get issues a GET against rawURL and captures the response. The body read
// is bounded. Failures come back as errors for the caller to swallow; a
// failed probe contributes no capture and is never retried.
func (d *Dispatcher) Get(ctx context.Context, rawURL string) (*Capture, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaults.UserAgent())
	if d.auth != nil {
		req.SetBasicAuth(d.auth.Username, d.auth.Password)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		metrics.ProbeFailures.Inc()
		d.logger.Debug("probe request failed", slog.String("url", rawURL), slog.String("error", err.Error()))
		return nil, err
	}
	defer httpx.DrainAndClose(resp.Body)

	body, err := httpx.ReadBodyDefault(resp.Body)
	if err != nil {
		metrics.ProbeFailures.Inc()
		return nil, err
	}

	metrics.ProbesIssued.Inc()
	return &Capture{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(body),
	}, nil
}

// SetParam returns rawURL with the named query parameter set to value,
// leaving every other component untouched. The returned string is the final
// mutated URL recorded for audit regardless of the probe's outcome.
func SetParam(rawURL, param, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(param, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// WithFragment returns rawURL with its fragment replaced. HTTP never
// transmits fragments to the origin server; the fragment probe sends these
// URLs anyway and inspects the server response for client-side hash
// handling.
func WithFragment(rawURL, fragment string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Fragment = fragment
	return u.String(), nil
}
