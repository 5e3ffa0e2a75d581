package scan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/scandeck/scandeck/pkg/detect"
	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/metrics"
	"github.com/scandeck/scandeck/pkg/payloads"
	"github.com/scandeck/scandeck/pkg/probe"
	"github.com/scandeck/scandeck/pkg/target"
)

// SQLiOptions are the caller-supplied parameters of one SQL injection scan.
type SQLiOptions struct {
	URL string

	// ParamNames is an optional comma-delimited list of extra parameter
	// names to test beyond the URL's query keys.
	ParamNames string

	// Level selects the catalog subset; defaults to basic.
	Level payloads.SQLiLevel

	// IncludeAuth attaches basic-auth credentials to every probe request.
	IncludeAuth  bool
	AuthUsername string
	AuthPassword string
}

// SQLiResult is the aggregate output of one SQL injection scan.
type SQLiResult struct {
	Vulnerabilities []finding.Finding `json:"vulnerabilities"`
	TestedURLs      []string          `json:"testedUrls"`
	TestedParams    []string          `json:"testedParams"`
	Error           *string           `json:"error"`
}

// SQLiScanner runs SQL injection scans. Unlike the XSS scanner it builds its
// own dispatcher per run because basic-auth credentials are scan-scoped.
type SQLiScanner struct {
	// NewDispatcher builds the dispatcher for one run; tests inject a
	// factory bound to an httptest client. Nil means probe defaults.
	NewDispatcher func(auth *probe.BasicAuth) *probe.Dispatcher

	Logger *slog.Logger
}

// Run executes the scan. Fatal conditions (malformed URL, zero testable
// parameters) land in the result's error field with no probing performed.
func (s *SQLiScanner) Run(ctx context.Context, opts SQLiOptions) *SQLiResult {
	start := time.Now()
	logger := s.logger()

	ctx, span := otel.Tracer("scandeck/scan").Start(ctx, "scan.sqli")
	span.SetAttributes(
		attribute.String("scan.target", opts.URL),
		attribute.String("scan.level", string(opts.Level)),
	)
	defer span.End()

	result := &SQLiResult{
		Vulnerabilities: []finding.Finding{},
		TestedURLs:      []string{},
		TestedParams:    []string{},
	}

	params, err := target.SQLiPoints(opts.URL, payloads.ParseParamNames(opts.ParamNames))
	if err != nil {
		msg := err.Error()
		if errors.Is(err, target.ErrNoSQLiParams) {
			msg = target.ErrNoSQLiParams.Error()
		}
		result.Error = &msg
		return result
	}
	result.TestedParams = params

	var auth *probe.BasicAuth
	if opts.IncludeAuth && opts.AuthUsername != "" {
		auth = &probe.BasicAuth{Username: opts.AuthUsername, Password: opts.AuthPassword}
	}
	dispatcher := s.dispatcher(auth)

	list := payloads.ForSQLi(opts.Level)
	set := finding.NewSet()
	errDetector := detect.SQLErrorDetector{}
	bypassDetector := &detect.AuthBypassDetector{Dispatcher: dispatcher}

	// Full cross-product of parameters × payloads, strictly sequential.
	for _, param := range params {
		for _, payload := range list {
			if ctx.Err() != nil {
				break
			}
			mutated, err := probe.SetParam(opts.URL, param, payload)
			if err != nil {
				continue
			}
			// The mutated URL is recorded for audit regardless of outcome.
			result.TestedURLs = append(result.TestedURLs, mutated)

			cap, err := dispatcher.Get(ctx, mutated)
			if err != nil {
				continue // swallowed, no retry
			}

			if set.Has(param, payload) {
				continue
			}
			if f := errDetector.Detect(cap, param, payload); f != nil {
				addFinding(set, *f)
				continue
			}
			if f := bypassDetector.Detect(ctx, opts.URL, param, payload, cap); f != nil {
				addFinding(set, *f)
			}
		}
	}

	result.Vulnerabilities = set.Findings()

	span.SetAttributes(attribute.Int("scan.findings", set.Len()))
	metrics.ScansTotal.WithLabelValues("sql-injection").Inc()
	metrics.ScanDuration.WithLabelValues("sql-injection").Observe(time.Since(start).Seconds())
	logger.Info("sql injection scan completed",
		slog.String("target", opts.URL),
		slog.Int("params", len(params)),
		slog.Int("probes", len(result.TestedURLs)),
		slog.Int("findings", set.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return result
}

func (s *SQLiScanner) dispatcher(auth *probe.BasicAuth) *probe.Dispatcher {
	if s.NewDispatcher != nil {
		return s.NewDispatcher(auth)
	}
	return probe.New(probe.Options{Auth: auth, Logger: s.Logger})
}

func (s *SQLiScanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
