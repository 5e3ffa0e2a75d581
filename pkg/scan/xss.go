// Package scan orchestrates the probing pipeline: it turns a target URL and
// caller options into injection points, drives the probe dispatcher across
// the payload catalog, feeds captures to the signal detectors, and aggregates
// deduplicated findings into a scored result.
//
// Probing is strictly sequential per scan. Fatal conditions (malformed URL,
// no SQLi parameters) surface in the result's error field with the scan still
// treated as completed; individual probe failures are swallowed.
package scan

import (
	"context"
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

// XSS scan types. Comprehensive runs every XSS detector.
const (
	XSSReflected     = "reflected"
	XSSStored        = "stored"
	XSSDOM           = "dom"
	XSSComprehensive = "comprehensive"
)

// XSSOptions are the caller-supplied parameters of one XSS scan.
type XSSOptions struct {
	URL string

	// CustomPayloads, when non-empty, replaces the catalog for this scan
	// (newline-delimited, blanks dropped).
	CustomPayloads string

	// ScanType selects the active detectors; defaults to comprehensive.
	ScanType string

	// Depth selects the catalog subset; defaults to normal.
	Depth payloads.XSSDepth
}

// XSSResult is the aggregate output of one XSS scan.
type XSSResult struct {
	Vulnerabilities []finding.Finding `json:"vulnerabilities"`
	ScannedElements []string          `json:"scannedElements"`
	SecurityScore   *string           `json:"securityScore"`
	Recommendations []string          `json:"recommendations"`
	Error           *string           `json:"error"`
}

// XSSScanner runs XSS scans over a probe dispatcher.
type XSSScanner struct {
	Dispatcher *probe.Dispatcher
	Logger     *slog.Logger
}

// Run executes the scan. It always returns a result; fatal conditions are
// embedded in the result's error field rather than returned.
func (s *XSSScanner) Run(ctx context.Context, opts XSSOptions) *XSSResult {
	start := time.Now()
	scanType := opts.ScanType
	if scanType == "" {
		scanType = XSSComprehensive
	}
	logger := s.logger()

	ctx, span := otel.Tracer("scandeck/scan").Start(ctx, "scan.xss")
	span.SetAttributes(
		attribute.String("scan.target", opts.URL),
		attribute.String("scan.type", scanType),
	)
	defer span.End()

	result := &XSSResult{
		Vulnerabilities: []finding.Finding{},
		Recommendations: finding.Recommendations(),
	}

	points, err := target.XSSPoints(opts.URL)
	if err != nil {
		msg := err.Error()
		result.Error = &msg
		return result
	}
	result.ScannedElements = points

	list := payloads.ParseCustom(opts.CustomPayloads)
	if len(list) == 0 {
		list = payloads.ForXSS(opts.Depth)
	}

	set := finding.NewSet()

	runReflected := scanType == XSSReflected || scanType == XSSComprehensive
	runDOM := scanType == XSSDOM || scanType == XSSComprehensive
	runStored := scanType == XSSStored || scanType == XSSComprehensive

	if runReflected {
		s.probeReflected(ctx, opts.URL, points, list, set)
	}

	// DOM and stored analysis work on the baseline page; fetch it once.
	if runDOM || runStored {
		baseline, err := s.Dispatcher.Get(ctx, opts.URL)
		if err != nil {
			logger.Debug("baseline fetch failed", slog.String("url", opts.URL), slog.String("error", err.Error()))
			baseline = nil
		}
		if runDOM {
			for _, f := range (detect.DOMSinkDetector{}).Detect(baseline) {
				addFinding(set, f)
			}
			s.probeFragments(ctx, opts.URL, list, set)
		}
		if runStored {
			for _, f := range (detect.StoredFormDetector{}).Detect(baseline) {
				addFinding(set, f)
			}
		}
	}

	result.Vulnerabilities = set.Findings()
	score := finding.Grade(result.Vulnerabilities)
	result.SecurityScore = &score

	span.SetAttributes(attribute.Int("scan.findings", set.Len()))
	metrics.ScansTotal.WithLabelValues("xss-" + scanType).Inc()
	metrics.ScanDuration.WithLabelValues("xss-" + scanType).Observe(time.Since(start).Seconds())
	logger.Info("xss scan completed",
		slog.String("target", opts.URL),
		slog.String("type", scanType),
		slog.Int("findings", set.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return result
}

// probeReflected drives the parameter × payload loop for reflected XSS.
// Payloads for a parameter stop at the first confirmed reflection. The
// synthetic page-content point has no parameter to mutate, so it is skipped
// here and covered by the page-level detectors instead.
func (s *XSSScanner) probeReflected(ctx context.Context, rawURL string, points, list []string, set *finding.Set) {
	detector := &detect.ReflectionDetector{Dispatcher: s.Dispatcher}
	for _, param := range points {
		if param == target.PageContent {
			continue
		}
		for _, payload := range list {
			if ctx.Err() != nil {
				return
			}
			mutated, err := probe.SetParam(rawURL, param, payload)
			if err != nil {
				continue
			}
			cap, err := s.Dispatcher.Get(ctx, mutated)
			if err != nil {
				continue // swallowed, next payload
			}
			if f := detector.Detect(ctx, rawURL, param, payload, cap); f != nil {
				addFinding(set, *f)
				break // first confirmed hit ends this parameter
			}
		}
	}
}

// probeFragments issues one GET per payload with the payload in the URL
// fragment and stops for the whole scan at the first confirmed finding.
func (s *XSSScanner) probeFragments(ctx context.Context, rawURL string, list []string, set *finding.Set) {
	for _, payload := range list {
		if ctx.Err() != nil {
			return
		}
		fragURL, err := probe.WithFragment(rawURL, payload)
		if err != nil {
			continue
		}
		cap, err := s.Dispatcher.Get(ctx, fragURL)
		if err != nil {
			continue
		}
		if f := (detect.FragmentDetector{}).Detect(cap, payload); f != nil {
			addFinding(set, *f)
			return
		}
	}
}

func (s *XSSScanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func addFinding(set *finding.Set, f finding.Finding) {
	if set.Add(f) {
		metrics.FindingsTotal.WithLabelValues(string(f.Type), string(f.Severity)).Inc()
	}
}
