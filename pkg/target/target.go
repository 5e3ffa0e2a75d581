// Package target computes the injection points for a scan: the set of
// request parameters (and synthetic page locations) treated as untrusted
// input by the probing pipeline.
package target

import (
	"errors"
	"fmt"
	"net/url"
)

// PageContent is the synthetic injection point used for XSS scans when the
// target URL carries no query parameters. It stands for whole-page analysis
// (DOM sinks, forms) rather than a mutable parameter.
const PageContent = "page-content"

// ErrNoSQLiParams is the fatal condition for SQL injection scans of a URL
// with no testable parameters. The message text is surfaced verbatim in the
// scan result.
var ErrNoSQLiParams = errors.New("No parameters found to test for SQL injection")

// Parse validates that rawURL is an absolute URL and returns it parsed.
// Failure here is fatal for the whole scan.
func Parse(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q is not absolute", rawURL)
	}
	return u, nil
}

// QueryParams returns the de-duplicated query-string parameter names of u,
// merged with any caller-supplied extra names. Order follows first
// appearance; callers must not rely on it.
func QueryParams(u *url.URL, extra []string) []string {
	seen := make(map[string]bool)
	var params []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			params = append(params, name)
		}
	}
	for name := range u.Query() {
		add(name)
	}
	for _, name := range extra {
		add(name)
	}
	return params
}

// XSSPoints returns the injection points for an XSS scan. A URL without
// parameters falls back to the single synthetic PageContent point.
func XSSPoints(rawURL string) ([]string, error) {
	u, err := Parse(rawURL)
	if err != nil {
		return nil, err
	}
	params := QueryParams(u, nil)
	if len(params) == 0 {
		return []string{PageContent}, nil
	}
	return params, nil
}

// SQLiPoints returns the injection points for a SQL injection scan: query
// keys plus caller-supplied names. An empty set is fatal (ErrNoSQLiParams);
// unlike XSS there is no synthetic fallback because every SQLi probe mutates
// a concrete parameter.
func SQLiPoints(rawURL string, extra []string) ([]string, error) {
	u, err := Parse(rawURL)
	if err != nil {
		return nil, err
	}
	params := QueryParams(u, extra)
	if len(params) == 0 {
		return nil, ErrNoSQLiParams
	}
	return params, nil
}
