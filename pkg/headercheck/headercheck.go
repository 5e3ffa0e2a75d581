// Package headercheck inspects a target's HTTP response headers for missing
// hardening headers and server-information leaks.
package headercheck

import (
	"context"
	"fmt"
	"net/http"

	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/probe"
	"github.com/scandeck/scandeck/pkg/target"
)

// recommendedHeaders are checked for presence; each carries the severity a
// miss is reported at.
var recommendedHeaders = []struct {
	Name     string
	Severity finding.Severity
}{
	{"Content-Security-Policy", finding.Medium},
	{"Strict-Transport-Security", finding.Medium},
	{"X-Frame-Options", finding.Medium},
	{"X-Content-Type-Options", finding.Low},
	{"Referrer-Policy", finding.Low},
	{"Permissions-Policy", finding.Low},
}

// infoLeakHeaders reveal server software when present.
var infoLeakHeaders = []string{
	"Server",
	"X-Powered-By",
	"X-AspNet-Version",
	"X-Runtime",
}

// Result is the security-headers report for one target.
type Result struct {
	Findings       []finding.Finding `json:"findings"`
	PresentHeaders map[string]string `json:"presentHeaders"`
	LeakedHeaders  map[string]string `json:"leakedHeaders,omitempty"`
	Grade          string            `json:"grade"`
	Error          *string           `json:"error,omitempty"`
}

// Checker fetches a target once and grades its response headers.
type Checker struct {
	Dispatcher *probe.Dispatcher
}

// Run fetches rawURL and reports header findings. A malformed URL or failed
// fetch is recorded in Result.Error rather than aborting the caller.
func (c *Checker) Run(ctx context.Context, rawURL string) *Result {
	res := &Result{
		Findings:       []finding.Finding{},
		PresentHeaders: map[string]string{},
	}
	if _, err := target.Parse(rawURL); err != nil {
		msg := err.Error()
		res.Error = &msg
		return res
	}
	cap, err := c.Dispatcher.Get(ctx, rawURL)
	if err != nil {
		msg := fmt.Sprintf("failed to fetch target: %v", err)
		res.Error = &msg
		return res
	}
	res.Findings = inspect(cap.Header, res)
	res.Grade = finding.Grade(res.Findings)
	return res
}

func inspect(h http.Header, res *Result) []finding.Finding {
	var findings []finding.Finding
	for _, rec := range recommendedHeaders {
		if v := h.Get(rec.Name); v != "" {
			res.PresentHeaders[rec.Name] = v
			continue
		}
		detail := fmt.Sprintf("response is missing the %s header", rec.Name)
		findings = append(findings, finding.New(finding.MissingHeader, rec.Name, rec.Severity, detail, ""))
	}
	for _, name := range infoLeakHeaders {
		if v := h.Get(name); v != "" {
			if res.LeakedHeaders == nil {
				res.LeakedHeaders = map[string]string{}
			}
			res.LeakedHeaders[name] = v
		}
	}
	return findings
}
