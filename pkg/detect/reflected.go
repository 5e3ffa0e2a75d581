package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/probe"
)

// ReflectionDetector confirms reflected XSS with a two-step check. A verbatim
// payload echo alone is not trusted: the payload text could sit in the page's
// static boilerplate. On an echo, the detector re-issues the request with the
// literal "XSS" marker replaced by a fresh random token and only confirms
// when the tokenized payload also comes back verbatim.
type ReflectionDetector struct {
	Dispatcher *probe.Dispatcher
}

// Detect returns a confirmed high-severity reflected XSS finding, or nil.
// The confirmation request failing is swallowed and yields no finding.
func (d *ReflectionDetector) Detect(ctx context.Context, targetURL, param, payload string, capture *probe.Capture) *finding.Finding {
	if capture == nil || !strings.Contains(capture.Body, payload) {
		return nil
	}

	token := Token()
	tokenized := strings.ReplaceAll(payload, "XSS", token)

	retestURL, err := probe.SetParam(targetURL, param, tokenized)
	if err != nil {
		return nil
	}
	retest, err := d.Dispatcher.Get(ctx, retestURL)
	if err != nil {
		return nil
	}
	if !strings.Contains(retest.Body, tokenized) {
		// The original echo was boilerplate, not reflection.
		return nil
	}

	f := finding.New(finding.ReflectedXSS, param, finding.High,
		fmt.Sprintf("payload reflected verbatim and confirmed with token %s", token), payload)
	return &f
}
