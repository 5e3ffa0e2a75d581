package detect

import (
	"strings"

	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/probe"
)

// FragmentLocation identifies fragment-probe findings in scan results.
const FragmentLocation = "URL fragment"

// FragmentDetector inspects the server response to a fragment-mutated
// request for textual evidence that client-side code reads the fragment.
//
// HTTP never transmits the fragment to the origin server, so this detector
// can only ever match static script text referencing location.hash, never
// the injected payload itself.
type FragmentDetector struct{}

// Detect returns a medium-severity DOM XSS finding when the response body
// references the location hash, or nil.
func (FragmentDetector) Detect(capture *probe.Capture, payload string) *finding.Finding {
	if capture == nil {
		return nil
	}
	if !strings.Contains(capture.Body, "location.hash") &&
		!strings.Contains(capture.Body, "window.location.hash") {
		return nil
	}
	f := finding.New(finding.DOMXSS, FragmentLocation, finding.Medium,
		"page script references location.hash; fragment content may reach a DOM sink", payload)
	return &f
}
