package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/scandeck/scandeck/pkg/defaults"
	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/probe"
)

// successMarkers are the page fragments treated as evidence of an
// authenticated or privileged view.
var successMarkers = []string{"Welcome", "Dashboard", "Logged in"}

// HasSuccessMarker reports whether body contains any success marker.
func HasSuccessMarker(body string) bool {
	for _, m := range successMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

// AuthBypassDetector flags payload responses that look like a successful
// login. A marker alone is weak signal, so the detector issues a control
// request with the same parameter set to an obviously-invalid value: only
// when the control response lacks every marker does the test response count
// as a bypass.
type AuthBypassDetector struct {
	Dispatcher *probe.Dispatcher
}

// Detect inspects the captured payload response and, on a marker hit,
// confirms against a control request. The control request failing is
// swallowed and yields no finding.
func (d *AuthBypassDetector) Detect(ctx context.Context, targetURL, param, payload string, capture *probe.Capture) *finding.Finding {
	if capture == nil || !HasSuccessMarker(capture.Body) {
		return nil
	}

	controlURL, err := probe.SetParam(targetURL, param, defaults.ControlValue)
	if err != nil {
		return nil
	}
	control, err := d.Dispatcher.Get(ctx, controlURL)
	if err != nil {
		return nil
	}
	if HasSuccessMarker(control.Body) {
		// Marker is page boilerplate, not an injection artifact.
		return nil
	}

	f := finding.New(finding.SQLInjection, param, finding.High,
		fmt.Sprintf("possible injection success / auth bypass: success marker present for payload but absent for control value on parameter %q", param),
		payload)
	return &f
}
