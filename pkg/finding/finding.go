// Package finding defines the vulnerability finding model shared by all
// detectors: typed findings with severity, location, and remediation
// guidance, a de-duplicating set, and the coarse letter-grade score derived
// from a finding set.
package finding

// Type tags the vulnerability class of a finding.
type Type string

const (
	ReflectedXSS       Type = "reflected-xss"
	DOMXSS             Type = "dom-xss"
	PotentialStoredXSS Type = "potential-stored-xss"
	SQLInjection       Type = "sql-injection"
	MissingHeader      Type = "missing-security-header"
)

// Severity is the ordered severity level of a finding.
type Severity string

const (
	High   Severity = "high"
	Medium Severity = "medium"
	Low    Severity = "low"
)

// Rank returns a numeric rank for comparison: high=3, medium=2, low=1.
func (s Severity) Rank() int {
	switch s {
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	}
	return 0
}

// Finding is one reported vulnerability instance.
type Finding struct {
	Type     Type     `json:"type"`
	Location string   `json:"location"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail,omitempty"`

	// Payload is the triggering payload, nil for structural detections
	// (DOM sink scanning, stored-input surfaces) that are not payload-driven.
	Payload *string `json:"payload,omitempty"`

	Description string `json:"description"`
	Remediation string `json:"remediation"`
}

// descriptions and remediations are fixed per-type lookup tables; every
// finding of a type carries the same text.
var descriptions = map[Type]string{
	ReflectedXSS:       "User input is reflected into the response without adequate encoding, allowing script execution in the victim's browser.",
	DOMXSS:             "Client-side code passes user-controllable data into a DOM sink that can execute or render it.",
	PotentialStoredXSS: "The page accepts free-text input that may be stored and rendered to other users without sanitization.",
	SQLInjection:       "User input reaches a database query without parameterization, exposing data to extraction or manipulation.",
	MissingHeader:      "A recommended HTTP security header is absent from the response.",
}

var remediations = map[Type]string{
	ReflectedXSS:       "Encode output for its HTML context, validate input server-side, and deploy a restrictive Content-Security-Policy.",
	DOMXSS:             "Avoid dangerous sinks (innerHTML, document.write, eval); read location data through safe APIs and sanitize before rendering.",
	PotentialStoredXSS: "Sanitize stored input on write and encode on render; prefer an allowlist HTML sanitizer for rich text.",
	SQLInjection:       "Use parameterized queries or prepared statements everywhere; never concatenate user input into SQL.",
	MissingHeader:      "Add the missing header at the web server or application layer and verify it on every response.",
}

// New builds a finding of the given type with its fixed description and
// remediation attached. payload may be empty for structural detections.
func New(t Type, location string, severity Severity, detail, payload string) Finding {
	f := Finding{
		Type:        t,
		Location:    location,
		Severity:    severity,
		Detail:      detail,
		Description: descriptions[t],
		Remediation: remediations[t],
	}
	if payload != "" {
		p := payload
		f.Payload = &p
	}
	return f
}

// Set collects findings, de-duplicating on the (location, payload) pair.
// Two nil payloads compare equal, so structural detections dedupe on
// location alone.
type Set struct {
	findings []Finding
	seen     map[[2]string]bool
}

// NewSet returns an empty finding set.
func NewSet() *Set {
	return &Set{seen: make(map[[2]string]bool)}
}

func key(f Finding) [2]string {
	payload := ""
	if f.Payload != nil {
		payload = *f.Payload
	}
	return [2]string{f.Location, payload}
}

// Add appends f unless a finding with the same (location, payload) pair is
// already present. It reports whether f was added.
func (s *Set) Add(f Finding) bool {
	k := key(f)
	if s.seen[k] {
		return false
	}
	s.seen[k] = true
	s.findings = append(s.findings, f)
	return true
}

// Has reports whether a finding with this location and payload is already
// recorded. Detectors use it to skip redundant probe work.
func (s *Set) Has(location, payload string) bool {
	return s.seen[[2]string{location, payload}]
}

// Findings returns the collected findings in insertion order.
func (s *Set) Findings() []Finding {
	return s.findings
}

// Len returns the number of distinct findings.
func (s *Set) Len() int {
	return len(s.findings)
}

// Grade derives the coarse security score from a finding list. The grading
// counts by severity bucket only and is order-independent:
// no findings A, any high F, more than two medium D, one or two medium C,
// otherwise B.
func Grade(findings []Finding) string {
	if len(findings) == 0 {
		return "A"
	}
	var high, medium int
	for _, f := range findings {
		switch f.Severity {
		case High:
			high++
		case Medium:
			medium++
		}
	}
	switch {
	case high > 0:
		return "F"
	case medium > 2:
		return "D"
	case medium > 0:
		return "C"
	default:
		return "B"
	}
}

// Recommendations is the fixed general-hardening list attached to every XSS
// scan result regardless of findings.
func Recommendations() []string {
	return []string{
		"Implement a Content-Security-Policy header to restrict script sources",
		"Encode all user-supplied output for its rendering context",
		"Validate and sanitize user input on the server side",
		"Set HttpOnly and Secure flags on session cookies",
		"Keep frameworks and template libraries patched",
	}
}
