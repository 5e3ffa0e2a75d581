// Package detect implements the signal detectors of the probing pipeline.
// Each detector is an independent heuristic that inspects a captured
// response (and, where relevant, issues a paired control or confirmation
// request) for evidence of one vulnerability class. Detectors tolerate and
// swallow individual request failures; a failed follow-up simply produces no
// finding.
package detect

import (
	"crypto/rand"
	"encoding/hex"
)

// Token returns a fresh random hex token used to confirm payload reflection.
// Substituting the token for the literal "XSS" marker distinguishes genuine
// reflection from payload text that happens to sit in page boilerplate.
func Token() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the platform entropy source is broken;
		// a fixed fallback still keeps the detector functional.
		return "0f0f0f0f"
	}
	return hex.EncodeToString(b[:])
}
