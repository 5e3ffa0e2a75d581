// Package duration provides canonical time constants for the entire codebase.
// Use these instead of ad-hoc time.Duration literals so timeout policy stays
// in one place.
package duration

import "time"

// Outbound probe timeouts.
const (
	// HTTPProbing is for quick single-shot checks (security headers, baselines).
	HTTPProbing = 5 * time.Second

	// HTTPScanning is for detector requests during an active scan.
	HTTPScanning = 15 * time.Second

	// HTTPFuzzing is for payload probe requests, the pipeline default.
	HTTPFuzzing = 30 * time.Second

	// PortProbe bounds a single TCP connect attempt.
	PortProbe = 1 * time.Second

	// DNSLookup bounds a resolver call.
	DNSLookup = 5 * time.Second
)

// API server timeouts.
const (
	ServerRead  = 15 * time.Second
	ServerWrite = 10 * time.Minute // scans are sequential and can run long
	ServerIdle  = 120 * time.Second

	// ShutdownGrace is how long in-flight requests get on SIGTERM.
	ShutdownGrace = 10 * time.Second
)

// Telemetry timeouts.
const (
	OTLPConnect  = 10 * time.Second
	OTLPShutdown = 5 * time.Second
)

// SessionTTL is how long a login session stays valid.
const SessionTTL = 24 * time.Hour
