// Package defaults provides canonical default values shared across the
// codebase. Reference these constants instead of hardcoding literals so a
// value only ever needs to change in one place.
package defaults

import "fmt"

// Version is the current scandeck version.
const Version = "1.2.0"

// ToolName identifies this service in User-Agent strings and telemetry.
const ToolName = "scandeck"

// UserAgent returns the fixed identity header sent on every outbound probe.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", ToolName, Version)
}

// Content types used by the HTTP API and outbound probes.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// ControlValue is the obviously-invalid parameter value used for control
// requests when confirming auth-bypass signals. It must never match a real
// credential or record.
const ControlValue = "scandeck_invalid_control_0000"

// CommonPorts are the TCP ports checked by the port-probe tool.
var CommonPorts = []int{21, 22, 23, 25, 53, 80, 110, 143, 443, 445, 993, 995, 3306, 3389, 5432, 8080, 8443}
