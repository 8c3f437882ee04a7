package contract

import (
	"github.com/google/uuid"
)

// ErrorEnvelope is the stable failure shape (spec §6 "On failure the JSON
// output is {\"error\": \"<message>\"}").
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// NewErrorEnvelope wraps err's message for the CLI's JSON output.
func NewErrorEnvelope(err error) ErrorEnvelope {
	return ErrorEnvelope{Error: err.Error()}
}

// NewRequestID mints a correlation id for a single CLI invocation, in the
// style of untoldecay/BeadsLog's internal/rpc/protocol.go Request.RequestID
// field — stamped onto structured log lines, not onto the JSON result
// itself, since §6 specifies the result is the bare object or null.
func NewRequestID() string {
	return uuid.NewString()
}

// DefaultActor returns a fallback actor string for unattended CLI
// invocations: "overseer-" plus eight characters of a fresh random UUID.
// Each call returns a new value; nothing is persisted, so the value is not
// stable across calls or installs.
func DefaultActor() string {
	return "overseer-" + uuid.NewString()[:8]
}
