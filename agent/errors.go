package agent

import (
	"errors"
	"fmt"
)

// Sentinel errors for agent construction and the run loop.
var (
	// ErrInvalidConfiguration is returned by New when a required
	// configuration field is missing or out of range.
	ErrInvalidConfiguration = errors.New("invalid agent configuration")

	// ErrEmptyResponse is returned when the model replies with neither
	// text content nor tool calls, which violates the chat protocol.
	ErrEmptyResponse = errors.New("model returned no content or tool calls")

	// ErrNoToolsConfigured is returned when the model requests tool calls
	// but the agent has no tool registry attached.
	ErrNoToolsConfigured = errors.New("model requested tool calls but no tools are configured")

	// ErrMaxIterations is returned when the loop exhausts its iteration
	// budget without the model producing a final response.
	ErrMaxIterations = errors.New("max iterations reached")
)

// UpstreamError reports a transport or API failure from the chat collaborator.
// The loop aborts immediately on upstream failures and never retries them;
// retry policy belongs to the transport implementation.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream chat API failure: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
