// Package intake runs a requirements-gathering conversation: it gates turns, assembles
// the system instruction, calls the completion service once per turn, and feeds the
// reply back into the conversation state.
package intake

import (
	"context"

	"intakebot/pkg/conversation"
)

// CompletionService produces one assistant reply for a system instruction and the
// full message history. The call blocks until a reply or a failure is available.
type CompletionService interface {
	Complete(ctx context.Context, systemInstruction string, messages []conversation.Message) (string, error)
}

// PromptSource loads the base system instruction. It is called once per session.
type PromptSource interface {
	LoadBaseInstruction() (string, error)
}

// TransportError wraps any failure returned by the CompletionService. The session
// survives it: the turn is consumed and the error is reported in-band.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "completion service failed"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Result is the per-turn envelope returned to the caller.
type Result struct {
	Requirements     map[string]any `json:"requirements"`
	Err              error          `json:"-"`
	Response         string         `json:"response"`
	Turn             int            `json:"turn"`
	Complete         bool           `json:"complete"`
	ApproachingLimit bool           `json:"approaching_limit"`
	AtLimit          bool           `json:"at_limit"`
	Error            bool           `json:"error,omitempty"`
}
