// Package conversation tracks the state of a single intake conversation: the ordered
// message log, the turn counter, and the requirements document once the model emits it.
package conversation

import (
	"intakebot/pkg/logx"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role/content pair. Order in the log is conversation order.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reference turn policy.
const (
	DefaultMaxTurns    = 30
	DefaultWarningTurn = 25
)

// TurnLimits holds the turn ceiling and the turn at which wrap-up begins.
type TurnLimits struct {
	MaxTurns    int
	WarningTurn int
}

// DefaultTurnLimits returns the reference 30/25 policy.
func DefaultTurnLimits() TurnLimits {
	return TurnLimits{MaxTurns: DefaultMaxTurns, WarningTurn: DefaultWarningTurn}
}

// TurnInfo describes where the conversation stands relative to its limits.
type TurnInfo struct {
	CurrentTurn      int  `json:"current_turn"`
	MaxTurns         int  `json:"max_turns"`
	WarningTurn      int  `json:"warning_turn"`
	ApproachingLimit bool `json:"approaching_limit"`
	AtLimit          bool `json:"at_limit"`
}

// State is the mutable conversation state. It is not safe for concurrent use; a
// session drives it from a single request/reply loop.
type State struct {
	messages     []Message
	requirements map[string]any
	initiating   InitiatingContext
	limits       TurnLimits
	logger       *logx.Logger
	turnCount    int
	isComplete   bool
}

// New creates an empty conversation. initiating may be nil.
func New(limits TurnLimits, initiating InitiatingContext) *State {
	return &State{
		messages:   make([]Message, 0),
		initiating: initiating,
		limits:     limits,
		logger:     logx.NewLogger("conversation"),
	}
}

// AppendUserMessage records a user message and consumes one turn.
func (s *State) AppendUserMessage(content string) {
	s.messages = append(s.messages, Message{Role: RoleUser, Content: content})
	s.turnCount++
}

// AppendAssistantMessage records an assistant reply and checks it for the terminal
// requirements payload.
func (s *State) AppendAssistantMessage(content string) {
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: content})
	s.checkCompletion(content)
}

// MessagesForTransport returns a copy of the message log in conversation order.
func (s *State) MessagesForTransport() []Message {
	result := make([]Message, len(s.messages))
	copy(result, s.messages)
	return result
}

// TurnInfo reports the current turn against the configured limits.
func (s *State) TurnInfo() TurnInfo {
	return TurnInfo{
		CurrentTurn:      s.turnCount,
		MaxTurns:         s.limits.MaxTurns,
		WarningTurn:      s.limits.WarningTurn,
		ApproachingLimit: s.turnCount >= s.limits.WarningTurn,
		AtLimit:          s.turnCount >= s.limits.MaxTurns,
	}
}

func (s *State) TurnCount() int {
	return s.turnCount
}

func (s *State) IsComplete() bool {
	return s.isComplete
}

// Requirements returns the full terminal payload (including "status"), or nil.
func (s *State) Requirements() map[string]any {
	return s.requirements
}

// InitiatingContext returns the context the conversation was created with, or nil.
func (s *State) InitiatingContext() InitiatingContext {
	return s.initiating
}

func (s *State) Limits() TurnLimits {
	return s.limits
}
