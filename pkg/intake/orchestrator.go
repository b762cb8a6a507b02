package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"intakebot/pkg/config"
	"intakebot/pkg/conversation"
	"intakebot/pkg/logx"
	"intakebot/pkg/prompts"
)

const (
	// OpeningMessage is sent by StartConversation to elicit the greeting.
	OpeningMessage = "Hello, I'm ready to discuss my agent requirements."

	// SessionEndedMessage is returned once the turn ceiling has been reached.
	SessionEndedMessage = "We've reached the maximum number of turns for this session. " +
		"Please review the requirements gathered so far or start a new session."

	transportErrorPrefix = "An error occurred communicating with the AI service: "

	approachingLimitDirective = "\n\nIMPORTANT: You are approaching the turn limit. " +
		"Begin summarizing what you have and move toward completion."
)

// Option customizes an Orchestrator at construction.
type Option func(*Orchestrator)

// WithSessionID overrides the generated session ID used in logs and metrics labels.
func WithSessionID(id string) Option {
	return func(o *Orchestrator) {
		if id != "" {
			o.sessionID = id
		}
	}
}

// Orchestrator drives a single intake session. It is not safe for concurrent use.
type Orchestrator struct {
	service      CompletionService
	state        *conversation.State
	logger       *logx.Logger
	systemPrompt string
	sessionID    string
	cfg          config.SessionConfig
}

// New validates cfg, loads the base instruction from promptSource, and renders the
// session system instruction from it and the optional initiating context.
//
// Errors are *config.ConfigurationError or *prompts.PromptLoadError; no session is
// created on failure.
//
//nolint:gocritic // SessionConfig is passed by value to keep it immutable
func New(cfg config.SessionConfig, promptSource PromptSource, service CompletionService, initiating conversation.InitiatingContext, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if service == nil {
		return nil, &config.ConfigurationError{Setting: "completion service", Err: errors.New("no completion service configured")}
	}
	if promptSource == nil {
		return nil, &prompts.PromptLoadError{Source: "<nil>", Err: prompts.ErrNotFound}
	}

	base, err := promptSource.LoadBaseInstruction()
	if err != nil {
		var loadErr *prompts.PromptLoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &prompts.PromptLoadError{Source: fmt.Sprintf("%T", promptSource), Err: err}
	}

	state := conversation.New(conversation.TurnLimits{
		MaxTurns:    cfg.MaxTurns,
		WarningTurn: cfg.WarningTurn,
	}, initiating)

	o := &Orchestrator{
		service:   service,
		state:     state,
		logger:    logx.NewLogger("intake"),
		sessionID: uuid.NewString(),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.systemPrompt = buildSystemPrompt(base, state.BuildContextSummary(), cfg.MaxTurns)
	return o, nil
}

// buildSystemPrompt renders the per-session instruction. The per-turn counter is added
// later by turnInstruction.
func buildSystemPrompt(base, contextSummary string, maxTurns int) string {
	prompt := base
	if contextSummary != "" {
		prompt += "\n\n## Customer Context (from intake form)\n" + contextSummary +
			"\nUse this context to personalize your greeting and skip questions you already have answers to."
	}
	prompt += fmt.Sprintf("\n\n## Turn Tracking\nMaximum turns allowed: %d\nCurrent turn will be injected in each message.", maxTurns)
	return prompt
}

func (o *Orchestrator) turnInstruction(info conversation.TurnInfo) string {
	instruction := fmt.Sprintf("%s\n\nCURRENT TURN: %d of %d", o.systemPrompt, info.CurrentTurn, info.MaxTurns)
	if info.ApproachingLimit {
		instruction += approachingLimitDirective
	}
	return instruction
}

// SendMessage runs one turn. Once the turn ceiling is reached it returns the
// session-ended result without touching state or calling the service.
func (o *Orchestrator) SendMessage(ctx context.Context, userMessage string) Result {
	ctx = logx.WithSessionID(ctx, o.sessionID)

	if o.state.TurnCount() >= o.cfg.MaxTurns {
		o.logger.Warn("Turn limit %d reached for session %s; not calling completion service", o.cfg.MaxTurns, o.sessionID)
		return Result{
			Response:         SessionEndedMessage,
			Turn:             o.state.TurnCount(),
			Complete:         o.state.IsComplete(),
			Requirements:     o.state.Requirements(),
			ApproachingLimit: true,
			AtLimit:          true,
		}
	}

	o.state.AppendUserMessage(userMessage)
	info := o.state.TurnInfo()

	logx.Debug(ctx, "intake", "Dispatching turn %d of %d (approaching_limit=%t)", info.CurrentTurn, info.MaxTurns, info.ApproachingLimit)

	reply, err := o.service.Complete(ctx, o.turnInstruction(info), o.state.MessagesForTransport())
	if err != nil {
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			transportErr = &TransportError{Err: err}
		}
		o.logger.Warn("Completion failed on turn %d: %v", info.CurrentTurn, transportErr)
		return Result{
			Response:         transportErrorPrefix + transportErr.Error(),
			Turn:             o.state.TurnCount(),
			Complete:         false,
			Requirements:     nil,
			ApproachingLimit: info.ApproachingLimit,
			AtLimit:          false,
			Error:            true,
			Err:              transportErr,
		}
	}

	wasComplete := o.state.IsComplete()
	o.state.AppendAssistantMessage(reply)
	if !wasComplete && o.state.IsComplete() {
		o.logger.Info("Requirements gathering complete for session %s after %d turns", o.sessionID, o.state.TurnCount())
	}

	return Result{
		Response:         reply,
		Turn:             o.state.TurnCount(),
		Complete:         o.state.IsComplete(),
		Requirements:     o.state.Requirements(),
		ApproachingLimit: info.ApproachingLimit,
		AtLimit:          info.AtLimit,
	}
}

// StartConversation sends OpeningMessage to get the assistant's greeting. It consumes
// a turn like any other message.
func (o *Orchestrator) StartConversation(ctx context.Context) Result {
	return o.SendMessage(ctx, OpeningMessage)
}

func (o *Orchestrator) IsComplete() bool {
	return o.state.IsComplete()
}

// Requirements returns the terminal payload, or nil if the conversation is not complete.
func (o *Orchestrator) Requirements() map[string]any {
	return o.state.Requirements()
}

func (o *Orchestrator) TurnCount() int {
	return o.state.TurnCount()
}

func (o *Orchestrator) TurnInfo() conversation.TurnInfo {
	return o.state.TurnInfo()
}

// ConversationHistory returns a copy of the message log.
func (o *Orchestrator) ConversationHistory() []conversation.Message {
	return o.state.MessagesForTransport()
}

func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// SystemPrompt returns the session instruction without the per-turn footer.
func (o *Orchestrator) SystemPrompt() string {
	return o.systemPrompt
}

//nolint:gocritic // returned by value so callers cannot mutate it
func (o *Orchestrator) Config() config.SessionConfig {
	return o.cfg
}
