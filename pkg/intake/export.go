package intake

import (
	"intakebot/pkg/config"
	"intakebot/pkg/conversation"
)

// ExportedConfig records the model settings a session ran with. It is metadata only;
// restoring does not apply it.
type ExportedConfig struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// ExportedState is the persisted form of a session.
type ExportedState struct {
	Conversation *conversation.Record `json:"conversation,omitempty"`
	Config       ExportedConfig       `json:"config"`
}

// ExportState snapshots the conversation together with the active model settings.
func (o *Orchestrator) ExportState() ExportedState {
	rec := o.state.ToRecord()
	return ExportedState{
		Conversation: &rec,
		Config: ExportedConfig{
			Model:       o.cfg.Model,
			Temperature: o.cfg.Temperature,
			MaxTokens:   o.cfg.MaxReplyTokens,
		},
	}
}

// RestoreFromState builds a fresh orchestrator, with its system instruction rendered
// from initiating, and then replaces its conversation state with exported.Conversation
// when present.
//
//nolint:gocritic // SessionConfig is passed by value to keep it immutable
func RestoreFromState(
	exported ExportedState,
	cfg config.SessionConfig,
	promptSource PromptSource,
	service CompletionService,
	initiating conversation.InitiatingContext,
	opts ...Option,
) (*Orchestrator, error) {
	o, err := New(cfg, promptSource, service, initiating, opts...)
	if err != nil {
		return nil, err
	}

	if exported.Conversation != nil {
		o.state = conversation.FromRecord(*exported.Conversation, o.state.Limits())
	}
	return o, nil
}
