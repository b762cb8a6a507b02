package agent

import (
	"context"

	"intakebot/pkg/agent/llm"
	"intakebot/pkg/config"
	"intakebot/pkg/conversation"
	"intakebot/pkg/intake"
)

var _ intake.CompletionService = (*CompletionService)(nil)

// CompletionService adapts an llm.LLMClient to intake.CompletionService. The system
// instruction is sent as a leading system message followed by the conversation in order.
type CompletionService struct {
	client      llm.LLMClient
	maxTokens   int
	temperature float32
}

// NewCompletionService binds client to the reply budget and temperature in cfg.
//
//nolint:gocritic // SessionConfig is passed by value to keep it immutable
func NewCompletionService(client llm.LLMClient, cfg config.SessionConfig) *CompletionService {
	return &CompletionService{
		client:      client,
		maxTokens:   cfg.MaxReplyTokens,
		temperature: float32(cfg.Temperature),
	}
}

// Complete sends one request and returns the reply text. Errors from the client are
// returned unchanged.
func (s *CompletionService) Complete(ctx context.Context, systemInstruction string, messages []conversation.Message) (string, error) {
	resp, err := s.client.Complete(ctx, s.buildRequest(systemInstruction, messages))
	if err != nil {
		return "", err //nolint:wrapcheck // classified errors pass through to the orchestrator
	}
	return resp.Content, nil
}

func (s *CompletionService) buildRequest(systemInstruction string, messages []conversation.Message) llm.CompletionRequest {
	completionMessages := make([]llm.CompletionMessage, 0, len(messages)+1)
	if systemInstruction != "" {
		completionMessages = append(completionMessages, llm.NewSystemMessage(systemInstruction))
	}
	for i := range messages {
		switch messages[i].Role {
		case conversation.RoleAssistant:
			completionMessages = append(completionMessages, llm.NewAssistantMessage(messages[i].Content))
		default:
			completionMessages = append(completionMessages, llm.NewUserMessage(messages[i].Content))
		}
	}

	return llm.CompletionRequest{
		Messages:    completionMessages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}
}

// ModelName returns the model behind the service.
func (s *CompletionService) ModelName() string {
	return s.client.GetModelName()
}
