package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/agent/llm"
	"intakebot/pkg/config"
	"intakebot/pkg/conversation"
	"intakebot/pkg/intake"
	"intakebot/pkg/prompts"
)

func TestCompletionServiceBuildsRequest(t *testing.T) {
	mock := NewMockLLMClient([]llm.CompletionResponse{{Content: "What do you need?"}}, nil)
	svc := NewCompletionService(mock, config.DefaultSessionConfig())

	reply, err := svc.Complete(context.Background(), "SYSTEM", []conversation.Message{
		{Role: conversation.RoleUser, Content: "hi"},
		{Role: conversation.RoleAssistant, Content: "hello"},
		{Role: conversation.RoleUser, Content: "a bot please"},
	})
	require.NoError(t, err)
	assert.Equal(t, "What do you need?", reply)

	require.Len(t, mock.Requests(), 1)
	req := mock.Requests()[0]
	assert.Equal(t, 200, req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, llm.NewSystemMessage("SYSTEM"), req.Messages[0])
	assert.Equal(t, llm.NewUserMessage("hi"), req.Messages[1])
	assert.Equal(t, llm.NewAssistantMessage("hello"), req.Messages[2])
	assert.Equal(t, llm.NewUserMessage("a bot please"), req.Messages[3])
	assert.Equal(t, "mock-model", svc.ModelName())
}

func TestCompletionServicePassesErrors(t *testing.T) {
	cause := errors.New("upstream down")
	svc := NewCompletionService(NewMockLLMClient(nil, []error{cause}), config.DefaultSessionConfig())

	_, err := svc.Complete(context.Background(), "", nil)
	assert.ErrorIs(t, err, cause)
}

// TestCompletionServiceDrivesOrchestrator runs a short session end to end through the
// middleware chain with a scripted client.
func TestCompletionServiceDrivesOrchestrator(t *testing.T) {
	mock := NewMockLLMClient([]llm.CompletionResponse{
		{Content: "Hi! What should your agent do?"},
		{Content: "Great.\n```json\n{\"status\": \"complete\", \"requirements\": {\"purpose\": \"triage\"}}\n```"},
	}, nil)
	cfg := config.DefaultSessionConfig()
	client := NewClientFactory(nil, nil).Wrap(mock)

	o, err := intake.New(cfg, prompts.Embedded{}, NewCompletionService(client, cfg), nil)
	require.NoError(t, err)

	first := o.StartConversation(context.Background())
	assert.False(t, first.Error)
	assert.Equal(t, "Hi! What should your agent do?", first.Response)

	second := o.SendMessage(context.Background(), "Triage support tickets")
	assert.True(t, second.Complete)
	reqs, ok := second.Requirements["requirements"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "triage", reqs["purpose"])

	requests := mock.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, llm.RoleSystem, requests[1].Messages[0].Role)
	assert.Contains(t, requests[1].Messages[0].Content, "CURRENT TURN: 2 of 30")
	assert.Len(t, requests[1].Messages, 4)
}

func TestMockLLMClientExhausted(t *testing.T) {
	mock := NewMockLLMClient(nil, nil)
	_, err := mock.Complete(context.Background(), llm.CompletionRequest{})
	assert.Error(t, err)
}
