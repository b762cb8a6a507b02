package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/agent/llm"
	"intakebot/pkg/agent/llmerrors"
	"intakebot/pkg/logx"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logx.SetOutput(&buf)
	t.Cleanup(func() {
		logx.SetOutput(nil)
		logx.SetDebugConfig(false)
		logx.SetDebugDomains(nil)
	})
	return &buf
}

func stub(resp llm.CompletionResponse, err error) llm.LLMClient {
	return llm.WrapClient(
		func(_ context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) { return resp, err },
		func() string { return "stub-model" },
	)
}

func TestRequestLoggingDebug(t *testing.T) {
	buf := capture(t)
	logx.SetDebugConfig(true)
	logx.SetDebugDomains([]string{DebugDomain})

	client := llm.Chain(stub(llm.CompletionResponse{Content: "hello there", StopReason: "end_turn"}, nil), RequestLoggingMiddleware(nil))
	ctx := logx.WithSessionID(context.Background(), "sess-42")
	_, err := client.Complete(ctx, llm.NewCompletionRequest([]llm.CompletionMessage{llm.NewUserMessage("hi bot")}))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[sess-42]")
	assert.Contains(t, out, "-> stub-model [0] user: hi bot")
	assert.Contains(t, out, "stop=end_turn")
	assert.Contains(t, out, "hello there")
}

func TestRequestLoggingQuietWithoutDebug(t *testing.T) {
	buf := capture(t)

	client := llm.Chain(stub(llm.CompletionResponse{Content: "ok"}, nil), RequestLoggingMiddleware(logx.NewLogger("llm")))
	_, err := client.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestRequestLoggingFailure(t *testing.T) {
	buf := capture(t)

	cause := errors.New("connection reset")
	client := llm.Chain(stub(llm.CompletionResponse{}, cause), RequestLoggingMiddleware(logx.NewLogger("llm")))
	_, err := client.Complete(context.Background(), llm.CompletionRequest{})
	assert.Same(t, cause, err)

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "stub-model request failed")
}

func TestRequestLoggingEmptyResponse(t *testing.T) {
	buf := capture(t)

	emptyErr := llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "nothing")
	client := llm.Chain(stub(llm.CompletionResponse{}, emptyErr), RequestLoggingMiddleware(nil))
	req := llm.NewCompletionRequest([]llm.CompletionMessage{llm.NewUserMessage(strings.Repeat("x", 10))})
	_, err := client.Complete(context.Background(), req)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "Empty response from LLM: 1 messages")
	assert.Contains(t, out, "Last message (user)")
}
