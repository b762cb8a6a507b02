package openaiofficial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/agent/llm"
	"intakebot/pkg/config"
)

func TestConvertMessages(t *testing.T) {
	msgs, err := convertMessages([]llm.CompletionMessage{
		llm.NewSystemMessage("sys"),
		llm.NewUserMessage("hi"),
		llm.NewAssistantMessage("hello"),
	})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)

	_, err = convertMessages(nil)
	assert.Error(t, err)

	_, err = convertMessages([]llm.CompletionMessage{{Role: "tool", Content: "x"}})
	assert.Error(t, err)
}

func TestCapMaxTokens(t *testing.T) {
	assert.Equal(t, 200, capMaxTokens(config.ModelGPT4oMini, 200))
	assert.Equal(t, 16384, capMaxTokens(config.ModelGPT4oMini, 100000))
	assert.Equal(t, llm.DefaultMaxTokens, capMaxTokens("gpt-unknown", 0))
	assert.Equal(t, 100000, capMaxTokens("gpt-unknown", 100000))
}

func TestStopReason(t *testing.T) {
	assert.Equal(t, "end_turn", stopReason("stop"))
	assert.Equal(t, "max_tokens", stopReason("length"))
	assert.Equal(t, "refusal", stopReason("content_filter"))
	assert.Equal(t, "tool_calls", stopReason("tool_calls"))
}

func TestModelName(t *testing.T) {
	assert.Equal(t, config.ModelGPT4oMini, NewOfficialClient("k").GetModelName())
	assert.Equal(t, "gpt-4.1", NewOfficialClientWithModel("k", "gpt-4.1").GetModelName())
}
