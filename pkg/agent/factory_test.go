package agent

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/agent/internal/llmimpl/anthropic"
	"intakebot/pkg/agent/internal/llmimpl/google"
	"intakebot/pkg/agent/internal/llmimpl/ollama"
	"intakebot/pkg/agent/internal/llmimpl/openaiofficial"
	"intakebot/pkg/agent/llm"
	"intakebot/pkg/agent/llmerrors"
	"intakebot/pkg/agent/middleware/metrics"
	"intakebot/pkg/config"
	"intakebot/pkg/logx"
)

func TestNewRawClient(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		check    func(t *testing.T, c llm.LLMClient)
	}{
		{config.ProviderAnthropic, config.ModelClaudeHaiku3, func(t *testing.T, c llm.LLMClient) {
			_, ok := c.(*anthropic.ClaudeClient)
			assert.True(t, ok)
		}},
		{config.ProviderOpenAI, config.ModelGPT4oMini, func(t *testing.T, c llm.LLMClient) {
			_, ok := c.(*openaiofficial.OfficialClient)
			assert.True(t, ok)
		}},
		{config.ProviderGoogle, config.ModelGemini25Flash, func(t *testing.T, c llm.LLMClient) {
			_, ok := c.(*google.GeminiClient)
			assert.True(t, ok)
		}},
		{config.ProviderOllama, config.ModelOllamaLlama31, func(t *testing.T, c llm.LLMClient) {
			_, ok := c.(*ollama.Client)
			assert.True(t, ok)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c, err := newRawClient(tt.provider, tt.model, "credential")
			require.NoError(t, err)
			assert.Equal(t, tt.model, c.GetModelName())
			tt.check(t, c)
		})
	}

	_, err := newRawClient("bedrock", "x", "k")
	var cfgErr *config.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCreateClientMissingKey(t *testing.T) {
	t.Setenv(config.EnvAnthropicAPIKey, "")
	config.SetDecryptedSecrets(nil)

	_, err := NewClientFactory(nil, nil).CreateClient(config.DefaultSessionConfig())
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestCreateClientUnknownModel(t *testing.T) {
	cfg := config.DefaultSessionConfig()
	cfg.Model = "mystery-model"

	_, err := NewClientFactory(nil, nil).CreateClient(cfg)
	var cfgErr *config.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCreateClientWithKey(t *testing.T) {
	t.Setenv(config.EnvOpenAIAPIKey, "sk-test")

	cfg := config.DefaultSessionConfig()
	cfg.Model = config.ModelGPT4oMini

	client, err := NewClientFactory(metrics.Nop(), logx.NewLogger("test")).CreateClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ModelGPT4oMini, client.GetModelName())
}

func TestCreateClientOllamaHostFromConfig(t *testing.T) {
	cfg := config.DefaultSessionConfig()
	cfg.Model = config.ModelOllamaLlama31
	cfg.OllamaHost = "http://gpu-box:11434"

	client, err := NewClientFactory(nil, nil).CreateClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ModelOllamaLlama31, client.GetModelName())
}

func TestWrapAppliesMiddleware(t *testing.T) {
	rec := metrics.NewInternalRecorder()
	factory := NewClientFactory(metrics.Multi(rec, metrics.NewPrometheusRecorderWith(prometheus.NewRegistry())), nil)

	mock := NewMockLLMClient([]llm.CompletionResponse{{Content: "hello"}, {Content: "   "}}, nil)
	client := factory.Wrap(mock)

	ctx := logx.WithSessionID(context.Background(), "sess")
	resp, err := client.Complete(ctx, llm.NewCompletionRequest([]llm.CompletionMessage{llm.NewUserMessage("hi")}))
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)

	_, err = client.Complete(ctx, llm.NewCompletionRequest([]llm.CompletionMessage{llm.NewUserMessage("again")}))
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeEmptyResponse))

	got := rec.GetSessionMetrics("sess")
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.RequestCount)
	assert.Equal(t, int64(1), got.FailedCount)
	assert.Positive(t, got.PromptTokens)
}
