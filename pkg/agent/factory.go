package agent

import (
	"fmt"

	"intakebot/pkg/agent/internal/llmimpl/anthropic"
	"intakebot/pkg/agent/internal/llmimpl/google"
	"intakebot/pkg/agent/internal/llmimpl/ollama"
	"intakebot/pkg/agent/internal/llmimpl/openaiofficial"
	"intakebot/pkg/agent/llm"
	"intakebot/pkg/agent/middleware/logging"
	"intakebot/pkg/agent/middleware/metrics"
	"intakebot/pkg/agent/middleware/validation"
	"intakebot/pkg/config"
	"intakebot/pkg/logx"
)

// ClientFactory creates LLM clients with properly configured middleware chains.
type ClientFactory struct {
	metricsRecorder metrics.Recorder
	logger          *logx.Logger
}

// NewClientFactory creates a factory. A nil recorder disables metrics.
func NewClientFactory(recorder metrics.Recorder, logger *logx.Logger) *ClientFactory {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	if logger == nil {
		logger = logx.NewLogger("llm")
	}
	return &ClientFactory{
		metricsRecorder: recorder,
		logger:          logger,
	}
}

// CreateClient creates the client for cfg's model with the full middleware chain.
// The credential is looked up for the resolved provider; a missing one is a
// *config.ConfigurationError.
//
//nolint:gocritic // SessionConfig is passed by value to keep it immutable
func (f *ClientFactory) CreateClient(cfg config.SessionConfig) (llm.LLMClient, error) {
	provider, err := cfg.ResolveProvider()
	if err != nil {
		return nil, err
	}

	credential := cfg.OllamaHost
	if provider != config.ProviderOllama || credential == "" {
		credential, err = config.GetAPIKey(provider)
		if err != nil {
			return nil, err
		}
	}

	rawClient, err := newRawClient(provider, cfg.Model, credential)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Using %s model %s", provider, cfg.Model)
	return f.Wrap(rawClient), nil
}

// Wrap applies the middleware chain to a raw client:
//
//	Metrics -> Logging -> EmptyResponse -> RawClient
func (f *ClientFactory) Wrap(rawClient llm.LLMClient) llm.LLMClient {
	return llm.Chain(rawClient,
		metrics.Middleware(f.metricsRecorder, nil, f.logger),
		logging.RequestLoggingMiddleware(f.logger),
		validation.EmptyResponseMiddleware(),
	)
}

func newRawClient(provider, model, credential string) (llm.LLMClient, error) {
	switch provider {
	case config.ProviderAnthropic:
		return anthropic.NewClaudeClientWithModel(credential, model), nil
	case config.ProviderOpenAI:
		return openaiofficial.NewOfficialClientWithModel(credential, model), nil
	case config.ProviderGoogle:
		return google.NewGeminiClientWithModel(credential, model), nil
	case config.ProviderOllama:
		return ollama.NewOllamaClientWithModel(credential, model), nil
	default:
		return nil, &config.ConfigurationError{Setting: "provider", Err: fmt.Errorf("unsupported provider: %s", provider)}
	}
}
