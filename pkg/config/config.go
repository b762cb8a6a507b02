// Package config provides the immutable session configuration for intake conversations,
// the model/provider registry, and secret lookup.
//
// Configuration is resolved once at startup, in this order:
//
//  1. Built-in defaults (DefaultSessionConfig)
//  2. Optional JSON config file, with ${VAR} placeholders substituted from the environment
//  3. INTAKE_* environment overrides (INTAKE_MODEL, INTAKE_MAX_TURNS, ...)
//
// The result is validated and handed to the orchestrator by value. Nothing in the core
// reads configuration from globals.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Provider constants.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// Environment variables holding provider credentials.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_GENAI_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

// Model name constants.
const (
	ModelClaudeHaiku3     = "claude-3-haiku-20240307"
	ModelClaudeSonnet45   = "claude-sonnet-4-5"
	ModelGPT4oMini        = "gpt-4o-mini"
	ModelGemini25Flash    = "gemini-2.5-flash"
	ModelOllamaLlama31    = "llama3.1:8b"
	DefaultOllamaHostURL  = "http://localhost:11434"
	DefaultModel          = ModelClaudeHaiku3
	DefaultTemperature    = 0.3 // Consistency over creativity
	DefaultMaxReplyTokens = 200 // Keep replies concise
	DefaultMaxTurns       = 30
	DefaultWarningTurn    = 25 // Start wrapping up at this turn
)

// ErrMissingSecret is returned when a required credential is not available.
var ErrMissingSecret = errors.New("secret not found")

// ConfigurationError reports a missing or invalid setting. It is fatal to session startup.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ModelInfo contains static information about a known LLM model.
type ModelInfo struct {
	Provider         string
	InputCPM         float64 // Cost per million input tokens (USD)
	OutputCPM        float64 // Cost per million output tokens (USD)
	MaxContextTokens int
	MaxOutputTokens  int
}

// KnownModels registry. Unknown models are inferred via ProviderPatterns.
//
//nolint:gochecknoglobals // Intentional global for static model registry
var KnownModels = map[string]ModelInfo{
	ModelClaudeHaiku3: {
		Provider:         ProviderAnthropic,
		InputCPM:         0.25,
		OutputCPM:        1.25,
		MaxContextTokens: 200000,
		MaxOutputTokens:  4096,
	},
	ModelClaudeSonnet45: {
		Provider:         ProviderAnthropic,
		InputCPM:         3.0,
		OutputCPM:        15.0,
		MaxContextTokens: 200000,
		MaxOutputTokens:  8192,
	},
	ModelGPT4oMini: {
		Provider:         ProviderOpenAI,
		InputCPM:         0.15,
		OutputCPM:        0.60,
		MaxContextTokens: 128000,
		MaxOutputTokens:  16384,
	},
	ModelGemini25Flash: {
		Provider:         ProviderGoogle,
		InputCPM:         0.30,
		OutputCPM:        2.50,
		MaxContextTokens: 1048576,
		MaxOutputTokens:  65536,
	},
	ModelOllamaLlama31: {
		Provider:         ProviderOllama,
		MaxContextTokens: 131072,
		MaxOutputTokens:  4096,
	},
}

// ProviderPattern maps a model-name prefix to a provider.
type ProviderPattern struct {
	Prefix   string
	Provider string
}

//nolint:gochecknoglobals // Intentional global for inference rules
var ProviderPatterns = []ProviderPattern{
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"gemini", ProviderGoogle},
	{"phi", ProviderOllama},
	{"llama", ProviderOllama},
	{"qwen", ProviderOllama},
	{"mistral", ProviderOllama},
	{"deepseek", ProviderOllama},
	{"ollama:", ProviderOllama},
}

// GetModelProvider returns the API provider for a given model.
// KnownModels is consulted first, then ProviderPatterns.
func GetModelProvider(modelName string) (string, error) {
	if info, exists := KnownModels[modelName]; exists {
		return info.Provider, nil
	}

	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			return ProviderPatterns[i].Provider, nil
		}
	}

	return "", fmt.Errorf("unknown model '%s': no known provider mapping or pattern match", modelName)
}

// CalculateCost returns the USD cost for a request, or 0 for models without pricing.
func CalculateCost(modelName string, promptTokens, completionTokens int) float64 {
	info, exists := KnownModels[modelName]
	if !exists {
		return 0
	}
	inputCost := (float64(promptTokens) / 1_000_000.0) * info.InputCPM
	outputCost := (float64(completionTokens) / 1_000_000.0) * info.OutputCPM
	return inputCost + outputCost
}

// SessionConfig is the read-only configuration of one intake session.
type SessionConfig struct {
	Model          string  `json:"model"`
	Provider       string  `json:"provider,omitempty"`
	OllamaHost     string  `json:"ollama_host,omitempty"`
	Temperature    float64 `json:"temperature"`
	MaxReplyTokens int     `json:"max_tokens"`
	MaxTurns       int     `json:"max_turns"`
	WarningTurn    int     `json:"warning_turn"`
}

// DefaultSessionConfig returns the reference configuration. Provider is left empty and
// inferred from Model by ResolveProvider.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Model:          DefaultModel,
		Temperature:    DefaultTemperature,
		MaxReplyTokens: DefaultMaxReplyTokens,
		MaxTurns:       DefaultMaxTurns,
		WarningTurn:    DefaultWarningTurn,
	}
}

// Validate checks the configuration and returns a *ConfigurationError on failure.
//
//nolint:gocritic // value receiver keeps SessionConfig immutable
func (c SessionConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Provider, validation.In(ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOllama)),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.MaxReplyTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxTurns, validation.Required, validation.Min(1)),
		validation.Field(&c.WarningTurn, validation.Min(0), validation.Max(c.MaxTurns)),
	)
	if err != nil {
		return &ConfigurationError{Setting: "session", Err: err}
	}
	return nil
}

// ResolveProvider returns the configured provider, inferring it from the model name
// when unset.
//
//nolint:gocritic // value receiver keeps SessionConfig immutable
func (c SessionConfig) ResolveProvider() (string, error) {
	if c.Provider != "" {
		return c.Provider, nil
	}
	provider, err := GetModelProvider(c.Model)
	if err != nil {
		return "", &ConfigurationError{Setting: "provider", Err: err}
	}
	return provider, nil
}

// GetAPIKey returns the credential for a provider: the decrypted secrets file first,
// then the environment. For Ollama it returns the host URL instead.
func GetAPIKey(provider string) (string, error) {
	var envVar string
	switch provider {
	case ProviderAnthropic:
		envVar = EnvAnthropicAPIKey
	case ProviderOpenAI:
		envVar = EnvOpenAIAPIKey
	case ProviderGoogle:
		envVar = EnvGoogleAPIKey
	case ProviderOllama:
		host := os.Getenv(EnvOllamaHost)
		if host == "" {
			host = DefaultOllamaHostURL
		}
		return host, nil
	default:
		return "", &ConfigurationError{Setting: "provider", Err: fmt.Errorf("unknown provider: %s", provider)}
	}

	key, err := GetSecret(envVar)
	if err != nil {
		return "", &ConfigurationError{
			Setting: envVar,
			Err:     fmt.Errorf("%w: set %s in your .env file, environment, or secrets file", ErrMissingSecret, envVar),
		}
	}
	return key, nil
}
