// Package logging provides logging middleware for LLM clients.
package logging

import (
	"context"
	"time"

	"intakebot/pkg/agent/llm"
	"intakebot/pkg/agent/llmerrors"
	"intakebot/pkg/logx"
)

const (
	// DebugDomain gates request/response logging (DEBUG_DOMAINS=llm).
	DebugDomain = "llm"

	maxLoggedPromptChars = 2000
)

// RequestLoggingMiddleware logs each request and its outcome. Prompts are sanitized
// with llmerrors.SanitizePrompt and only logged when the llm debug domain is enabled.
// Failures are always logged at warn level.
func RequestLoggingMiddleware(logger *logx.Logger) llm.Middleware {
	if logger == nil {
		logger = logx.NewLogger("llm")
	}

	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				model := next.GetModelName()
				if logx.IsDebugEnabledForDomain(DebugDomain) {
					for i := range req.Messages {
						msg := &req.Messages[i]
						logx.Debug(ctx, DebugDomain, "-> %s [%d] %s: %s", model, i, msg.Role,
							llmerrors.SanitizePrompt(msg.Content, maxLoggedPromptChars))
					}
				}

				start := time.Now()
				resp, err := next.Complete(ctx, req)
				elapsed := time.Since(start)

				if err != nil {
					logger.Warn("%s request failed after %dms (%s): %v", model, elapsed.Milliseconds(), llmerrors.TypeOf(err), err)
					if llmerrors.Is(err, llmerrors.ErrorTypeEmptyResponse) {
						logEmptyResponseDebugInfo(logger, req)
					}
					//nolint:wrapcheck // Middleware intentionally passes through errors unchanged
					return resp, err
				}

				logx.Debug(ctx, DebugDomain, "<- %s (%dms, stop=%s): %s", model, elapsed.Milliseconds(), resp.StopReason,
					llmerrors.SanitizePrompt(resp.Content, maxLoggedPromptChars))
				return resp, nil
			},
			next.GetModelName,
		)
	}
}

// logEmptyResponseDebugInfo logs request details for empty LLM responses.
//
//nolint:gocritic // CompletionRequest passed by value for logging
func logEmptyResponseDebugInfo(logger *logx.Logger, req llm.CompletionRequest) {
	logger.Error("Empty response from LLM: %d messages, max_tokens=%d, temperature=%v",
		len(req.Messages), req.MaxTokens, req.Temperature)
	if n := len(req.Messages); n > 0 {
		last := &req.Messages[n-1]
		logger.Error("Last message (%s): %s", last.Role, llmerrors.SanitizePrompt(last.Content, maxLoggedPromptChars))
	}
}
