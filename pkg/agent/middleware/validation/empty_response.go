// Package validation provides response validation middleware for LLM clients.
package validation

import (
	"context"
	"strings"

	"intakebot/pkg/agent/llm"
	"intakebot/pkg/agent/llmerrors"
)

// EmptyResponseMiddleware turns a successful but blank reply into an
// ErrorTypeEmptyResponse error, so a whitespace-only reply never enters the
// conversation as an assistant message. It does not retry.
func EmptyResponseMiddleware() llm.Middleware {
	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				resp, err := next.Complete(ctx, req)
				if err != nil {
					//nolint:wrapcheck // Middleware intentionally passes through errors unchanged
					return resp, err
				}
				if strings.TrimSpace(resp.Content) == "" {
					return resp, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse,
						"model returned no text (stop reason: "+stopReasonOrUnknown(resp.StopReason)+")")
				}
				return resp, nil
			},
			next.GetModelName,
		)
	}
}

func stopReasonOrUnknown(reason string) string {
	if reason == "" {
		return "unknown"
	}
	return reason
}
