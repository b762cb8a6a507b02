package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/agent/llm"
	"intakebot/pkg/agent/llmerrors"
)

func stub(resp llm.CompletionResponse, err error) llm.LLMClient {
	return llm.WrapClient(
		func(_ context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) { return resp, err },
		func() string { return "stub" },
	)
}

func TestEmptyResponseMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		resp      llm.CompletionResponse
		err       error
		wantType  llmerrors.ErrorType
		wantError bool
	}{
		{name: "text passes", resp: llm.CompletionResponse{Content: "Hello"}},
		{name: "blank rejected", resp: llm.CompletionResponse{Content: "  \n", StopReason: "max_tokens"}, wantError: true, wantType: llmerrors.ErrorTypeEmptyResponse},
		{name: "empty rejected", resp: llm.CompletionResponse{}, wantError: true, wantType: llmerrors.ErrorTypeEmptyResponse},
		{name: "error passes through", err: errors.New("boom"), wantError: true, wantType: llmerrors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := llm.Chain(stub(tt.resp, tt.err), EmptyResponseMiddleware())
			resp, err := client.Complete(context.Background(), llm.CompletionRequest{})
			if !tt.wantError {
				require.NoError(t, err)
				assert.Equal(t, tt.resp.Content, resp.Content)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, llmerrors.TypeOf(err))
		})
	}
}

func TestEmptyResponseMessage(t *testing.T) {
	_, err := llm.Chain(stub(llm.CompletionResponse{StopReason: "refusal"}, nil), EmptyResponseMiddleware()).
		Complete(context.Background(), llm.CompletionRequest{})
	assert.Contains(t, err.Error(), "stop reason: refusal")

	_, err = llm.Chain(stub(llm.CompletionResponse{}, nil), EmptyResponseMiddleware()).
		Complete(context.Background(), llm.CompletionRequest{})
	assert.Contains(t, err.Error(), "stop reason: unknown")
}
