package agent

import (
	"context"
	"fmt"

	"intakebot/pkg/agent/llm"
)

// MockLLMClient provides a controllable implementation of llm.LLMClient for demos and tests.
type MockLLMClient struct {
	model         string
	responses     []llm.CompletionResponse
	errors        []error
	requests      []llm.CompletionRequest
	responseIndex int
	errorIndex    int
}

// NewMockLLMClient creates a new mock client with predefined responses. A non-nil
// entry in errors is returned in place of the response at the same call.
func NewMockLLMClient(responses []llm.CompletionResponse, errors []error) *MockLLMClient {
	return &MockLLMClient{
		model:     "mock-model",
		responses: responses,
		errors:    errors,
	}
}

// Complete returns the next predefined response or error.
//
//nolint:gocritic // CompletionRequest passed by value to match interface
func (m *MockLLMClient) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	m.requests = append(m.requests, req)

	if m.errorIndex < len(m.errors) {
		err := m.errors[m.errorIndex]
		m.errorIndex++
		if err != nil {
			return llm.CompletionResponse{}, err
		}
	}

	if m.responseIndex >= len(m.responses) {
		return llm.CompletionResponse{}, fmt.Errorf("mock client: no more responses")
	}

	resp := m.responses[m.responseIndex]
	m.responseIndex++
	return resp, nil
}

// GetModelName returns the mock model name.
func (m *MockLLMClient) GetModelName() string {
	return m.model
}

// Requests returns every request received so far.
func (m *MockLLMClient) Requests() []llm.CompletionRequest {
	return m.requests
}
