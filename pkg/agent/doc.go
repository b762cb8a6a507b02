// Package agent wires provider clients for intake sessions.
//
// The package has the following structure:
//   - llm: provider-neutral completion types and middleware chaining
//   - llmerrors: classified provider errors
//   - middleware/: metrics, logging and response validation middleware
//   - internal/llmimpl: raw provider clients (Anthropic, OpenAI, Gemini, Ollama)
//
// ClientFactory builds a raw client for a SessionConfig and wraps it with the
// middleware chain. CompletionService adapts the resulting client to the
// intake.CompletionService contract used by the orchestrator.
package agent
