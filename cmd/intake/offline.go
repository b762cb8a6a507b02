package main

import (
	"intakebot/pkg/agent"
	"intakebot/pkg/agent/llm"
)

// offlineScript is the scripted assistant used by --offline. It greets, asks two
// questions, then emits a requirements document regardless of what the user types.
//
//nolint:gochecknoglobals // fixed demo script
var offlineScript = []string{
	"Hi! I'm here to help you design your custom AI agent. To start, what problem should the agent solve for you?",
	"Thanks. Who will be using the agent day to day, and which systems or data should it have access to?",
	"Got it. Are there any constraints I should know about, such as response time, tone, or compliance requirements?",
	`Thank you, I have everything I need. Here is the summary of your requirements:

{
  "status": "complete",
  "requirements": {
    "agent_purpose": "Answer customer support questions",
    "target_users": "Support team and end customers",
    "integrations": ["Help desk", "Knowledge base"],
    "constraints": ["Professional tone", "Escalate billing issues to a human"]
  }
}`,
}

// newOfflineClient returns a mock client that replays offlineScript with end_turn
// stop reasons.
func newOfflineClient() llm.LLMClient {
	responses := make([]llm.CompletionResponse, 0, len(offlineScript))
	for _, content := range offlineScript {
		responses = append(responses, llm.CompletionResponse{Content: content, StopReason: "end_turn"})
	}
	return agent.NewMockLLMClient(responses, nil)
}
