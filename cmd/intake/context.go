package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"intakebot/pkg/conversation"
)

// demoContext is the sample intake-form submission used by --demo.
func demoContext() conversation.InitiatingContext {
	return conversation.InitiatingContext{
		conversation.ContextName:               "Demo User",
		conversation.ContextEmail:              "demo@example.com",
		conversation.ContextCompany:            "Demo Corp",
		conversation.ContextInitialDescription: "I need a customer support agent",
		conversation.ContextBudgetTier:         "professional",
	}
}

// loadInitiatingContext reads an intake-form submission from a YAML or JSON file.
// An empty path means no context.
func loadInitiatingContext(path string) (conversation.InitiatingContext, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse context file %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return conversation.InitiatingContext(raw), nil
}

// resolveInitiatingContext applies --demo and --context. An explicit file wins.
func resolveInitiatingContext(path string, demo bool) (conversation.InitiatingContext, error) {
	if path != "" {
		return loadInitiatingContext(path)
	}
	if demo {
		return demoContext(), nil
	}
	return nil, nil
}
