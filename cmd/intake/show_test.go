package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/conversation"
	"intakebot/pkg/intake"
)

func sampleExportedState() *intake.ExportedState {
	return &intake.ExportedState{
		Conversation: &conversation.Record{
			TurnCount: 1,
			Messages: []conversation.Message{
				{Role: conversation.RoleUser, Content: "Hello"},
				{Role: conversation.RoleAssistant, Content: "Hi, what do you need?"},
			},
			Layer0Context: conversation.InitiatingContext{conversation.ContextCompany: "Acme"},
		},
		Config: intake.ExportedConfig{Model: "claude-3-haiku-20240307", Temperature: 0.3, MaxTokens: 200},
	}
}

func TestPrintExportedState(t *testing.T) {
	var out bytes.Buffer
	printExportedState(&out, sampleExportedState())

	text := out.String()
	assert.Contains(t, text, "Model: claude-3-haiku-20240307 (temperature 0.30, max tokens 200)")
	assert.Contains(t, text, "Turns: 1")
	assert.Contains(t, text, "Complete: false")
	assert.Contains(t, text, "- Company: Acme")
	assert.Contains(t, text, "You: Hello")
	assert.Contains(t, text, "Bot: Hi, what do you need?")
	assert.Contains(t, text, "Messages: 2")
	assert.NotContains(t, text, "Requirements:")
}

func TestPrintExportedStateWithRequirements(t *testing.T) {
	state := sampleExportedState()
	state.Conversation.IsComplete = true
	state.Conversation.Requirements = map[string]any{"status": "complete", "requirements": map[string]any{"purpose": "triage"}}
	state.Conversation.Layer0Context = nil

	var out bytes.Buffer
	printExportedState(&out, state)

	assert.Contains(t, out.String(), "Context: (none)")
	assert.Contains(t, out.String(), "Requirements:")
	assert.Contains(t, out.String(), `"purpose": "triage"`)
}

func TestPrintExportedStateWithoutConversation(t *testing.T) {
	var out bytes.Buffer
	printExportedState(&out, &intake.ExportedState{Config: intake.ExportedConfig{Model: "gpt-4o-mini"}})
	assert.Contains(t, out.String(), "No conversation recorded.")
}

func TestReadExportedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), StateFileName)
	require.NoError(t, writeJSONFile(path, sampleExportedState()))

	exported, err := readExportedState(path)
	require.NoError(t, err)
	require.NotNil(t, exported.Conversation)
	assert.Equal(t, 1, exported.Conversation.TurnCount)
	assert.Equal(t, "Acme", exported.Conversation.Layer0Context[conversation.ContextCompany])

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = readExportedState(path)
	assert.Error(t, err)
}

func TestShowCommandRawJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), StateFileName)
	require.NoError(t, writeJSONFile(path, sampleExportedState()))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"show", "--json", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		showRaw = false
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"layer0_context"`)
	assert.Contains(t, out.String(), `"turn_count": 1`)
}
