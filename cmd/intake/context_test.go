package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/config"
	"intakebot/pkg/conversation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadInitiatingContextYAML(t *testing.T) {
	path := writeFile(t, "context.yaml", `
name: Ada
company: Analytical Engines
initial_description: I need a scheduling agent
seats: 12
`)

	ctx, err := loadInitiatingContext(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", ctx[conversation.ContextName])
	assert.Equal(t, "Analytical Engines", ctx[conversation.ContextCompany])
	assert.Equal(t, 12, ctx["seats"])
	assert.NotContains(t, ctx, conversation.ContextEmail)
}

func TestLoadInitiatingContextJSON(t *testing.T) {
	path := writeFile(t, "context.json", `{"name": "Grace", "budget_tier": "starter"}`)

	ctx, err := loadInitiatingContext(path)
	require.NoError(t, err)
	assert.Equal(t, "Grace", ctx[conversation.ContextName])
	assert.Equal(t, "starter", ctx[conversation.ContextBudgetTier])
}

func TestLoadInitiatingContextEmpty(t *testing.T) {
	ctx, err := loadInitiatingContext("")
	require.NoError(t, err)
	assert.Nil(t, ctx)

	ctx, err = loadInitiatingContext(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Nil(t, ctx)
}

func TestLoadInitiatingContextErrors(t *testing.T) {
	_, err := loadInitiatingContext(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadInitiatingContext(writeFile(t, "bad.yaml", "- just\n- a list\n"))
	assert.Error(t, err)
}

func TestResolveInitiatingContext(t *testing.T) {
	ctx, err := resolveInitiatingContext("", false)
	require.NoError(t, err)
	assert.Nil(t, ctx)

	ctx, err = resolveInitiatingContext("", true)
	require.NoError(t, err)
	assert.Equal(t, demoContext(), ctx)
	assert.Equal(t, "Demo Corp", ctx[conversation.ContextCompany])

	path := writeFile(t, "context.yaml", "name: File User\n")
	ctx, err = resolveInitiatingContext(path, true)
	require.NoError(t, err)
	assert.Equal(t, "File User", ctx[conversation.ContextName])
}

func TestCollectProviderKeys(t *testing.T) {
	t.Setenv(config.EnvAnthropicAPIKey, "sk-ant")
	t.Setenv(config.EnvOpenAIAPIKey, "")
	t.Setenv(config.EnvGoogleAPIKey, "g-key")

	assert.Equal(t, map[string]string{
		config.EnvAnthropicAPIKey: "sk-ant",
		config.EnvGoogleAPIKey:    "g-key",
	}, collectProviderKeys())
}

func TestUnlockSecrets(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { config.SetDecryptedSecrets(nil) })

	// No secrets file is not an error.
	require.NoError(t, unlockSecrets(dir))

	require.NoError(t, config.EncryptSecretsFile(dir, "hunter2", map[string]string{"INTAKE_TEST_SECRET": "value"}))

	t.Setenv(EnvSecretsPassword, "wrong")
	assert.Error(t, unlockSecrets(dir))

	t.Setenv(EnvSecretsPassword, "hunter2")
	require.NoError(t, unlockSecrets(dir))
	secret, err := config.GetSecret("INTAKE_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "value", secret)
}
