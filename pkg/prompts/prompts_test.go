package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedInstruction(t *testing.T) {
	text, err := Embedded{}.LoadBaseInstruction()
	require.NoError(t, err)

	assert.Contains(t, text, `"status": "complete"`)
	assert.Contains(t, text, `"requirements"`)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("You are a test bot."), 0644))

	text, err := File{Path: path}.LoadBaseInstruction()
	require.NoError(t, err)
	assert.Equal(t, "You are a test bot.", text)
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0644))

	for _, path := range []string{filepath.Join(dir, "missing.txt"), empty} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := File{Path: path}.LoadBaseInstruction()

			var loadErr *PromptLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, path, loadErr.Source)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	assert.IsType(t, Embedded{}, Resolve("", dir))
	assert.Equal(t, File{Path: "/explicit.txt"}, Resolve("/explicit.txt", dir))

	local := filepath.Join(dir, DefaultPromptFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(local), 0755))
	require.NoError(t, os.WriteFile(local, []byte("project prompt"), 0644))

	assert.Equal(t, File{Path: local}, Resolve("", dir))
}
