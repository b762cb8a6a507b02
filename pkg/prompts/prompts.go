// Package prompts provides the base system instruction for intake conversations.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPromptFile is where a project-local override of the base instruction lives.
const DefaultPromptFile = "prompts/intake_system_prompt.txt"

//go:embed intake_system_prompt.md
var defaultInstruction string

// ErrNotFound indicates the base instruction resource does not exist.
var ErrNotFound = errors.New("system prompt not found")

// PromptLoadError reports a base instruction that could not be loaded. It is fatal to
// session construction.
type PromptLoadError struct {
	Source string
	Err    error
}

func (e *PromptLoadError) Error() string {
	return fmt.Sprintf("failed to load system prompt from %s: %v", e.Source, e.Err)
}

func (e *PromptLoadError) Unwrap() error {
	return e.Err
}

// Embedded serves the base instruction compiled into the binary.
type Embedded struct{}

// LoadBaseInstruction returns the built-in instruction.
func (Embedded) LoadBaseInstruction() (string, error) {
	return defaultInstruction, nil
}

// File serves the base instruction from a file on disk.
type File struct {
	Path string
}

// LoadBaseInstruction reads the file. A missing or empty file yields a *PromptLoadError
// wrapping ErrNotFound.
func (f File) LoadBaseInstruction() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &PromptLoadError{Source: f.Path, Err: ErrNotFound}
	}
	if err != nil {
		return "", &PromptLoadError{Source: f.Path, Err: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", &PromptLoadError{Source: f.Path, Err: fmt.Errorf("%w: file is empty", ErrNotFound)}
	}
	return string(data), nil
}

// Source loads the base instruction once per session.
type Source interface {
	LoadBaseInstruction() (string, error)
}

// Resolve picks the prompt source for a run: an explicit path must exist; otherwise
// DefaultPromptFile under projectDir is used when present, falling back to Embedded.
func Resolve(explicitPath, projectDir string) Source {
	if explicitPath != "" {
		return File{Path: explicitPath}
	}
	candidate := filepath.Join(projectDir, DefaultPromptFile)
	if _, err := os.Stat(candidate); err == nil {
		return File{Path: candidate}
	}
	return Embedded{}
}
