package logx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// setupTestLogger sets up a logger with a bytes.Buffer for testing.
func setupTestLogger() *bytes.Buffer {
	var buf bytes.Buffer
	SetOutput(&buf)
	return &buf
}

// resetTestLogger resets the logger to default stderr.
func resetTestLogger() {
	SetOutput(nil)
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("intake")

	if logger.GetComponent() != "intake" {
		t.Errorf("Expected component 'intake', got '%s'", logger.GetComponent())
	}
}

func TestLogFormat(t *testing.T) {
	buf := setupTestLogger()
	defer resetTestLogger()

	logger := NewLogger("intake")
	logger.Info("Test message with %s", "formatting")

	output := buf.String()

	if !strings.Contains(output, "[intake]") {
		t.Errorf("Expected component in output, got: %s", output)
	}
	if !strings.Contains(output, "INFO") {
		t.Errorf("Expected log level in output, got: %s", output)
	}
	if !strings.Contains(output, "Test message with formatting") {
		t.Errorf("Expected formatted message in output, got: %s", output)
	}
}

func TestLogLevels(t *testing.T) {
	logger := NewLogger("test-component")

	tests := []struct {
		level    Level
		logFunc  func(string, ...any)
		expected string
	}{
		{LevelDebug, logger.Debug, "DEBUG"},
		{LevelInfo, logger.Info, "INFO"},
		{LevelWarn, logger.Warn, "WARN"},
		{LevelError, logger.Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			buf := setupTestLogger()
			defer resetTestLogger()

			if tt.level == LevelDebug {
				SetDebugConfig(true)
				defer SetDebugConfig(false)
			}

			tt.logFunc("test message")

			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected level '%s' in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestDebugSuppressedWhenDisabled(t *testing.T) {
	buf := setupTestLogger()
	defer resetTestLogger()

	SetDebugConfig(false)
	NewLogger("quiet").Debug("should not appear")
	Debug(context.Background(), "intake", "should not appear either")

	if buf.Len() != 0 {
		t.Errorf("Expected no output with debug disabled, got: %s", buf.String())
	}
}

func TestDebugDomainFiltering(t *testing.T) {
	buf := setupTestLogger()
	defer resetTestLogger()

	SetDebugConfig(true)
	SetDebugDomains([]string{"conversation"})
	defer func() {
		SetDebugConfig(false)
		SetDebugDomains(nil)
	}()

	ctx := WithSessionID(context.Background(), "sess-42")
	Debug(ctx, "conversation", "payload detected")
	Debug(ctx, "intake", "filtered out")

	output := buf.String()
	if !strings.Contains(output, "[sess-42]") {
		t.Errorf("Expected session ID as component, got: %s", output)
	}
	if !strings.Contains(output, "[conversation] payload detected") {
		t.Errorf("Expected conversation domain line, got: %s", output)
	}
	if strings.Contains(output, "filtered out") {
		t.Errorf("Expected intake domain to be filtered, got: %s", output)
	}
}

func TestSessionIDFrom(t *testing.T) {
	if got := SessionIDFrom(context.Background()); got != "" {
		t.Errorf("Expected empty session ID, got %q", got)
	}
	ctx := WithSessionID(context.Background(), "abc")
	if got := SessionIDFrom(ctx); got != "abc" {
		t.Errorf("Expected 'abc', got %q", got)
	}
}

func TestWithComponent(t *testing.T) {
	original := NewLogger("original")
	derived := original.WithComponent("derived")

	if derived.GetComponent() != "derived" {
		t.Errorf("Expected 'derived', got '%s'", derived.GetComponent())
	}
	if original.GetComponent() != "original" {
		t.Errorf("Expected original component unchanged, got '%s'", original.GetComponent())
	}
}

func TestWrap(t *testing.T) {
	buf := setupTestLogger()
	defer resetTestLogger()

	if Wrap(nil, "noop") != nil {
		t.Error("Expected nil for nil error")
	}

	base := errors.New("boom")
	err := Wrap(base, "load prompt")
	if !errors.Is(err, base) {
		t.Errorf("Expected wrapped error to match base")
	}
	if err.Error() != "load prompt: boom" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if !strings.Contains(buf.String(), "load prompt: boom") {
		t.Errorf("Expected error to be logged, got: %s", buf.String())
	}
}

func TestTimestampFormat(t *testing.T) {
	buf := setupTestLogger()
	defer resetTestLogger()

	NewLogger("test").Info("timestamp test")

	output := buf.String()
	start := strings.Index(output, "[")
	end := strings.Index(output, "]")
	if start == -1 || end == -1 || end <= start {
		t.Fatalf("Could not find timestamp in output: %s", output)
	}

	if _, err := time.Parse(timestampFormat, output[start+1:end]); err != nil {
		t.Errorf("Invalid timestamp format '%s': %v", output[start+1:end], err)
	}
}
