package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"intakebot/pkg/agent/middleware/metrics"
	"intakebot/pkg/intake"
)

// Files written by the shell's export and save commands.
const (
	StateFileName        = "intake_state.json"
	RequirementsFileName = "requirements_output.json"
)

var (
	separator = strings.Repeat("-", 60)
	rule      = strings.Repeat("=", 60)
)

// Shell is the line-oriented chat loop. It owns no session state of its own; the
// orchestrator holds the conversation and the recorder holds usage.
type Shell struct {
	orch      *intake.Orchestrator
	in        *bufio.Scanner
	out       io.Writer
	usage     *metrics.InternalRecorder
	outputDir string
	restored  bool
}

// NewShell creates a shell reading commands from in and writing to out. Exported files
// land in outputDir. usage may be nil.
func NewShell(orch *intake.Orchestrator, in io.Reader, out io.Writer, usage *metrics.InternalRecorder, outputDir string) *Shell {
	return &Shell{
		orch:      orch,
		in:        bufio.NewScanner(in),
		out:       out,
		usage:     usage,
		outputDir: outputDir,
	}
}

// Run drives the session until the user quits, input ends, requirements are complete,
// or the turn limit is reached.
func (s *Shell) Run(ctx context.Context) error {
	s.printBanner()

	if s.restored && s.orch.TurnCount() > 0 {
		s.println()
		s.printf("Resumed session at turn %d/%d.\n", s.orch.TurnCount(), s.orch.Config().MaxTurns)
		s.println(separator)
	} else {
		s.println()
		s.println("Starting conversation...")
		s.println(separator)
		if done := s.handleResult(s.orch.StartConversation(ctx)); done {
			return s.finish()
		}
	}

	for ctx.Err() == nil {
		line, ok := s.readLine("You: ")
		if !ok {
			s.println("\n\nSession ended by user.")
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit":
			s.println("\nEnding session...")
			return s.finish()
		case "status":
			s.printSessionStatus()
			continue
		case "export":
			if err := s.exportState(); err != nil {
				s.printf("\n❌ Export failed: %v\n", err)
			}
			s.println(separator)
			continue
		}

		if done := s.handleResult(s.orch.SendMessage(ctx, input)); done {
			break
		}
	}

	return s.finish()
}

// handleResult prints one turn and reports whether the session is over.
func (s *Shell) handleResult(result intake.Result) bool {
	s.println()
	s.printf("Bot: %s\n", result.Response)
	s.println()
	s.printTurnStatus(result)
	s.println(separator)

	if result.Complete {
		s.println()
		s.println(rule)
		s.println("REQUIREMENTS GATHERING COMPLETE")
		s.println(rule)
		s.println()
		s.println("Final Requirements:")
		s.printJSON(result.Requirements)
		s.println()
		s.offerSave(result.Requirements)
		return true
	}

	if result.AtLimit {
		s.println()
		s.println("Turn limit reached. Session ending.")
		if reqs := s.orch.Requirements(); reqs != nil {
			s.println("Partial requirements gathered:")
			s.printJSON(reqs)
		}
		return true
	}

	return false
}

func (s *Shell) printBanner() {
	s.println(rule)
	s.println("Intake Bot - Requirements Gathering")
	s.println(rule)
	s.println()
	s.println("This bot will gather requirements for your custom AI agent.")
	s.println("Type 'quit' or 'exit' to end the session.")
	s.println("Type 'status' to see current progress.")
	s.println("Type 'export' to save the conversation state.")
	s.println()
	s.println(separator)
}

func (s *Shell) printTurnStatus(result intake.Result) {
	parts := []string{fmt.Sprintf("Turn: %d/%d", result.Turn, s.orch.Config().MaxTurns)}
	if result.Complete {
		parts = append(parts, "STATUS: COMPLETE")
	} else if result.ApproachingLimit {
		parts = append(parts, "WARNING: Approaching turn limit")
	}
	s.printf("[%s]\n", strings.Join(parts, " | "))
}

func (s *Shell) printSessionStatus() {
	info := s.orch.TurnInfo()
	s.println()
	s.printf("Current turn: %d\n", info.CurrentTurn)
	s.printf("Max turns: %d\n", info.MaxTurns)
	s.printf("Complete: %t\n", s.orch.IsComplete())
	if s.orch.IsComplete() {
		s.println("Requirements have been gathered successfully!")
	}
	s.printUsage()
	s.println(separator)
}

func (s *Shell) printUsage() {
	if s.usage == nil {
		return
	}
	m := s.usage.GetSessionMetrics(s.orch.SessionID())
	if m == nil {
		return
	}
	s.printf("LLM requests: %d (%d failed)\n", m.RequestCount, m.FailedCount)
	s.printf("Tokens: %d prompt, %d completion\n", m.PromptTokens, m.CompletionTokens)
	if m.TotalCost > 0 {
		s.printf("Estimated cost: $%.4f\n", m.TotalCost)
	}
}

func (s *Shell) exportState() error {
	path := filepath.Join(s.outputDir, StateFileName)
	if err := writeJSONFile(path, s.orch.ExportState()); err != nil {
		return err
	}
	s.printf("\nState exported to %s\n", path)
	return nil
}

func (s *Shell) offerSave(requirements map[string]any) {
	answer, ok := s.readLine("Save requirements to file? (y/n): ")
	if !ok || strings.ToLower(strings.TrimSpace(answer)) != "y" {
		return
	}

	path := filepath.Join(s.outputDir, RequirementsFileName)
	if err := writeJSONFile(path, requirements); err != nil {
		s.printf("❌ Failed to save requirements: %v\n", err)
		return
	}
	s.printf("Requirements saved to %s\n", path)
}

func (s *Shell) finish() error {
	s.println()
	s.println("Thank you for using the Intake Bot.")
	s.printf("Total turns: %d\n", s.orch.TurnCount())
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func (s *Shell) readLine(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Shell) printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.printf("(unprintable: %v)\n", err)
		return
	}
	s.println(string(data))
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
