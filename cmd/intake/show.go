package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"intakebot/pkg/conversation"
	"intakebot/pkg/intake"
	"intakebot/pkg/utils"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show <state-file>",
	Short: "Print a summary of an exported session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exported, err := readExportedState(args[0])
		if err != nil {
			return err
		}
		if showRaw {
			data, err := json.MarshalIndent(exported, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		printExportedState(cmd.OutOrStdout(), exported)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "json", false, "print the state as indented JSON")
	rootCmd.AddCommand(showCmd)
}

// printExportedState writes a human-readable session summary.
func printExportedState(w io.Writer, exported *intake.ExportedState) {
	fmt.Fprintf(w, "Model: %s (temperature %.2f, max tokens %d)\n",
		exported.Config.Model, exported.Config.Temperature, exported.Config.MaxTokens)

	rec := exported.Conversation
	if rec == nil {
		fmt.Fprintln(w, "No conversation recorded.")
		return
	}

	fmt.Fprintf(w, "Turns: %d\n", rec.TurnCount)
	fmt.Fprintf(w, "Complete: %t\n", rec.IsComplete)
	fmt.Fprintln(w, contextSummary(rec.Layer0Context))
	fmt.Fprintln(w, separator)

	tokens := 0
	for i := range rec.Messages {
		msg := &rec.Messages[i]
		tokens += utils.CountTokensSimple(msg.Content)
		fmt.Fprintf(w, "%s: %s\n\n", speakerLabel(msg.Role), msg.Content)
	}
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Messages: %d (~%d tokens)\n", len(rec.Messages), tokens)

	if rec.Requirements != nil {
		data, err := json.MarshalIndent(rec.Requirements, "", "  ")
		if err == nil {
			fmt.Fprintln(w, "Requirements:")
			fmt.Fprintln(w, string(data))
		}
	}
}

func contextSummary(initiating conversation.InitiatingContext) string {
	if len(initiating) == 0 {
		return "Context: (none)"
	}
	state := conversation.New(conversation.DefaultTurnLimits(), initiating)
	return strings.TrimSpace(state.BuildContextSummary())
}

func speakerLabel(role conversation.Role) string {
	if role == conversation.RoleAssistant {
		return "Bot"
	}
	return "You"
}
