// Package main provides the intake command-line interface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"intakebot/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Requirements-gathering chat for custom AI agents",
	Long: `intake runs a bounded conversation with a language model to collect the
requirements for a custom AI agent. The session ends when the assistant emits a
structured requirements document or the turn limit is reached.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
