package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"intakebot/pkg/config"
)

// EnvSecretsPassword supplies the secrets-file password when stdin is not a terminal.
const EnvSecretsPassword = "INTAKE_SECRETS_PASSWORD"

var errNoPassword = errors.New("no secrets password available")

var secretsDir string

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage the encrypted credentials file",
}

var secretsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Encrypt provider API keys from the environment into the secrets file",
	Long: `init collects ANTHROPIC_API_KEY, OPENAI_API_KEY and GOOGLE_GENAI_API_KEY from the
environment (after loading .env) and writes them to an encrypted secrets file.`,
	RunE: runSecretsInit,
}

func init() {
	secretsCmd.PersistentFlags().StringVar(&secretsDir, "dir", ".", "directory holding "+config.SecretsFileName)
	secretsCmd.AddCommand(secretsInitCmd)
	rootCmd.AddCommand(secretsCmd)
}

func runSecretsInit(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	secrets := collectProviderKeys()
	if len(secrets) == 0 {
		return fmt.Errorf("no provider API keys found in environment")
	}

	password, err := readNewPassword()
	if err != nil {
		return err
	}

	if err := config.EncryptSecretsFile(secretsDir, password, secrets); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %d secret(s) to %s\n", len(secrets), config.SecretsFileName)
	return nil
}

func collectProviderKeys() map[string]string {
	secrets := make(map[string]string)
	for _, name := range []string{config.EnvAnthropicAPIKey, config.EnvOpenAIAPIKey, config.EnvGoogleAPIKey} {
		if value := os.Getenv(name); value != "" {
			secrets[name] = value
		}
	}
	return secrets
}

// unlockSecrets decrypts the secrets file in dir if there is one. The password comes
// from the terminal, or from INTAKE_SECRETS_PASSWORD when stdin is not interactive.
func unlockSecrets(dir string) error {
	if !config.SecretsFileExists(dir) {
		return nil
	}

	password, err := secretsPassword()
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFile(dir, password); err != nil {
		return fmt.Errorf("failed to unlock secrets file: %w", err)
	}
	return nil
}

func secretsPassword() (string, error) {
	if password := os.Getenv(EnvSecretsPassword); password != "" {
		return password, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%w: set %s or run interactively", errNoPassword, EnvSecretsPassword)
	}
	return promptForPassword("Secrets file password: ")
}

func readNewPassword() (string, error) {
	if password := os.Getenv(EnvSecretsPassword); password != "" {
		return password, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%w: set %s or run interactively", errNoPassword, EnvSecretsPassword)
	}

	password, err := promptForPassword("New secrets password: ")
	if err != nil {
		return "", err
	}
	confirm, err := promptForPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

// promptForPassword reads a password from the terminal without echo.
func promptForPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimSpace(string(passwordBytes))
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}
