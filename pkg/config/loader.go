package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"intakebot/pkg/logx"
)

// EnvPrefix prefixes environment overrides, e.g. INTAKE_MAX_TURNS.
const EnvPrefix = "INTAKE_"

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process environment
// without overriding variables that are already set. With no paths it tries ./.env.
// Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return &ConfigurationError{Setting: "env file", Err: fmt.Errorf("failed to load %s: %w", path, err)}
		}
		logx.NewLogger("config").Debug("Loaded environment from %s", path)
	}
	return nil
}

// LoadSessionConfig resolves the session configuration from defaults, the optional JSON
// file at configPath (empty means none), and INTAKE_* environment overrides.
func LoadSessionConfig(configPath string) (SessionConfig, error) {
	cfg := DefaultSessionConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return SessionConfig{}, &ConfigurationError{Setting: "config file", Err: fmt.Errorf("failed to read config file: %w", err)}
		}

		// Replace environment variable placeholders.
		dataStr := envVarRegex.ReplaceAllStringFunc(string(data), func(match string) string {
			envVar := match[2 : len(match)-1]
			if value := os.Getenv(envVar); value != "" {
				return value
			}
			return match
		})

		// Unset fields keep their defaults.
		if err := json.Unmarshal([]byte(dataStr), &cfg); err != nil {
			return SessionConfig{}, &ConfigurationError{Setting: "config file", Err: fmt.Errorf("failed to parse config JSON: %w", err)}
		}
	}

	applyEnvOverrides(&cfg)

	provider, err := cfg.ResolveProvider()
	if err != nil {
		return SessionConfig{}, err
	}
	cfg.Provider = provider

	if err := cfg.Validate(); err != nil {
		return SessionConfig{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *SessionConfig) {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		jsonTag := t.Field(i).Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		fieldName := strings.Split(jsonTag, ",")[0]
		if envValue := os.Getenv(EnvPrefix + strings.ToUpper(fieldName)); envValue != "" {
			setFieldFromEnv(v.Field(i), envValue)
		}
	}
}

func setFieldFromEnv(field reflect.Value, envValue string) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(envValue)
	case reflect.Int:
		if val, err := strconv.Atoi(envValue); err == nil {
			field.SetInt(int64(val))
		}
	case reflect.Float64:
		if val, err := strconv.ParseFloat(envValue, 64); err == nil {
			field.SetFloat(val)
		}
	}
}
