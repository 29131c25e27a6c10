// Package config resolves runtime configuration from the environment and the
// shared settings store.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alanmaizon/qalam/internal/executor"
	"github.com/alanmaizon/qalam/internal/llm"
	"github.com/alanmaizon/qalam/internal/settings"
)

const (
	defaultPort                 = "8080"
	defaultAIRateLimitPerMinute = 30
)

type Config struct {
	Port                 string
	SettingsPath         string
	AIRateLimitPerMinute int
	LLM                  llm.Settings
	Settings             settings.Values
}

// Load reads the environment and falls back to the store for the Gemini API
// key. A nil store means environment only.
func Load(store settings.Store) Config {
	values := settings.Default()
	if store != nil {
		values = store.Values()
	}

	llmSettings := llm.SettingsFromEnv()
	if llmSettings.APIKey == "" {
		llmSettings.APIKey = values.GeminiAPIKey
	}

	return Config{
		Port:                 envOrDefault("PORT", defaultPort),
		SettingsPath:         SettingsPath(),
		AIRateLimitPerMinute: intFromEnv("AI_RATE_LIMIT_PER_MINUTE", defaultAIRateLimitPerMinute),
		LLM:                  llmSettings,
		Settings:             values,
	}
}

// AIEnabled reports whether the requested provider can actually run. The
// mock provider needs no credentials.
func (c Config) AIEnabled() bool {
	switch c.LLM.RequestedProvider() {
	case "mock":
		return true
	case "openai":
		return c.LLM.OpenAIKey != ""
	default:
		return c.LLM.APIKey != ""
	}
}

func (c Config) ExecutorPolicy() executor.Policy {
	return executor.Policy{
		AIEnabled:     c.AIEnabled(),
		MaxTextLength: c.Settings.MaxTextLength,
	}
}

// PolicySource re-resolves the policy on every call so settings edits apply
// without a restart.
func PolicySource(store settings.Store) func() executor.Policy {
	return func() executor.Policy {
		return Load(store).ExecutorPolicy()
	}
}

// SettingsPath is QALAM_SETTINGS or settings.toml in the user config dir.
func SettingsPath() string {
	if path := strings.TrimSpace(os.Getenv("QALAM_SETTINGS")); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "qalam-settings.toml")
	}
	return filepath.Join(dir, "qalam", "settings.toml")
}

func envOrDefault(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func intFromEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
