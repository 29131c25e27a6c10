// Package settings is the shared key-value store the keyboard and its host
// app both read. Keys are fixed.
package settings

import (
	"fmt"
	"strconv"
	"strings"
)

type Key string

const (
	KeyGeminiAPIKey     Key = "gemini_api_key"
	KeySelectedTheme    Key = "selected_theme"
	KeySelectedLanguage Key = "selected_language"
	KeyIsProEnabled     Key = "is_pro_enabled"
	KeyMaxTextLength    Key = "max_text_length"
)

var Keys = []Key{KeyGeminiAPIKey, KeySelectedTheme, KeySelectedLanguage, KeyIsProEnabled, KeyMaxTextLength}

type Values struct {
	GeminiAPIKey     string `toml:"gemini_api_key,omitempty"`
	SelectedTheme    string `toml:"selected_theme,omitempty"`
	SelectedLanguage string `toml:"selected_language,omitempty"`
	IsProEnabled     bool   `toml:"is_pro_enabled"`
	MaxTextLength    int    `toml:"max_text_length,omitempty"`
}

func Default() Values {
	return Values{
		SelectedTheme:    "system",
		SelectedLanguage: "ar",
		MaxTextLength:    5000,
	}
}

func (v *Values) normalize() {
	defaults := Default()
	v.GeminiAPIKey = strings.TrimSpace(v.GeminiAPIKey)
	if v.SelectedTheme == "" {
		v.SelectedTheme = defaults.SelectedTheme
	}
	if v.SelectedLanguage == "" {
		v.SelectedLanguage = defaults.SelectedLanguage
	}
	if v.MaxTextLength <= 0 {
		v.MaxTextLength = defaults.MaxTextLength
	}
}

// Get returns the string form of key.
func (v Values) Get(key Key) (string, bool) {
	switch key {
	case KeyGeminiAPIKey:
		return v.GeminiAPIKey, v.GeminiAPIKey != ""
	case KeySelectedTheme:
		return v.SelectedTheme, true
	case KeySelectedLanguage:
		return v.SelectedLanguage, true
	case KeyIsProEnabled:
		return strconv.FormatBool(v.IsProEnabled), true
	case KeyMaxTextLength:
		return strconv.Itoa(v.MaxTextLength), true
	default:
		return "", false
	}
}

// With returns a copy of v with key set from its string form.
func (v Values) With(key Key, raw string) (Values, error) {
	raw = strings.TrimSpace(raw)
	switch key {
	case KeyGeminiAPIKey:
		v.GeminiAPIKey = raw
	case KeySelectedTheme:
		v.SelectedTheme = raw
	case KeySelectedLanguage:
		v.SelectedLanguage = raw
	case KeyIsProEnabled:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return v, fmt.Errorf("%s must be true or false: %w", key, err)
		}
		v.IsProEnabled = parsed
	case KeyMaxTextLength:
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return v, fmt.Errorf("%s must be a positive integer", key)
		}
		v.MaxTextLength = parsed
	default:
		return v, fmt.Errorf("unknown settings key %q", key)
	}
	v.normalize()
	return v, nil
}

// Store is implemented by FileStore and MemoryStore.
type Store interface {
	Values() Values
	Set(key Key, value string) error
}
