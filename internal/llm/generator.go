package llm

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/alanmaizon/qalam/internal/domain"
)

// Request is one generation call. Instruction is sent verbatim.
type Request struct {
	Command        domain.Command
	Instruction    string
	Params         domain.GenerationParams
	TimeoutClass   domain.TimeoutClass
	StripCodeFence bool
}

// NewRequest fills the command-specific defaults for instruction.
func NewRequest(command domain.Command, instruction string) Request {
	info := command.Info()
	return Request{
		Command:        command,
		Instruction:    instruction,
		Params:         info.Params,
		TimeoutClass:   info.Timeout,
		StripCodeFence: info.StripCode,
	}
}

// Generator performs one stateless generation call. Implementations are safe
// for concurrent use and never retry; every failure is a *GenerationError.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Settings selects and configures a Generator.
type Settings struct {
	Provider      string
	APIKey        string
	Model         string
	Endpoint      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
}

func SettingsFromEnv() Settings {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}
	return Settings{
		Provider:      strings.TrimSpace(os.Getenv("LLM_PROVIDER")),
		APIKey:        apiKey,
		Model:         strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		Endpoint:      strings.TrimSpace(os.Getenv("GEMINI_ENDPOINT")),
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:   strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
	}
}

// RequestedProvider is the provider name settings ask for.
func (s Settings) RequestedProvider() string {
	if s.Provider == "" {
		return "gemini"
	}
	return s.Provider
}

// NewGenerator builds the requested generator and falls back to the mock
// when it cannot be configured.
func NewGenerator(settings Settings) Generator {
	switch settings.RequestedProvider() {
	case "gemini":
		if client, err := NewGeminiClient(settings); err == nil {
			return client
		}
	case "genai":
		if generator, err := NewGenAIGenerator(context.Background(), settings); err == nil {
			return generator
		}
	case "openai":
		if generator, err := NewOpenAIGenerator(settings); err == nil {
			return generator
		}
	}
	return NewMockGenerator()
}

func NewGeneratorFromEnv() Generator {
	return NewGenerator(SettingsFromEnv())
}

var (
	currentMu        sync.RWMutex
	currentGenerator Generator
)

// CurrentGenerator returns the process-wide generator, building it from the
// environment on first use.
func CurrentGenerator() Generator {
	currentMu.RLock()
	generator := currentGenerator
	currentMu.RUnlock()
	if generator != nil {
		return generator
	}

	currentMu.Lock()
	defer currentMu.Unlock()
	if currentGenerator == nil {
		currentGenerator = NewGeneratorFromEnv()
	}
	return currentGenerator
}

func SetGenerator(generator Generator) {
	if generator == nil {
		return
	}
	currentMu.Lock()
	currentGenerator = generator
	currentMu.Unlock()
}
