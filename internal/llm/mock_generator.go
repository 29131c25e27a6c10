package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/alanmaizon/qalam/internal/domain"
)

// MockGenerator answers without network access. It is the fallback when no
// provider can be configured and keeps the playground usable offline.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) Name() string {
	return "mock"
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	return observeGeneration(ctx, m.Name(), req.Command, func() (string, error) {
		if err := ctx.Err(); err != nil {
			return "", transportError(m.Name(), err)
		}

		subject := lastSection(req.Instruction)
		if req.Command == domain.CommandReply {
			return Finalize(mockReplies(subject), req), nil
		}

		text := fmt.Sprintf("[mock %s] %s", req.Command, subject)
		if req.Command.Info().Family == domain.FamilyCode {
			text = "```\n" + text + "\n```"
		}
		return Finalize(text, req), nil
	})
}

// lastSection returns the payload that follows the final label line of a
// built instruction, without any code fence around it.
func lastSection(instruction string) string {
	trimmed := strings.TrimSpace(instruction)
	trimmed = strings.TrimSuffix(trimmed, codeFence)
	for _, label := range []string{"Code:\n" + codeFence + "\n", "Description:\n", "Message:\n", "Text:\n"} {
		if index := strings.LastIndex(trimmed, label); index >= 0 {
			return strings.TrimSpace(trimmed[index+len(label):])
		}
	}
	return trimmed
}

func mockReplies(message string) string {
	short := message
	if runes := []rune(short); len(runes) > 40 {
		short = string(runes[:40]) + "…"
	}
	return strings.Join([]string{
		"POSITIVE: Sounds great, thanks for the message!",
		"NEUTRAL: Noted: " + short,
		"FORMAL: Thank you for your message. I will respond shortly.",
		"FRIENDLY: Got it, talk soon!",
	}, "\n")
}
