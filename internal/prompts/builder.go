// Package prompts turns a command and its operative text into the single
// instruction string sent to the generation endpoint.
package prompts

import (
	"strings"

	"github.com/alanmaizon/qalam/internal/domain"
)

const autoDetected = "auto-detected"

// Build composes the command template with a labeled section carrying the
// operative text and, where the command takes them, its auxiliary
// parameters. The output is a pure function of req.
func Build(req domain.ExecutionRequest) string {
	var builder strings.Builder
	builder.WriteString(Template(req.Command))
	builder.WriteString("\n\n")

	switch req.Command.Info().Family {
	case domain.FamilyCode:
		writeCodeSection(&builder, req)
	default:
		writeTextSection(&builder, req)
	}
	return builder.String()
}

func writeTextSection(builder *strings.Builder, req domain.ExecutionRequest) {
	if req.Command == domain.CommandTranslate && strings.TrimSpace(req.TargetLanguage) != "" {
		builder.WriteString("Target language: " + strings.TrimSpace(req.TargetLanguage) + "\n")
	}
	if req.Command == domain.CommandReply {
		builder.WriteString("Message:\n")
	} else {
		builder.WriteString("Text:\n")
	}
	builder.WriteString(req.SourceText)
}

func writeCodeSection(builder *strings.Builder, req domain.ExecutionRequest) {
	source := languageLabel(req.SourceLanguage, req.SourceText)

	switch req.Command {
	case domain.CommandGenerate:
		builder.WriteString("Language: " + targetLabel(req.TargetLanguage, req.SourceLanguage) + "\n")
		builder.WriteString("Description:\n")
		builder.WriteString(req.SourceText)
		return
	case domain.CommandConvert:
		builder.WriteString("Source language: " + source + "\n")
		builder.WriteString("Target language: " + targetLabel(req.TargetLanguage, "") + "\n")
	default:
		builder.WriteString("Language: " + source + "\n")
	}

	if req.Command == domain.CommandFix && strings.TrimSpace(req.ErrorContext) != "" {
		builder.WriteString("Error message: " + strings.TrimSpace(req.ErrorContext) + "\n")
	}

	builder.WriteString("Code:\n```\n")
	builder.WriteString(req.SourceText)
	builder.WriteString("\n```")
}

func languageLabel(explicit string, code string) string {
	if lang, ok := domain.ParseProgrammingLanguage(explicit); ok {
		return lang.DisplayName()
	}
	if strings.TrimSpace(explicit) != "" {
		return strings.TrimSpace(explicit)
	}
	if lang, ok := DetectLanguage(code); ok {
		return lang.DisplayName()
	}
	return autoDetected
}

func targetLabel(target string, fallback string) string {
	for _, candidate := range []string{target, fallback} {
		if lang, ok := domain.ParseProgrammingLanguage(candidate); ok {
			return lang.DisplayName()
		}
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return domain.LangSwift.DisplayName()
}
