// Package textctx derives the operative text of a command from the state of
// the host document: the selection when there is one, otherwise a span taken
// from the text before the cursor.
package textctx

import (
	"strings"
	"unicode"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/rivo/uniseg"
)

// Source is the read side of the host document proxy. The boolean reports
// whether the host supplied a value at all.
type Source interface {
	TextBeforeCursor() (string, bool)
	SelectedText() (string, bool)
}

// Strategy computes the operative text from a selection and the text before
// the cursor. It is pure and may be re-run at mutation time.
type Strategy func(selectedText string, textBeforeCursor string) string

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '؟', '。', '\n':
		return true
	}
	return false
}

// Extract applies the last-sentence heuristic. A sentence keeps the run of
// terminators that closes it, so "Hello. World" yields "World" and
// "مرحبا. كيف حالك؟" yields "كيف حالك؟". When no segment carries any text the
// whole buffer, trimmed, is returned.
func Extract(selectedText string, textBeforeCursor string) string {
	if selectedText != "" {
		return selectedText
	}
	segments := splitSentences(textBeforeCursor)
	for i := len(segments) - 1; i >= 0; i-- {
		if !hasContent(segments[i]) {
			continue
		}
		return strings.TrimSpace(segments[i])
	}
	return strings.TrimSpace(textBeforeCursor)
}

// ExtractBuffer returns the selection, else the whole text before the cursor
// trimmed. Code commands use it since source code spans many lines.
func ExtractBuffer(selectedText string, textBeforeCursor string) string {
	if selectedText != "" {
		return selectedText
	}
	return strings.TrimSpace(textBeforeCursor)
}

func ForScope(scope domain.ContextScope) Strategy {
	if scope == domain.ScopeBuffer {
		return ExtractBuffer
	}
	return Extract
}

// FromSource reads the document and applies the strategy. Absent values are
// treated as empty.
func FromSource(src Source, strategy Strategy) string {
	selected, ok := src.SelectedText()
	if !ok {
		selected = ""
	}
	before, ok := src.TextBeforeCursor()
	if !ok {
		before = ""
	}
	return strategy(selected, before)
}

// SpanLength counts user-perceived characters, which is the unit the host
// removes per backward deletion.
func SpanLength(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

func splitSentences(text string) []string {
	if text == "" {
		return nil
	}
	var segments []string
	start := 0
	inTerminators := false
	for i, r := range text {
		switch {
		case isTerminator(r):
			inTerminators = true
		case inTerminators:
			segments = append(segments, text[start:i])
			start = i
			inTerminators = false
		}
	}
	segments = append(segments, text[start:])
	return segments
}

func hasContent(segment string) bool {
	for _, r := range segment {
		if !isTerminator(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
