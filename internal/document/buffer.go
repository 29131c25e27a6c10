// Package document is an in-memory stand-in for the host text proxy. It is
// what the HTTP surfaces and the playground edit.
package document

import (
	"strings"
	"sync"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/rivo/uniseg"
)

// Buffer holds text split around the cursor. A non-empty selection sits
// between before and after. Counts are in grapheme clusters.
type Buffer struct {
	mu       sync.Mutex
	before   string
	selected string
	after    string
}

func NewBuffer(before string) *Buffer {
	return &Buffer{before: before}
}

func FromState(state domain.DocumentState) *Buffer {
	return &Buffer{
		before:   state.TextBeforeCursor,
		selected: state.SelectedText,
		after:    state.TextAfterCursor,
	}
}

// TextBeforeCursor reports false when nothing precedes the cursor, matching
// a host proxy that returns no value for an empty context.
func (b *Buffer) TextBeforeCursor() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.before, b.before != ""
}

func (b *Buffer) SelectedText() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected, b.selected != ""
}

func (b *Buffer) TextAfterCursor() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.after
}

// DeleteBackward removes count grapheme clusters. The selection is consumed
// first, then text before the cursor.
func (b *Buffer) DeleteBackward(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if count <= 0 {
		return
	}
	if b.selected != "" {
		count -= uniseg.GraphemeClusterCount(b.selected)
		b.selected = ""
	}
	if count > 0 {
		b.before = dropLast(b.before, count)
	}
}

// InsertText replaces the selection, if any, and leaves the cursor after the
// inserted text.
func (b *Buffer) InsertText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.selected = ""
	b.before += text
}

// AdjustCursorOffset collapses the selection and moves the cursor by offset
// grapheme clusters, clamped to the text bounds.
func (b *Buffer) AdjustCursorOffset(offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.before += b.selected
	b.selected = ""

	switch {
	case offset < 0:
		clusters := splitGraphemes(b.before)
		n := min(-offset, len(clusters))
		moved := strings.Join(clusters[len(clusters)-n:], "")
		b.before = strings.Join(clusters[:len(clusters)-n], "")
		b.after = moved + b.after
	case offset > 0:
		clusters := splitGraphemes(b.after)
		n := min(offset, len(clusters))
		b.before += strings.Join(clusters[:n], "")
		b.after = strings.Join(clusters[n:], "")
	}
}

// Select marks the last count grapheme clusters before the cursor as the
// selection.
func (b *Buffer) Select(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	whole := b.before + b.selected
	clusters := splitGraphemes(whole)
	n := max(0, min(count, len(clusters)))
	b.before = strings.Join(clusters[:len(clusters)-n], "")
	b.selected = strings.Join(clusters[len(clusters)-n:], "")
}

// Text returns the full document content.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.before + b.selected + b.after
}

func (b *Buffer) Snapshot() domain.DocumentState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.DocumentState{
		TextBeforeCursor: b.before,
		SelectedText:     b.selected,
		TextAfterCursor:  b.after,
	}
}

func dropLast(text string, count int) string {
	clusters := splitGraphemes(text)
	if count >= len(clusters) {
		return ""
	}
	return strings.Join(clusters[:len(clusters)-count], "")
}

func splitGraphemes(text string) []string {
	clusters := make([]string, 0, len(text))
	graphemes := uniseg.NewGraphemes(text)
	for graphemes.Next() {
		clusters = append(clusters, graphemes.Str())
	}
	return clusters
}
