package playground

import (
	"testing"
	"time"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/alanmaizon/qalam/internal/executor"
	"github.com/alanmaizon/qalam/internal/llm"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(generator llm.Generator, text string) Model {
	return New(Config{Generator: generator, Policy: executor.DefaultPolicy, InitialText: text})
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "f1":
		msg = tea.KeyMsg{Type: tea.KeyF1}
	case "f4":
		msg = tea.KeyMsg{Type: tea.KeyF4}
	case "ctrl+k":
		msg = tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+r":
		msg = tea.KeyMsg{Type: tea.KeyCtrlR}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "shift+left":
		msg = tea.KeyMsg{Type: tea.KeyShiftLeft}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// settle runs cmd and feeds every command result back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, inner := range batch {
			m = settle(t, m, inner)
		}
		return m
	}
	if done, ok := msg.(commandDoneMsg); ok {
		updated, _ := m.Update(done)
		return updated.(Model)
	}
	return m
}

func TestTypingEditsDocument(t *testing.T) {
	m := newTestModel(&llm.StubGenerator{}, "")
	m, _ = press(m, "hi")
	m, _ = press(m, " there")
	m, _ = press(m, "backspace")
	m, _ = press(m, "enter")

	assert.Equal(t, "hi ther\n", m.Document().Text())
}

func TestToolbarShortcutRunsProofread(t *testing.T) {
	stub := &llm.StubGenerator{Text: "World."}
	m := newTestModel(stub, "Hello. wrld")

	m, cmd := press(m, "f1")
	m = settle(t, m, cmd)

	assert.Equal(t, "Hello. World.", m.Document().Text())
	assert.Equal(t, domain.CommandProofread, stub.Requests()[0].Command)
	assert.False(t, m.failed)
	assert.Contains(t, m.status, "toolbar: proofread done via stub")
}

func TestPaletteRunsFuzzyMatchOnMenu(t *testing.T) {
	stub := &llm.StubGenerator{Text: "Formal text"}
	m := newTestModel(stub, "casual text")

	m, _ = press(m, "ctrl+k")
	require.Equal(t, modePalette, m.mode)
	m, _ = press(m, "formlz")
	selected, ok := m.palette.selected()
	require.True(t, ok)
	assert.Equal(t, domain.CommandFormalize, selected)

	m, cmd := press(m, "enter")
	m = settle(t, m, cmd)

	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "Formal text", m.Document().Text())
}

func TestPaletteEscapeKeepsDocument(t *testing.T) {
	m := newTestModel(&llm.StubGenerator{}, "text")
	m, _ = press(m, "ctrl+k")
	m, cmd := press(m, "esc")

	assert.Nil(t, cmd)
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "text", m.Document().Text())
}

func TestSmartRepliesInsertChosenReply(t *testing.T) {
	m := newTestModel(&llm.StubGenerator{Text: "unused"}, "مرحبا")

	m, cmd := press(m, "ctrl+r")
	m = settle(t, m, cmd)
	require.Equal(t, modeReplies, m.mode)
	require.Len(t, m.replies, 3)

	m, _ = press(m, "2")
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "مرحبامرحباً", m.Document().Text())
}

func TestFailureShowsMessageAndKeepsText(t *testing.T) {
	stub := &llm.StubGenerator{Err: &llm.GenerationError{Provider: "stub", Kind: llm.KindTransport}}
	m := newTestModel(stub, "keep me")

	m, cmd := press(m, "f4")
	m = settle(t, m, cmd)

	assert.True(t, m.failed)
	assert.Contains(t, m.status, "Could not reach the AI service")
	assert.Equal(t, "keep me", m.Document().Text())
}

func TestShiftLeftSelectsForCommands(t *testing.T) {
	stub := &llm.StubGenerator{Text: "two"}
	m := newTestModel(stub, "one 2")

	m, _ = press(m, "shift+left")
	m, cmd := press(m, "f4")
	m = settle(t, m, cmd)

	assert.Equal(t, "one two", m.Document().Text())
}

func TestSpinnerStopsWhenIdle(t *testing.T) {
	m := newTestModel(&llm.StubGenerator{}, "")
	_, cmd := m.Update(m.spinner.Tick())
	assert.Nil(t, cmd)
}

func TestViewRendersSurfaces(t *testing.T) {
	stub := &llm.StubGenerator{Text: "x", Block: make(chan struct{})}
	m := newTestModel(stub, "busy text")

	_, cmd := press(m, "f4")
	batch := cmd().(tea.BatchMsg)
	done := make(chan tea.Msg, 1)
	go func() { done <- batch[0]() }()

	require.Eventually(t, func() bool { return m.executors[domain.SurfaceToolbar].State().Busy }, time.Second, 5*time.Millisecond)
	view := m.View()
	assert.Contains(t, view, "toolbar improve")
	assert.Contains(t, view, "menu idle")

	close(stub.Block)
	<-done
}
