// Package playground is a terminal host for the command engine. It stands in
// for the keyboard framework: a text buffer, a toolbar, a command palette and
// a smart-reply sheet, each bound to its own surface.
package playground

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/alanmaizon/qalam/internal/document"
	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/alanmaizon/qalam/internal/executor"
	"github.com/alanmaizon/qalam/internal/llm"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// toolbar shortcuts, in key order f1..f4
var toolbarCommands = []domain.Command{
	domain.CommandProofread,
	domain.CommandTranslate,
	domain.CommandDiacritize,
	domain.CommandImprove,
}

type Config struct {
	Generator      llm.Generator
	Policy         func() executor.Policy
	InitialText    string
	TargetLanguage string
}

type mode int

const (
	modeEdit mode = iota
	modePalette
	modeReplies
)

type commandDoneMsg struct {
	surface domain.Surface
	outcome executor.Outcome
	err     error
}

type Model struct {
	doc       *document.Buffer
	executors map[domain.Surface]*executor.Executor
	target    string

	mode      mode
	palette   palette
	replies   []domain.ReplyCandidate
	selection int

	spinner spinner.Model
	status  string
	failed  bool
	width   int
}

func New(cfg Config) Model {
	opts := executor.Options{
		Generator: cfg.Generator,
		Policy:    cfg.Policy,
		Feedback: executor.FeedbackFunc(func(kind string) {
			log.Printf("request_id=- component=playground event=feedback kind=%s", kind)
		}),
	}
	executors := make(map[domain.Surface]*executor.Executor, 3)
	for _, surface := range []domain.Surface{domain.SurfaceToolbar, domain.SurfaceMenu, domain.SurfaceSheet} {
		executors[surface] = executor.New(surface, opts)
	}

	target := cfg.TargetLanguage
	if target == "" {
		target = "English"
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = accentStyle

	return Model{
		doc:       document.NewBuffer(cfg.InitialText),
		executors: executors,
		target:    target,
		palette:   newPalette(),
		spinner:   spin,
		status:    "F1 proofread · F2 translate · F3 diacritize · F4 improve · ctrl+k commands · ctrl+r replies",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.anyBusy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commandDoneMsg:
		return m.handleDone(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modePalette:
			return m.updatePalette(msg)
		case modeReplies:
			return m.updateReplies(msg)
		default:
			return m.updateEdit(msg)
		}
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		return m, tea.Quit
	case "f1", "f2", "f3", "f4":
		command := toolbarCommands[int(key[1]-'1')]
		return m, m.run(domain.SurfaceToolbar, command)
	case "ctrl+k":
		m.mode = modePalette
		m.palette.reset()
		return m, nil
	case "ctrl+r":
		return m, m.suggestReplies()
	case "backspace":
		m.doc.DeleteBackward(1)
		m.selection = 0
	case "enter":
		m.doc.InsertText("\n")
		m.selection = 0
	case "left":
		m.doc.AdjustCursorOffset(-1)
		m.selection = 0
	case "right":
		m.doc.AdjustCursorOffset(1)
		m.selection = 0
	case "shift+left":
		m.selection++
		m.doc.Select(m.selection)
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.doc.InsertText(string(msg.Runes))
			if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
				m.doc.InsertText(" ")
			}
			m.selection = 0
		}
	}
	return m, nil
}

func (m Model) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeEdit
	case "up":
		m.palette.move(-1)
	case "down":
		m.palette.move(1)
	case "backspace":
		m.palette.backspace()
	case "enter":
		command, ok := m.palette.selected()
		m.mode = modeEdit
		if ok {
			return m, m.run(domain.SurfaceMenu, command)
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.palette.typeRunes(msg.Runes)
		}
	}
	return m, nil
}

func (m Model) updateReplies(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		m.mode = modeEdit
		m.replies = nil
	case "1", "2", "3", "4":
		index := int(key[0] - '1')
		if index < len(m.replies) {
			if err := m.executors[domain.SurfaceSheet].InsertReply(m.doc, m.replies[index]); err != nil {
				m.status = "sheet: " + failureText(err, executor.Outcome{})
				m.failed = true
			} else {
				m.status = "Inserted " + string(m.replies[index].Tone) + " reply"
				m.failed = false
			}
		}
		m.mode = modeEdit
		m.replies = nil
	}
	return m, nil
}

func (m Model) run(surface domain.Surface, command domain.Command) tea.Cmd {
	exec := m.executors[surface]
	doc := m.doc
	invocation := executor.Invocation{Command: command}
	if command == domain.CommandTranslate || command == domain.CommandConvert {
		invocation.TargetLanguage = m.target
	}

	return tea.Batch(
		func() tea.Msg {
			outcome, err := exec.Execute(context.Background(), doc, invocation)
			return commandDoneMsg{surface: surface, outcome: outcome, err: err}
		},
		m.spinner.Tick,
	)
}

func (m Model) suggestReplies() tea.Cmd {
	sheet := m.executors[domain.SurfaceSheet]
	message := m.doc.Text()
	return tea.Batch(
		func() tea.Msg {
			outcome, err := sheet.SuggestReplies(context.Background(), message)
			return commandDoneMsg{surface: domain.SurfaceSheet, outcome: outcome, err: err}
		},
		m.spinner.Tick,
	)
}

func (m Model) handleDone(msg commandDoneMsg) Model {
	m.selection = 0
	if msg.err != nil {
		m.failed = true
		m.status = fmt.Sprintf("%s: %s", msg.surface, failureText(msg.err, msg.outcome))
		return m
	}

	m.failed = false
	if len(msg.outcome.Replies) > 0 {
		m.replies = msg.outcome.Replies
		m.mode = modeReplies
		m.status = fmt.Sprintf("%d replies from %s. Press 1-%d to insert.", len(m.replies), msg.outcome.Provider, len(m.replies))
		return m
	}
	m.status = fmt.Sprintf("%s: %s done via %s in %dms", msg.surface, msg.outcome.Command, msg.outcome.Provider, msg.outcome.Duration.Milliseconds())
	return m
}

func failureText(err error, outcome executor.Outcome) string {
	if outcome.Message != "" {
		return outcome.Message
	}
	if errors.Is(err, executor.ErrBusy) {
		return "busy"
	}
	return err.Error()
}

func (m Model) anyBusy() bool {
	for _, exec := range m.executors {
		if exec.State().Busy {
			return true
		}
	}
	return false
}

// Document exposes the buffer, mainly for tests.
func (m Model) Document() *document.Buffer {
	return m.doc
}
