package playground

import (
	"fmt"
	"strings"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7c5cff"))
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c5cff"))
	docStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	selectionStyle = lipgloss.NewStyle().Reverse(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166")).Bold(true)
	helperStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	activeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	idleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).Padding(0, 1)
)

func (m Model) View() string {
	var sections []string
	sections = append(sections, titleStyle.Render("قلم · Qalam playground"))
	sections = append(sections, m.renderDocument())
	sections = append(sections, m.renderSurfaces())

	switch m.mode {
	case modePalette:
		sections = append(sections, m.renderPalette())
	case modeReplies:
		sections = append(sections, m.renderReplies())
	}

	status := helperStyle.Render(m.status)
	if m.failed {
		status = errorStyle.Render(m.status)
	}
	sections = append(sections, status)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderDocument() string {
	state := m.doc.Snapshot()
	var builder strings.Builder
	builder.WriteString(state.TextBeforeCursor)
	if state.SelectedText != "" {
		builder.WriteString(selectionStyle.Render(state.SelectedText))
	}
	builder.WriteString(cursorStyle.Render("│"))
	builder.WriteString(state.TextAfterCursor)

	style := docStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(builder.String())
}

func (m Model) renderSurfaces() string {
	var parts []string
	for _, surface := range []domain.Surface{domain.SurfaceToolbar, domain.SurfaceMenu, domain.SurfaceSheet} {
		state := m.executors[surface].State()
		if state.Busy {
			parts = append(parts, activeStyle.Render(fmt.Sprintf("%s %s %s", m.spinner.View(), surface, state.Command)))
			continue
		}
		parts = append(parts, idleStyle.Render(string(surface)+" idle"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderPalette() string {
	var lines []string
	lines = append(lines, accentStyle.Render("› "+m.palette.query))
	for i, command := range m.palette.matches {
		info := command.Info()
		line := fmt.Sprintf("%s %-14s %s", info.Icon, info.Slug, info.LabelAr)
		if i == m.palette.cursor {
			line = activeStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(m.palette.matches) == 0 {
		lines = append(lines, helperStyle.Render("no matching command"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderReplies() string {
	lines := make([]string, 0, len(m.replies))
	for i, reply := range m.replies {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, reply.Tone, reply.Text))
	}
	return strings.Join(lines, "\n")
}
