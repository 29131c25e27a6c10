package playground

import (
	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/sahilm/fuzzy"
)

type palette struct {
	query   string
	matches []domain.Command
	cursor  int
}

func newPalette() palette {
	p := palette{}
	p.refresh()
	return p
}

func (p *palette) reset() {
	p.query = ""
	p.cursor = 0
	p.refresh()
}

func (p *palette) typeRunes(runes []rune) {
	p.query += string(runes)
	p.refresh()
}

func (p *palette) backspace() {
	if p.query == "" {
		return
	}
	runes := []rune(p.query)
	p.query = string(runes[:len(runes)-1])
	p.refresh()
}

func (p *palette) move(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.cursor = (p.cursor + delta + len(p.matches)) % len(p.matches)
}

func (p *palette) selected() (domain.Command, bool) {
	if len(p.matches) == 0 {
		return 0, false
	}
	return p.matches[p.cursor], true
}

// refresh ranks commands by fuzzy score against their slug and label. An
// empty query lists every command in catalog order.
func (p *palette) refresh() {
	commands := domain.Commands()
	p.cursor = 0
	if p.query == "" {
		p.matches = commands
		return
	}

	p.matches = p.matches[:0:0]
	for _, match := range fuzzy.FindFrom(p.query, commandSource(commands)) {
		p.matches = append(p.matches, commands[match.Index])
	}
}

type commandSource []domain.Command

func (s commandSource) String(i int) string {
	info := s[i].Info()
	return info.Slug + " " + info.Label
}

func (s commandSource) Len() int {
	return len(s)
}
