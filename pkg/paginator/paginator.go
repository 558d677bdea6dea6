// Package paginator splits long text into Discord-sized pages and lets users
// flip through them with buttons.
package paginator

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageChars is Discord's message content limit.
const MaxMessageChars = 2000

// Paginator collects lines and groups them into pages wrapped in Prefix and
// Suffix. No page exceeds MaxChars characters including both.
type Paginator struct {
	Prefix   string
	Suffix   string
	MaxChars int

	pages []string
	lines []string
	size  int
}

// New returns a paginator with the Discord message limit.
func New(prefix, suffix string) *Paginator {
	return &Paginator{Prefix: prefix, Suffix: suffix, MaxChars: MaxMessageChars}
}

// room is the number of characters available for lines on one page; each line
// also costs its trailing newline.
func (p *Paginator) room() int {
	max := p.MaxChars
	if max <= 0 {
		max = MaxMessageChars
	}
	r := max - utf8.RuneCountInString(p.Prefix) - utf8.RuneCountInString(p.Suffix)
	if r < 2 {
		r = 2
	}
	return r
}

// AddLine appends a line. Lines longer than a page are split.
func (p *Paginator) AddLine(line string) {
	room := p.room()
	for _, chunk := range chunks(line, room-1) {
		cost := utf8.RuneCountInString(chunk) + 1
		if p.size+cost > room && len(p.lines) > 0 {
			p.flush()
		}
		p.lines = append(p.lines, chunk)
		p.size += cost
	}
}

func (p *Paginator) flush() {
	if len(p.lines) == 0 {
		return
	}
	p.pages = append(p.pages, p.render(p.lines))
	p.lines = nil
	p.size = 0
}

func (p *Paginator) render(lines []string) string {
	return p.Prefix + strings.Join(lines, "\n") + "\n" + p.Suffix
}

// Pages returns the built pages, including the one still being filled.
func (p *Paginator) Pages() []string {
	out := append([]string(nil), p.pages...)
	if len(p.lines) > 0 {
		out = append(out, p.render(p.lines))
	}
	return out
}

// chunks splits s into pieces of at most n runes. An empty line yields one
// empty chunk so blank lines survive.
func chunks(s string, n int) []string {
	if utf8.RuneCountInString(s) <= n {
		return []string{s}
	}
	var out []string
	runes := []rune(s)
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
