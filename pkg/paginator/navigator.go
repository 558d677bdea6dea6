package paginator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Action is a navigator button.
type Action string

const (
	ActionFirst Action = "first"
	ActionPrev  Action = "prev"
	ActionStop  Action = "stop"
	ActionNext  Action = "next"
	ActionLast  Action = "last"
)

// CustomIDPrefix starts every navigator button's custom ID.
const CustomIDPrefix = "nav"

var buttons = []struct {
	action Action
	emoji  string
	style  discordgo.ButtonStyle
}{
	{ActionFirst, "⏮️", discordgo.SecondaryButton},
	{ActionPrev, "◀️", discordgo.PrimaryButton},
	{ActionStop, "⏹️", discordgo.DangerButton},
	{ActionNext, "▶️", discordgo.PrimaryButton},
	{ActionLast, "⏭️", discordgo.SecondaryButton},
}

// Navigator is the state of one paginated message.
type Navigator struct {
	ID        string
	AuthorID  string
	ChannelID string
	MessageID string

	mu      sync.Mutex
	pages   []string
	current int
}

// NewNavigator returns a navigator positioned on the first page.
func NewNavigator(id, authorID string, pages []string) *Navigator {
	return &Navigator{ID: id, AuthorID: authorID, pages: pages}
}

// Current returns the index and content of the current page.
func (n *Navigator) Current() (int, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, n.pages[n.current]
}

// Len is the number of pages.
func (n *Navigator) Len() int { return len(n.pages) }

// Apply moves according to action and returns the page now shown. Stop leaves
// the position unchanged.
func (n *Navigator) Apply(a Action) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	last := len(n.pages) - 1
	switch a {
	case ActionFirst:
		n.current = 0
	case ActionPrev:
		if n.current > 0 {
			n.current--
		}
	case ActionNext:
		if n.current < last {
			n.current++
		}
	case ActionLast:
		n.current = last
	}
	return n.pages[n.current]
}

// Components returns the button row for the current position. With disabled
// set every button is greyed out.
func (n *Navigator) Components(disabled bool) []discordgo.MessageComponent {
	n.mu.Lock()
	cur, last := n.current, len(n.pages)-1
	n.mu.Unlock()

	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		off := disabled
		switch b.action {
		case ActionFirst, ActionPrev:
			off = off || cur == 0
		case ActionNext, ActionLast:
			off = off || cur == last
		}
		row.Components = append(row.Components, discordgo.Button{
			Emoji:    &discordgo.ComponentEmoji{Name: b.emoji},
			Style:    b.style,
			Disabled: off,
			CustomID: CustomID(n.ID, b.action),
		})
	}
	return []discordgo.MessageComponent{row}
}

// CustomID builds the component ID for a navigator button.
func CustomID(id string, a Action) string {
	return fmt.Sprintf("%s:%s:%s", CustomIDPrefix, id, a)
}

// ParseCustomID splits a navigator component ID.
func ParseCustomID(customID string) (id string, a Action, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != CustomIDPrefix || parts[1] == "" {
		return "", "", false
	}
	switch Action(parts[2]) {
	case ActionFirst, ActionPrev, ActionStop, ActionNext, ActionLast:
		return parts[1], Action(parts[2]), true
	}
	return "", "", false
}
