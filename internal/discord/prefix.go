package discord

import (
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
)

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID != "" && b.cfg.IsGuildBlacklisted(m.GuildID) {
		return
	}

	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	prefix, name, raw, ok := matchPrefix(m.Content, b.cfg.CommandPrefix, botID)
	if !ok {
		return
	}

	c := b.commands.Get(name)
	if c == nil {
		return
	}
	if p, ok := cmd.Root(c).(command.PrefixProvider); ok && !p.PrefixEnabled() {
		return
	}
	b.run(c, command.NewPrefixContext(s, b, m, prefix, name, raw))
}

// matchPrefix splits content into the prefix it starts with (the configured
// prefix or a mention of the bot), the command name and the remaining text.
func matchPrefix(content, prefix, botID string) (used, name, raw string, ok bool) {
	candidates := []string{prefix}
	if botID != "" {
		candidates = append(candidates, "<@"+botID+">", "<@!"+botID+">")
	}

	for _, p := range candidates {
		if p == "" || !strings.HasPrefix(content, p) {
			continue
		}
		rest := strings.TrimLeftFunc(content[len(p):], unicode.IsSpace)
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		if end == 0 {
			return "", "", "", false
		}
		return p, rest[:end], rest[end:], true
	}
	return "", "", "", false
}
