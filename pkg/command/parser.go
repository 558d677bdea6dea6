package command

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

// Parser turns the text after a prefix command's name into Options.
type Parser interface {
	Parse(c *Context, opts []*Option, raw string) (Options, error)
}

// DefaultParser splits on whitespace, honours double-quoted tokens and lets a
// ConsumeRest option take the remainder verbatim. Extra tokens are ignored.
type DefaultParser struct{}

func (DefaultParser) Parse(c *Context, opts []*Option, raw string) (Options, error) {
	out := make(Options, len(opts))
	rest := raw
	for _, opt := range opts {
		var (
			tok string
			ok  bool
		)
		if opt.ConsumeRest {
			tok = strings.TrimSpace(rest)
			ok = tok != ""
			rest = ""
		} else {
			tok, rest, ok = nextToken(rest)
		}

		if !ok {
			if opt.Required {
				return nil, &OptionError{Option: opt.Name, Err: ErrMissingOption}
			}
			out[opt.Name] = opt.Default
			continue
		}

		v, err := convert(c, opt, tok)
		if err != nil {
			return nil, &OptionError{Option: opt.Name, Value: tok, Err: err}
		}
		out[opt.Name] = v
	}
	return out, nil
}

// nextToken returns the next whitespace-delimited or double-quoted token.
func nextToken(s string) (tok, rest string, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return "", "", false
	}

	if s[0] != '"' {
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			return s, "", true
		}
		return s[:end], s[end:], true
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && s[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			b.WriteByte('\\')
		case '"':
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(s[i])
		}
	}
	// Unterminated quote: take the rest as-is.
	return b.String(), "", true
}

func convert(c *Context, opt *Option, tok string) (any, error) {
	v, err := convertType(c, opt.Type, tok)
	if err != nil {
		return nil, err
	}
	if len(opt.Choices) > 0 && !hasChoice(opt.Choices, v) {
		return nil, fmt.Errorf("%w: not one of the allowed choices", ErrBadOption)
	}
	return v, nil
}

func convertType(c *Context, t discordgo.ApplicationCommandOptionType, tok string) (any, error) {
	switch t {
	case discordgo.ApplicationCommandOptionString:
		return tok, nil
	case discordgo.ApplicationCommandOptionInteger:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: expected an integer", ErrBadOption)
		}
		return n, nil
	case discordgo.ApplicationCommandOptionNumber:
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: expected a number", ErrBadOption)
		}
		return f, nil
	case discordgo.ApplicationCommandOptionBoolean:
		switch strings.ToLower(tok) {
		case "true", "yes", "y", "on", "1", "enable":
			return true, nil
		case "false", "no", "n", "off", "0", "disable":
			return false, nil
		}
		return nil, fmt.Errorf("%w: expected yes or no", ErrBadOption)
	case discordgo.ApplicationCommandOptionUser:
		id, ok := snowflake(tok, "<@!", "<@")
		if !ok {
			return nil, fmt.Errorf("%w: expected a user mention or ID", ErrBadOption)
		}
		return resolveUser(c, id), nil
	case discordgo.ApplicationCommandOptionChannel:
		id, ok := snowflake(tok, "<#")
		if !ok {
			return nil, fmt.Errorf("%w: expected a channel mention or ID", ErrBadOption)
		}
		return resolveChannel(c, id), nil
	case discordgo.ApplicationCommandOptionRole:
		id, ok := snowflake(tok, "<@&")
		if !ok {
			return nil, fmt.Errorf("%w: expected a role mention or ID", ErrBadOption)
		}
		return resolveRole(c, id), nil
	case discordgo.ApplicationCommandOptionMentionable:
		id, ok := snowflake(tok, "<@&", "<@!", "<@")
		if !ok {
			return nil, fmt.Errorf("%w: expected a mention or ID", ErrBadOption)
		}
		return id, nil
	default:
		return tok, nil
	}
}

// snowflake accepts a bare numeric ID or a mention using one of the given openers.
func snowflake(tok string, openers ...string) (string, bool) {
	id := tok
	for _, o := range openers {
		if strings.HasPrefix(tok, o) && strings.HasSuffix(tok, ">") {
			id = tok[len(o) : len(tok)-1]
			break
		}
	}
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}

func hasChoice(choices []*discordgo.ApplicationCommandOptionChoice, v any) bool {
	for _, ch := range choices {
		if fmt.Sprint(ch.Value) == fmt.Sprint(v) {
			return true
		}
	}
	return false
}

func resolveUser(c *Context, id string) *discordgo.User {
	if s := sessionOf(c); s != nil {
		if u, err := s.User(id); err == nil {
			return u
		}
	}
	return &discordgo.User{ID: id}
}

func resolveChannel(c *Context, id string) *discordgo.Channel {
	if s := sessionOf(c); s != nil {
		if ch, err := s.State.Channel(id); err == nil {
			return ch
		}
	}
	return &discordgo.Channel{ID: id}
}

func resolveRole(c *Context, id string) *discordgo.Role {
	if s := sessionOf(c); s != nil && c.GuildID() != "" {
		if r, err := s.State.Role(c.GuildID(), id); err == nil {
			return r
		}
	}
	return &discordgo.Role{ID: id}
}

func sessionOf(c *Context) *discordgo.Session {
	if c == nil || c.Source == nil {
		return nil
	}
	return c.Session()
}
