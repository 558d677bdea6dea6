package command

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/cmd"
)

// Kind is a bitmask of the invocation styles a command implements.
type Kind uint8

const (
	KindSlash Kind = 1 << iota
	KindPrefix
)

// Has reports whether k includes every bit of o.
func (k Kind) Has(o Kind) bool { return o != 0 && k&o == o }

func (k Kind) String() string {
	var parts []string
	if k.Has(KindSlash) {
		parts = append(parts, "slash")
	}
	if k.Has(KindPrefix) {
		parts = append(parts, "prefix")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Host is the bot-side view a command can reach through its context.
type Host interface {
	IsOwner(userID string) bool
	Commands() *cmd.Registry
	Prefix() string
}

// Arguments is the raw, undecoded input of an invocation. Slash invocations
// fill Slash, prefix invocations fill Raw with the text after the command name.
type Arguments struct {
	Slash []*discordgo.ApplicationCommandInteractionDataOption
	Raw   string
}

// Source is implemented by the transport contexts the bot hands to Run through
// cmd.Invocation.Data.
type Source interface {
	Kind() Kind
	Session() *discordgo.Session
	Host() Host
	GuildID() string
	ChannelID() string
	Author() *discordgo.User
	Member() *discordgo.Member
	// InvokedWith is the name or alias the user typed.
	InvokedWith() string
	Arguments() Arguments
	Send(msg *discordgo.MessageSend, ephemeral bool) (*discordgo.Message, error)
	Defer(ephemeral bool) error
}

// Context is what command callbacks, checks and error handlers receive. It is a
// context.Context, so it can be passed straight to blocking calls.
type Context struct {
	context.Context
	Source

	Command   *Definition
	Options   Options
	Ephemeral bool
}

// Respond sends a plain text reply.
func (c *Context) Respond(content string) error {
	_, err := c.Send(&discordgo.MessageSend{Content: content}, c.Ephemeral)
	return err
}

// RespondEmbed sends an embed reply.
func (c *Context) RespondEmbed(embed *discordgo.MessageEmbed) error {
	_, err := c.Send(&discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}, c.Ephemeral)
	return err
}

type responseState uint8

const (
	statePending responseState = iota
	stateDeferred
	stateResponded
)

// SlashContext is the Source for application command interactions.
type SlashContext struct {
	Event *discordgo.InteractionCreate

	session *discordgo.Session
	host    Host

	mu    sync.Mutex
	state responseState
}

// NewSlashContext wraps an application command interaction.
func NewSlashContext(s *discordgo.Session, host Host, e *discordgo.InteractionCreate) *SlashContext {
	return &SlashContext{Event: e, session: s, host: host}
}

func (c *SlashContext) Kind() Kind                  { return KindSlash }
func (c *SlashContext) Session() *discordgo.Session { return c.session }
func (c *SlashContext) Host() Host                  { return c.host }
func (c *SlashContext) GuildID() string             { return c.Event.GuildID }
func (c *SlashContext) ChannelID() string           { return c.Event.ChannelID }
func (c *SlashContext) Member() *discordgo.Member   { return c.Event.Member }

func (c *SlashContext) Author() *discordgo.User {
	if c.Event.Member != nil && c.Event.Member.User != nil {
		return c.Event.Member.User
	}
	return c.Event.User
}

func (c *SlashContext) InvokedWith() string {
	return c.Event.ApplicationCommandData().Name
}

func (c *SlashContext) Arguments() Arguments {
	return Arguments{Slash: c.Event.ApplicationCommandData().Options}
}

// Send answers the interaction the first time, edits the deferred response after
// Defer, and falls back to followup messages afterwards.
func (c *SlashContext) Send(msg *discordgo.MessageSend, ephemeral bool) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	switch c.state {
	case statePending:
		err := c.session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    msg.Content,
				Embeds:     msg.Embeds,
				Components: msg.Components,
				Files:      msg.Files,
				Flags:      flags,
			},
		})
		if err != nil {
			return nil, err
		}
		c.state = stateResponded
		return c.session.InteractionResponse(c.Event.Interaction)
	case stateDeferred:
		c.state = stateResponded
		edit := &discordgo.WebhookEdit{Content: &msg.Content, Files: msg.Files}
		if msg.Embeds != nil {
			edit.Embeds = &msg.Embeds
		}
		if msg.Components != nil {
			edit.Components = &msg.Components
		}
		return c.session.InteractionResponseEdit(c.Event.Interaction, edit)
	default:
		return c.session.FollowupMessageCreate(c.Event.Interaction, true, &discordgo.WebhookParams{
			Content:    msg.Content,
			Embeds:     msg.Embeds,
			Components: msg.Components,
			Files:      msg.Files,
			Flags:      flags,
		})
	}
}

// Defer acknowledges the interaction without content. It is a no-op once a
// response exists.
func (c *SlashContext) Defer(ephemeral bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != statePending {
		return nil
	}
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := c.session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	}); err != nil {
		return err
	}
	c.state = stateDeferred
	return nil
}

// PrefixContext is the Source for prefix commands typed in a message.
type PrefixContext struct {
	Event *discordgo.MessageCreate
	// Prefix is the prefix the message started with (may be a bot mention).
	Prefix string
	// Invoked is the command name or alias as typed.
	Invoked string
	// Raw is everything after the invoked name.
	Raw string

	session *discordgo.Session
	host    Host
}

// NewPrefixContext wraps a message that matched a prefix command.
func NewPrefixContext(s *discordgo.Session, host Host, m *discordgo.MessageCreate, prefix, invoked, raw string) *PrefixContext {
	return &PrefixContext{Event: m, Prefix: prefix, Invoked: invoked, Raw: raw, session: s, host: host}
}

func (c *PrefixContext) Kind() Kind                  { return KindPrefix }
func (c *PrefixContext) Session() *discordgo.Session { return c.session }
func (c *PrefixContext) Host() Host                  { return c.host }
func (c *PrefixContext) GuildID() string             { return c.Event.GuildID }
func (c *PrefixContext) ChannelID() string           { return c.Event.ChannelID }
func (c *PrefixContext) Author() *discordgo.User     { return c.Event.Author }
func (c *PrefixContext) Member() *discordgo.Member   { return c.Event.Member }
func (c *PrefixContext) InvokedWith() string         { return c.Invoked }
func (c *PrefixContext) Arguments() Arguments        { return Arguments{Raw: c.Raw} }

// Send posts a channel message. Ephemeral replies do not exist for messages and
// the flag is ignored.
func (c *PrefixContext) Send(msg *discordgo.MessageSend, _ bool) (*discordgo.Message, error) {
	return c.session.ChannelMessageSendComplex(c.Event.ChannelID, msg)
}

// Defer shows the typing indicator.
func (c *PrefixContext) Defer(bool) error {
	return c.session.ChannelTyping(c.Event.ChannelID)
}
