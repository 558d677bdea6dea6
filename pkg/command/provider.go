package command

import "github.com/bwmarrin/discordgo"

// Providers: how a command is registered with Discord.

type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// GuildScoped is implemented by commands restricted to a fixed set of guilds.
// An empty list means the bot's default registration scope.
type GuildScoped interface {
	Guilds() []string
}

// PrefixProvider reports whether a command may be invoked from a message.
type PrefixProvider interface {
	PrefixEnabled() bool
}

// ComponentContext is what component handlers receive for button and select interactions.
type ComponentContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
}

// ComponentInteractionHandler handles message components whose custom ID is
// routed to it by prefix.
type ComponentInteractionHandler interface {
	Component(*ComponentContext) error
}

// DiscordMeta is exposed by definitions so middleware can read Group/Category
// without depending on the concrete command type.
type DiscordMeta interface {
	Group() string
	Category() string
	Hidden() bool
}
