package discord

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/superuser"
	"github.com/rs/zerolog/log"
)

// RegisterComponent routes component interactions whose custom ID starts with
// prefix followed by ':' to h.
func (b *Bot) RegisterComponent(prefix string, h command.ComponentInteractionHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.components[prefix] = h
}

func (b *Bot) component(customID string) command.ComponentInteractionHandler {
	prefix, _, _ := strings.Cut(customID, ":")
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.components[prefix]
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logger := log.With().Str("component", "interactions").Logger()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		c := b.commands.Get(name)
		if c == nil {
			logger.Warn().Str("command", name).Msg("unknown command")
			return
		}
		b.run(c, command.NewSlashContext(s, b, i))

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		h := b.component(customID)
		if h == nil {
			logger.Warn().Str("custom_id", customID).Msg("no handler for component")
			return
		}
		if err := h.Component(&command.ComponentContext{Session: s, Event: i}); err != nil {
			logger.Error().Err(err).Str("custom_id", customID).Msg("component handler failed")
			_ = RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
				Description: "Something went wrong handling that.",
				Color:       EmbedColor,
			})
		}

	default:
		logger.Debug().Int("type", int(i.Type)).Msg("unhandled interaction type")
	}
}

// run invokes c and reports a failure back to the invoker.
func (b *Bot) run(c cmd.Command, src command.Source) {
	err := c.Run(b.context(), &cmd.Invocation{Data: src})
	if err == nil {
		return
	}

	logger := log.With().Str("component", "dispatch").Str("command", c.Name()).Logger()
	msg, expected := userMessage(err)
	if expected {
		logger.Debug().Err(err).Msg("command rejected")
	} else {
		logger.Error().Err(err).Msg("command failed")
	}

	embed := &discordgo.MessageEmbed{Description: msg, Color: EmbedColor}
	if _, err := src.Send(&discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}, true); err != nil {
		logger.Warn().Err(err).Msg("failed to report error")
	}
}

// userMessage returns the text shown for err and whether err is an expected
// rejection rather than a fault.
func userMessage(err error) (string, bool) {
	var (
		cooldown *command.CooldownError
		option   *command.OptionError
		language *superuser.LanguageResolutionError
	)
	switch {
	case errors.Is(err, command.ErrCheckFailure):
		return strings.TrimPrefix(err.Error(), command.ErrCheckFailure.Error()+": "), true
	case errors.As(err, &cooldown), errors.As(err, &option), errors.As(err, &language),
		errors.Is(err, superuser.ErrUnterminatedCodeBlock):
		return err.Error(), true
	}
	return "Something went wrong running this command.", false
}

// RespondEmbedEphemeral sends an ephemeral embed response to an interaction.
func RespondEmbedEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}
