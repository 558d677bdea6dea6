// Package discord runs the bot: it owns the gateway session, dispatches prefix
// messages and interactions to the command registry and keeps the slash
// commands registered with Discord in sync.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/internal/config"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/paginator"
	"github.com/rs/zerolog/log"
)

const EmbedColor = 0xb01e66

// Bot is a Discord bot. It implements command.Host.
type Bot struct {
	cfg      *config.Config
	commands *cmd.Registry
	navs     *paginator.Manager
	syncer   *Syncer
	dg       *discordgo.Session

	mu         sync.RWMutex
	ctx        context.Context
	appID      string
	appOwners  map[string]bool
	components map[string]command.ComponentInteractionHandler
}

// New creates a bot for the commands in reg. Slash command hashes are kept
// in hashes; navs answers navigator buttons.
func New(cfg *config.Config, reg *cmd.Registry, hashes HashStore, navs *paginator.Manager) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if navs == nil {
		navs = paginator.NewManager(nil, cfg.NavigatorTimeout)
	}

	b := &Bot{
		cfg:        cfg,
		commands:   reg,
		navs:       navs,
		syncer:     NewSyncer(dg, hashes),
		dg:         dg,
		ctx:        context.Background(),
		appOwners:  make(map[string]bool),
		components: make(map[string]command.ComponentInteractionHandler),
	}
	b.RegisterComponent(paginator.CustomIDPrefix, navs)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)
	return b, nil
}

// Run opens the gateway connection and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Info().Str("component", "bot").Msg("shutdown signal received, cleaning up")
	b.navs.Close()
	return nil
}

// IsOwner reports whether userID is configured in OWNER_IDS or owns the
// bot's application.
func (b *Bot) IsOwner(userID string) bool {
	if b.cfg.IsOwner(userID) {
		return true
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.appOwners[userID]
}

func (b *Bot) Commands() *cmd.Registry { return b.commands }
func (b *Bot) Prefix() string          { return b.cfg.CommandPrefix }

func (b *Bot) context() context.Context {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ctx
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger := log.With().Str("component", "bot").Logger()

	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	b.mu.Lock()
	b.appID = appID
	b.mu.Unlock()

	if app, err := s.Application("@me"); err != nil {
		logger.Warn().Err(err).Msg("failed to fetch application owners")
	} else {
		b.setOwners(app)
	}

	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(s, g.ID)
	}

	if b.cfg.InitSlash {
		go func() {
			if err := b.SyncCommands(b.context()); err != nil {
				logger.Error().Err(err).Msg("slash command sync finished with errors")
			}
		}()
	} else {
		logger.Info().Msg("slash command registration skipped")
	}

	logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	log.Debug().Str("component", "bot").Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.IsGuildBlacklisted(guildID) {
		return false
	}
	logger := log.With().Str("component", "bot").Str("guild", guildID).Logger()
	logger.Info().Msg("leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		logger.Error().Err(err).Msg("failed to leave guild")
	}
	return true
}

// setOwners records the application owner, or every team member when the
// application belongs to a team.
func (b *Bot) setOwners(app *discordgo.Application) {
	owners := make(map[string]bool)
	if app.Team != nil {
		for _, m := range app.Team.Members {
			if m.User != nil {
				owners[m.User.ID] = true
			}
		}
	} else if app.Owner != nil {
		owners[app.Owner.ID] = true
	}

	b.mu.Lock()
	b.appOwners = owners
	b.mu.Unlock()
}
