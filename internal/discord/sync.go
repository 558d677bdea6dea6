package discord

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/internal/storage"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/retrylimit"
	"github.com/keshon/filament/pkg/util"
	"github.com/rs/zerolog/log"
)

// HashStore persists the hashes of registered commands per scope.
type HashStore interface {
	CommandHashes(scope string) (map[string]string, error)
	SetCommandHashes(scope string, hashes map[string]string) error
	ClearCommandHashes(scope string)
}

// CommandAPI is the part of *discordgo.Session used to manage application commands.
type CommandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// Syncer brings the commands registered with Discord in line with the local
// definitions, skipping definitions whose hash has not changed.
type Syncer struct {
	api     CommandAPI
	hashes  HashStore
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.RetryConfig
}

// NewSyncer returns a Syncer that paces its REST calls at up to 40 requests
// per second and retries transient failures.
func NewSyncer(api CommandAPI, hashes HashStore) *Syncer {
	return &Syncer{
		api:     api,
		hashes:  hashes,
		limiter: retrylimit.NewAdaptiveLimiter(40, 1, 50, 1, 0.5),
		retry:   retrylimit.DefaultRetryConfig(),
	}
}

func scopeKey(guildID string) string {
	if guildID == "" {
		return storage.GlobalScope
	}
	return guildID
}

func (s *Syncer) do(ctx context.Context, fn func() error) error {
	return retrylimit.WithRetryConfig(ctx, fn, s.limiter, s.retry)
}

// Sync registers wanted in guildID, or globally when guildID is empty.
// Remote commands missing from wanted are deleted. Individual failures are
// collected and returned together.
func (s *Syncer) Sync(ctx context.Context, appID, guildID string, wanted []*discordgo.ApplicationCommand) error {
	scope := scopeKey(guildID)
	logger := log.With().Str("component", "sync").Str("scope", scope).Logger()

	var remote []*discordgo.ApplicationCommand
	err := s.do(ctx, func() (err error) {
		remote, err = s.api.ApplicationCommands(appID, guildID)
		return err
	})
	if err != nil {
		return fmt.Errorf("list commands: %w", err)
	}

	cached, err := s.hashes.CommandHashes(scope)
	if err != nil {
		logger.Warn().Err(err).Msg("hash cache unreadable, registering every command")
		cached = map[string]string{}
	}

	want := make(map[string]string, len(wanted))
	for _, c := range wanted {
		want[c.Name] = hashCommand(c)
	}

	var errs []error
	registered := make(map[string]bool, len(remote))
	for _, rc := range remote {
		registered[rc.Name] = true
		if _, ok := want[rc.Name]; ok {
			continue
		}
		if err := s.do(ctx, func() error { return s.api.ApplicationCommandDelete(appID, guildID, rc.ID) }); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", rc.Name, err))
			continue
		}
		logger.Info().Str("command", rc.Name).Msg("deleted obsolete command")
	}

	next := make(map[string]string, len(want))
	changed := 0
	for _, c := range wanted {
		h := want[c.Name]
		if cached[c.Name] == h && registered[c.Name] {
			next[c.Name] = h
			continue
		}
		err := s.do(ctx, func() error {
			_, err := s.api.ApplicationCommandCreate(appID, guildID, c)
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("register %s: %w", c.Name, err))
			continue
		}
		next[c.Name] = h
		changed++
		logger.Info().Str("command", c.Name).Msg("registered command")
	}

	if err := s.hashes.SetCommandHashes(scope, next); err != nil {
		errs = append(errs, fmt.Errorf("save hashes: %w", err))
	}
	logger.Debug().Int("changed", changed).Int("total", len(wanted)).Msg("sync done")
	return errors.Join(errs...)
}

// Reset forgets the hashes of a scope so its next Sync re-registers everything.
func (s *Syncer) Reset(guildID string) {
	s.hashes.ClearCommandHashes(scopeKey(guildID))
}

// plan groups the slash definitions in reg by registration scope. Commands
// with their own guild list go to those guilds; the rest go to defaults
// (an empty string is the global scope). Every default scope is present even
// when it ends up empty, so that stale commands there get deleted.
func plan(reg *cmd.Registry, defaults []string, skip func(guildID string) bool) map[string][]*discordgo.ApplicationCommand {
	out := make(map[string][]*discordgo.ApplicationCommand)
	for _, g := range defaults {
		if !skip(g) {
			out[g] = nil
		}
	}

	for _, c := range reg.GetAll() {
		root := cmd.Root(c)
		sp, ok := root.(command.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}

		scopes := defaults
		if gs, ok := root.(command.GuildScoped); ok && len(gs.Guilds()) > 0 {
			scopes = gs.Guilds()
		}
		for _, g := range scopes {
			if !skip(g) {
				out[g] = append(out[g], def)
			}
		}
	}
	return out
}

func (b *Bot) scopes() []string {
	if len(b.cfg.Guilds) > 0 {
		return b.cfg.Guilds
	}
	return []string{""}
}

func (b *Bot) skipGuild(guildID string) bool {
	return guildID != "" && b.cfg.IsGuildBlacklisted(guildID)
}

// SyncCommands registers the slash commands in every scope, REGISTER_WORKERS
// scopes at a time. A failing scope does not stop the others.
func (b *Bot) SyncCommands(ctx context.Context) error {
	b.mu.RLock()
	appID := b.appID
	b.mu.RUnlock()
	if appID == "" {
		return errors.New("sync commands: bot is not ready")
	}

	p := plan(b.commands, b.scopes(), b.skipGuild)
	var (
		mu   sync.Mutex
		errs []error
	)
	err := util.Parallel(ctx, slices.Sorted(maps.Keys(p)), b.cfg.RegisterWorkers, func(ctx context.Context, guildID string) error {
		if err := b.syncer.Sync(ctx, appID, guildID, p[guildID]); err != nil {
			log.Error().Str("component", "sync").Str("scope", scopeKey(guildID)).Err(err).Msg("sync failed")
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", scopeKey(guildID), err))
			mu.Unlock()
		}
		return nil
	})
	return errors.Join(append(errs, err)...)
}

// Resync forgets every cached hash and registers all slash commands again.
func (b *Bot) Resync(ctx context.Context) error {
	for guildID := range plan(b.commands, b.scopes(), b.skipGuild) {
		b.syncer.Reset(guildID)
	}
	return b.SyncCommands(ctx)
}
