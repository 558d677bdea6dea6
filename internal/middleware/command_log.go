package middleware

import (
	"context"
	"time"

	"github.com/keshon/filament/internal/storage"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HistoryStore receives one record per guild invocation.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, rec storage.CommandHistoryRecord) error
}

// WithCommandLogger logs every invocation and, when store is not nil, appends
// guild invocations to the command history.
func WithCommandLogger(store HistoryStore) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			src, ok := sourceOf(inv)
			if !ok {
				return err
			}

			var ev *zerolog.Event
			if err != nil {
				ev = log.Warn().Err(err)
			} else {
				ev = log.Info()
			}
			rec := record(c.Name(), src)
			ev.Str("component", "command").
				Str("command", rec.Command).
				Str("invoked_with", src.InvokedWith()).
				Str("kind", rec.Kind).
				Str("guild", src.GuildID()).
				Str("user", rec.UserID).
				Dur("took", time.Since(start)).
				Msg("command invoked")

			if store != nil && src.GuildID() != "" {
				if serr := store.AppendCommandToHistory(src.GuildID(), rec); serr != nil {
					log.Warn().Err(serr).Str("component", "command").Str("command", c.Name()).
						Msg("failed to record command history")
				}
			}
			return err
		})
	}
}

func record(name string, src command.Source) storage.CommandHistoryRecord {
	rec := storage.CommandHistoryRecord{
		ChannelID: src.ChannelID(),
		Command:   name,
		Kind:      src.Kind().String(),
		Datetime:  time.Now().UTC(),
	}
	if u := src.Author(); u != nil {
		rec.UserID = u.ID
		rec.Username = u.Username
	}

	s := src.Session()
	if s == nil || s.State == nil {
		return rec
	}
	if ch, err := s.State.Channel(src.ChannelID()); err == nil {
		rec.ChannelName = ch.Name
	}
	if g, err := s.State.Guild(src.GuildID()); err == nil {
		rec.GuildName = g.Name
	}
	return rec
}
