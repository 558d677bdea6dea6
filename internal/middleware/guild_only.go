package middleware

import (
	"context"

	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
)

// WithGuildOnly rejects invocations from direct messages.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if src, ok := sourceOf(inv); ok && src.GuildID() == "" {
				return command.ErrGuildOnly
			}
			return c.Run(ctx, inv)
		})
	}
}
