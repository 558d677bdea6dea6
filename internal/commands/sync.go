package commands

import (
	"fmt"

	"github.com/keshon/filament/internal/config"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/shorthand"
)

func newSync(s Syncer) (*command.Definition, error) {
	return shorthand.PrefixCommand("sync", "Re-register slash commands with Discord",
		func(c *command.Context) error {
			if err := c.Defer(false); err != nil {
				return err
			}
			if err := s.Resync(c); err != nil {
				return fmt.Errorf("resync: %w", err)
			}
			return c.Respond("Slash commands re-registered.")
		},
		shorthand.WithChecks(command.OwnerOnly),
		shorthand.Hidden(),
		shorthand.Category(config.CategorySuperuser),
	)
}
