// Package commands holds the bot's built-in commands. Each one is declared
// with a different definition style: help is a command type, ping a slash
// builder, history and sync shorthand constructors.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/filament/internal/middleware"
	"github.com/keshon/filament/internal/storage"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/commandlike"
	"github.com/keshon/filament/pkg/paginator"
)

const embedColor = 0xb01e66

// HistoryStore reads the per-guild command history.
type HistoryStore interface {
	FetchCommandHistory(guildID string) ([]storage.CommandHistoryRecord, error)
}

// Syncer re-registers the bot's slash commands with Discord.
type Syncer interface {
	Resync(ctx context.Context) error
}

// Deps are the services the built-in commands depend on.
type Deps struct {
	History    HistoryStore
	Navigators *paginator.Manager
	Syncer     Syncer
}

// Build returns the built-in commands. Commands whose dependency is nil are
// left out.
func Build(deps Deps) ([]*command.Definition, error) {
	var (
		defs []*command.Definition
		errs []error
	)
	add := func(d *command.Definition, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		defs = append(defs, d)
	}

	add(commandlike.New(Help{}).Build())
	add(newPing())
	if deps.History != nil {
		navs := deps.Navigators
		if navs == nil {
			navs = paginator.NewManager(nil, 0)
		}
		add(newHistory(deps.History, navs))
	}
	if deps.Syncer != nil {
		add(newSync(deps.Syncer))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("built-in commands: %w", err)
	}
	return defs, nil
}

// guildOnly lists the commands that make no sense in direct messages.
var guildOnly = map[string]bool{"history": true}

// Register builds the built-in commands and adds them to reg wrapped in mws
// (the last middleware is the outermost).
func Register(reg *cmd.Registry, deps Deps, mws ...cmd.Middleware) error {
	defs, err := Build(deps)
	if err != nil {
		return err
	}
	for _, d := range defs {
		chain := mws
		if guildOnly[d.Name()] {
			chain = append([]cmd.Middleware{middleware.WithGuildOnly()}, mws...)
		}
		if err := reg.Register(cmd.Apply(d, chain...)); err != nil {
			return err
		}
	}
	return nil
}
