// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keshon/filament/internal/commands"
	"github.com/keshon/filament/internal/config"
	"github.com/keshon/filament/internal/discord"
	"github.com/keshon/filament/internal/logging"
	"github.com/keshon/filament/internal/middleware"
	"github.com/keshon/filament/internal/storage"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/jobmgr"
	"github.com/keshon/filament/pkg/paginator"
	"github.com/keshon/filament/pkg/superuser"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("Discord bot exited cleanly")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Pretty: cfg.LogPretty})
	if err != nil {
		return err
	}
	defer closeLog()

	log.Info().Msg("Starting filament bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer store.Close()

	jobs := jobmgr.NewManager(func(status string) {
		log.Debug().Str("component", "jobs").Msg(status)
	})
	navs := paginator.NewManager(jobs, cfg.NavigatorTimeout)

	reg := cmd.NewRegistry()
	bot, err := discord.New(cfg, reg, store, navs)
	if err != nil {
		return err
	}

	mws := []cmd.Middleware{
		middleware.WithCommandLogger(store),
		middleware.WithRecover(),
	}
	deps := commands.Deps{History: store, Navigators: navs, Syncer: bot}
	if err := commands.Register(reg, deps, mws...); err != nil {
		return err
	}

	su := superuser.New(
		superuser.WithShell(cfg.Shell),
		superuser.WithPython(cfg.Python),
		superuser.WithTimeout(cfg.SuperuserTimeout),
		superuser.WithNavigators(navs),
		superuser.WithMiddleware(mws...),
	)
	if err := su.Load(reg); err != nil {
		return err
	}
	defer su.Unload(reg)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		runErr = <-errCh
	case runErr = <-errCh:
	}

	log.Debug().Str("component", "jobs").Msg(jobs.Status())
	jobs.StopAll()
	return runErr
}
