// Command filament deploys a starter bot project.
//
//	filament template deploy -style slash [-project name] [-force] [dir]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/keshon/filament/internal/logging"
	"github.com/keshon/filament/internal/template"
	"github.com/rs/zerolog/log"
)

const usage = `usage: filament <command> [flags]

commands:
  template deploy   deploy a starter bot (alias: _t)
`

func main() {
	if _, err := logging.Setup(logging.Options{Level: "info", Pretty: true}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			log.Error().Err(err).Msg("filament failed")
		}
		os.Exit(2)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "template", "_t":
		rest := args[1:]
		if len(rest) > 0 && rest[0] == "deploy" {
			rest = rest[1:]
		}
		return deploy(rest, out)
	case "-h", "--help", "help":
		fmt.Fprint(out, usage)
		return nil
	}
	fmt.Fprint(out, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

func deploy(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	fs.SetOutput(out)
	style := fs.String("style", "", "bot style: slash or prefix (required)")
	project := fs.String("project", "", "project name (default: directory name)")
	force := fs.Bool("force", false, "overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := template.ParseStyle(*style)
	if err != nil {
		fs.Usage()
		return err
	}
	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	written, err := template.Deploy(dir, st, template.Options{Project: *project, Force: *force})
	if err != nil {
		return err
	}
	for _, f := range written {
		fmt.Fprintln(out, "created", f)
	}
	log.Info().Str("style", string(st)).Str("dir", dir).Int("files", len(written)).Msg("template deployed")
	return nil
}
