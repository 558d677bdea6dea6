// Package shorthand declares prefix, slash and hybrid commands in one call.
package shorthand

import (
	"encoding/json"
	"fmt"

	"github.com/keshon/filament/pkg/command"
)

// Setting adjusts the command.Spec a shorthand constructor builds.
type Setting func(*command.Spec)

func WithOptions(opts ...*command.Option) Setting {
	return func(s *command.Spec) { s.Options = append(s.Options, opts...) }
}

func WithChecks(checks ...command.Check) Setting {
	return func(s *command.Spec) { s.Checks = append(s.Checks, checks...) }
}

func Aliases(aliases ...string) Setting {
	return func(s *command.Spec) { s.Aliases = append(s.Aliases, aliases...) }
}

func Guilds(ids ...string) Setting {
	return func(s *command.Spec) { s.Guilds = append(s.Guilds, ids...) }
}

func Children(children ...*command.Definition) Setting {
	return func(s *command.Spec) { s.Children = append(s.Children, children...) }
}

func Parser(p command.Parser) Setting {
	return func(s *command.Spec) { s.Parser = p }
}

func Cooldown(c *command.Cooldown) Setting {
	return func(s *command.Spec) { s.Cooldown = c }
}

func AutoDefer() Setting {
	return func(s *command.Spec) { s.AutoDefer = true }
}

func Ephemeral() Setting {
	return func(s *command.Spec) { s.Ephemeral = true }
}

func Hidden() Setting {
	return func(s *command.Spec) { s.Hidden = true }
}

func InheritChecks() Setting {
	return func(s *command.Spec) { s.InheritChecks = true }
}

func Category(name string) Setting {
	return func(s *command.Spec) { s.Category = name }
}

func OnError(h command.ErrorHandler) Setting {
	return func(s *command.Spec) { s.ErrorHandler = h }
}

func HelpGetter(h command.HelpGetter) Setting {
	return func(s *command.Spec) { s.HelpGetter = h }
}

func CheckExempt(fn command.CheckExempt) Setting {
	return func(s *command.Spec) { s.CheckExempt = fn }
}

// PrefixCommand declares a command invoked with the message prefix.
func PrefixCommand(name, description string, callback command.Callback, settings ...Setting) (*command.Definition, error) {
	return build(command.KindPrefix, name, description, callback, settings)
}

// SlashCommand declares a slash command.
func SlashCommand(name, description string, callback command.Callback, settings ...Setting) (*command.Definition, error) {
	return build(command.KindSlash, name, description, callback, settings)
}

// PrefixSlashCommand declares a command available both ways.
func PrefixSlashCommand(name, description string, callback command.Callback, settings ...Setting) (*command.Definition, error) {
	return build(command.KindPrefix|command.KindSlash, name, description, callback, settings)
}

func build(kinds command.Kind, name, description string, callback command.Callback, settings []Setting) (*command.Definition, error) {
	spec := command.Spec{
		Name:        name,
		Description: description,
		Kinds:       kinds,
		Callback:    callback,
	}
	for _, s := range settings {
		s(&spec)
	}
	return command.New(spec)
}

// Must panics when a shorthand constructor fails.
func Must(d *command.Definition, err error) *command.Definition {
	if err != nil {
		panic(err)
	}
	return d
}

// PassOptions hands the invocation's options to fn as a T. Options are matched
// to fields by their json tags.
//
//	type echoArgs struct {
//		Text string `json:"text"`
//	}
//	shorthand.PassOptions(func(c *command.Context, a echoArgs) error { return c.Respond(a.Text) })
func PassOptions[T any](fn func(c *command.Context, opts T) error) command.Callback {
	return func(c *command.Context) error {
		var opts T
		raw, err := json.Marshal(c.Options)
		if err != nil {
			return fmt.Errorf("pass options: %w", err)
		}
		if err := json.Unmarshal(raw, &opts); err != nil {
			return fmt.Errorf("pass options: %w", err)
		}
		return fn(c, opts)
	}
}
