// Package slash builds slash commands from a callback and a list of settings,
// as an alternative to filling in a command.Spec by hand.
//
//	ping := slash.MustNew(func(c *command.Context) error {
//		return c.Respond("Pong!")
//	}, slash.Name("ping"), slash.Description("Checks that the bot is alive"))
package slash

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/command"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Setting configures a command built by New.
type Setting func(*builder)

type builder struct {
	name        string
	description string
	guilds      []string
	options     []*command.Option
	checks      []command.Check
}

// Name sets the command name. It is lower-cased.
func Name(name string) Setting {
	return func(b *builder) { b.name = name }
}

// Description sets the command description.
func Description(description string) Setting {
	return func(b *builder) { b.description = description }
}

// Guilds restricts the command to the given guilds. Without it the command is global.
func Guilds(ids ...string) Setting {
	return func(b *builder) { b.guilds = append(b.guilds, ids...) }
}

// WithChecks adds checks that run before the callback.
func WithChecks(check1 command.Check, checks ...command.Check) Setting {
	return func(b *builder) {
		b.checks = append(b.checks, check1)
		b.checks = append(b.checks, checks...)
	}
}

// Value lists the Go types an option value can have.
type Value interface {
	string | int | int64 | float64 | bool | *discordgo.User | *discordgo.Channel | *discordgo.Role
}

// OptionSetting configures an option added with WithOption.
type OptionSetting[T Value] func(*command.Option)

// Default makes the option optional, using v when it is omitted.
func Default[T Value](v T) OptionSetting[T] {
	return func(o *command.Option) {
		o.Required = false
		o.Default = v
	}
}

// Choices limits the option to the given values.
func Choices[T Value](values ...T) OptionSetting[T] {
	return func(o *command.Option) {
		for _, v := range values {
			o.Choices = append(o.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprint(v),
				Value: v,
			})
		}
	}
}

// WithOption adds an option whose Discord type follows T. The option is
// required unless a Default is given.
func WithOption[T Value](name, description string, settings ...OptionSetting[T]) Setting {
	return func(b *builder) {
		o := &command.Option{
			Name:        name,
			Description: description,
			Type:        OptionType[T](),
			Required:    true,
		}
		for _, s := range settings {
			s(o)
		}
		b.options = append(b.options, o)
	}
}

// OptionType returns the Discord option type for T.
func OptionType[T Value]() discordgo.ApplicationCommandOptionType {
	var zero T
	switch any(zero).(type) {
	case int, int64:
		return discordgo.ApplicationCommandOptionInteger
	case float64:
		return discordgo.ApplicationCommandOptionNumber
	case bool:
		return discordgo.ApplicationCommandOptionBoolean
	case *discordgo.User:
		return discordgo.ApplicationCommandOptionUser
	case *discordgo.Channel:
		return discordgo.ApplicationCommandOptionChannel
	case *discordgo.Role:
		return discordgo.ApplicationCommandOptionRole
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

// New builds a slash command around callback.
func New(callback command.Callback, settings ...Setting) (*command.Definition, error) {
	if callback == nil {
		return nil, errors.New("slash: callback is required")
	}
	b := &builder{}
	for _, s := range settings {
		s(b)
	}
	if b.name == "" {
		return nil, errors.New("slash: name is required")
	}
	if b.description == "" {
		return nil, fmt.Errorf("slash %q: description is required", b.name)
	}

	return command.New(command.Spec{
		Name:        cases.Lower(language.Und).String(b.name),
		Description: b.description,
		Kinds:       command.KindSlash,
		Guilds:      b.guilds,
		Options:     b.options,
		Checks:      b.checks,
		Callback:    callback,
	})
}

// MustNew is New for package-level command declarations.
func MustNew(callback command.Callback, settings ...Setting) *command.Definition {
	d, err := New(callback, settings...)
	if err != nil {
		panic(err)
	}
	return d
}
