// Package commandlike defines commands as Go types.
//
// A command type implements CommandLike and embeds Base for the optional
// properties it does not override. Options are declared as an ordered list
// built with Opt, and the relations between commands (children, error handler,
// help getter, check exemption) are attached through a Builder:
//
//	type Echo struct{ commandlike.Base }
//
//	func (Echo) Implements() command.Kind { return command.KindSlash | command.KindPrefix }
//	func (Echo) Name() string             { return "echo" }
//	func (Echo) Description() string      { return "Repeats the given text" }
//	func (Echo) Options() []*command.Option {
//		return []*command.Option{commandlike.Opt("text", "Text to repeat", commandlike.ConsumeRest())}
//	}
//	func (Echo) Callback(c *command.Context) error { return c.Respond(c.Options.String("text")) }
//
//	def := commandlike.New(Echo{}).MustBuild()
package commandlike

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/command"
)

// CommandLike is the contract every command type implements.
type CommandLike interface {
	// Implements returns the command kinds to create.
	Implements() command.Kind
	Name() string
	Description() string
	Callback(c *command.Context) error
}

// Base provides the default optional properties. Embed it and override the
// methods a command needs.
type Base struct{}

func (Base) Checks() []command.Check     { return nil }
func (Base) Aliases() []string           { return nil }
func (Base) Guilds() []string            { return nil }
func (Base) Options() []*command.Option  { return nil }
func (Base) Parser() command.Parser      { return nil }
func (Base) Cooldown() *command.Cooldown { return nil }
func (Base) AutoDefer() bool             { return false }
func (Base) Ephemeral() bool             { return false }
func (Base) Hidden() bool                { return false }
func (Base) InheritChecks() bool         { return false }
func (Base) Category() string            { return "" }

// Callback does nothing. Parent commands that only group children can keep it.
func (Base) Callback(*command.Context) error { return nil }

// Properties is the set of optional methods Base implements.
type Properties interface {
	Checks() []command.Check
	Aliases() []string
	Guilds() []string
	Options() []*command.Option
	Parser() command.Parser
	Cooldown() *command.Cooldown
	AutoDefer() bool
	Ephemeral() bool
	Hidden() bool
	InheritChecks() bool
	Category() string
}

// OptSetting configures an option built by Opt.
type OptSetting func(*optConfig)

type optConfig struct {
	opt        command.Option
	hasDefault bool
	required   *bool
}

// Type sets the option type. Options are strings by default.
func Type(t discordgo.ApplicationCommandOptionType) OptSetting {
	return func(c *optConfig) { c.opt.Type = t }
}

// Default sets the value used when the option is omitted.
func Default(v any) OptSetting {
	return func(c *optConfig) {
		c.opt.Default = v
		c.hasDefault = true
	}
}

// Required overrides whether the option must be given.
func Required(required bool) OptSetting {
	return func(c *optConfig) { c.required = &required }
}

// Choices limits the option to the given values.
func Choices(values ...any) OptSetting {
	return func(c *optConfig) {
		for _, v := range values {
			c.opt.Choices = append(c.opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: fmt.Sprint(v), Value: v})
		}
	}
}

// ChannelTypes limits a channel option to the given channel types.
func ChannelTypes(types ...discordgo.ChannelType) OptSetting {
	return func(c *optConfig) { c.opt.ChannelTypes = append(c.opt.ChannelTypes, types...) }
}

// Range limits a numeric option to [lo, hi].
func Range(lo, hi float64) OptSetting {
	return func(c *optConfig) {
		c.opt.MinValue = &lo
		c.opt.MaxValue = hi
	}
}

// ConsumeRest makes a prefix option take the rest of the message.
func ConsumeRest() OptSetting {
	return func(c *optConfig) { c.opt.ConsumeRest = true }
}

// Opt declares an option. It is required unless a default is given or
// Required says otherwise; optional options without a default get nil.
func Opt(name, description string, settings ...OptSetting) *command.Option {
	c := &optConfig{opt: command.Option{
		Name:        name,
		Description: description,
		Type:        discordgo.ApplicationCommandOptionString,
	}}
	for _, s := range settings {
		s(c)
	}
	c.opt.Required = !c.hasDefault
	if c.required != nil {
		c.opt.Required = *c.required
	}
	if !c.opt.Required && !c.hasDefault {
		c.opt.Default = nil
	}
	return &c.opt
}

// Option is an alias for Opt.
var Option = Opt
