package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/cmd"
)

// Callback is a command's body.
type Callback func(c *Context) error

// ErrorHandler inspects an error raised while invoking a command. Returning true
// marks the error as handled and stops it from propagating.
type ErrorHandler func(c *Context, err error) bool

// HelpGetter returns the long help text for a command.
type HelpGetter func(c *Context, d *Definition) string

// CheckExempt returns true for invocations that skip all checks.
type CheckExempt func(c *Context) bool

// Spec describes a command. It is turned into a Definition by New.
type Spec struct {
	Name        string
	Description string
	Kinds       Kind

	Options       []*Option
	Checks        []Check
	InheritChecks bool
	CheckExempt   CheckExempt

	Aliases  []string
	Guilds   []string
	Children []*Definition

	Parser    Parser
	Cooldown  *Cooldown
	AutoDefer bool
	Ephemeral bool
	Hidden    bool

	Group    string
	Category string

	ErrorHandler ErrorHandler
	HelpGetter   HelpGetter
	Callback     Callback
}

// Definition is a validated command. It implements cmd.Command so it can be
// registered, wrapped in middleware and dispatched like any other command.
type Definition struct {
	spec   Spec
	parent *Definition
}

var slashName = regexp.MustCompile(`^[-_\p{Ll}\p{Lo}\p{N}]{1,32}$`)

// New validates spec and returns its Definition. Children are re-parented to it.
func New(spec Spec) (*Definition, error) {
	if spec.Name == "" {
		return nil, errors.New("command name is required")
	}
	if spec.Kinds == 0 {
		return nil, fmt.Errorf("command %q: no command kind given", spec.Name)
	}
	if spec.Kinds.Has(KindSlash) {
		if !slashName.MatchString(spec.Name) {
			return nil, fmt.Errorf("command %q: invalid slash command name", spec.Name)
		}
		if n := utf8.RuneCountInString(spec.Description); n == 0 || n > 100 {
			return nil, fmt.Errorf("command %q: slash description must be 1-100 characters", spec.Name)
		}
		for _, o := range spec.Options {
			if !slashName.MatchString(o.Name) {
				return nil, fmt.Errorf("command %q: invalid option name %q", spec.Name, o.Name)
			}
		}
	}
	if strings.IndexFunc(spec.Name, unicode.IsSpace) >= 0 {
		return nil, fmt.Errorf("command %q: name contains whitespace", spec.Name)
	}

	spec.Options = append([]*Option(nil), spec.Options...)
	spec.Checks = append([]Check(nil), spec.Checks...)
	spec.Children = append([]*Definition(nil), spec.Children...)

	d := &Definition{spec: spec}
	seen := map[string]bool{}
	for _, child := range spec.Children {
		if seen[child.Name()] {
			return nil, fmt.Errorf("command %q: duplicate subcommand %q", spec.Name, child.Name())
		}
		seen[child.Name()] = true
		child.parent = d
	}
	return d, nil
}

// MustNew is New for package-level command declarations.
func MustNew(spec Spec) *Definition {
	d, err := New(spec)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Definition) Name() string            { return d.spec.Name }
func (d *Definition) Description() string     { return d.spec.Description }
func (d *Definition) Aliases() []string       { return d.spec.Aliases }
func (d *Definition) Guilds() []string        { return d.spec.Guilds }
func (d *Definition) Kinds() Kind             { return d.spec.Kinds }
func (d *Definition) Options() []*Option      { return d.spec.Options }
func (d *Definition) Children() []*Definition { return d.spec.Children }
func (d *Definition) Parent() *Definition     { return d.parent }
func (d *Definition) Group() string           { return d.spec.Group }
func (d *Definition) Category() string        { return d.spec.Category }
func (d *Definition) Hidden() bool            { return d.spec.Hidden }
func (d *Definition) PrefixEnabled() bool     { return d.spec.Kinds.Has(KindPrefix) }

// QualifiedName is the space-separated path from the top-level command.
func (d *Definition) QualifiedName() string {
	if d.parent == nil {
		return d.spec.Name
	}
	return d.parent.QualifiedName() + " " + d.spec.Name
}

// Child returns the subcommand with the given name or alias.
func (d *Definition) Child(name string) *Definition {
	for _, c := range d.spec.Children {
		if strings.EqualFold(c.spec.Name, name) {
			return c
		}
		for _, a := range c.spec.Aliases {
			if strings.EqualFold(a, name) {
				return c
			}
		}
	}
	return nil
}

// Checks returns the checks that apply to d, parent checks first when
// InheritChecks is set.
func (d *Definition) Checks() []Check {
	if !d.spec.InheritChecks || d.parent == nil {
		return d.spec.Checks
	}
	return append(append([]Check(nil), d.parent.Checks()...), d.spec.Checks...)
}

// Help returns the command's help text, from the HelpGetter when one is set.
func (d *Definition) Help(c *Context) string {
	if d.spec.HelpGetter != nil {
		return d.spec.HelpGetter(c, d)
	}

	var b strings.Builder
	b.WriteString(d.spec.Description)
	if len(d.spec.Options) > 0 {
		b.WriteString("\n\nUsage: ")
		b.WriteString(d.QualifiedName())
		for _, o := range d.spec.Options {
			if o.Required {
				fmt.Fprintf(&b, " <%s>", o.Name)
			} else {
				fmt.Fprintf(&b, " [%s]", o.Name)
			}
		}
	}
	if len(d.spec.Children) > 0 {
		b.WriteString("\n\nSubcommands:")
		for _, c := range d.spec.Children {
			if c.Hidden() {
				continue
			}
			fmt.Fprintf(&b, "\n  %s - %s", c.Name(), c.Description())
		}
	}
	if len(d.spec.Aliases) > 0 {
		b.WriteString("\n\nAliases: ")
		b.WriteString(strings.Join(d.spec.Aliases, ", "))
	}
	return b.String()
}

// SlashDefinition returns the Discord application command, or nil for
// commands that are not slash commands.
func (d *Definition) SlashDefinition() *discordgo.ApplicationCommand {
	if !d.spec.Kinds.Has(KindSlash) {
		return nil
	}
	return &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        d.spec.Name,
		Description: d.spec.Description,
		Options:     d.slashOptions(),
	}
}

func (d *Definition) slashOptions() []*discordgo.ApplicationCommandOption {
	var out []*discordgo.ApplicationCommandOption
	if children := d.slashChildren(); len(children) > 0 {
		for _, c := range children {
			opt := &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        c.spec.Name,
				Description: c.spec.Description,
			}
			if len(c.slashChildren()) > 0 {
				opt.Type = discordgo.ApplicationCommandOptionSubCommandGroup
			}
			opt.Options = c.slashOptions()
			out = append(out, opt)
		}
		return out
	}
	for _, o := range requiredFirst(d.spec.Options) {
		out = append(out, o.ApplicationCommandOption())
	}
	return out
}

func (d *Definition) slashChildren() []*Definition {
	var out []*Definition
	for _, c := range d.spec.Children {
		if c.spec.Kinds.Has(KindSlash) {
			out = append(out, c)
		}
	}
	return out
}

// Run dispatches an invocation whose Data is a Source.
func (d *Definition) Run(ctx context.Context, inv *cmd.Invocation) error {
	src, ok := inv.Data.(Source)
	if !ok {
		return fmt.Errorf("command %s: unsupported invocation data %T", d.spec.Name, inv.Data)
	}
	return d.invoke(ctx, src, src.Arguments())
}

func (d *Definition) invoke(ctx context.Context, src Source, args Arguments) error {
	if child, rest, ok := d.resolveChild(src.Kind(), args); ok {
		return child.invoke(ctx, src, rest)
	}

	c := &Context{Context: ctx, Source: src, Command: d, Ephemeral: d.spec.Ephemeral}

	if d.spec.CheckExempt == nil || !d.spec.CheckExempt(c) {
		for _, check := range d.Checks() {
			if err := check(c); err != nil {
				return d.handle(c, err)
			}
		}
	}

	if d.spec.Cooldown != nil {
		if err := d.spec.Cooldown.Take(c); err != nil {
			return d.handle(c, err)
		}
	}

	opts, err := d.decode(c, args)
	if err != nil {
		return d.handle(c, err)
	}
	c.Options = opts

	if d.spec.AutoDefer {
		if err := src.Defer(c.Ephemeral); err != nil {
			return d.handle(c, fmt.Errorf("defer: %w", err))
		}
	}

	if d.spec.Callback == nil {
		return nil
	}
	if err := d.spec.Callback(c); err != nil {
		return d.handle(c, err)
	}
	return nil
}

func (d *Definition) resolveChild(kind Kind, args Arguments) (*Definition, Arguments, bool) {
	if len(d.spec.Children) == 0 {
		return nil, args, false
	}
	switch kind {
	case KindSlash:
		if len(args.Slash) == 0 {
			return nil, args, false
		}
		first := args.Slash[0]
		if first.Type != discordgo.ApplicationCommandOptionSubCommand &&
			first.Type != discordgo.ApplicationCommandOptionSubCommandGroup {
			return nil, args, false
		}
		if child := d.Child(first.Name); child != nil {
			return child, Arguments{Slash: first.Options}, true
		}
	case KindPrefix:
		tok, rest, ok := nextToken(args.Raw)
		if !ok {
			return nil, args, false
		}
		if child := d.Child(tok); child != nil && child.spec.Kinds.Has(KindPrefix) {
			return child, Arguments{Raw: rest}, true
		}
	}
	return nil, args, false
}

func (d *Definition) decode(c *Context, args Arguments) (Options, error) {
	if c.Kind() == KindSlash {
		return decodeSlash(c.Session(), c.GuildID(), d.spec.Options, args.Slash)
	}
	p := d.spec.Parser
	if p == nil {
		p = DefaultParser{}
	}
	return p.Parse(c, d.spec.Options, args.Raw)
}

// handle offers err to the error handlers from d up to the root command.
func (d *Definition) handle(c *Context, err error) error {
	for cur := d; cur != nil; cur = cur.parent {
		if cur.spec.ErrorHandler != nil && cur.spec.ErrorHandler(c, err) {
			return nil
		}
	}
	return err
}
