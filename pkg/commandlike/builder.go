package commandlike

import (
	"fmt"

	"github.com/keshon/filament/pkg/command"
)

// Builder turns a CommandLike into a command.Definition. Each command gets its
// own Builder, so children and handlers belong to that command only.
type Builder struct {
	cmd         CommandLike
	children    []*Builder
	onError     command.ErrorHandler
	helpGetter  command.HelpGetter
	checkExempt command.CheckExempt
}

// New starts a Builder for c.
func New(c CommandLike) *Builder {
	return &Builder{cmd: c}
}

// Child adds subcommands.
func (b *Builder) Child(children ...CommandLike) *Builder {
	for _, c := range children {
		b.children = append(b.children, New(c))
	}
	return b
}

// Nest adds subcommands that carry their own builders, for children with
// children or handlers of their own.
func (b *Builder) Nest(children ...*Builder) *Builder {
	b.children = append(b.children, children...)
	return b
}

// OnError sets the error handler.
func (b *Builder) OnError(h command.ErrorHandler) *Builder {
	b.onError = h
	return b
}

// HelpGetter sets the long help provider.
func (b *Builder) HelpGetter(h command.HelpGetter) *Builder {
	b.helpGetter = h
	return b
}

// CheckExempt sets the predicate that lets an invocation skip checks.
func (b *Builder) CheckExempt(fn command.CheckExempt) *Builder {
	b.checkExempt = fn
	return b
}

// Build validates the command tree and returns its root definition.
func (b *Builder) Build() (*command.Definition, error) {
	if b.cmd == nil {
		return nil, fmt.Errorf("commandlike: nil command")
	}

	spec := command.Spec{
		Name:         b.cmd.Name(),
		Description:  b.cmd.Description(),
		Kinds:        b.cmd.Implements(),
		Callback:     b.cmd.Callback,
		ErrorHandler: b.onError,
		HelpGetter:   b.helpGetter,
		CheckExempt:  b.checkExempt,
	}
	if p, ok := b.cmd.(Properties); ok {
		spec.Checks = p.Checks()
		spec.Aliases = p.Aliases()
		spec.Guilds = p.Guilds()
		spec.Options = p.Options()
		spec.Parser = p.Parser()
		spec.Cooldown = p.Cooldown()
		spec.AutoDefer = p.AutoDefer()
		spec.Ephemeral = p.Ephemeral()
		spec.Hidden = p.Hidden()
		spec.InheritChecks = p.InheritChecks()
		spec.Category = p.Category()
	}

	for _, child := range b.children {
		def, err := child.Build()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		spec.Children = append(spec.Children, def)
	}
	return command.New(spec)
}

// MustBuild is Build for package-level command declarations.
func (b *Builder) MustBuild() *command.Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
