// Package superuser provides the owner-only exec command: it runs JavaScript in
// an embedded runtime or pipes code into a shell or interpreter, then shows the
// captured output in a paginated message.
package superuser

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/paginator"
)

// CommandName is the primary name of the exec command.
const CommandName = "exec"

// Plugin bundles the exec command with its executors.
type Plugin struct {
	resolver   Resolver
	session    Executor
	shell      Executor
	navigators *paginator.Manager
	middleware []cmd.Middleware
	timeout    time.Duration
	def        *command.Definition
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithShell sets the program used for shell code blocks and the shell/sh aliases.
func WithShell(program string) Option {
	return func(p *Plugin) { p.resolver.Shell = program }
}

// WithPython sets the interpreter used for Python code blocks.
func WithPython(program string) Option {
	return func(p *Plugin) { p.resolver.Python = program }
}

// WithTimeout limits every execution run by a *Session or *Shell executor,
// whichever option sets them. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(p *Plugin) { p.timeout = d }
}

// WithExecutors replaces the session and shell executors.
func WithExecutors(session, shell Executor) Option {
	return func(p *Plugin) {
		if session != nil {
			p.session = session
		}
		if shell != nil {
			p.shell = shell
		}
	}
}

// WithNavigators sets the manager that displays multi-page output.
func WithNavigators(m *paginator.Manager) Option {
	return func(p *Plugin) { p.navigators = m }
}

// WithMiddleware wraps the registered command.
func WithMiddleware(mws ...cmd.Middleware) Option {
	return func(p *Plugin) { p.middleware = append(p.middleware, mws...) }
}

// New builds the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{session: &Session{}, shell: &Shell{}}
	for _, opt := range opts {
		opt(p)
	}
	if p.timeout > 0 {
		if s, ok := p.session.(*Session); ok {
			s.Timeout = p.timeout
		}
		if s, ok := p.shell.(*Shell); ok {
			s.Timeout = p.timeout
		}
	}
	if p.navigators == nil {
		p.navigators = paginator.NewManager(nil, 0)
	}

	p.def = command.MustNew(command.Spec{
		Name:        CommandName,
		Description: "Run code as the bot.",
		Kinds:       command.KindPrefix,
		Aliases:     []string{"eval", "shell", "sh"},
		Checks:      []command.Check{command.OwnerOnly},
		Hidden:      true,
		Category:    "Superuser",
		Options: []*command.Option{{
			Name:        "code",
			Description: "Code to run, optionally in a fenced code block.",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    true,
			ConsumeRest: true,
		}},
		Callback: p.run,
	})
	return p
}

// Command returns the exec command definition.
func (p *Plugin) Command() *command.Definition { return p.def }

// Load registers the exec command.
func (p *Plugin) Load(reg *cmd.Registry) error {
	return reg.Register(cmd.Apply(p.def, p.middleware...))
}

// Unload removes the exec command. It reports whether it was registered.
func (p *Plugin) Unload(reg *cmd.Registry) bool {
	return reg.Unregister(CommandName)
}

// Execute runs resolved code with the matching executor.
func (p *Plugin) Execute(ctx context.Context, rc ResolvedCode, env Env) Outcome {
	if rc.Language.Mode == ModeShell {
		return p.shell.Execute(ctx, rc.Language.Program, rc.Code, env)
	}
	return p.session.Execute(ctx, "", rc.Code, env)
}

// Pages formats an outcome into diff-fenced message pages.
func Pages(o Outcome) []string {
	pag := paginator.New("```diff\n", "```")
	Format(pag, o)
	return pag.Pages()
}

func (p *Plugin) run(c *command.Context) error {
	rc, err := p.resolver.Extract(c.Options.String("code"), c.InvokedWith())
	if err != nil {
		return err
	}
	if err := c.Defer(false); err != nil {
		return err
	}
	out := p.Execute(c, rc, Env{Ctx: c, Bot: c.Host()})
	return p.navigators.Show(c, c, Pages(out))
}
