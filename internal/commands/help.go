package commands

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/internal/config"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/commandlike"
)

const (
	viewCategory = "category"
	viewFlat     = "flat"

	uncategorized = "Other"
)

// Help lists the commands the caller may run, or describes one of them.
type Help struct{ commandlike.Base }

func (Help) Implements() command.Kind { return command.KindSlash | command.KindPrefix }
func (Help) Name() string             { return "help" }
func (Help) Description() string      { return "Get a list of available commands" }
func (Help) Aliases() []string        { return []string{"h", "commands"} }
func (Help) Category() string         { return config.CategoryInformation }
func (Help) Ephemeral() bool          { return true }

func (Help) Options() []*command.Option {
	return []*command.Option{
		commandlike.Opt("command", "Command to describe, e.g. \"history\"", commandlike.Default("")),
		commandlike.Opt("view", "List commands by category or as a flat list",
			commandlike.Choices(viewCategory, viewFlat),
			commandlike.Default(viewCategory),
		),
	}
}

func (Help) Callback(c *command.Context) error {
	host := c.Host()
	if host == nil {
		return fmt.Errorf("help: no command host")
	}
	prefix := host.Prefix()

	if query := strings.TrimSpace(c.Options.String("command")); query != "" {
		def := lookup(host.Commands(), query)
		if def == nil || !allowed(c, def) {
			return c.Respond(fmt.Sprintf("No command named `%s`.", query))
		}
		return c.RespondEmbed(&discordgo.MessageEmbed{
			Title:       invocation(prefix, def),
			Description: def.Help(c),
			Color:       embedColor,
		})
	}

	var visible []*command.Definition
	for _, def := range definitions(host.Commands()) {
		if !def.Hidden() && allowed(c, def) {
			visible = append(visible, def)
		}
	}
	if len(visible) == 0 {
		return c.Respond("No commands available.")
	}

	var body string
	switch c.Options.String("view") {
	case viewFlat:
		body = helpFlat(prefix, visible)
	default:
		body = helpByCategory(prefix, visible)
	}
	return c.RespondEmbed(&discordgo.MessageEmbed{
		Title:       "Commands",
		Description: body,
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Use help <command> for details"},
	})
}

// lookup resolves a space-separated command path such as "history clear".
func lookup(reg *cmd.Registry, query string) *command.Definition {
	parts := strings.Fields(query)
	def, _ := cmd.Root(reg.Get(parts[0])).(*command.Definition)
	for _, name := range parts[1:] {
		if def == nil {
			return nil
		}
		def = def.Child(name)
	}
	return def
}

func definitions(reg *cmd.Registry) []*command.Definition {
	var out []*command.Definition
	for _, c := range reg.GetAll() {
		if def, ok := cmd.Root(c).(*command.Definition); ok {
			out = append(out, def)
		}
	}
	return out
}

// allowed runs def's checks against the caller.
func allowed(c *command.Context, def *command.Definition) bool {
	probe := *c
	probe.Command = def
	for _, check := range def.Checks() {
		if check(&probe) != nil {
			return false
		}
	}
	return true
}

func invocation(prefix string, def *command.Definition) string {
	if def.Kinds().Has(command.KindSlash) {
		return "/" + def.QualifiedName()
	}
	return prefix + def.QualifiedName()
}

func helpByCategory(prefix string, defs []*command.Definition) string {
	groups := make(map[string][]*command.Definition)
	for _, def := range defs {
		cat := def.Category()
		if cat == "" {
			cat = uncategorized
		}
		groups[cat] = append(groups[cat], def)
	}

	cats := make([]string, 0, len(groups))
	for cat := range groups {
		cats = append(cats, cat)
	}
	slices.SortFunc(cats, func(a, b string) int {
		return cmp.Or(cmp.Compare(config.CategoryWeight(a), config.CategoryWeight(b)), cmp.Compare(a, b))
	})

	var sb strings.Builder
	for i, cat := range cats {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**%s**\n", cat)
		for _, def := range groups[cat] {
			fmt.Fprintf(&sb, "`%s` - %s\n", invocation(prefix, def), def.Description())
		}
	}
	return sb.String()
}

func helpFlat(prefix string, defs []*command.Definition) string {
	var sb strings.Builder
	for _, def := range defs {
		fmt.Fprintf(&sb, "`%s` - %s\n", invocation(prefix, def), def.Description())
	}
	return sb.String()
}
