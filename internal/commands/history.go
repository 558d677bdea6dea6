package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/internal/config"
	"github.com/keshon/filament/internal/storage"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/commandlike"
	"github.com/keshon/filament/pkg/paginator"
	"github.com/keshon/filament/pkg/shorthand"
	"github.com/keshon/filament/pkg/util"
)

const historyDateTpl = "YYYY-MM-DD hh:mm:ss"

type historyArgs struct {
	Limit int `json:"limit"`
}

type history struct {
	store HistoryStore
	navs  *paginator.Manager
}

func newHistory(store HistoryStore, navs *paginator.Manager) (*command.Definition, error) {
	h := &history{store: store, navs: navs}
	return shorthand.PrefixSlashCommand("history", "Show the commands recently used in this server",
		shorthand.PassOptions(h.run),
		shorthand.WithOptions(commandlike.Opt("limit", "How many entries to show",
			commandlike.Type(discordgo.ApplicationCommandOptionInteger),
			commandlike.Range(1, storage.CommandHistoryLimit),
			commandlike.Required(false),
		)),
		shorthand.WithChecks(command.OwnerOnly),
		shorthand.Aliases("cmd-log"),
		shorthand.Category(config.CategoryUtility),
		shorthand.AutoDefer(),
	)
}

func (h *history) run(c *command.Context, args historyArgs) error {
	records, err := h.store.FetchCommandHistory(c.GuildID())
	if err != nil {
		return fmt.Errorf("fetch command history: %w", err)
	}
	if len(records) == 0 {
		return c.Respond("No commands recorded yet.")
	}
	if args.Limit > 0 && args.Limit < len(records) {
		records = records[len(records)-args.Limit:]
	}
	return h.navs.Show(c, c, historyPages(records))
}

// historyPages renders records newest first as a markdown table.
func historyPages(records []storage.CommandHistoryRecord) []string {
	pag := paginator.New("```md\n", "```")
	pag.AddLine(fmt.Sprintf("%-19s  %-15s  %-13s  %-6s  %s", "# Datetime", "# Username", "# Channel", "# Kind", "# Command"))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		channel := r.ChannelName
		if channel == "" {
			channel = r.ChannelID
		}
		pag.AddLine(fmt.Sprintf("%-19s  %-15s  #%-12s  %-6s  %s",
			util.FormatDateTpl(r.Datetime, historyDateTpl), r.Username, channel, r.Kind, r.Command))
	}
	return pag.Pages()
}
