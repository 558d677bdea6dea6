package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/slash"
)

func newPing() (*command.Definition, error) {
	return slash.New(ping,
		slash.Name("ping"),
		slash.Description("Check bot latency"),
	)
}

func ping(c *command.Context) error {
	var ms int64
	if s := c.Session(); s != nil {
		ms = s.HeartbeatLatency().Milliseconds()
	}
	return c.RespondEmbed(&discordgo.MessageEmbed{
		Title:       "Pong!",
		Description: fmt.Sprintf("Latency: %dms", ms),
		Color:       embedColor,
	})
}
