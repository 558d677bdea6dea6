// Package middleware holds cmd.Middleware implementations shared by the bot's
// commands. Each one reads the invocation's command.Source and passes other
// invocation data through untouched.
package middleware

import (
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
)

func sourceOf(inv *cmd.Invocation) (command.Source, bool) {
	if inv == nil {
		return nil, false
	}
	src, ok := inv.Data.(command.Source)
	return src, ok
}
