package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/keshon/filament/pkg/cmd"
	"github.com/rs/zerolog/log"
)

// PanicError is returned in place of a panic raised by a command.
type PanicError struct {
	Command string
	Value   any
	Stack   []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("command %s panicked: %v", e.Command, e.Value)
}

// WithRecover turns panics in c into a *PanicError.
func WithRecover() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					pe := &PanicError{Command: c.Name(), Value: r, Stack: debug.Stack()}
					log.Error().Str("component", "command").Str("command", c.Name()).
						Interface("panic", r).Bytes("stack", pe.Stack).Msg("recovered panic")
					err = pe
				}
			}()
			return c.Run(ctx, inv)
		})
	}
}
