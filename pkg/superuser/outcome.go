package superuser

import (
	"context"
	"math"
)

// ExceptionType names the error type a failed session run ended with.
type ExceptionType string

func (t ExceptionType) String() string { return string(t) }

// Outcome is what an executor captured from one run.
//
// Result holds the returned value for session runs, an ExceptionType when the
// run failed, or the stringified exit status for shell runs. Elapsed is in
// seconds and NaN when the run failed before timing began.
type Outcome struct {
	Stdout  string
	Stderr  string
	Result  any
	Elapsed float64
	Engine  string
}

// Started reports whether timing began for the run.
func (o Outcome) Started() bool { return !math.IsNaN(o.Elapsed) }

// Env carries the values exposed to interpreted code as ctx and bot.
type Env struct {
	Ctx any
	Bot any
}

// Executor runs code for a program. Session executors ignore program and shell
// executors ignore env.
type Executor interface {
	Execute(ctx context.Context, program, code string, env Env) Outcome
}
