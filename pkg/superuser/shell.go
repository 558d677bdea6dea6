package superuser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Shell pipes code into an external program started as `<path> --`.
type Shell struct {
	// Timeout kills the child after the given duration. Zero means no limit.
	Timeout time.Duration
}

// Execute implements Executor. A program that cannot be found yields exit
// status 127 without spawning anything; one that cannot be started yields 126.
func (s *Shell) Execute(ctx context.Context, program, code string, _ Env) Outcome {
	path, err := exec.LookPath(program)
	if err != nil {
		return Outcome{Stderr: program + " not found.", Result: "127"}
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--")
	cmd.Stdin = strings.NewReader(code)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren may hold the pipes open after the child is killed.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start).Seconds()

	out := Outcome{Elapsed: elapsed, Engine: path}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.Result = "0"
	case errors.As(err, &exitErr):
		out.Result = strconv.Itoa(exitErr.ExitCode())
	case cmd.ProcessState != nil:
		// Exited, but output copying failed (e.g. WaitDelay expired).
		out.Result = strconv.Itoa(cmd.ProcessState.ExitCode())
		fmt.Fprintf(&stderr, "%v\n", err)
	default:
		out.Result = "126"
		fmt.Fprintf(&stderr, "%s: %v\n", program, err)
	}
	out.Stdout, out.Stderr = stdout.String(), stderr.String()
	return out
}
