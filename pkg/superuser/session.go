package superuser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
)

const scriptName = "aexec.js"

var errUnsettled = errors.New("awaited promise can never settle")

// Engine identifies the session runtime.
func Engine() string {
	v := fmt.Sprintf("JavaScript (goja) %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return strings.ReplaceAll(v, "\n", " ")
}

// Session runs JavaScript in a fresh goja runtime per call. The code becomes the
// body of `async function aexec(ctx, bot)`; a lone expression is returned.
//
// Besides ctx and bot the code sees console, print, sleep(ms) and
// setTimeout(fn, ms, ...args).
type Session struct {
	// Timeout interrupts the run after the given duration. Zero means no limit.
	Timeout time.Duration
	// Globals are set on the runtime before the code runs.
	Globals map[string]any
}

// Execute implements Executor.
func (s *Session) Execute(ctx context.Context, _ string, code string, env Env) (out Outcome) {
	var stdout, stderr strings.Builder
	var start time.Time
	out.Engine = Engine()
	out.Elapsed = math.NaN()

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(&stderr, "panic: %v\n%s", r, debug.Stack())
			out.Result = ExceptionType("GoPanic")
		}
		if !start.IsZero() {
			out.Elapsed = time.Since(start).Seconds()
		}
		out.Stdout, out.Stderr = stdout.String(), stderr.String()
	}()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	loop := newEventLoop()
	defer loop.close()

	if err := s.install(vm, loop, &stdout, &stderr); err != nil {
		out.Result = failure(&stderr, err)
		return out
	}

	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	start = time.Now()
	if _, err := vm.RunScript(scriptName, wrap(rewrite(code))); err != nil {
		out.Result = failure(&stderr, err)
		return out
	}
	aexec, ok := goja.AssertFunction(vm.Get("aexec"))
	if !ok {
		out.Result = failure(&stderr, errors.New("aexec is not a function"))
		return out
	}
	ret, err := aexec(goja.Undefined(), vm.ToValue(env.Ctx), vm.ToValue(env.Bot))
	if err != nil {
		out.Result = failure(&stderr, err)
		return out
	}

	p, ok := ret.Export().(*goja.Promise)
	if !ok {
		out.Result = export(ret)
		return out
	}
	if p.State() == goja.PromiseStatePending {
		fmt.Fprintf(&stderr, "Returned awaitable %s. Awaiting it.\n", ret.String())
		if err := loop.await(ctx, p, &stderr); err != nil {
			out.Result = failure(&stderr, err)
			return out
		}
	}

	if p.State() == goja.PromiseStateRejected {
		out.Result = thrown(&stderr, p.Result())
		return out
	}
	out.Result = export(p.Result())
	return out
}

func (s *Session) install(vm *goja.Runtime, loop *eventLoop, stdout, stderr io.Writer) error {
	console := vm.NewObject()
	for name, w := range map[string]io.Writer{
		"log": stdout, "info": stdout, "debug": stdout,
		"warn": stderr, "error": stderr,
	} {
		if err := console.Set(name, printer(w)); err != nil {
			return err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}
	if err := vm.Set("print", printer(stdout)); err != nil {
		return err
	}

	if err := vm.Set("sleep", func(call goja.FunctionCall) goja.Value {
		p, resolve, _ := vm.NewPromise()
		loop.schedule(millis(call.Argument(0)), func() error {
			return resolve(goja.Undefined())
		})
		return vm.ToValue(p)
	}); err != nil {
		return err
	}

	if err := vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("setTimeout: callback is not a function"))
		}
		var args []goja.Value
		if len(call.Arguments) > 2 {
			args = append(args, call.Arguments[2:]...)
		}
		loop.schedule(millis(call.Argument(1)), func() error {
			_, err := fn(goja.Undefined(), args...)
			return err
		})
		return goja.Undefined()
	}); err != nil {
		return err
	}

	for name, v := range s.Globals {
		if err := vm.Set(name, v); err != nil {
			return fmt.Errorf("global %s: %w", name, err)
		}
	}
	return nil
}

func printer(w io.Writer) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = inspect(a)
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// inspect renders a value for console output: primitives as JavaScript would,
// plain objects and arrays as JSON.
func inspect(v goja.Value) string {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		if v == nil {
			return "undefined"
		}
		return v.String()
	}
	if _, isFn := goja.AssertFunction(v); isFn {
		return "[Function]"
	}
	switch obj.ClassName() {
	case "Object", "Array":
		if b, err := json.Marshal(obj); err == nil {
			return string(b)
		}
	case "Error":
		if st := obj.Get("stack"); st != nil && !goja.IsUndefined(st) {
			return st.String()
		}
	}
	return v.String()
}

func millis(v goja.Value) time.Duration {
	if v == nil || goja.IsUndefined(v) {
		return 0
	}
	ms := v.ToFloat()
	if math.IsNaN(ms) || ms < 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// wrap turns code into the aexec function declaration.
func wrap(code string) string {
	return "async function aexec(ctx, bot) {\n" + indent(code, "    ") + "\n}"
}

func indent(code, prefix string) string {
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// rewrite makes a code body that is a single expression statement return its
// value. Anything that does not parse is left as is.
func rewrite(code string) string {
	prog, err := goja.Parse(scriptName, wrap(code))
	if err != nil || len(prog.Body) != 1 {
		return code
	}
	decl, ok := prog.Body[0].(*ast.FunctionDeclaration)
	if !ok || decl.Function == nil || decl.Function.Body == nil {
		return code
	}
	body := decl.Function.Body.List
	if len(body) != 1 {
		return code
	}
	if _, ok := body[0].(*ast.ExpressionStatement); !ok {
		return code
	}
	return "return " + strings.TrimSpace(code)
}

func export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	return v.Export()
}

// failure records err in stderr and returns the exception type it maps to.
func failure(stderr io.Writer, err error) ExceptionType {
	var (
		ex   *goja.Exception
		intr *goja.InterruptedError
	)
	switch {
	case errors.As(err, &ex):
		fmt.Fprintln(stderr, strings.TrimRight(ex.String(), "\n"))
		return exceptionType(ex.Value())
	case errors.As(err, &intr):
		fmt.Fprintf(stderr, "InterruptedError: %v\n", intr.Value())
		return "InterruptedError"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		fmt.Fprintf(stderr, "InterruptedError: %v\n", err)
		return "InterruptedError"
	case errors.Is(err, errUnsettled):
		fmt.Fprintf(stderr, "UnsettledPromiseError: %v\n", err)
		return "UnsettledPromiseError"
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return "Error"
	}
}

// thrown records a rejection reason in stderr and returns its exception type.
func thrown(stderr io.Writer, v goja.Value) ExceptionType {
	text := "undefined"
	if v != nil {
		text = v.String()
		if obj, ok := v.(*goja.Object); ok {
			if st := obj.Get("stack"); st != nil && !goja.IsUndefined(st) {
				text = st.String()
			}
		}
	}
	fmt.Fprintln(stderr, "Uncaught (in promise) "+strings.TrimRight(text, "\n"))
	return exceptionType(v)
}

// exceptionType names a thrown value by its constructor, falling back to its
// name property, its class, or the primitive's type.
func exceptionType(v goja.Value) ExceptionType {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	if obj, ok := v.(*goja.Object); ok {
		if ctor, ok := obj.Get("constructor").(*goja.Object); ok {
			if n := ctor.Get("name"); n != nil && n.String() != "" {
				return ExceptionType(n.String())
			}
		}
		if n := obj.Get("name"); n != nil && !goja.IsUndefined(n) && n.String() != "" {
			return ExceptionType(n.String())
		}
		return ExceptionType(obj.ClassName())
	}
	switch v.Export().(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	}
	return ExceptionType(fmt.Sprintf("%T", v.Export()))
}

// eventLoop runs host callbacks (timers) on the executing goroutine so the
// runtime is never touched concurrently.
type eventLoop struct {
	jobs    chan func() error
	done    chan struct{}
	pending int
}

func newEventLoop() *eventLoop {
	return &eventLoop{jobs: make(chan func() error), done: make(chan struct{})}
}

func (l *eventLoop) schedule(d time.Duration, fn func() error) {
	l.pending++
	time.AfterFunc(d, func() {
		select {
		case l.jobs <- fn:
		case <-l.done:
		}
	})
}

func (l *eventLoop) close() { close(l.done) }

// await runs callbacks until p settles. Exceptions thrown by timer callbacks are
// reported and do not stop the loop.
func (l *eventLoop) await(ctx context.Context, p *goja.Promise, stderr io.Writer) error {
	for p.State() == goja.PromiseStatePending {
		if l.pending == 0 {
			return errUnsettled
		}
		select {
		case fn := <-l.jobs:
			l.pending--
			if err := fn(); err != nil {
				var ex *goja.Exception
				if errors.As(err, &ex) {
					fmt.Fprintln(stderr, strings.TrimRight(ex.String(), "\n"))
					continue
				}
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
