package superuser

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func runJS(t *testing.T, s *Session, code string, env Env) Outcome {
	t.Helper()
	return s.Execute(context.Background(), "", code, env)
}

func TestSessionBareExpression(t *testing.T) {
	out := runJS(t, &Session{}, "1+1", Env{})
	assert.Equal(t, int64(2), out.Result)
	assert.Empty(t, out.Stderr)
	assert.True(t, strings.HasPrefix(out.Engine, "JavaScript (goja) "))
	assert.NotContains(t, out.Engine, "\n")
	assert.False(t, math.IsNaN(out.Elapsed))
	assert.GreaterOrEqual(t, out.Elapsed, 0.0)
}

func TestSessionThrow(t *testing.T) {
	out := runJS(t, &Session{}, `throw new TypeError("x")`, Env{})
	assert.Equal(t, ExceptionType("TypeError"), out.Result)
	assert.Contains(t, out.Stderr, "TypeError")
}

func TestSessionThrownValues(t *testing.T) {
	tests := []struct {
		code string
		want ExceptionType
	}{
		{`throw new RangeError("r")`, "RangeError"},
		{`class Oops extends Error {}; throw new Oops("o")`, "Oops"},
		{`throw "plain"`, "string"},
		{`throw 42`, "number"},
		{`undefinedFunction()`, "ReferenceError"},
		{`null.x`, "TypeError"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			out := runJS(t, &Session{}, tt.code, Env{})
			assert.Equal(t, tt.want, out.Result)
			assert.NotEmpty(t, out.Stderr)
		})
	}
}

func TestSessionSyntaxError(t *testing.T) {
	out := runJS(t, &Session{}, "1 +", Env{})
	assert.Equal(t, ExceptionType("SyntaxError"), out.Result)
	assert.Contains(t, out.Stderr, "SyntaxError")
	assert.True(t, out.Started())
}

func TestSessionConsole(t *testing.T) {
	out := runJS(t, &Session{}, `console.log("a", 1, {b: 2}); print([1, 2]); console.error("e"); console.warn("w")`, Env{})
	assert.Equal(t, "a 1 {\"b\":2}\n[1,2]\n", out.Stdout)
	assert.Equal(t, "e\nw\n", out.Stderr)
	assert.Nil(t, out.Result)
}

func TestSessionMultiStatementNotRewritten(t *testing.T) {
	out := runJS(t, &Session{}, "print(1)\nprint(2)", Env{})
	assert.Equal(t, "1\n2\n", out.Stdout)
	assert.Nil(t, out.Result)

	out = runJS(t, &Session{}, "const x = 20\nreturn x + 1", Env{})
	assert.Equal(t, int64(21), out.Result)
}

func TestSessionAwaitable(t *testing.T) {
	out := runJS(t, &Session{}, "await sleep(10)\nreturn 5", Env{})
	assert.Equal(t, int64(5), out.Result)
	assert.Contains(t, out.Stderr, "Returned awaitable [object Promise]. Awaiting it.")
	assert.GreaterOrEqual(t, out.Elapsed, 0.01)
}

func TestSessionAwaitedRejection(t *testing.T) {
	out := runJS(t, &Session{}, "await sleep(1)\nthrow new RangeError('late')", Env{})
	assert.Equal(t, ExceptionType("RangeError"), out.Result)
	assert.Contains(t, out.Stderr, "late")
}

func TestSessionSetTimeout(t *testing.T) {
	code := "setTimeout((a) => print('tick', a), 1, 'x')\nawait sleep(20)\nreturn 'done'"
	out := runJS(t, &Session{}, code, Env{})
	assert.Equal(t, "done", out.Result)
	assert.Equal(t, "tick x\n", out.Stdout)
}

func TestSessionNeverSettles(t *testing.T) {
	out := runJS(t, &Session{}, "await new Promise(() => {})", Env{})
	assert.Equal(t, ExceptionType("UnsettledPromiseError"), out.Result)
}

func TestSessionTimeout(t *testing.T) {
	start := time.Now()
	out := runJS(t, &Session{Timeout: 50 * time.Millisecond}, "while (true) {}", Env{})
	assert.Equal(t, ExceptionType("InterruptedError"), out.Result)
	assert.Less(t, time.Since(start), 5*time.Second)

	out = runJS(t, &Session{Timeout: 50 * time.Millisecond}, "await sleep(10000)", Env{})
	assert.Equal(t, ExceptionType("InterruptedError"), out.Result)
}

func TestSessionEnvAndGlobals(t *testing.T) {
	type host struct{ Name string }
	s := &Session{Globals: map[string]any{"answer": 42}}
	out := runJS(t, s, "ctx.guild + ':' + bot.name + ':' + answer", Env{
		Ctx: map[string]any{"guild": "g1"},
		Bot: &host{Name: "filament"},
	})
	assert.Equal(t, "g1:filament:42", out.Result)
}

func TestRewrite(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1+1", "return 1+1"},
		{"  ctx.name  \n", "return ctx.name"},
		{"await sleep(1)", "return await sleep(1)"},
		{"let x = 1", "let x = 1"},
		{"a()\nb()", "a()\nb()"},
		{"return 3", "return 3"},
		{"1 +", "1 +"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rewrite(tt.in), tt.in)
	}
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "    a\n\n    b", indent("a\n\nb", "    "))
}
