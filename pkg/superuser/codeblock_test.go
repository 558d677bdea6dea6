package superuser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTags(t *testing.T) {
	r := Resolver{Shell: "zsh", Python: "python3.12"}
	session := Language{Mode: ModeSession}
	shell := Language{Mode: ModeShell, Program: "zsh"}
	python := Language{Mode: ModeShell, Program: "python3.12"}

	tests := []struct {
		tag  string
		want Language
	}{
		{"", session},
		{"js", session},
		{"javascript", session},
		{"py", python},
		{"python", python},
		{"python3", python},
		{"py3", python},
		{"shell", shell},
		{"sh", shell},
		{"bash", shell},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := r.Extract("```"+tt.tag+"\nbody\n```", "exec")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Language)
			assert.Equal(t, "body", got.Code)
		})
	}
}

func TestExtractUnknownTag(t *testing.T) {
	for _, tag := range []string{"rust", "JS", "go"} {
		_, err := Resolver{}.Extract("```"+tag+"\nfn main() {}\n```", "exec")
		var le *LanguageResolutionError
		require.ErrorAs(t, err, &le, tag)
		assert.Equal(t, tag, le.Tag)
	}
}

func TestExtractExamples(t *testing.T) {
	r := Resolver{}

	got, err := r.Extract("```py\nprint(1)\n```", "exec")
	require.NoError(t, err)
	assert.Equal(t, ResolvedCode{Language: Language{Mode: ModeShell, Program: "python3"}, Code: "print(1)"}, got)

	got, err = r.Extract("```js\nprint(1)\n```", "exec")
	require.NoError(t, err)
	assert.Equal(t, ResolvedCode{Language: Language{Mode: ModeSession}, Code: "print(1)"}, got)

	got, err = r.Extract("``` \n  a\n  b  \n\n```", "exec")
	require.NoError(t, err)
	assert.Equal(t, "a\n  b", got.Code)
}

func TestExtractUnfenced(t *testing.T) {
	r := Resolver{Shell: "sh"}
	tests := []struct {
		alias string
		want  Language
	}{
		{"exec", Language{Mode: ModeSession}},
		{"eval", Language{Mode: ModeSession}},
		{"shell", Language{Mode: ModeShell, Program: "sh"}},
		{"sh", Language{Mode: ModeShell, Program: "sh"}},
	}
	for _, tt := range tests {
		got, err := r.Extract("echo hi", tt.alias)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Language, tt.alias)
		assert.Equal(t, "echo hi", got.Code)
	}
}

func TestExtractUnterminated(t *testing.T) {
	_, err := Resolver{}.Extract("```py\nprint(1)", "exec")
	assert.ErrorIs(t, err, ErrUnterminatedCodeBlock)
}

func TestExtractIdempotent(t *testing.T) {
	r := Resolver{}
	for _, in := range []string{"```sh\nexit 3\n```", "1+1", "```\nx\n```"} {
		a, errA := r.Extract(in, "sh")
		b, errB := r.Extract(in, "sh")
		assert.Equal(t, a, b)
		assert.Equal(t, errA, errB)
	}
}

func TestDefaultResolverShell(t *testing.T) {
	got, err := Resolver{}.Extract("ls", "sh")
	require.NoError(t, err)
	assert.Equal(t, DefaultShell(), got.Language.Program)
}
