package superuser

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"
)

// Mode selects the executor for a piece of code.
type Mode uint8

const (
	// ModeSession runs code in the embedded JavaScript runtime.
	ModeSession Mode = iota
	// ModeShell pipes code into an external program.
	ModeShell
)

func (m Mode) String() string {
	if m == ModeShell {
		return "shell"
	}
	return "session"
}

// Language is a resolved execution target. Program is only set for ModeShell.
type Language struct {
	Mode    Mode
	Program string
}

// ResolvedCode is the code to run and where to run it.
type ResolvedCode struct {
	Language Language
	Code     string
}

// LanguageResolutionError reports a code block tag with no known language.
type LanguageResolutionError struct {
	Tag string
}

func (e *LanguageResolutionError) Error() string {
	return fmt.Sprintf("unknown code block language %q", e.Tag)
}

// ErrUnterminatedCodeBlock is returned for input that opens a fence but never closes it.
var ErrUnterminatedCodeBlock = errors.New("code block is not terminated")

var codeBlock = regexp.MustCompile("^```(?P<lang>[a-zA-Z0-9]*)\\s(?P<code>(?s:.*?))\\s*```")

type tagKind uint8

const (
	tagSession tagKind = iota
	tagPython
	tagShell
)

var tags = map[string]tagKind{
	"":           tagSession,
	"js":         tagSession,
	"javascript": tagSession,
	"py":         tagPython,
	"python":     tagPython,
	"python3":    tagPython,
	"py3":        tagPython,
	"shell":      tagShell,
	"sh":         tagShell,
	"bash":       tagShell,
}

// DefaultShell is the shell used when none is configured: bash, or cmd on Windows.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return "cmd"
	}
	return "bash"
}

// Resolver maps raw command input to ResolvedCode. The zero value uses
// DefaultShell and python3.
type Resolver struct {
	Shell  string
	Python string
}

func (r Resolver) shell() string {
	if r.Shell != "" {
		return r.Shell
	}
	return DefaultShell()
}

func (r Resolver) python() string {
	if r.Python != "" {
		return r.Python
	}
	return "python3"
}

// Extract resolves raw input. Fenced input is resolved by its tag; unfenced
// input runs in the session unless it was invoked as shell or sh.
func (r Resolver) Extract(raw, invokedWith string) (ResolvedCode, error) {
	if !strings.HasPrefix(raw, "```") {
		if strings.EqualFold(invokedWith, "shell") || strings.EqualFold(invokedWith, "sh") {
			return ResolvedCode{Language: Language{Mode: ModeShell, Program: r.shell()}, Code: raw}, nil
		}
		return ResolvedCode{Language: Language{Mode: ModeSession}, Code: raw}, nil
	}

	m := codeBlock.FindStringSubmatch(raw)
	if m == nil {
		return ResolvedCode{}, ErrUnterminatedCodeBlock
	}
	tag := m[codeBlock.SubexpIndex("lang")]
	code := strings.TrimSpace(m[codeBlock.SubexpIndex("code")])

	kind, ok := tags[tag]
	if !ok {
		return ResolvedCode{}, &LanguageResolutionError{Tag: tag}
	}
	switch kind {
	case tagPython:
		return ResolvedCode{Language: Language{Mode: ModeShell, Program: r.python()}, Code: code}, nil
	case tagShell:
		return ResolvedCode{Language: Language{Mode: ModeShell, Program: r.shell()}, Code: code}, nil
	default:
		return ResolvedCode{Language: Language{Mode: ModeSession}, Code: code}, nil
	}
}
