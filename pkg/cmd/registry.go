package cmd

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/cases"
)

// fold normalises lookup keys. A Caser is not safe for concurrent use.
func fold(s string) string { return cases.Fold().String(s) }

// Registry stores commands by name and alias. It does not perform dispatch; each
// adapter looks up commands and invokes them with its own context.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command // primary name -> command
	index    map[string]string  // folded name or alias -> primary name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		index:    make(map[string]string),
	}
}

// Register adds a command under its name and every alias it declares
// (looked up through Root, so middleware wrapping does not hide them).
// A name or alias already taken by another command is an error.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := []string{c.Name()}
	if a, ok := Root(c).(Aliased); ok {
		keys = append(keys, a.Aliases()...)
	}

	for _, k := range keys {
		if owner, taken := r.index[fold(k)]; taken && owner != c.Name() {
			return fmt.Errorf("command %q: name %q already used by %q", c.Name(), k, owner)
		}
	}

	r.removeLocked(c.Name())
	r.commands[c.Name()] = c
	for _, k := range keys {
		r.index[fold(k)] = c.Name()
	}
	return nil
}

// MustRegister is Register for init-time wiring where a clash is a programming error.
func (r *Registry) MustRegister(c Command) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Unregister removes a command and all of its aliases. It reports whether
// the command was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	primary, ok := r.index[fold(name)]
	if !ok {
		return false
	}
	r.removeLocked(primary)
	return true
}

func (r *Registry) removeLocked(primary string) {
	if _, ok := r.commands[primary]; !ok {
		return
	}
	delete(r.commands, primary)
	for k, owner := range r.index {
		if owner == primary {
			delete(r.index, k)
		}
	}
}

// Get returns the command registered under name or alias, or nil.
// Lookup is case-insensitive.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	primary, ok := r.index[fold(name)]
	if !ok {
		return nil
	}
	return r.commands[primary]
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
