package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands. Names are stored
// lower-case so lookups ignore case.
type Registry struct {
	mu      sync.RWMutex
	primary map[string]Command
	aliases map[string]string // alias -> primary name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		primary: make(map[string]Command),
		aliases: make(map[string]string),
	}
}

// Register adds c under its name and aliases. It fails without changing
// the registry if any of them is empty or already taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(c.Name())
	if name == "" {
		return fmt.Errorf("command has no name")
	}
	if r.takenLocked(name) {
		return fmt.Errorf("command already registered: %s", name)
	}

	aliases := make([]string, 0, len(c.Aliases()))
	for _, a := range c.Aliases() {
		a = strings.ToLower(a)
		if a == "" || a == name || r.takenLocked(a) {
			return fmt.Errorf("command alias already registered: %s", a)
		}
		aliases = append(aliases, a)
	}

	r.primary[name] = c
	for _, a := range aliases {
		r.aliases[a] = name
	}
	return nil
}

func (r *Registry) takenLocked(name string) bool {
	_, isCmd := r.primary[name]
	_, isAlias := r.aliases[name]
	return isCmd || isAlias
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(name)
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.primary[name]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.primary))
	for name := range r.primary {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = r.primary[name]
	}
	return result
}

// DefaultRegistry holds the commands registered by this package's init functions.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
