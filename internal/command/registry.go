// Package command provides the named-command registry the CLI host resolves
// invocations against.
package command

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"flowkit/internal/runctx"
	"flowkit/pkg/types"
)

// Command is a runnable named command.
type Command interface {
	// Name returns the command's registry name.
	Name() string

	// Description returns a one-line summary for usage listings.
	Description() string

	// Run executes the command. It is handed to the lifecycle runner as the
	// invocation's execution step.
	Run(ctx context.Context, args map[string]any, rc *runctx.Context) (*types.Output, error)
}

// Registry manages command registration and lookup.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// DefaultRegistry is the registry CLI builtins register into.
var DefaultRegistry = NewRegistry()

// Register adds a command. Registering a duplicate or empty name is an error.
func (r *Registry) Register(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("cannot register nil command")
	}
	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}
	r.commands[name] = cmd
	return nil
}

// MustRegister registers a command and panics on error.
func (r *Registry) MustRegister(cmd Command) {
	if err := r.Register(cmd); err != nil {
		panic(err)
	}
}

// Get looks up a command, erroring when absent.
func (r *Registry) Get(name string) (Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", name)
	}
	return cmd, nil
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
