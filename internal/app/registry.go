package app

import (
	"context"
	"fmt"
)

// Handler runs one command with the arguments that follow its name.
type Handler func(ctx context.Context, args []string) error

type Command struct {
	Name string
	// Args is the argument synopsis shown in help, e.g. "<id> [--yes]".
	Args string
	// Auth commands refuse to run without a stored token.
	Auth bool
	Run  Handler
}

// Usage is the one-line synopsis of the command.
func (c Command) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// Registry maps command names to handlers, keeping registration order for
// help output.
type Registry struct {
	byName map[string]Command
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

func (r *Registry) Register(c Command) error {
	if c.Name == "" || c.Run == nil {
		return fmt.Errorf("command needs a name and a handler")
	}
	if _, dup := r.byName[c.Name]; dup {
		return fmt.Errorf("command %q already registered", c.Name)
	}
	r.byName[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Commands returns every command in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
