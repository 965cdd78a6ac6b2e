package action

import (
	"fmt"
	"strings"
)

// Registry holds the set of dispatchable actions in registration order.
type Registry struct {
	order   []string
	actions map[string]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]*Descriptor),
	}
}

// Register adds an action. Duplicate names are a programming error.
func (r *Registry) Register(desc *Descriptor) error {
	if desc.Name == "" {
		return fmt.Errorf("action name must not be empty")
	}
	if _, exists := r.actions[desc.Name]; exists {
		return fmt.Errorf("action %q already registered", desc.Name)
	}
	r.order = append(r.order, desc.Name)
	r.actions[desc.Name] = desc
	return nil
}

// Find returns the named action, or nil.
func (r *Registry) Find(name string) *Descriptor {
	return r.actions[name]
}

// Names returns action names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// DescribeAll renders one "name: intent" line per action, used in
// classification prompts.
func (r *Registry) DescribeAll() string {
	var b strings.Builder
	for _, name := range r.order {
		desc := r.actions[name]
		fmt.Fprintf(&b, "- %s: %s\n", desc.Name, desc.Intent)
	}
	return b.String()
}
