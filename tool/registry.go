package tool

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the schemas of the tools a host exposes to the service.
// Hosts register once at startup and pass Schemas() to the engine's side
// channel on every invocation.
type Registry struct {
	schemas map[string]Schema
	mu      sync.RWMutex
}

// NewRegistry creates a new schema registry
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]Schema),
	}
}

// Register adds a schema to the registry
func (r *Registry) Register(s Schema) error {
	if s.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if s.Input.Type != "object" {
		return fmt.Errorf("tool %s: input schema type must be 'object', got %q", s.Name, s.Input.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.Name]; exists {
		return fmt.Errorf("tool %s already registered", s.Name)
	}

	r.schemas[s.Name] = s
	return nil
}

// RegisterAll adds multiple schemas to the registry
func (r *Registry) RegisterAll(ss []Schema) error {
	for _, s := range ss {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a schema by name
func (r *Registry) Get(name string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.schemas[name]
	return s, exists
}

// Has checks if a schema is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.schemas[name]
	return exists
}

// List returns all registered tool names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered schemas
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Schemas returns all registered schemas in name order, ready for the
// engine's side channel.
func (r *Registry) Schemas() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Schema, 0, len(names))
	for _, name := range names {
		out = append(out, r.schemas[name])
	}
	return out
}
