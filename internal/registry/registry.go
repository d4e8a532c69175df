// Package registry maps declarative verbs and catalog kinds to operation
// types. A registry is built once at startup and passed to the components
// that dispatch on verbs or kinds.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pgtrunk/pgtrunk/internal/operation"
)

var (
	// ErrNotFound is returned when a verb or kind is not registered.
	ErrNotFound = errors.New("not registered")
	// ErrDuplicate is returned when a verb or kind is registered twice.
	ErrDuplicate = errors.New("already registered")
)

// Registry holds operation factories by verb and discovery probes by kind.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]operation.Factory
	verbs     []string
	probes    map[string]operation.Probe
	kinds     []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]operation.Factory),
		probes:    make(map[string]operation.Probe),
	}
}

// Default returns a registry holding every built-in operation and probe.
func Default() *Registry {
	r := New()
	for _, variant := range operation.Variants() {
		if err := r.Register(variant.Verb, variant.Factory); err != nil {
			panic(err)
		}
	}
	for _, probe := range operation.Probes() {
		if err := r.RegisterKind(probe); err != nil {
			panic(err)
		}
	}
	return r
}

// Register binds verb to factory.
func (r *Registry) Register(verb string, factory operation.Factory) error {
	if verb == "" || factory == nil {
		return fmt.Errorf("register %q: verb and factory are required", verb)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[verb]; exists {
		return fmt.Errorf("verb %q %w", verb, ErrDuplicate)
	}
	r.factories[verb] = factory
	r.verbs = append(r.verbs, verb)
	return nil
}

// Resolve returns the factory registered for verb.
func (r *Registry) Resolve(verb string) (operation.Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[verb]
	if !ok {
		return nil, fmt.Errorf("verb %q %w", verb, ErrNotFound)
	}
	return factory, nil
}

// Verbs returns the registered verbs in registration order.
func (r *Registry) Verbs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.verbs...)
}

// Build constructs the operation registered for verb.
func (r *Registry) Build(verb string, values map[string]any) (operation.Operation, error) {
	factory, err := r.Resolve(verb)
	if err != nil {
		return nil, err
	}
	op, err := factory(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", verb, err)
	}
	return op, nil
}

// RegisterKind adds a discovery probe. Its verb must already be registered.
func (r *Registry) RegisterKind(probe operation.Probe) error {
	if probe.Kind == "" || probe.Query == "" {
		return fmt.Errorf("register kind %q: kind and query are required", probe.Kind)
	}
	if _, err := r.Resolve(probe.Verb); err != nil {
		return fmt.Errorf("register kind %q: %w", probe.Kind, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.probes[probe.Kind]; exists {
		return fmt.Errorf("kind %q %w", probe.Kind, ErrDuplicate)
	}
	r.probes[probe.Kind] = probe
	r.kinds = append(r.kinds, probe.Kind)
	return nil
}

// Kind returns the probe registered for kind.
func (r *Registry) Kind(kind string) (operation.Probe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	probe, ok := r.probes[kind]
	if !ok {
		return operation.Probe{}, fmt.Errorf("kind %q %w", kind, ErrNotFound)
	}
	return probe, nil
}

// Kinds returns every probe in registration order.
func (r *Registry) Kinds() []operation.Probe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	probes := make([]operation.Probe, 0, len(r.kinds))
	for _, kind := range r.kinds {
		probes = append(probes, r.probes[kind])
	}
	return probes
}
