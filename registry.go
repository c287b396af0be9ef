package goseal

import (
	"fmt"
	"slices"
	"sync"
)

// Factory reconstructs an entity from a reader positioned on its node. A
// factory only populates fields; the reader completes the entity afterwards.
type Factory func(r *ObjectReader) (Entity, error)

// Registry maps type names to reconstruction factories. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[TypeName]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[TypeName]Factory)}
}

// Register associates name with f. Registering a name that is already present
// is a no-op; the first factory wins. Primitive type hints cannot be
// registered.
func (r *Registry) Register(name TypeName, f Factory) error {
	if name.IsZero() {
		return fmt.Errorf("goseal: register: empty type name")
	}
	if IsPrimitiveHint(name) {
		return fmt.Errorf("goseal: register: %q is a reserved primitive type hint", name.Value())
	}
	if f == nil {
		return fmt.Errorf("goseal: register %q: nil factory", name.Value())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return nil
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name TypeName, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name TypeName) (Factory, bool) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	return f, ok
}

// IsRegistered reports whether name has a factory.
func (r *Registry) IsRegistered(name TypeName) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered names in lexicographic order.
func (r *Registry) Names() []TypeName {
	r.mu.RLock()
	out := make([]TypeName, 0, len(r.factories))
	for n := range r.factories {
		out = append(out, n)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, TypeName.Compare)
	return out
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry() }

// Register adds name to the process-wide registry.
func Register(name TypeName, f Factory) error { return DefaultRegistry().Register(name, f) }

// MustRegister adds name to the process-wide registry and panics on error.
func MustRegister(name TypeName, f Factory) { DefaultRegistry().MustRegister(name, f) }

// RegisterType registers a typed factory on reg (nil means the process-wide
// registry).
func RegisterType[T Entity](reg *Registry, name TypeName, f func(r *ObjectReader) (T, error)) error {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if f == nil {
		return reg.Register(name, nil)
	}
	return reg.Register(name, func(r *ObjectReader) (Entity, error) {
		v, err := f(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}
