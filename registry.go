package planlib

import (
	"errors"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrAlreadyRegistered = errors.New("name is already registered")
	ErrNotRegistered     = errors.New("name is not registered")
)

// Registry resolves names to implementations. It is constructed once at
// start-up and passed to whoever needs it; there is no package-level
// instance.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: map[string]T{}}
}

func (r *Registry[T]) Register(name string, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[name]; ok {
		return goerr.Wrap(ErrAlreadyRegistered, "failed to register", goerr.V("name", name))
	}
	r.items[name] = v
	return nil
}

// MustRegister is Register for start-up wiring; it panics on a conflict.
func (r *Registry[T]) MustRegister(name string, v T) {
	if err := r.Register(name, v); err != nil {
		panic(err)
	}
}

func (r *Registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[name]
	if !ok {
		var zero T
		return zero, goerr.Wrap(ErrNotRegistered, "failed to resolve", goerr.V("name", name), goerr.V("available", r.namesLocked()))
	}
	return v, nil
}

// Names returns registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry[T]) namesLocked() []string {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

const (
	ParserFunctionCalling = "function_calling"
	ParserJSON            = "json"
)

// NewParserRegistry returns a registry holding the built-in thought parsers.
func NewParserRegistry() *Registry[ThoughtParser] {
	r := NewRegistry[ThoughtParser]()
	r.MustRegister(ParserFunctionCalling, &FunctionCallingParser{})
	r.MustRegister(ParserJSON, &JSONParser{})
	return r
}
