package cea

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// OpenFunc opens an in-process module.
type OpenFunc func(ctx context.Context) (*Module, error)

// Registry is a Loader for modules provided by Go code, registered by name.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]OpenFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{openers: map[string]OpenFunc{}}
}

// Register makes open available under name. It panics if open is nil or
// name is already registered.
func (r *Registry) Register(name string, open OpenFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if open == nil {
		panic("cea: Register open func is nil")
	}
	if _, dup := r.openers[name]; dup {
		panic("cea: Register called twice for module " + name)
	}
	r.openers[name] = open
}

// Load opens the module registered under name.
func (r *Registry) Load(ctx context.Context, name string) (*Module, error) {
	r.mu.RLock()
	open, ok := r.openers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no module registered as %q", ErrNotFound, name)
	}
	m, err := open(ctx)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: opener for %q returned no module", ErrNotFound, name)
	}
	if m.Name == "" {
		m.Name = name
	}
	return m, nil
}

// Chain tries each loader in order and returns the first module found.
// A loader failing with anything other than ErrNotFound stops the chain.
type Chain []Loader

func (c Chain) Load(ctx context.Context, name string) (*Module, error) {
	var errs []error
	for _, l := range c {
		m, err := l.Load(ctx, name)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no loaders configured", ErrNotFound)
	}
	return nil, errors.Join(errs...)
}
