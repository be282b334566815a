package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownController is returned when a step names an unregistered controller
	ErrUnknownController = errors.New("unknown controller")

	// ErrDuplicateController is returned when a controller id is registered twice
	ErrDuplicateController = errors.New("controller already registered")
)

// Registry maps manifest controller identifiers to implementations
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]ControllerFunc
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]ControllerFunc)}
}

// Register binds id to fn
func (r *Registry) Register(id string, fn ControllerFunc) error {
	if id == "" || fn == nil {
		return fmt.Errorf("controller id and implementation are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.controllers[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateController, id)
	}
	r.controllers[id] = fn
	return nil
}

// Lookup returns the controller bound to id
func (r *Registry) Lookup(id string) (ControllerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.controllers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownController, id)
	}
	return fn, nil
}

// IDs returns the registered identifiers in order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.controllers))
	for id := range r.controllers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
