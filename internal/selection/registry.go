package selection

import (
	"errors"
	"fmt"
	"sync"
)

// Registry errors
var (
	// ErrUnknownAlgorithm is returned when an algorithm ID is not
	// registered. Lookup failure is a hard error, never a silent fallback.
	ErrUnknownAlgorithm = errors.New("unknown selection algorithm")

	// ErrAlgorithmAlreadyRegistered is returned when registering a duplicate ID.
	ErrAlgorithmAlreadyRegistered = errors.New("selection algorithm already registered")
)

// DefaultAlgorithmID is used when a deck carries no algorithm setting.
const DefaultAlgorithmID = SequentialID

// Registry is a name -> Algorithm lookup, independent of the strategy
// registry. Construct one per process (or per test) and register
// implementations explicitly.
type Registry struct {
	mu         sync.RWMutex
	algorithms map[string]Algorithm
}

// NewRegistry returns an empty algorithm registry.
func NewRegistry() *Registry {
	return &Registry{
		algorithms: make(map[string]Algorithm),
	}
}

// NewDefaultRegistry returns a registry with all built-in algorithms
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(NewSequential())
	_ = r.Register(NewFaust())
	return r
}

// Register adds an algorithm under its ID.
// Returns ErrAlgorithmAlreadyRegistered if the ID is taken.
func (r *Registry) Register(a Algorithm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.algorithms[a.ID()]; ok {
		return fmt.Errorf("%w: %q", ErrAlgorithmAlreadyRegistered, a.ID())
	}
	r.algorithms[a.ID()] = a
	return nil
}

// Get returns the algorithm registered under id.
// Returns ErrUnknownAlgorithm if no algorithm carries that ID.
func (r *Registry) Get(id string) (Algorithm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.algorithms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, id)
	}
	return a, nil
}

// IDs returns the registered algorithm IDs in no particular order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.algorithms))
	for id := range r.algorithms {
		ids = append(ids, id)
	}
	return ids
}
