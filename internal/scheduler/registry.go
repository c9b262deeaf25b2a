package scheduler

import (
	"errors"
	"fmt"
	"sync"
)

// Registry errors
var (
	// ErrUnknownStrategy is returned when a strategy ID is not registered.
	// Lookup failure is a hard error, never a silent fallback: defaulting
	// would mask a deck referencing a retired strategy ID.
	ErrUnknownStrategy = errors.New("unknown scheduling strategy")

	// ErrStrategyAlreadyRegistered is returned when registering a duplicate ID.
	ErrStrategyAlreadyRegistered = errors.New("scheduling strategy already registered")
)

// DefaultStrategyID is used when a deck carries no strategy setting.
const DefaultStrategyID = FSRSLiteID

// Registry is a name -> Strategy lookup. Construct one per process (or per
// test) and register implementations explicitly; there is no package-level
// instance, so test isolation is free.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry returns an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// NewDefaultRegistry returns a registry with all built-in strategies
// registered. This is what the process entry point should use.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	// Built-ins carry distinct IDs, so registration cannot fail.
	_ = r.Register(NewFSRSLite())
	_ = r.Register(NewSM2())
	return r
}

// Register adds a strategy under its ID.
// Returns ErrStrategyAlreadyRegistered if the ID is taken.
func (r *Registry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.strategies[s.ID()]; ok {
		return fmt.Errorf("%w: %q", ErrStrategyAlreadyRegistered, s.ID())
	}
	r.strategies[s.ID()] = s
	return nil
}

// Get returns the strategy registered under id.
// Returns ErrUnknownStrategy if no strategy carries that ID.
func (r *Registry) Get(id string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, id)
	}
	return s, nil
}

// IDs returns the registered strategy IDs in no particular order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.strategies))
	for id := range r.strategies {
		ids = append(ids, id)
	}
	return ids
}
