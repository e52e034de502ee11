package exercise

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Catalog is a concurrency-safe set of exercises keyed by ID.
type Catalog struct {
	mu        sync.RWMutex
	exercises map[string]Exercise
}

// NewCatalog creates a catalog holding exercises.
func NewCatalog(exercises ...Exercise) *Catalog {
	c := &Catalog{exercises: make(map[string]Exercise, len(exercises))}
	for _, e := range exercises {
		c.exercises[e.ID] = e
	}
	return c
}

// Put adds or replaces an exercise after validating it.
func (c *Catalog) Put(e Exercise) error {
	if err := e.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.exercises[e.ID] = e
	c.mu.Unlock()
	return nil
}

// Get returns the exercise with the given ID.
func (c *Catalog) Get(id string) (Exercise, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.exercises[id]
	if !ok {
		return Exercise{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// List returns all exercises ordered by ID.
func (c *Catalog) List() []Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Exercise, 0, len(c.exercises))
	for _, id := range slices.Sorted(maps.Keys(c.exercises)) {
		out = append(out, c.exercises[id])
	}
	return out
}

// Len returns the number of exercises.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.exercises)
}
