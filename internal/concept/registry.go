package concept

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// #region constants
// normalizeTolerance is how far a state list's probability mass may drift from
// 1.0 before the registry renormalizes it on write.
const normalizeTolerance = 1e-3

// #endregion constants

// #region registry-struct
// Registry owns all concept records and their entanglement links. One
// RWMutex serializes mutations; reads return copies so callers can hold
// results across later writes.
type Registry struct {
	mu       sync.RWMutex
	concepts map[string]*Concept
	links    map[[2]string]*Link
}

// NewRegistry returns an empty concept registry.
func NewRegistry() *Registry {
	return &Registry{
		concepts: make(map[string]*Concept),
		links:    make(map[[2]string]*Link),
	}
}

// #endregion registry-struct

// #region add
// Add inserts a concept. A missing ID is filled with a new uuid. The stored
// state list is normalized when its mass drifts past tolerance.
func (r *Registry) Add(c Concept) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.States = normalizeStates(c.States)

	r.mu.Lock()
	defer r.mu.Unlock()
	stored := c
	r.concepts[c.ID] = &stored
	return c.ID, nil
}

// #endregion add

// #region get
// Get returns a copy of the concept, or ErrNotFound.
func (r *Registry) Get(id string) (Concept, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.concepts[id]
	if !ok {
		return Concept{}, fmt.Errorf("concept %s: %w", id, ErrNotFound)
	}
	return copyConcept(c), nil
}

// Has reports whether a concept id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.concepts[id]
	return ok
}

// Len returns the number of registered concepts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.concepts)
}

// #endregion get

// #region delete
// Delete removes a concept and any links where both endpoints are known to
// involve it. Links to already-deleted far ends are cleaned up lazily at
// propagation time.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.concepts[id]; !ok {
		return fmt.Errorf("concept %s: %w", id, ErrNotFound)
	}
	delete(r.concepts, id)
	for key := range r.links {
		if key[0] == id || key[1] == id {
			delete(r.links, key)
		}
	}
	return nil
}

// #endregion delete

// #region set-states
// SetStates atomically replaces a concept's superposition with a normalized
// copy of states.
func (r *Registry) SetStates(id string, states []State) error {
	normalized := normalizeStates(states)

	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.concepts[id]
	if !ok {
		return fmt.Errorf("concept %s: %w", id, ErrNotFound)
	}
	c.States = normalized
	return nil
}

// SetContent overwrites a concept's base definition.
func (r *Registry) SetContent(id, definition string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.concepts[id]
	if !ok {
		return fmt.Errorf("concept %s: %w", id, ErrNotFound)
	}
	c.Definition = definition
	return nil
}

// #endregion set-states

// #region link
// Link entangles two concepts. Both must exist at creation time. The record
// is stored once under the canonical ordered key; a second Link call for the
// same pair overwrites type, strength and rule (last write wins).
func (r *Registry) Link(a, b string, typ LinkType, strength float64, rule string) error {
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.concepts[a]; !ok {
		return fmt.Errorf("concept %s: %w", a, ErrNotFound)
	}
	if _, ok := r.concepts[b]; !ok {
		return fmt.Errorf("concept %s: %w", b, ErrNotFound)
	}
	key := canonicalKey(a, b)
	r.links[key] = &Link{A: key[0], B: key[1], Type: typ, Strength: strength, Rule: rule}
	return nil
}

// LinksFrom materializes the outgoing directed view of every link touching
// id, sorted by target id for a stable iteration order.
func (r *Registry) LinksFrom(id string) []DirectedLink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []DirectedLink
	for _, l := range r.links {
		var target string
		switch id {
		case l.A:
			target = l.B
		case l.B:
			target = l.A
		default:
			continue
		}
		out = append(out, DirectedLink{
			Source:   id,
			Target:   target,
			Type:     l.Type,
			Strength: l.Strength,
			Rule:     l.Rule,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// #endregion link

// #region helpers
func canonicalKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// normalizeStates copies states and rescales probabilities when their sum
// deviates from 1.0 by more than the tolerance. A non-positive sum is left
// alone; there is no meaningful rescale for it and measurement's fallback
// handles the remainder.
func normalizeStates(states []State) []State {
	if len(states) == 0 {
		return nil
	}
	out := make([]State, len(states))
	copy(out, states)

	var sum float64
	for _, s := range out {
		sum += s.Probability
	}
	if sum > 0 && math.Abs(sum-1.0) > normalizeTolerance {
		for i := range out {
			out[i].Probability /= sum
		}
	}
	return out
}

func copyConcept(c *Concept) Concept {
	out := *c
	if c.Attributes != nil {
		out.Attributes = make(map[string]string, len(c.Attributes))
		for k, v := range c.Attributes {
			out.Attributes[k] = v
		}
	}
	if c.States != nil {
		out.States = make([]State, len(c.States))
		copy(out.States, c.States)
	}
	return out
}

// #endregion helpers
