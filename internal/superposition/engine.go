package superposition

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Gajesh2007/proj-leela-sub000/internal/concept"
)

// #region engine-struct
// Engine performs superposition creation, measurement/collapse, and entangled
// propagation over a concept registry. The RNG is injected so probabilistic
// behavior is reproducible under a fixed seed.
type Engine struct {
	registry *concept.Registry
	rng      *rand.Rand
}

// NewEngine creates an engine over registry. A nil rng gets a default
// non-deterministic source.
func NewEngine(registry *concept.Registry, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{registry: registry, rng: rng}
}

// Registry exposes the underlying concept registry.
func (e *Engine) Registry() *concept.Registry {
	return e.registry
}

// #endregion engine-struct

// #region add-concept
// AddConcept registers a concept and returns its id.
func (e *Engine) AddConcept(c concept.Concept) (string, error) {
	return e.registry.Add(c)
}

// #endregion add-concept

// #region create-superposition
// CreateSuperposition replaces a concept's state list. Weights whose sum
// drifts from 1.0 past tolerance are renormalized by the registry on write.
func (e *Engine) CreateSuperposition(id string, states []concept.State) error {
	if err := e.registry.SetStates(id, states); err != nil {
		return fmt.Errorf("create superposition: %w", err)
	}
	return nil
}

// #endregion create-superposition

// #region measure
// Measure collapses a concept's superposition to one definition.
//
// Resolution order: a context trigger match always wins over randomness, so
// identical context strings collapse identically. Without a match the draw
// walks the states accumulating probability mass; rounding shortfall falls
// back to the last state.
func (e *Engine) Measure(id, context string) (string, error) {
	c, err := e.registry.Get(id)
	if err != nil {
		return "", fmt.Errorf("measure: %w", err)
	}
	if len(c.States) == 0 {
		return "", fmt.Errorf("measure %s: no states: %w", id, concept.ErrExhausted)
	}

	if context != "" {
		lower := strings.ToLower(context)
		for _, s := range c.States {
			for _, trigger := range s.Triggers {
				if trigger != "" && strings.Contains(lower, strings.ToLower(trigger)) {
					return s.Definition, nil
				}
			}
		}
	}

	r := e.rng.Float64()
	var mass float64
	for _, s := range c.States {
		mass += s.Probability
		if mass >= r {
			return s.Definition, nil
		}
	}
	return c.States[len(c.States)-1].Definition, nil
}

// #endregion measure

// #region entangle
// Entangle links two concepts with a typed, weighted relation. The link is
// symmetric in type and strength; rule is opaque free text.
func (e *Engine) Entangle(sourceID, targetID string, typ concept.LinkType, strength float64, rule string) error {
	if err := e.registry.Link(sourceID, targetID, typ, strength, rule); err != nil {
		return fmt.Errorf("entangle: %w", err)
	}
	return nil
}

// #endregion entangle

// #region propagate
// Propagate pushes a measured definition through a concept's entanglement
// links. Each link fires with probability equal to its strength. A fired
// correlated link collapses the target to its most token-similar state, an
// anti-correlated link to its least similar, and any other type to a plain
// contextless draw (that draw is independent of strength, which already gated
// whether the link fired). Targets with no states, or already deleted, are
// skipped. Returns only the targets actually affected.
func (e *Engine) Propagate(id, measuredState string) (map[string]string, error) {
	if !e.registry.Has(id) {
		return nil, fmt.Errorf("propagate: concept %s: %w", id, concept.ErrNotFound)
	}

	affected := make(map[string]string)
	for _, link := range e.registry.LinksFrom(id) {
		target, err := e.registry.Get(link.Target)
		if err != nil {
			continue // far end deleted since entanglement
		}
		if len(target.States) == 0 {
			continue
		}
		if e.rng.Float64() > link.Strength {
			continue
		}

		switch link.Type {
		case concept.LinkCorrelated:
			affected[link.Target] = selectBySimilarity(target.States, measuredState, true)
		case concept.LinkAntiCorrelated:
			affected[link.Target] = selectBySimilarity(target.States, measuredState, false)
		default:
			def, err := e.Measure(link.Target, "")
			if err != nil {
				continue
			}
			affected[link.Target] = def
		}
	}
	return affected, nil
}

// selectBySimilarity picks the state definition with maximal (or minimal)
// Jaccard similarity to measured, ties broken by first-encountered.
func selectBySimilarity(states []concept.State, measured string, maximize bool) string {
	best := states[0].Definition
	bestScore := jaccard(states[0].Definition, measured)
	for _, s := range states[1:] {
		score := jaccard(s.Definition, measured)
		if (maximize && score > bestScore) || (!maximize && score < bestScore) {
			best = s.Definition
			bestScore = score
		}
	}
	return best
}

// #endregion propagate
