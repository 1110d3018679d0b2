package concept

import "errors"

// #region errors
// Sentinel errors shared by every package in the engine. All operations
// return these as values; none of them panic on bad ids or bad weights.
var (
	// ErrNotFound means a concept or node id is not in the registry.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means an operation's preconditions are not met.
	ErrInvalidState = errors.New("invalid state")
	// ErrExhausted means there is nothing to select from (no states, no content).
	ErrExhausted = errors.New("exhausted")
)

// #endregion errors

// #region link-types
// LinkType tags an entanglement link. Unrecognized values fall through to the
// default propagation path.
type LinkType string

const (
	LinkCorrelated     LinkType = "correlated"
	LinkAntiCorrelated LinkType = "anti-correlated"
	LinkDefault        LinkType = "default"
)

// #endregion link-types

// #region state
// State is one weighted alternative definition inside a concept's
// superposition. Probability is kept normalized by the registry so that a
// concept's state list always sums to 1.0 within tolerance.
type State struct {
	Definition  string   `json:"definition"`
	Probability float64  `json:"probability"`
	Triggers    []string `json:"triggers,omitempty"`
}

// #endregion state

// #region concept
// Concept is a registered idea unit: a base definition plus an optional
// superposition of alternative definitions. Mutated only through engine
// operations; the registry hands out copies.
type Concept struct {
	ID         string            `json:"id"`
	Domain     string            `json:"domain"`
	Definition string            `json:"definition"`
	Attributes map[string]string `json:"attributes,omitempty"`
	States     []State           `json:"states,omitempty"`
}

// #endregion concept

// #region links
// Link is the canonical undirected entanglement record between two concepts.
// It is stored once under the ordered (A, B) key, A < B, so the two directed
// views can never diverge.
type Link struct {
	A        string   `json:"a"`
	B        string   `json:"b"`
	Type     LinkType `json:"type"`
	Strength float64  `json:"strength"`
	Rule     string   `json:"rule,omitempty"`
}

// DirectedLink is the outgoing view of a Link from one endpoint, as consumed
// by entanglement propagation.
type DirectedLink struct {
	Source   string
	Target   string
	Type     LinkType
	Strength float64
	Rule     string
}

// #endregion links
