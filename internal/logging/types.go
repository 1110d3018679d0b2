package logging

import "time"

// #region entry
// TriggerKind says how a collapse was resolved.
type TriggerKind string

const (
	// TriggerContext means a context trigger matched deterministically.
	TriggerContext TriggerKind = "context"
	// TriggerDraw means a probabilistic draw resolved the superposition.
	TriggerDraw TriggerKind = "draw"
	// TriggerPropagation means an entanglement link collapsed the concept.
	TriggerPropagation TriggerKind = "propagation"
)

// Entry is one row in the measurement log: which concept collapsed, how, and
// to what.
type Entry struct {
	ConceptID  string
	Trigger    TriggerKind
	Definition string
	Context    string
	SourceID   string // originating concept for propagation rows
	CreatedAt  time.Time
}

// #endregion entry
