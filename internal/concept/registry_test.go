package concept

import (
	"errors"
	"math"
	"testing"
)

// #region test-add-get
func TestAddAndGet(t *testing.T) {
	r := NewRegistry()

	id, err := r.Add(Concept{Domain: "physics", Definition: "energy"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	c, err := r.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Domain != "physics" || c.Definition != "energy" {
		t.Errorf("unexpected concept: %+v", c)
	}

	// Caller-supplied id is kept
	id2, _ := r.Add(Concept{ID: "my-id", Definition: "x"})
	if id2 != "my-id" {
		t.Errorf("expected caller id kept, got %s", id2)
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// #endregion test-add-get

// #region test-get-copies
func TestGetReturnsCopies(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Add(Concept{
		Definition: "base",
		Attributes: map[string]string{"k": "v"},
		States:     []State{{Definition: "a", Probability: 1.0}},
	})

	c, _ := r.Get(id)
	c.Attributes["k"] = "mutated"
	c.States[0].Definition = "mutated"

	again, _ := r.Get(id)
	if again.Attributes["k"] != "v" {
		t.Error("attribute mutation leaked into registry")
	}
	if again.States[0].Definition != "a" {
		t.Error("state mutation leaked into registry")
	}
}

// #endregion test-get-copies

// #region test-normalization
func TestNormalizationOnWrite(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Add(Concept{Definition: "x"})

	// Weights summing to 4.0 get rescaled to 1.0
	err := r.SetStates(id, []State{
		{Definition: "a", Probability: 1.0},
		{Definition: "b", Probability: 3.0},
	})
	if err != nil {
		t.Fatalf("set states: %v", err)
	}

	c, _ := r.Get(id)
	var sum float64
	for _, s := range c.States {
		sum += s.Probability
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("expected normalized sum 1.0, got %.9f", sum)
	}
	if math.Abs(c.States[0].Probability-0.25) > 1e-9 {
		t.Errorf("expected 0.25, got %.4f", c.States[0].Probability)
	}

	// Weights already within tolerance are left untouched
	if err := r.SetStates(id, []State{
		{Definition: "a", Probability: 0.5004},
		{Definition: "b", Probability: 0.5},
	}); err != nil {
		t.Fatalf("set states: %v", err)
	}
	c, _ = r.Get(id)
	if math.Abs(c.States[0].Probability-0.5004) > 1e-9 {
		t.Errorf("in-tolerance weights should not be rescaled, got %.6f", c.States[0].Probability)
	}
}

// #endregion test-normalization

// #region test-delete
func TestDelete(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Add(Concept{Definition: "a"})
	b, _ := r.Add(Concept{Definition: "b"})
	if err := r.Link(a, b, LinkCorrelated, 0.9, ""); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := r.Delete(a); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if r.Has(a) {
		t.Error("deleted concept still present")
	}
	if links := r.LinksFrom(b); len(links) != 0 {
		t.Errorf("expected links dropped with concept, got %d", len(links))
	}

	if err := r.Delete(a); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

// #endregion test-delete

// #region test-links
func TestLinkCanonicalStorage(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Add(Concept{Definition: "a"})
	b, _ := r.Add(Concept{Definition: "b"})

	if err := r.Link(a, "ghost", LinkCorrelated, 0.5, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown target, got %v", err)
	}

	if err := r.Link(a, b, LinkCorrelated, 0.7, "push"); err != nil {
		t.Fatalf("link: %v", err)
	}

	// Both directed views exist with the same parameters
	fromA := r.LinksFrom(a)
	fromB := r.LinksFrom(b)
	if len(fromA) != 1 || len(fromB) != 1 {
		t.Fatalf("expected one link each way, got %d / %d", len(fromA), len(fromB))
	}
	if fromA[0].Target != b || fromB[0].Target != a {
		t.Errorf("wrong targets: %+v / %+v", fromA[0], fromB[0])
	}
	if fromA[0].Strength != 0.7 || fromB[0].Strength != 0.7 {
		t.Error("strength must be symmetric")
	}

	// Re-linking the reversed pair overwrites the single record
	if err := r.Link(b, a, LinkAntiCorrelated, 0.2, ""); err != nil {
		t.Fatalf("relink: %v", err)
	}
	fromA = r.LinksFrom(a)
	if len(fromA) != 1 {
		t.Fatalf("expected single canonical record, got %d", len(fromA))
	}
	if fromA[0].Type != LinkAntiCorrelated || fromA[0].Strength != 0.2 {
		t.Errorf("relink should overwrite: %+v", fromA[0])
	}
}

// #endregion test-links

// #region test-strength-clamp
func TestLinkStrengthClamped(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Add(Concept{Definition: "a"})
	b, _ := r.Add(Concept{Definition: "b"})

	if err := r.Link(a, b, LinkDefault, 1.7, ""); err != nil {
		t.Fatalf("link: %v", err)
	}
	if got := r.LinksFrom(a)[0].Strength; got != 1.0 {
		t.Errorf("expected strength clamped to 1.0, got %.2f", got)
	}
}

// #endregion test-strength-clamp
