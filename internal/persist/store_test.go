package persist

import (
	"errors"
	"testing"

	"github.com/Gajesh2007/proj-leela-sub000/internal/concept"
	"github.com/Gajesh2007/proj-leela-sub000/internal/mycelial"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// #region test-concept-roundtrip
func TestSaveAndGetConcept(t *testing.T) {
	store := setupTestStore(t)

	saved, err := store.SaveConcept(concept.Concept{
		Domain:     "physics",
		Definition: "energy",
		Attributes: map[string]string{"unit": "joule"},
		States: []concept.State{
			{Definition: "kinetic", Probability: 0.5, Triggers: []string{"motion"}},
			{Definition: "potential", Probability: 0.5},
		},
	}, nil)
	if err != nil {
		t.Fatalf("save concept: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := store.GetConcept(saved.ID)
	if err != nil {
		t.Fatalf("get concept: %v", err)
	}
	if got.Domain != "physics" || got.Definition != "energy" {
		t.Errorf("unexpected concept: %+v", got)
	}
	if got.Attributes["unit"] != "joule" {
		t.Errorf("attributes lost: %+v", got.Attributes)
	}
	if len(got.States) != 2 || got.States[0].Definition != "kinetic" {
		t.Errorf("states lost: %+v", got.States)
	}
	if len(got.States[0].Triggers) != 1 || got.States[0].Triggers[0] != "motion" {
		t.Errorf("triggers lost: %+v", got.States[0])
	}

	if _, err := store.GetConcept("missing"); !errors.Is(err, concept.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// #endregion test-concept-roundtrip

// #region test-concept-upsert
func TestSaveConceptUpsert(t *testing.T) {
	store := setupTestStore(t)

	saved, err := store.SaveConcept(concept.Concept{ID: "c1", Definition: "v1"}, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	saved.Definition = "v2"
	if _, err := store.SaveConcept(saved, nil); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, _ := store.GetConcept("c1")
	if got.Definition != "v2" {
		t.Errorf("expected upsert to overwrite, got %q", got.Definition)
	}

	list, err := store.ListConcepts(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 row after upsert, got %d", len(list))
	}
}

// #endregion test-concept-upsert

// #region test-idea-roundtrip
func TestSaveAndGetIdea(t *testing.T) {
	store := setupTestStore(t)

	saved, err := store.SaveIdea(mycelial.Idea{
		Content:      "a generative rhythm engine",
		Insights:     []string{"one", "two"},
		SourceNodeID: "node-1",
		Domain:       "music",
		TokensUsed:   512,
	})
	if err != nil {
		t.Fatalf("save idea: %v", err)
	}

	got, err := store.GetIdea(saved.ID)
	if err != nil {
		t.Fatalf("get idea: %v", err)
	}
	if got.Content != "a generative rhythm engine" || got.Domain != "music" {
		t.Errorf("unexpected idea: %+v", got)
	}
	if len(got.Insights) != 2 || got.TokensUsed != 512 {
		t.Errorf("idea fields lost: %+v", got)
	}

	if _, err := store.GetIdea("missing"); !errors.Is(err, concept.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	ideas, err := store.ListIdeas(10)
	if err != nil {
		t.Fatalf("list ideas: %v", err)
	}
	if len(ideas) != 1 {
		t.Errorf("expected 1 idea, got %d", len(ideas))
	}
}

// #endregion test-idea-roundtrip

// #region test-summary
func TestSummary(t *testing.T) {
	store := setupTestStore(t)
	store.SaveConcept(concept.Concept{Definition: "x"}, nil)
	store.SaveIdea(mycelial.Idea{Content: "y"})

	summary, err := store.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary != "concepts=1 ideas=1" {
		t.Errorf("unexpected summary: %q", summary)
	}
}

// #endregion test-summary
