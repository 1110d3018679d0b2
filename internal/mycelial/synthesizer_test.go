package mycelial

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Gajesh2007/proj-leela-sub000/internal/concept"
	"github.com/Gajesh2007/proj-leela-sub000/internal/generation"
)

// fakeService records prompts and returns a canned result, or the context's
// error when the call is canceled.
type fakeService struct {
	lastPrompt string
	result     generation.Result
	err        error
}

func (f *fakeService) Generate(ctx context.Context, prompt string, thinkingBudget, maxTokens int) (generation.Result, error) {
	if err := ctx.Err(); err != nil {
		return generation.Result{}, err
	}
	f.lastPrompt = prompt
	if f.err != nil {
		return generation.Result{}, f.err
	}
	return f.result, nil
}

// #region test-synthesize
func TestSynthesize(t *testing.T) {
	g := NewGraph(rand.New(rand.NewPCG(1, 1)))
	seeding, _ := g.SeedFromDecomposition("jazz improvisation", "music", []string{
		"rhythm", "harmony",
	})

	svc := &fakeService{result: generation.Result{
		Text:       "a generative rhythm engine",
		Insights:   []string{"rhythm is structure", "harmony is negotiation"},
		TokensUsed: 321,
	}}
	s := NewSynthesizer(g, svc, 1024, 512)

	idea, err := s.Synthesize(context.Background(), seeding.FruitingID)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	if idea.Content != "a generative rhythm engine" {
		t.Errorf("unexpected idea content: %q", idea.Content)
	}
	if len(idea.Insights) != 2 || idea.SourceNodeID != seeding.FruitingID {
		t.Errorf("unexpected idea: %+v", idea)
	}
	if idea.Domain != "music" || idea.TokensUsed != 321 {
		t.Errorf("unexpected idea metadata: %+v", idea)
	}
	if idea.ID == "" {
		t.Error("expected generated idea id")
	}

	// Upstream content reaches the prompt
	for _, want := range []string{"jazz improvisation", "rhythm", "harmony"} {
		if !strings.Contains(svc.lastPrompt, want) {
			t.Errorf("prompt missing upstream content %q", want)
		}
	}

	// The fruiting node matured
	node, _ := g.GetNode(seeding.FruitingID)
	if node.Content != "a generative rhythm engine" {
		t.Errorf("fruiting content not written back: %q", node.Content)
	}
	if node.Attributes["maturity"] != "mature" {
		t.Errorf("fruiting node not marked mature: %+v", node.Attributes)
	}
}

// #endregion test-synthesize

// #region test-synthesize-errors
func TestSynthesizeErrors(t *testing.T) {
	g := NewGraph(rand.New(rand.NewPCG(2, 2)))
	svc := &fakeService{result: generation.Result{Text: "x"}}
	s := NewSynthesizer(g, svc, 1024, 512)

	// Unknown node
	if _, err := s.Synthesize(context.Background(), "ghost"); !errors.Is(err, concept.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Wrong node type
	hypha := g.AddNode(NodeHypha, "strand", nil)
	if _, err := s.Synthesize(context.Background(), hypha); !errors.Is(err, concept.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}

	// Fruiting body with nothing upstream
	orphan := g.AddNode(NodeFruitingBody, "", nil)
	if _, err := s.Synthesize(context.Background(), orphan); !errors.Is(err, concept.ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

// #endregion test-synthesize-errors

// #region test-synthesize-cancel
func TestSynthesizeCancelLeavesGraphUnchanged(t *testing.T) {
	g := NewGraph(rand.New(rand.NewPCG(3, 3)))
	seeding, _ := g.SeedFromDecomposition("root", "d", []string{"p1"})

	svc := &fakeService{result: generation.Result{Text: "should not land"}}
	s := NewSynthesizer(g, svc, 1024, 512)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Synthesize(ctx, seeding.FruitingID); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	node, _ := g.GetNode(seeding.FruitingID)
	if node.Content != "" {
		t.Errorf("canceled synthesis must not write content, got %q", node.Content)
	}
	if node.Attributes["maturity"] != "" {
		t.Errorf("canceled synthesis must not mature the node: %+v", node.Attributes)
	}
}

// #endregion test-synthesize-cancel
