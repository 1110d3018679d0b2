package mycelial

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/Gajesh2007/proj-leela-sub000/internal/concept"
	"github.com/Gajesh2007/proj-leela-sub000/internal/generation"
)

// #region types
// Idea is the product of synthesizing a fruiting body's upstream content.
type Idea struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	Insights     []string `json:"insights,omitempty"`
	SourceNodeID string   `json:"source_node_id"`
	Domain       string   `json:"domain,omitempty"`
	TokensUsed   int      `json:"tokens_used,omitempty"`
}

// Synthesizer aggregates upstream graph content for a fruiting body and has
// the generation service turn it into an idea.
type Synthesizer struct {
	graph          *Graph
	service        generation.Service
	thinkingBudget int
	maxTokens      int
}

// NewSynthesizer wires a synthesizer to a graph and a generation service.
func NewSynthesizer(graph *Graph, service generation.Service, thinkingBudget, maxTokens int) *Synthesizer {
	return &Synthesizer{
		graph:          graph,
		service:        service,
		thinkingBudget: thinkingBudget,
		maxTokens:      maxTokens,
	}
}

// #endregion types

// #region synthesize
// Synthesize collects everything upstream of a fruiting body, prompts the
// generation service with it, and on success writes the generated text back
// into the node and marks it mature. The graph is only mutated after the
// service call returns, so a canceled call leaves it unchanged.
func (s *Synthesizer) Synthesize(ctx context.Context, fruitingID string) (Idea, error) {
	node, err := s.graph.GetNode(fruitingID)
	if err != nil {
		return Idea{}, fmt.Errorf("synthesize: %w", err)
	}
	if node.Type != NodeFruitingBody {
		return Idea{}, fmt.Errorf("synthesize: node %s is %s, want %s: %w",
			fruitingID, node.Type, NodeFruitingBody, concept.ErrInvalidState)
	}

	upstream, err := s.graph.CollectUpstream(fruitingID)
	if err != nil {
		return Idea{}, fmt.Errorf("synthesize: %w", err)
	}
	if len(upstream) == 0 {
		return Idea{}, fmt.Errorf("synthesize: node %s has no upstream content: %w",
			fruitingID, concept.ErrExhausted)
	}

	prompt := buildSynthesisPrompt(upstream)
	result, err := s.service.Generate(ctx, prompt, s.thinkingBudget, s.maxTokens)
	if err != nil {
		return Idea{}, fmt.Errorf("synthesize: %w", err)
	}

	if err := s.graph.SetContent(fruitingID, result.Text, map[string]string{"maturity": "mature"}); err != nil {
		return Idea{}, fmt.Errorf("synthesize: %w", err)
	}

	idea := Idea{
		ID:           uuid.New().String(),
		Content:      result.Text,
		Insights:     result.Insights,
		SourceNodeID: fruitingID,
		Domain:       node.Attributes["domain"],
		TokensUsed:   result.TokensUsed,
	}
	log.Printf("[SYNTH] matured node=%s upstream=%d tokens=%d", fruitingID, len(upstream), result.TokensUsed)
	return idea, nil
}

// #endregion synthesize

// #region prompt
// buildSynthesisPrompt groups upstream content by node type so the service
// sees raw material, intermediate strands, and transport channels separately.
func buildSynthesisPrompt(upstream []Node) string {
	byType := make(map[NodeType][]string)
	for _, n := range upstream {
		if strings.TrimSpace(n.Content) == "" {
			continue
		}
		byType[n.Type] = append(byType[n.Type], n.Content)
	}

	var b strings.Builder
	b.WriteString("Synthesize one coherent creative idea from this mycelial network.\n")
	for _, section := range []struct {
		typ   NodeType
		label string
	}{
		{NodeNutrient, "Source material"},
		{NodeHypha, "Strands"},
		{NodeRhizomorph, "Channels"},
		{NodeFruitingBody, "Prior fruit"},
	} {
		contents := byType[section.typ]
		if len(contents) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", section.label)
		for _, c := range contents {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return b.String()
}

// #endregion prompt
