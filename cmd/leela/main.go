package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Gajesh2007/proj-leela-sub000/internal/concept"
	"github.com/Gajesh2007/proj-leela-sub000/internal/generation"
	"github.com/Gajesh2007/proj-leela-sub000/internal/logging"
	"github.com/Gajesh2007/proj-leela-sub000/internal/mycelial"
	"github.com/Gajesh2007/proj-leela-sub000/internal/persist"
	"github.com/Gajesh2007/proj-leela-sub000/internal/superposition"
)

const (
	defaultThinkingBudget = 2048
	defaultMaxTokens      = 1024
)

// #region main
func main() {
	dbPath := envOr("LEELA_DB", "leela.db")
	apiBase := envOr("LEELA_API_BASE", "")
	apiKey := envOr("LEELA_API_KEY", os.Getenv("OPENAI_API_KEY"))
	model := envOr("LEELA_MODEL", "gpt-4o-mini")

	store, err := persist.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if err := logging.EnsureSchema(store.DB()); err != nil {
		log.Fatalf("failed to prepare measurement log: %v", err)
	}

	service := generation.NewClient(apiBase, apiKey, model)
	registry := concept.NewRegistry()
	engine := superposition.NewEngine(registry, nil)
	graph := mycelial.NewGraph(nil)
	synth := mycelial.NewSynthesizer(graph, service, defaultThinkingBudget, defaultMaxTokens)

	session := &session{
		store:    store,
		service:  service,
		registry: registry,
		engine:   engine,
		graph:    graph,
		synth:    synth,
	}

	fmt.Println("Leela knowledge state engine ready.")
	fmt.Printf("  DB: %s | Model: %s\n", dbPath, model)
	fmt.Println("Commands: seed <domain>: <content> | extend <node-id> | synthesize |")
	fmt.Println("          concept <domain>: <definition> | entangle <id> <id> <type> <strength> |")
	fmt.Println("          measure <concept-id> [context] | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := session.dispatch(line); err != nil {
			log.Printf("error: %v", err)
		}
	}
}

// #endregion main

// #region session
type session struct {
	store    *persist.Store
	service  generation.Service
	registry *concept.Registry
	engine   *superposition.Engine
	graph    *mycelial.Graph
	synth    *mycelial.Synthesizer

	lastFruiting string
}

func (s *session) dispatch(line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "seed":
		return s.seed(rest)
	case "extend":
		return s.extend(strings.TrimSpace(rest))
	case "synthesize":
		return s.synthesize()
	case "concept":
		return s.concept(rest)
	case "entangle":
		return s.entangle(rest)
	case "measure":
		return s.measure(rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// #endregion session

// #region seed
// seed asks the generation service to decompose the content into parts, then
// builds the graph structure from them.
func (s *session) seed(arg string) error {
	domain, content, ok := strings.Cut(arg, ":")
	if !ok {
		return fmt.Errorf("usage: seed <domain>: <content>")
	}
	domain = strings.TrimSpace(domain)
	content = strings.TrimSpace(content)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	prompt := fmt.Sprintf("Decompose the following into 3-5 fundamental components, one per line, no numbering:\n\n%s", content)
	result, err := s.service.Generate(ctx, prompt, defaultThinkingBudget, defaultMaxTokens)
	if err != nil {
		return fmt.Errorf("decomposition: %w", err)
	}

	var parts []string
	for _, line := range strings.Split(result.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}

	seeding, err := s.graph.SeedFromDecomposition(content, domain, parts)
	if err != nil {
		return err
	}
	s.lastFruiting = seeding.FruitingID

	fmt.Printf("seeded %d parts, fruiting body %s\n", len(seeding.HyphaIDs), shortID(seeding.FruitingID))
	return nil
}

// #endregion seed

// #region extend
// extend generates new strand content and wires it outward from a node.
func (s *session) extend(nodeID string) error {
	node, err := s.graph.GetNode(nodeID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	prompt := fmt.Sprintf("Suggest 2 adjacent directions growing out of this idea, one per line:\n\n%s", node.Content)
	result, err := s.service.Generate(ctx, prompt, defaultThinkingBudget, defaultMaxTokens)
	if err != nil {
		return fmt.Errorf("extension content: %w", err)
	}

	var contents []string
	for _, line := range strings.Split(result.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			contents = append(contents, line)
		}
	}

	ids, err := s.graph.Extend(nodeID, 1.0, contents)
	if err != nil {
		return err
	}
	fmt.Printf("grew %d nodes from %s\n", len(ids), shortID(nodeID))
	return nil
}

// #endregion extend

// #region synthesize
func (s *session) synthesize() error {
	if s.lastFruiting == "" {
		return fmt.Errorf("nothing seeded yet")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	idea, err := s.synth.Synthesize(ctx, s.lastFruiting)
	if err != nil {
		return err
	}
	if _, err := s.store.SaveIdea(idea); err != nil {
		return err
	}

	fmt.Printf("\n%s\n\n", idea.Content)
	for _, insight := range idea.Insights {
		fmt.Printf("  * %s\n", insight)
	}
	fmt.Printf("[idea %s saved, %d tokens]\n", shortID(idea.ID), idea.TokensUsed)
	return nil
}

// #endregion synthesize

// #region concept
// concept registers a new concept and asks the generation service for
// alternative definitions to hold in superposition.
func (s *session) concept(arg string) error {
	domain, definition, ok := strings.Cut(arg, ":")
	if !ok {
		return fmt.Errorf("usage: concept <domain>: <definition>")
	}
	domain = strings.TrimSpace(domain)
	definition = strings.TrimSpace(definition)

	id, err := s.engine.AddConcept(concept.Concept{Domain: domain, Definition: definition})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	prompt := fmt.Sprintf("Give 3 alternative one-line definitions of %q in the domain of %s, one per line.", definition, domain)
	result, err := s.service.Generate(ctx, prompt, defaultThinkingBudget, defaultMaxTokens)
	if err != nil {
		return fmt.Errorf("alternative definitions: %w", err)
	}

	var states []concept.State
	for _, line := range strings.Split(result.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			states = append(states, concept.State{Definition: line, Probability: 1.0})
		}
	}
	if len(states) > 0 {
		if err := s.engine.CreateSuperposition(id, states); err != nil {
			return err
		}
	}

	c, err := s.registry.Get(id)
	if err != nil {
		return err
	}
	if _, err := s.store.SaveConcept(c, s.registry.LinksFrom(id)); err != nil {
		return err
	}

	fmt.Printf("concept %s registered with %d states\n", shortID(id), len(states))
	return nil
}

// #endregion concept

// #region entangle
func (s *session) entangle(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 4 {
		return fmt.Errorf("usage: entangle <source-id> <target-id> <type> <strength>")
	}
	var strength float64
	if _, err := fmt.Sscanf(fields[3], "%f", &strength); err != nil {
		return fmt.Errorf("bad strength %q: %w", fields[3], err)
	}
	if err := s.engine.Entangle(fields[0], fields[1], concept.LinkType(fields[2]), strength, ""); err != nil {
		return err
	}
	fmt.Printf("entangled %s <-> %s (%s, %.2f)\n", shortID(fields[0]), shortID(fields[1]), fields[2], strength)
	return nil
}

// #endregion entangle

// #region measure
func (s *session) measure(arg string) error {
	id, measureCtx, _ := strings.Cut(arg, " ")
	definition, err := s.engine.Measure(id, measureCtx)
	if err != nil {
		return err
	}

	trigger := logging.TriggerDraw
	if measureCtx != "" {
		trigger = logging.TriggerContext
	}
	if err := logging.LogMeasurement(s.store.DB(), logging.Entry{
		ConceptID:  id,
		Trigger:    trigger,
		Definition: definition,
		Context:    measureCtx,
	}); err != nil {
		log.Printf("logging error: %v", err)
	}

	fmt.Printf("collapsed to: %s\n", definition)

	affected, err := s.engine.Propagate(id, definition)
	if err != nil {
		return err
	}
	for target, def := range affected {
		fmt.Printf("  entangled %s -> %s\n", shortID(target), def)
		if err := logging.LogMeasurement(s.store.DB(), logging.Entry{
			ConceptID:  target,
			Trigger:    logging.TriggerPropagation,
			Definition: def,
			SourceID:   id,
		}); err != nil {
			log.Printf("logging error: %v", err)
		}
	}
	return nil
}

// #endregion measure

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion helpers
