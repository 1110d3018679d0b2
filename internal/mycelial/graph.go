package mycelial

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/Gajesh2007/proj-leela-sub000/internal/concept"
)

// #region constants
// reconnectProbability is the chance that Extend also wires an existing
// neighbor of the starting node to each newly grown node. This is what
// introduces back-edges, so every traversal must tolerate cycles.
const reconnectProbability = 0.3

// #endregion constants

// #region graph-struct
// node is the arena-resident record. Adjacency holds integer indices into the
// arena, so reads can work on index copies without chasing pointers.
type node struct {
	id         string
	typ        NodeType
	content    string
	attributes map[string]string
	out        []edgeRef // at most one entry per target index
	in         []int     // source indices, deduplicated
}

type edgeRef struct {
	target int
	typ    EdgeType
}

// Graph is a typed directed graph stored as a flat arena plus an id index.
// Directed, one edge per ordered pair, not guaranteed acyclic. All mutations
// are serialized by one mutex; lookups return copies.
type Graph struct {
	mu    sync.RWMutex
	arena []node
	index map[string]int
	rng   *rand.Rand
}

// NewGraph returns an empty graph. A nil rng gets a default
// non-deterministic source; tests pass a seeded one.
func NewGraph(rng *rand.Rand) *Graph {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Graph{index: make(map[string]int), rng: rng}
}

// #endregion graph-struct

// #region add-node
// AddNode inserts a node and returns its generated id.
func (g *Graph) AddNode(typ NodeType, content string, attributes map[string]string) string {
	id := uuid.New().String()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.addLocked(id, typ, content, attributes)
	return id
}

func (g *Graph) addLocked(id string, typ NodeType, content string, attributes map[string]string) int {
	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	idx := len(g.arena)
	g.arena = append(g.arena, node{id: id, typ: typ, content: content, attributes: attrs})
	g.index[id] = idx
	return idx
}

// #endregion add-node

// #region get-node
// GetNode returns a copy of the node, or ErrNotFound.
func (g *Graph) GetNode(id string) (Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	idx, ok := g.index[id]
	if !ok {
		return Node{}, fmt.Errorf("node %s: %w", id, concept.ErrNotFound)
	}
	return g.copyLocked(idx), nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.arena)
}

// Edges materializes every (source, target, type) triple in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var edges []Edge
	for i := range g.arena {
		for _, ref := range g.arena[i].out {
			edges = append(edges, Edge{
				SourceID: g.arena[i].id,
				TargetID: g.arena[ref.target].id,
				Type:     ref.typ,
			})
		}
	}
	return edges
}

func (g *Graph) copyLocked(idx int) Node {
	n := &g.arena[idx]
	out := Node{ID: n.id, Type: n.typ, Content: n.content}
	if len(n.attributes) > 0 {
		out.Attributes = make(map[string]string, len(n.attributes))
		for k, v := range n.attributes {
			out.Attributes[k] = v
		}
	}
	if len(n.out) > 0 {
		out.Outgoing = make(map[string]EdgeType, len(n.out))
		for _, ref := range n.out {
			out.Outgoing[g.arena[ref.target].id] = ref.typ
		}
	}
	return out
}

// #endregion get-node

// #region connect
// ConnectNodes sets the single directed edge source -> target. Reconnecting
// the same ordered pair overwrites the edge type (last write wins).
func (g *Graph) ConnectNodes(sourceID, targetID string, typ EdgeType) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	src, ok := g.index[sourceID]
	if !ok {
		return fmt.Errorf("node %s: %w", sourceID, concept.ErrNotFound)
	}
	dst, ok := g.index[targetID]
	if !ok {
		return fmt.Errorf("node %s: %w", targetID, concept.ErrNotFound)
	}
	g.connectLocked(src, dst, typ)
	return nil
}

func (g *Graph) connectLocked(src, dst int, typ EdgeType) {
	for i, ref := range g.arena[src].out {
		if ref.target == dst {
			g.arena[src].out[i].typ = typ
			return
		}
	}
	g.arena[src].out = append(g.arena[src].out, edgeRef{target: dst, typ: typ})
	g.arena[dst].in = append(g.arena[dst].in, src)
}

// #endregion connect

// #region set-content
// SetContent overwrites a node's content, optionally merging attributes.
// Content is the only node field mutated after creation.
func (g *Graph) SetContent(id, content string, attributes map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx, ok := g.index[id]
	if !ok {
		return fmt.Errorf("node %s: %w", id, concept.ErrNotFound)
	}
	g.arena[idx].content = content
	for k, v := range attributes {
		g.arena[idx].attributes[k] = v
	}
	return nil
}

// #endregion set-content

// #region seed
// SeedFromDecomposition builds the canonical starting structure from an
// already-decomposed list of parts: one nutrient, one hypha per part fed by
// decomposition edges, one rhizomorph fed by every hypha over transport
// edges, and one fruiting body fed by the rhizomorph over a synthesis edge.
// Producing the parts themselves is the generation service's job.
func (g *Graph) SeedFromDecomposition(rootContent, domain string, parts []string) (Seeding, error) {
	if len(parts) == 0 {
		return Seeding{}, fmt.Errorf("seed: no parts: %w", concept.ErrInvalidState)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	attrs := map[string]string{"domain": domain}
	seeding := Seeding{NutrientID: uuid.New().String()}
	nutrient := g.addLocked(seeding.NutrientID, NodeNutrient, rootContent, attrs)

	rhizoContent := fmt.Sprintf("Transport channel for: %s", domain)
	seeding.RhizomorphID = uuid.New().String()
	rhizo := g.addLocked(seeding.RhizomorphID, NodeRhizomorph, rhizoContent, attrs)

	for _, part := range parts {
		id := uuid.New().String()
		hypha := g.addLocked(id, NodeHypha, part, attrs)
		g.connectLocked(nutrient, hypha, EdgeDecomposition)
		g.connectLocked(hypha, rhizo, EdgeTransport)
		seeding.HyphaIDs = append(seeding.HyphaIDs, id)
	}

	seeding.FruitingID = uuid.New().String()
	fruiting := g.addLocked(seeding.FruitingID, NodeFruitingBody, "", attrs)
	g.connectLocked(rhizo, fruiting, EdgeSynthesis)

	log.Printf("[MYC] seeded domain=%s nodes=%d parts=%d", domain, len(g.arena), len(parts))
	return seeding, nil
}

// #endregion seed

// #region extend
// Extend grows the graph outward from startID, one node per supplied content
// string (contents come from the generation service; this only wires them
// in). Each new node's type is drawn from the transition-weight table for the
// starting node's type, and the connecting edge type follows the fixed
// (source, target) mapping. With a fixed 30% chance one uniformly-chosen
// existing neighbor of the start is also wired to the new node, which may
// create cycles. Empty contents is a no-op returning an empty slice.
func (g *Graph) Extend(startID string, extensionFactor float64, contents []string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	start, ok := g.index[startID]
	if !ok {
		return nil, fmt.Errorf("extend: node %s: %w", startID, concept.ErrNotFound)
	}
	if len(contents) == 0 {
		return []string{}, nil
	}

	startType := g.arena[start].typ
	attrs := map[string]string{"extension_factor": fmt.Sprintf("%.2f", extensionFactor)}
	for k, v := range g.arena[start].attributes {
		if k == "domain" {
			attrs[k] = v
		}
	}

	// Neighbors present before this call; reconnection never picks a node
	// grown in the same batch.
	priorNeighbors := make([]int, len(g.arena[start].out))
	for i, ref := range g.arena[start].out {
		priorNeighbors[i] = ref.target
	}

	newIDs := make([]string, 0, len(contents))
	for _, content := range contents {
		newType := g.drawType(startType)
		id := uuid.New().String()
		idx := g.addLocked(id, newType, content, attrs)
		g.connectLocked(start, idx, edgeTypeFor(startType, newType))

		if len(priorNeighbors) > 0 && g.rng.Float64() < reconnectProbability {
			n := priorNeighbors[g.rng.IntN(len(priorNeighbors))]
			g.connectLocked(n, idx, edgeTypeFor(g.arena[n].typ, newType))
		}
		newIDs = append(newIDs, id)
	}

	log.Printf("[MYC] extend start=%s grown=%d", startID, len(newIDs))
	return newIDs, nil
}

// drawType samples a node type from the transition table row for start.
func (g *Graph) drawType(start NodeType) NodeType {
	row := typeTransitions[start]
	if len(row) == 0 {
		return NodeHypha
	}
	r := g.rng.Float64()
	var mass float64
	for _, tw := range row {
		mass += tw.weight
		if mass >= r {
			return tw.typ
		}
	}
	return row[len(row)-1].typ
}

// #endregion extend

// #region collect-upstream
// CollectUpstream returns every node with at least one directed path of
// outgoing edges terminating at id, deduplicated, target excluded. Iterative
// BFS over the incoming index with a visited set, so it terminates on cyclic
// graphs and never revisits a node.
func (g *Graph) CollectUpstream(id string) ([]Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	target, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("collect upstream: node %s: %w", id, concept.ErrNotFound)
	}

	visited := map[int]bool{target: true}
	queue := append([]int(nil), g.arena[target].in...)
	var result []Node

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, g.copyLocked(current))
		queue = append(queue, g.arena[current].in...)
	}
	return result, nil
}

// #endregion collect-upstream
