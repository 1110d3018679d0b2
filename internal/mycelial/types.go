package mycelial

// #region node-types
// NodeType tags a node's role in the nutrient -> hypha -> rhizomorph ->
// fruiting_body flow.
type NodeType string

const (
	NodeNutrient     NodeType = "nutrient"
	NodeHypha        NodeType = "hypha"
	NodeRhizomorph   NodeType = "rhizomorph"
	NodeFruitingBody NodeType = "fruiting_body"
)

// EdgeType tags a directed edge. At most one edge exists per ordered node
// pair; reconnecting overwrites the type.
type EdgeType string

const (
	EdgeDecomposition EdgeType = "decomposition"
	EdgeAbsorption    EdgeType = "absorption"
	EdgeTransport     EdgeType = "transport"
	EdgeSynthesis     EdgeType = "synthesis"
	EdgeExtension     EdgeType = "extension"
)

// #endregion node-types

// #region node
// Node is the caller-facing copy of a graph node. Outgoing maps target id to
// edge type.
type Node struct {
	ID         string              `json:"id"`
	Type       NodeType            `json:"type"`
	Content    string              `json:"content"`
	Attributes map[string]string   `json:"attributes,omitempty"`
	Outgoing   map[string]EdgeType `json:"outgoing,omitempty"`
}

// Edge is a (source, target, type) triple materialized from the adjacency
// structure, mostly for inspection and persistence.
type Edge struct {
	SourceID string   `json:"source_id"`
	TargetID string   `json:"target_id"`
	Type     EdgeType `json:"type"`
}

// Seeding reports the node ids created by SeedFromDecomposition.
type Seeding struct {
	NutrientID   string
	HyphaIDs     []string
	RhizomorphID string
	FruitingID   string
}

// #endregion node

// #region growth-tables
// typeTransitions gives the outgoing node-type weights used by Extend, keyed
// by the starting node's type. Rows sum to 1.0.
var typeTransitions = map[NodeType][]typeWeight{
	NodeNutrient: {
		{NodeNutrient, 0.1},
		{NodeHypha, 0.7},
		{NodeRhizomorph, 0.2},
	},
	NodeHypha: {
		{NodeHypha, 0.6},
		{NodeRhizomorph, 0.3},
		{NodeFruitingBody, 0.1},
	},
	NodeRhizomorph: {
		{NodeHypha, 0.2},
		{NodeRhizomorph, 0.3},
		{NodeFruitingBody, 0.5},
	},
	NodeFruitingBody: {
		{NodeHypha, 0.1},
		{NodeRhizomorph, 0.1},
		{NodeFruitingBody, 0.8},
	},
}

type typeWeight struct {
	typ    NodeType
	weight float64
}

// edgeTypeFor maps a (source type, target type) pair to the edge type used
// when wiring grown nodes.
func edgeTypeFor(source, target NodeType) EdgeType {
	switch source {
	case NodeNutrient:
		if target == NodeHypha {
			return EdgeDecomposition
		}
		return EdgeAbsorption
	case NodeHypha:
		switch target {
		case NodeRhizomorph:
			return EdgeTransport
		case NodeFruitingBody:
			return EdgeSynthesis
		default:
			return EdgeExtension
		}
	case NodeRhizomorph:
		if target == NodeFruitingBody {
			return EdgeSynthesis
		}
		return EdgeTransport
	default:
		return EdgeExtension
	}
}

// #endregion growth-tables
