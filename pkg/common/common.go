package common

import (
	"strings"
	"time"
)

// NodeKind is the closed set of node classifications. Every node carries
// exactly one kind; unknown or missing kinds collapse to KindConcept.
type NodeKind string

const (
	KindModule   NodeKind = "module"
	KindService  NodeKind = "service"
	KindData     NodeKind = "data"
	KindDocument NodeKind = "document"
	KindProcess  NodeKind = "process"
	KindConcept  NodeKind = "concept"
)

// RelationRelated is the generic relation label used when no keyword rule
// matches and for fallback chain edges.
const RelationRelated = "related"

// Kinds lists all valid node kinds.
func Kinds() []NodeKind {
	return []NodeKind{KindModule, KindService, KindData, KindDocument, KindProcess, KindConcept}
}

// ParseKind coerces an arbitrary string to a valid NodeKind,
// defaulting to KindConcept.
func ParseKind(s string) NodeKind {
	k := NodeKind(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Kinds() {
		if k == valid {
			return k
		}
	}
	return KindConcept
}

// Node is a labeled entity in the graph, positioned on a 2-D canvas.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Type  NodeKind `json:"type"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Note  string   `json:"note,omitempty"`
	Score float64  `json:"score,omitempty"`
}

// Edge is a directed, weighted, labeled connection between two distinct
// nodes. Both endpoints must reference node ids present in the same graph
// and Weight is always >= 1.
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	Weight   int    `json:"weight"`
}

// Meta records how and from what input a graph was produced.
type Meta struct {
	Source        string    `json:"source"`
	GeneratedAt   time.Time `json:"generated_at"`
	SentenceCount int       `json:"sentence_count"`
	SourceLength  int       `json:"source_length"`
}

// Graph is the central structure of the subsystem: a set of uniquely
// identified nodes, edges between them, and provenance metadata. The
// node-id set is injective and every edge's endpoints are members of it.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Meta  Meta   `json:"meta"`
}

// Analysis is a backend-computed annotation bundle displayed alongside a
// graph. It is consumed as opaque read-only data and never mutated here.
type Analysis struct {
	Summary      string   `json:"summary,omitempty"`
	KeyFindings  []string `json:"key_findings,omitempty"`
	RiskSignals  []string `json:"risk_signals,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
	FocusModules []string `json:"focus_modules,omitempty"`
}

// NewGraph returns an empty graph with provenance metadata filled in.
func NewGraph(source string) *Graph {
	return &Graph{
		Nodes: []Node{},
		Edges: []Edge{},
		Meta: Meta{
			Source:      source,
			GeneratedAt: time.Now().UTC(),
		},
	}
}

// NodeByID returns a pointer into the graph's node slice, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// EdgeByID returns a pointer into the graph's edge slice, or nil.
func (g *Graph) EdgeByID(id string) *Edge {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i]
		}
	}
	return nil
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	return g.NodeByID(id) != nil
}

// Degree returns the sum of incident edge weights for a node.
func (g *Graph) Degree(id string) int {
	total := 0
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			total += e.Weight
		}
	}
	return total
}

// Clone returns a deep copy, so published snapshots cannot be mutated
// through the live editing session.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
		Meta:  g.Meta,
	}
	copy(c.Nodes, g.Nodes)
	copy(c.Edges, g.Edges)
	return c
}
