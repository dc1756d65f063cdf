// Package viewer computes read-only exploration views over a graph:
// search/kind/relation filters, ego-network restriction, and
// degree-aware node sizing. It never mutates the graph it is given.
package viewer

import (
	"math"
	"strings"

	"github.com/repolens/backend/pkg/common"
)

// Label density: above this many visible nodes labels are hidden unless
// the zoom is high or the toggle forces them on.
const (
	labelNodeThreshold = 25
	labelZoomThreshold = 1.2
)

// Options are the non-destructive exploration controls.
type Options struct {
	// Search is a free-text filter matched case-insensitively against
	// node labels.
	Search string
	// Kind restricts visible nodes to one node kind ("" means all).
	Kind string
	// Relation restricts visible edges to one relation label ("" means
	// all).
	Relation string
	// EgoNodeID, when set, restricts the view to that node and its
	// direct neighbors; only edges incident to it remain visible.
	EgoNodeID string
	// ForceLabels overrides the automatic label-density rule.
	ForceLabels bool
	// Zoom is the viewer's current zoom scale, used by the label rule.
	Zoom float64
}

// NodeView is a visible node enriched with its degree within the
// currently visible edge set and the resulting visual radius.
type NodeView struct {
	common.Node
	Degree int     `json:"degree"`
	Radius float64 `json:"radius"`
}

// View is the computed visible subgraph.
type View struct {
	Nodes       []NodeView    `json:"nodes"`
	Edges       []common.Edge `json:"edges"`
	LabelsShown bool          `json:"labels_shown"`
}

// Build runs the intersection pipeline: kind/search filter, then
// relation filter, then the optional ego-network restriction. Node
// radius scales with degree recomputed over the visible edge set only,
// so filtering de-emphasizes nodes that lose connections.
func Build(g *common.Graph, opts Options) *View {
	visible := map[string]bool{}
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	kind := strings.TrimSpace(opts.Kind)

	for _, n := range g.Nodes {
		if kind != "" && string(n.Type) != kind {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(n.Label), search) {
			continue
		}
		visible[n.ID] = true
	}

	edges := make([]common.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if !visible[e.Source] || !visible[e.Target] {
			continue
		}
		if opts.Relation != "" && e.Relation != opts.Relation {
			continue
		}
		edges = append(edges, e)
	}

	if opts.EgoNodeID != "" && visible[opts.EgoNodeID] {
		ego := map[string]bool{opts.EgoNodeID: true}
		egoEdges := make([]common.Edge, 0, len(edges))
		for _, e := range edges {
			switch opts.EgoNodeID {
			case e.Source:
				ego[e.Target] = true
				egoEdges = append(egoEdges, e)
			case e.Target:
				ego[e.Source] = true
				egoEdges = append(egoEdges, e)
			}
		}
		visible = ego
		edges = egoEdges
	}

	degrees := map[string]int{}
	for _, e := range edges {
		degrees[e.Source] += e.Weight
		degrees[e.Target] += e.Weight
	}

	nodes := make([]NodeView, 0, len(visible))
	for _, n := range g.Nodes {
		if !visible[n.ID] {
			continue
		}
		degree := degrees[n.ID]
		nodes = append(nodes, NodeView{
			Node:   n,
			Degree: degree,
			Radius: nodeRadius(degree),
		})
	}

	return &View{
		Nodes:       nodes,
		Edges:       edges,
		LabelsShown: labelsShown(len(nodes), opts),
	}
}

func nodeRadius(degree int) float64 {
	return math.Round((12+4*math.Sqrt(float64(degree)))*100) / 100
}

func labelsShown(visibleCount int, opts Options) bool {
	if opts.ForceLabels {
		return true
	}
	if visibleCount <= labelNodeThreshold {
		return true
	}
	return opts.Zoom >= labelZoomThreshold
}
