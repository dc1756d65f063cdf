package graph

import (
	"errors"
	"testing"
)

func TestValidateEmptyObjectIsNoGraph(t *testing.T) {
	_, _, err := ValidateGraphJSON([]byte(`{}`), "import")
	if !errors.Is(err, ErrNoGraph) {
		t.Fatalf("expected ErrNoGraph, got %v", err)
	}
}

func TestValidateNonArrayShapesAreNoGraph(t *testing.T) {
	cases := []string{
		`{"nodes": {}, "edges": []}`,
		`{"nodes": [], "edges": "nope"}`,
		`{"nodes": 4, "edges": []}`,
		`[]`,
		`"just a string"`,
	}
	for _, raw := range cases {
		if _, _, err := ValidateGraphJSON([]byte(raw), "import"); !errors.Is(err, ErrNoGraph) {
			t.Fatalf("payload %s: expected ErrNoGraph, got %v", raw, err)
		}
	}
}

func TestValidateDropsDanglingEdgeOnly(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "a", "label": "Alpha"},
			{"id": "b", "label": "Beta"}
		],
		"edges": [
			{"id": "e1", "source": "a", "target": "b", "relation": "calls", "weight": 1},
			{"id": "e2", "source": "a", "target": "ghost", "relation": "calls", "weight": 1}
		]
	}`)
	g, result, err := ValidateGraphJSON(raw, "import")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NodesAccepted != 2 || result.NodesDropped != 0 {
		t.Fatalf("nodes accepted/dropped = %d/%d", result.NodesAccepted, result.NodesDropped)
	}
	if result.EdgesAccepted != 1 || result.EdgesDropped != 1 {
		t.Fatalf("edges accepted/dropped = %d/%d", result.EdgesAccepted, result.EdgesDropped)
	}
	if len(g.Edges) != 1 || g.Edges[0].ID != "e1" {
		t.Fatalf("surviving edges = %+v", g.Edges)
	}
}

func TestValidateNodeRules(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "a", "label": "Alpha"},
			{"id": "a", "label": "Duplicate"},
			{"id": "b", "label": "   "},
			{"label": "NoID"}
		],
		"edges": []
	}`)
	g, result, err := ValidateGraphJSON(raw, "import")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NodesAccepted != 2 || result.NodesDropped != 2 {
		t.Fatalf("nodes accepted/dropped = %d/%d", result.NodesAccepted, result.NodesDropped)
	}
	if g.Nodes[0].Label != "Alpha" {
		t.Fatalf("first node = %+v", g.Nodes[0])
	}
	if g.Nodes[1].ID == "" {
		t.Fatal("missing id should be generated")
	}
}

func TestValidateEdgeCoercion(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "a", "label": "Alpha"},
			{"id": "b", "label": "Beta"}
		],
		"edges": [
			{"source": "a", "target": "b", "weight": 0},
			{"source": "a", "target": "b", "relation": "calls", "weight": 2.6},
			{"source": "a", "target": "a", "relation": "calls", "weight": 1}
		]
	}`)
	g, result, err := ValidateGraphJSON(raw, "import")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EdgesAccepted != 2 || result.EdgesDropped != 1 {
		t.Fatalf("edges accepted/dropped = %d/%d", result.EdgesAccepted, result.EdgesDropped)
	}
	first, second := g.Edges[0], g.Edges[1]
	if first.Weight != 1 || first.Relation != "related" {
		t.Fatalf("first edge = %+v", first)
	}
	if second.Weight != 3 || second.Relation != "calls" {
		t.Fatalf("second edge = %+v", second)
	}
	if first.ID == second.ID {
		t.Fatal("generated edge ids must not collide")
	}
}

func TestValidateRepairsSloppyJSON(t *testing.T) {
	raw := []byte(`{nodes: [{id: "a", label: "Alpha"},], edges: [],}`)
	g, result, err := ValidateGraphJSON(raw, "import")
	if err != nil {
		t.Fatalf("repairable payload rejected: %v", err)
	}
	if result.NodesAccepted != 1 || len(g.Nodes) != 1 {
		t.Fatalf("nodes = %+v", g.Nodes)
	}
}

func TestValidatePayloadPassesAnalysisThrough(t *testing.T) {
	raw := []byte(`{
		"nodes": [{"id": "a", "label": "Alpha"}],
		"edges": [],
		"analysis": {"summary": "one module, no risk"}
	}`)
	_, analysis, _, err := ValidatePayload(raw, "backend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis == nil || analysis.Summary != "one module, no risk" {
		t.Fatalf("analysis = %+v", analysis)
	}
}

func TestValidateRecordsSource(t *testing.T) {
	g, _, err := ValidateGraphJSON([]byte(`{"nodes": [], "edges": []}`), "import")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Meta.Source != "import" {
		t.Fatalf("meta source = %q", g.Meta.Source)
	}
}
