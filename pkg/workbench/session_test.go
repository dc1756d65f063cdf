package workbench

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/repolens/backend/pkg/common"
	"github.com/repolens/backend/pkg/store"
	"github.com/repolens/backend/pkg/store/memory"
)

func newTestSession(t *testing.T, opts ...SessionOption) (*Session, *memory.MemoryStore) {
	t.Helper()
	mem := memory.NewMemoryStore()
	s := NewSession("case-1", mem, opts...)
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, mem
}

func seedTwoNodes(t *testing.T, s *Session) (string, string) {
	t.Helper()
	ctx := context.Background()
	a, err := s.AddNode(ctx, "Auth Service", "service", "")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	b, err := s.AddNode(ctx, "User Repository", "data", "")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	return a.ID, b.ID
}

func TestOpenWithoutSnapshotStartsEmpty(t *testing.T) {
	s, _ := newTestSession(t)
	g := s.Graph()
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Fatalf("expected empty graph, got %d nodes %d edges", len(g.Nodes), len(g.Edges))
	}
	if s.View().Zoom != 1 {
		t.Fatalf("initial zoom = %v", s.View().Zoom)
	}
	if s.InteractionState() != "idle" {
		t.Fatalf("initial state = %q", s.InteractionState())
	}
}

func TestAddNodeRejectsEmptyLabel(t *testing.T) {
	s, mem := newTestSession(t)
	if _, err := s.AddNode(context.Background(), "   ", "service", ""); !errors.Is(err, ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	if mem.SaveCount != 0 {
		t.Fatalf("rejected mutation must not be persisted, saves = %d", mem.SaveCount)
	}
}

func TestAddNodeSlugsAndSelects(t *testing.T) {
	s, mem := newTestSession(t)
	node, err := s.AddNode(context.Background(), "  Auth   Service ", "service", "entry point")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if node.ID != "auth-service" {
		t.Fatalf("node id = %q", node.ID)
	}
	if node.Label != "Auth Service" {
		t.Fatalf("label = %q, want collapsed whitespace", node.Label)
	}
	if node.Type != common.KindService {
		t.Fatalf("kind = %s", node.Type)
	}
	if sel := s.Selected(); sel.NodeID != node.ID {
		t.Fatalf("selection = %+v", sel)
	}
	if mem.SaveCount != 1 {
		t.Fatalf("saves = %d, want 1", mem.SaveCount)
	}

	// Same label again must disambiguate, not collide.
	again, err := s.AddNode(context.Background(), "Auth Service", "service", "")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if again.ID != "auth-service-2" {
		t.Fatalf("second id = %q", again.ID)
	}
}

func TestAddEdgeRules(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	a, b := seedTwoNodes(t, s)

	if _, err := s.AddEdge(ctx, a, a, "calls"); !errors.Is(err, ErrSelfEdge) {
		t.Fatalf("self edge: %v", err)
	}
	if _, err := s.AddEdge(ctx, a, "ghost", "calls"); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("missing endpoint: %v", err)
	}

	e1, err := s.AddEdge(ctx, a, b, "calls")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if e1.Weight != 1 {
		t.Fatalf("weight = %d", e1.Weight)
	}
	if sel := s.Selected(); sel.EdgeID != e1.ID || sel.NodeID != "" {
		t.Fatalf("selection = %+v", sel)
	}

	// Same triple increments weight instead of duplicating.
	e2, err := s.AddEdge(ctx, a, b, "calls")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if e2.ID != e1.ID || e2.Weight != 2 {
		t.Fatalf("duplicate triple: %+v", e2)
	}
	if g := s.Graph(); len(g.Edges) != 1 {
		t.Fatalf("edge count = %d, want 1", len(g.Edges))
	}

	// A different relation between the same endpoints is a new edge.
	e3, err := s.AddEdge(ctx, a, b, "depends on")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if e3.ID == e1.ID {
		t.Fatal("distinct relation should not reuse the edge")
	}

	// Blank relation falls back to the generic label.
	e4, err := s.AddEdge(ctx, b, a, "  ")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if e4.Relation != common.RelationRelated {
		t.Fatalf("relation = %q", e4.Relation)
	}
}

func TestUpdateNodeAndEdge(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	a, b := seedTwoNodes(t, s)
	edge, err := s.AddEdge(ctx, a, b, "calls")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	empty := "  "
	if _, err := s.UpdateNode(ctx, a, NodeUpdate{Label: &empty}); !errors.Is(err, ErrEmptyLabel) {
		t.Fatalf("empty label update: %v", err)
	}

	label, kind := "Gateway", "service"
	updated, err := s.UpdateNode(ctx, a, NodeUpdate{Label: &label, Type: &kind})
	if err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if updated.Label != "Gateway" || updated.Type != common.KindService {
		t.Fatalf("updated node = %+v", updated)
	}
	// The id never changes on relabel.
	if updated.ID != a {
		t.Fatalf("id changed to %q", updated.ID)
	}

	weight := -5
	relation := ""
	e, err := s.UpdateEdge(ctx, edge.ID, EdgeUpdate{Relation: &relation, Weight: &weight})
	if err != nil {
		t.Fatalf("UpdateEdge: %v", err)
	}
	if e.Weight != 1 {
		t.Fatalf("weight = %d, want clamp to 1", e.Weight)
	}
	if e.Relation != common.RelationRelated {
		t.Fatalf("relation = %q", e.Relation)
	}

	if _, err := s.UpdateEdge(ctx, "ghost", EdgeUpdate{}); !errors.Is(err, ErrUnknownEdge) {
		t.Fatalf("unknown edge: %v", err)
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	a, b := seedTwoNodes(t, s)
	c, err := s.AddNode(ctx, "Billing", "module", "")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := s.AddEdge(ctx, a, b, "calls"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if _, err := s.AddEdge(ctx, b, c.ID, "uses"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	if err := s.SelectNode(b); err != nil {
		t.Fatalf("SelectNode: %v", err)
	}
	if err := s.DeleteNode(ctx, b); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	g := s.Graph()
	if len(g.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(g.Nodes))
	}
	if len(g.Edges) != 0 {
		t.Fatalf("incident edges must cascade, got %d", len(g.Edges))
	}
	if sel := s.Selected(); sel.NodeID != "" {
		t.Fatalf("selection should be cleared, got %+v", sel)
	}
}

func TestDeleteSelected(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	if err := s.DeleteSelected(ctx); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("empty selection: %v", err)
	}

	a, b := seedTwoNodes(t, s)
	edge, err := s.AddEdge(ctx, a, b, "calls")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := s.SelectEdge(edge.ID); err != nil {
		t.Fatalf("SelectEdge: %v", err)
	}
	if err := s.DeleteSelected(ctx); err != nil {
		t.Fatalf("DeleteSelected: %v", err)
	}
	g := s.Graph()
	if len(g.Edges) != 0 || len(g.Nodes) != 2 {
		t.Fatalf("edge deletion must leave nodes, got %d nodes %d edges", len(g.Nodes), len(g.Edges))
	}
}

func TestPointerStateMachine(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	a, _ := seedTwoNodes(t, s)

	// Idle ignores moves.
	before := s.View()
	if err := s.PointerMove(ctx, 50, 50); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	if s.View() != before {
		t.Fatal("idle move must not pan")
	}

	// Empty node id starts a pan; deltas are divided by zoom.
	if err := s.PointerDown(10, 10, ""); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	if s.InteractionState() != "panning" {
		t.Fatalf("state = %q", s.InteractionState())
	}
	if err := s.PointerMove(ctx, 30, 50); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	v := s.View()
	if v.OffsetX != 20 || v.OffsetY != 40 {
		t.Fatalf("pan offsets = (%v,%v), want (20,40)", v.OffsetX, v.OffsetY)
	}
	s.PointerUp()
	if s.InteractionState() != "idle" {
		t.Fatalf("state after up = %q", s.InteractionState())
	}

	// Pointer-down on a node starts a drag and selects it.
	if err := s.PointerDown(0, 0, a); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	if s.InteractionState() != "dragging" {
		t.Fatalf("state = %q", s.InteractionState())
	}
	if sel := s.Selected(); sel.NodeID != a {
		t.Fatalf("selection = %+v", sel)
	}

	baseX := s.Graph().NodeByID(a).X
	if err := s.PointerMove(ctx, 12, 0); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	if got := s.Graph().NodeByID(a).X; got != baseX+12 {
		t.Fatalf("node x = %v, want %v", got, baseX+12)
	}

	// Pointer-up is legal in every state, twice in a row included.
	s.PointerUp()
	s.PointerUp()
	if s.InteractionState() != "idle" {
		t.Fatalf("state = %q", s.InteractionState())
	}

	if err := s.PointerDown(0, 0, "ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("unknown node drag: %v", err)
	}
}

func TestNodeDragPersistsEachMove(t *testing.T) {
	s, mem := newTestSession(t)
	ctx := context.Background()
	a, _ := seedTwoNodes(t, s)

	saves := mem.SaveCount
	if err := s.PointerDown(0, 0, a); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := s.PointerMove(ctx, float64(i), 0); err != nil {
			t.Fatalf("PointerMove: %v", err)
		}
	}
	s.PointerUp()
	if mem.SaveCount != saves+3 {
		t.Fatalf("saves = %d, want %d", mem.SaveCount, saves+3)
	}
}

func TestDragDividesByZoom(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	a, _ := seedTwoNodes(t, s)

	// Zoom in once: 1 * 1.08.
	s.Wheel(-1)
	zoom := s.View().Zoom

	baseX := s.Graph().NodeByID(a).X
	if err := s.PointerDown(0, 0, a); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	if err := s.PointerMove(ctx, 10, 0); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	want := baseX + 10/zoom
	if got := s.Graph().NodeByID(a).X; got != want {
		t.Fatalf("node x = %v, want %v", got, want)
	}
}

func TestWheelZoomClamps(t *testing.T) {
	s, _ := newTestSession(t)
	for i := 0; i < 100; i++ {
		s.Wheel(1)
	}
	if got := s.View().Zoom; got != 0.3 {
		t.Fatalf("zoom floor = %v, want 0.3", got)
	}
	for i := 0; i < 100; i++ {
		s.Wheel(-1)
	}
	if got := s.View().Zoom; got != 2.5 {
		t.Fatalf("zoom ceiling = %v, want 2.5", got)
	}
	s.Wheel(0)
	if got := s.View().Zoom; got != 2.5 {
		t.Fatalf("zero delta must not zoom, got %v", got)
	}
}

func TestExtractReplacesGraphAndNotifies(t *testing.T) {
	var notes []Notification
	s, mem := newTestSession(t, WithNotifier(NotifierFunc(func(n Notification) {
		notes = append(notes, n)
	})))
	ctx := context.Background()

	err := s.ExtractFromText(ctx, "AuthService calls UserRepository. UserRepository stores accounts.")
	if err != nil {
		t.Fatalf("ExtractFromText: %v", err)
	}
	g := s.Graph()
	if len(g.Nodes) == 0 || len(g.Edges) == 0 {
		t.Fatalf("extraction produced %d nodes %d edges", len(g.Nodes), len(g.Edges))
	}
	if g.Meta.Source != "extraction" {
		t.Fatalf("meta source = %q", g.Meta.Source)
	}
	if mem.SaveCount == 0 {
		t.Fatal("extraction result must be persisted")
	}
	if len(notes) == 0 || notes[len(notes)-1].Type != NotifySuccess {
		t.Fatalf("notifications = %+v", notes)
	}
}

func TestExtractWithoutContentFailsVisible(t *testing.T) {
	var notes []Notification
	s, _ := newTestSession(t, WithNotifier(NotifierFunc(func(n Notification) {
		notes = append(notes, n)
	})))

	err := s.ExtractFromText(context.Background(), "")
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if len(notes) == 0 || notes[len(notes)-1].Type != NotifyError {
		t.Fatalf("notifications = %+v", notes)
	}
}

type stubDocs struct {
	text string
	err  error
}

func (d stubDocs) FetchManual(ctx context.Context, caseID string) (string, error) {
	return d.text, d.err
}

func TestExtractFetchesDocumentWhenTextEmpty(t *testing.T) {
	s, _ := newTestSession(t, WithDocumentSource(stubDocs{
		text: "OrderService depends on PaymentGateway.",
	}))
	if err := s.ExtractFromText(context.Background(), ""); err != nil {
		t.Fatalf("ExtractFromText: %v", err)
	}
	found := false
	for _, n := range s.Graph().Nodes {
		if strings.Contains(strings.ToLower(n.Label), "orderservice") {
			found = true
		}
	}
	if !found {
		t.Fatal("fetched document was not extracted")
	}
}

func TestExtractFallsBackToSeedText(t *testing.T) {
	s, mem := newTestSession(t, WithDocumentSource(stubDocs{err: errors.New("unreachable")}))
	ctx := context.Background()
	if err := mem.SaveSeedText(ctx, "case-1", "CacheLayer uses RedisStore."); err != nil {
		t.Fatalf("SaveSeedText: %v", err)
	}
	if err := s.ExtractFromText(ctx, ""); err != nil {
		t.Fatalf("ExtractFromText: %v", err)
	}
	if len(s.Graph().Nodes) == 0 {
		t.Fatal("seed fallback produced no nodes")
	}
}

func TestImportFailureKeepsPriorState(t *testing.T) {
	s, mem := newTestSession(t)
	ctx := context.Background()
	seedTwoNodes(t, s)
	saves := mem.SaveCount

	if _, err := s.ImportJSON(ctx, []byte(`{"totally": "unrelated"}`)); err == nil {
		t.Fatal("invalid import must fail")
	}
	if len(s.Graph().Nodes) != 2 {
		t.Fatalf("prior graph lost, nodes = %d", len(s.Graph().Nodes))
	}
	if mem.SaveCount != saves {
		t.Fatalf("failed import must not persist, saves = %d", mem.SaveCount)
	}
}

func TestImportReplacesGraph(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	seedTwoNodes(t, s)

	result, err := s.ImportJSON(ctx, []byte(`{
		"nodes": [{"id": "x", "label": "X"}, {"id": "y", "label": "Y"}],
		"edges": [{"source": "x", "target": "y", "relation": "calls", "weight": 1}]
	}`))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if result.NodesAccepted != 2 || result.EdgesAccepted != 1 {
		t.Fatalf("result = %+v", result)
	}
	g := s.Graph()
	if len(g.Nodes) != 2 || g.Nodes[0].ID != "x" {
		t.Fatalf("graph not replaced: %+v", g.Nodes)
	}
}

func TestLoadAssetCarriesAnalysis(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	seedTwoNodes(t, s)

	result, err := s.LoadAsset(ctx, []byte(`{
		"nodes": [{"id": "x", "label": "X"}, {"id": "y", "label": "Y"}],
		"edges": [{"source": "x", "target": "y", "relation": "calls", "weight": 1}],
		"analysis": {"summary": "two services"}
	}`))
	if err != nil {
		t.Fatalf("LoadAsset: %v", err)
	}
	if result.NodesAccepted != 2 || result.EdgesAccepted != 1 {
		t.Fatalf("result = %+v", result)
	}
	if a := s.Analysis(); a == nil || a.Summary != "two services" {
		t.Fatalf("analysis = %+v", a)
	}
	if len(s.Graph().Nodes) != 2 {
		t.Fatalf("graph not replaced: %d nodes", len(s.Graph().Nodes))
	}
}

func TestLoadAssetFailureKeepsEditableState(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	seedTwoNodes(t, s)

	if _, err := s.LoadAsset(ctx, []byte(`{"no": "graph"}`)); err == nil {
		t.Fatal("asset without graph must fail")
	}
	if len(s.Graph().Nodes) != 2 {
		t.Fatal("failed asset load must leave the editable graph intact")
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	s, _ := newTestSession(t)
	seedTwoNodes(t, s)

	data, filename, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if filename != "graph-case-1.json" {
		t.Fatalf("filename = %q", filename)
	}
	if _, err := s.ImportJSON(context.Background(), data); err != nil {
		t.Fatalf("exported payload must re-import: %v", err)
	}
}

func TestPublishLastWriteWins(t *testing.T) {
	s, mem := newTestSession(t)
	ctx := context.Background()
	seedTwoNodes(t, s)

	if err := s.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	first, _, err := mem.LoadPublished(ctx, "case-1")
	if err != nil {
		t.Fatalf("LoadPublished: %v", err)
	}
	if len(first.Nodes) != 2 {
		t.Fatalf("published nodes = %d", len(first.Nodes))
	}

	if _, err := s.AddNode(ctx, "Billing", "module", ""); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := s.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	second, _, err := mem.LoadPublished(ctx, "case-1")
	if err != nil {
		t.Fatalf("LoadPublished: %v", err)
	}
	if len(second.Nodes) != 3 {
		t.Fatalf("republish should overwrite, nodes = %d", len(second.Nodes))
	}
}

func TestPublishedSnapshotIsDetached(t *testing.T) {
	s, mem := newTestSession(t)
	ctx := context.Background()
	a, _ := seedTwoNodes(t, s)
	if err := s.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := s.DeleteNode(ctx, a); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	published, _, err := mem.LoadPublished(ctx, "case-1")
	if err != nil {
		t.Fatalf("LoadPublished: %v", err)
	}
	if len(published.Nodes) != 2 {
		t.Fatalf("published snapshot mutated, nodes = %d", len(published.Nodes))
	}
}

func TestClearResetsEverything(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	a, _ := seedTwoNodes(t, s)
	if err := s.SelectNode(a); err != nil {
		t.Fatalf("SelectNode: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if g := s.Graph(); len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Fatal("clear left graph content behind")
	}
	if sel := s.Selected(); sel != (Selection{}) {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestSessionPersistsAcrossReopen(t *testing.T) {
	mem := memory.NewMemoryStore()
	ctx := context.Background()

	s1 := NewSession("case-1", mem)
	if err := s1.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s1.AddNode(ctx, "Gateway", "service", ""); err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	s2 := NewSession("case-1", mem)
	if err := s2.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(s2.Graph().Nodes) != 1 {
		t.Fatalf("reopened graph nodes = %d, want 1", len(s2.Graph().Nodes))
	}
}

func TestManagerReusesSessions(t *testing.T) {
	mem := memory.NewMemoryStore()
	m := NewManager(func(caseID string) *Session {
		return NewSession(caseID, mem)
	})
	ctx := context.Background()

	a := m.Get(ctx, "case-1")
	b := m.Get(ctx, "case-1")
	if a != b {
		t.Fatal("same case should share one session")
	}
	if other := m.Get(ctx, "case-2"); other == a {
		t.Fatal("distinct cases must not share sessions")
	}

	m.Drop("case-1")
	if again := m.Get(ctx, "case-1"); again == a {
		t.Fatal("dropped session should be rebuilt")
	}
}

var _ store.GraphStore = (*memory.MemoryStore)(nil)
