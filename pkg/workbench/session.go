package workbench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/repolens/backend/pkg/common"
	"github.com/repolens/backend/pkg/graph"
	"github.com/repolens/backend/pkg/store"
)

// User input errors: rejected at the point of the action, no mutation
// applied.
var (
	ErrEmptyLabel      = errors.New("node label must not be empty")
	ErrUnknownNode     = errors.New("node does not exist")
	ErrUnknownEdge     = errors.New("edge does not exist")
	ErrSelfEdge        = errors.New("edge endpoints must be distinct")
	ErrNoContent       = errors.New("no documentation content available")
	ErrNothingSelected = errors.New("nothing selected")
)

// normalizeLabel trims and collapses internal whitespace the same way
// extraction does before admitting a candidate.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Session is the stateful workbench editor for one case: it owns the
// editable graph, the pan/zoom viewport, the selection, and the pointer
// interaction state machine. Every graph mutation is written through the
// injected GraphStore immediately; there is no explicit save.
//
// A session is single-editor by design; the mutex only serializes the
// HTTP adapter's concurrent requests onto that single logical editor.
type Session struct {
	mu sync.Mutex

	caseID  string
	store   store.GraphStore
	notify  Notifier
	publish PublishFunc
	docs    DocumentSource

	graph    *common.Graph
	analysis *common.Analysis
	view     Viewport
	drag     dragState
	sel      Selection

	// fetchSeq implements the staleness check for abandoned document
	// fetches: a response whose sequence number is no longer current is
	// discarded.
	fetchSeq int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNotifier wires the host notification callback.
func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) { s.notify = n }
}

// WithPublisher wires the one-shot publish hand-off.
func WithPublisher(p PublishFunc) SessionOption {
	return func(s *Session) { s.publish = p }
}

// WithDocumentSource wires the external document collaborator.
func WithDocumentSource(d DocumentSource) SessionOption {
	return func(s *Session) { s.docs = d }
}

// NewSession creates a workbench session for a case. Call Open before
// using it.
func NewSession(caseID string, graphStore store.GraphStore, opts ...SessionOption) *Session {
	s := &Session{
		caseID: caseID,
		store:  graphStore,
		graph:  common.NewGraph("empty"),
		view:   Viewport{Zoom: 1},
		drag:   idleState{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the persisted snapshot for the case. A missing snapshot is
// a valid state and yields an empty editable graph.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, a, err := s.store.Load(ctx, s.caseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.report(NotifyError, "Stored graph could not be loaded", err.Error())
		return err
	}
	s.graph = g
	s.analysis = a
	return nil
}

func (s *Session) report(typ, message, detail string) {
	if s.notify == nil {
		return
	}
	s.notify.Notify(Notification{Type: typ, Message: message, Detail: detail})
}

func (s *Session) saveLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.caseID, s.graph, s.analysis); err != nil {
		s.report(NotifyError, "Failed to persist graph", err.Error())
		return err
	}
	return nil
}

// CaseID returns the owning case identifier.
func (s *Session) CaseID() string { return s.caseID }

// Graph returns a copy of the current editable graph.
func (s *Session) Graph() *common.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// Analysis returns the opaque backend analysis annotation, if any.
func (s *Session) Analysis() *common.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// View returns the current viewport.
func (s *Session) View() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Selected returns the current selection.
func (s *Session) Selected() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// InteractionState names the current drag state, for diagnostics.
func (s *Session) InteractionState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.dragStateName()
}

// PointerDown starts a canvas pan (empty nodeID) or a node drag. A
// pointer-down on a node also selects it, clearing any edge selection.
func (s *Session) PointerDown(x, y float64, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nodeID == "" {
		s.drag = panningCanvas{
			startX:      x,
			startY:      y,
			baseOffsetX: s.view.OffsetX,
			baseOffsetY: s.view.OffsetY,
		}
		return nil
	}

	node := s.graph.NodeByID(nodeID)
	if node == nil {
		return ErrUnknownNode
	}
	s.drag = draggingNode{
		nodeID: nodeID,
		startX: x,
		startY: y,
		baseX:  node.X,
		baseY:  node.Y,
	}
	s.sel = Selection{NodeID: nodeID}
	return nil
}

// PointerMove advances an active pan or drag; in the idle state it is a
// no-op. Pointer deltas are divided by the zoom scale so on-canvas
// motion tracks the cursor. Node drags mutate the graph and are
// persisted like any other mutation.
func (s *Session) PointerMove(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch st := s.drag.(type) {
	case idleState:
		return nil
	case panningCanvas:
		s.view.OffsetX = st.baseOffsetX + (x-st.startX)/s.view.Zoom
		s.view.OffsetY = st.baseOffsetY + (y-st.startY)/s.view.Zoom
		return nil
	case draggingNode:
		node := s.graph.NodeByID(st.nodeID)
		if node == nil {
			// Node deleted mid-drag; terminate the drag.
			s.drag = idleState{}
			return nil
		}
		node.X = st.baseX + (x-st.startX)/s.view.Zoom
		node.Y = st.baseY + (y-st.startY)/s.view.Zoom
		return s.saveLocked(ctx)
	default:
		return fmt.Errorf("unknown drag state %q", s.drag.dragStateName())
	}
}

// PointerUp ends any pan or drag. It is legal in every state, mirroring
// the global pointer-up listener that keeps a drag from getting stuck
// when the pointer leaves the canvas.
func (s *Session) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = idleState{}
}

// Wheel applies one multiplicative zoom step per tick, clamped to the
// fixed range. Positive deltas zoom out.
func (s *Session) Wheel(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	zoom := s.view.Zoom
	if delta > 0 {
		zoom *= 1 - zoomStep
	} else if delta < 0 {
		zoom *= 1 + zoomStep
	}
	if zoom < zoomMin {
		zoom = zoomMin
	}
	if zoom > zoomMax {
		zoom = zoomMax
	}
	s.view.Zoom = zoom
}

// SelectNode selects a node, clearing any edge selection.
func (s *Session) SelectNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.graph.HasNode(id) {
		return ErrUnknownNode
	}
	s.sel = Selection{NodeID: id}
	return nil
}

// SelectEdge selects an edge, clearing any node selection.
func (s *Session) SelectEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph.EdgeByID(id) == nil {
		return ErrUnknownEdge
	}
	s.sel = Selection{EdgeID: id}
	return nil
}

// ClearSelection drops any selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = Selection{}
}

// AddNode creates a node from a label, using the same
// slugify-and-disambiguate id rule as extraction, placed at the next
// ring position.
func (s *Session) AddNode(ctx context.Context, label, kind, note string) (*common.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	label = normalizeLabel(label)
	if label == "" {
		return nil, ErrEmptyLabel
	}

	taken := map[string]struct{}{}
	for _, n := range s.graph.Nodes {
		taken[n.ID] = struct{}{}
	}
	id := graph.UniqueID(graph.Slugify(label), taken)
	x, y := graph.RingPosition(len(s.graph.Nodes))

	node := common.Node{
		ID:    id,
		Label: label,
		Type:  common.ParseKind(kind),
		X:     x,
		Y:     y,
		Note:  note,
	}
	s.graph.Nodes = append(s.graph.Nodes, node)
	s.sel = Selection{NodeID: id}
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	return &node, nil
}

// NodeUpdate carries the mutable node fields; nil means "leave as is".
type NodeUpdate struct {
	Label *string
	Type  *string
	Note  *string
}

// UpdateNode edits a node's mutable fields. An empty updated label is
// rejected with no mutation applied.
func (s *Session) UpdateNode(ctx context.Context, id string, upd NodeUpdate) (*common.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.graph.NodeByID(id)
	if node == nil {
		return nil, ErrUnknownNode
	}
	if upd.Label != nil {
		label := normalizeLabel(*upd.Label)
		if label == "" {
			return nil, ErrEmptyLabel
		}
		node.Label = label
	}
	if upd.Type != nil {
		node.Type = common.ParseKind(*upd.Type)
	}
	if upd.Note != nil {
		node.Note = *upd.Note
	}
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	copied := *node
	return &copied, nil
}

// AddEdge connects two distinct existing nodes. Adding an edge that
// already exists with the same (source, target, relation) increments its
// weight instead of duplicating it.
func (s *Session) AddEdge(ctx context.Context, sourceID, targetID, relation string) (*common.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sourceID == targetID {
		return nil, ErrSelfEdge
	}
	if !s.graph.HasNode(sourceID) || !s.graph.HasNode(targetID) {
		return nil, ErrUnknownNode
	}
	relation = normalizeLabel(relation)
	if relation == "" {
		relation = common.RelationRelated
	}

	for i := range s.graph.Edges {
		e := &s.graph.Edges[i]
		if e.Source == sourceID && e.Target == targetID && e.Relation == relation {
			e.Weight++
			if err := s.saveLocked(ctx); err != nil {
				return nil, err
			}
			copied := *e
			return &copied, nil
		}
	}

	taken := map[string]struct{}{}
	for _, e := range s.graph.Edges {
		taken[e.ID] = struct{}{}
	}
	edge := common.Edge{
		ID:       graph.UniqueID(sourceID+"--"+targetID, taken),
		Source:   sourceID,
		Target:   targetID,
		Relation: relation,
		Weight:   1,
	}
	s.graph.Edges = append(s.graph.Edges, edge)
	s.sel = Selection{EdgeID: edge.ID}
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	return &edge, nil
}

// EdgeUpdate carries the mutable edge fields; nil means "leave as is".
type EdgeUpdate struct {
	Relation *string
	Weight   *int
}

// UpdateEdge edits an edge's relation or weight. Weight is clamped to a
// minimum of 1; an empty relation falls back to the generic label.
func (s *Session) UpdateEdge(ctx context.Context, id string, upd EdgeUpdate) (*common.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge := s.graph.EdgeByID(id)
	if edge == nil {
		return nil, ErrUnknownEdge
	}
	if upd.Relation != nil {
		relation := normalizeLabel(*upd.Relation)
		if relation == "" {
			relation = common.RelationRelated
		}
		edge.Relation = relation
	}
	if upd.Weight != nil {
		weight := *upd.Weight
		if weight < 1 {
			weight = 1
		}
		edge.Weight = weight
	}
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	copied := *edge
	return &copied, nil
}

// DeleteNode removes a node and every edge touching it.
func (s *Session) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteNodeLocked(ctx, id)
}

func (s *Session) deleteNodeLocked(ctx context.Context, id string) error {
	if !s.graph.HasNode(id) {
		return ErrUnknownNode
	}
	nodes := s.graph.Nodes[:0]
	for _, n := range s.graph.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	s.graph.Nodes = nodes

	edges := s.graph.Edges[:0]
	for _, e := range s.graph.Edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	s.graph.Edges = edges

	if s.sel.NodeID == id {
		s.sel = Selection{}
	}
	return s.saveLocked(ctx)
}

// DeleteEdge removes one edge.
func (s *Session) DeleteEdge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteEdgeLocked(ctx, id)
}

func (s *Session) deleteEdgeLocked(ctx context.Context, id string) error {
	if s.graph.EdgeByID(id) == nil {
		return ErrUnknownEdge
	}
	edges := s.graph.Edges[:0]
	for _, e := range s.graph.Edges {
		if e.ID != id {
			edges = append(edges, e)
		}
	}
	s.graph.Edges = edges
	if s.sel.EdgeID == id {
		s.sel = Selection{}
	}
	return s.saveLocked(ctx)
}

// DeleteSelected removes the current selection: a selected node takes
// its incident edges with it, a selected edge goes alone.
func (s *Session) DeleteSelected(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.sel.NodeID != "":
		return s.deleteNodeLocked(ctx, s.sel.NodeID)
	case s.sel.EdgeID != "":
		return s.deleteEdgeLocked(ctx, s.sel.EdgeID)
	default:
		return ErrNothingSelected
	}
}

// Clear resets the case to an empty graph.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = common.NewGraph("empty")
	s.analysis = nil
	s.sel = Selection{}
	s.drag = idleState{}
	return s.saveLocked(ctx)
}

// ExtractFromText runs the extraction pipeline over the given text and
// replaces the editable graph. When text is empty the document
// collaborator is consulted, falling back to the case's seed text; if
// both are unavailable ErrNoContent is returned with no mutation — a
// visible but non-fatal state.
func (s *Session) ExtractFromText(ctx context.Context, text string) error {
	if text == "" {
		fetched, err := s.fetchDocument(ctx)
		if err != nil {
			return err
		}
		text = fetched
	}

	g := graph.Build(text, graph.WithSource("extraction"))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.analysis = nil
	s.sel = Selection{}
	if err := s.saveLocked(ctx); err != nil {
		return err
	}
	s.report(NotifySuccess, "Graph extracted",
		fmt.Sprintf("%d nodes, %d edges from %d sentences", len(g.Nodes), len(g.Edges), g.Meta.SentenceCount))
	return nil
}

// fetchDocument resolves text from the document collaborator with a seed
// fallback. Responses from superseded fetches are discarded by sequence
// number.
func (s *Session) fetchDocument(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	docs := s.docs
	s.mu.Unlock()

	if docs != nil {
		text, err := docs.FetchManual(ctx, s.caseID)
		s.mu.Lock()
		stale := seq != s.fetchSeq
		s.mu.Unlock()
		if stale {
			return "", ErrNoContent
		}
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			s.report(NotifyError, "Documentation fetch failed, using local seed", err.Error())
		}
	}

	seed, err := s.store.LoadSeedText(ctx, s.caseID)
	if err == nil && seed != "" {
		return seed, nil
	}

	s.report(NotifyError, "No documentation content available", "")
	return "", ErrNoContent
}

// ImportJSON replaces the graph with a validated user-supplied payload.
// An invalid shape leaves the prior graph untouched.
func (s *Session) ImportJSON(ctx context.Context, raw []byte) (*graph.ImportResult, error) {
	g, result, err := graph.ValidateGraphJSON(raw, "import")
	if err != nil {
		s.report(NotifyError, "Import failed: invalid shape", "")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.analysis = nil
	s.sel = Selection{}
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	s.report(NotifySuccess, "Import succeeded",
		fmt.Sprintf("%d nodes, %d edges accepted", result.NodesAccepted, result.EdgesAccepted))
	return result, nil
}

// LoadAsset replaces the graph with a validated backend asset bundle,
// including its opaque analysis annotation.
func (s *Session) LoadAsset(ctx context.Context, raw []byte) (*graph.ImportResult, error) {
	g, analysis, result, err := graph.ValidatePayload(raw, "backend")
	if err != nil {
		s.report(NotifyError, "Backend asset unavailable", "")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.analysis = analysis
	s.sel = Selection{}
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// ExportJSON renders the current graph in the export file format.
func (s *Session) ExportJSON() ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.graph, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode graph: %w", err)
	}
	return data, fmt.Sprintf("graph-%s.json", s.caseID), nil
}

// Publish snapshots the current graph for the read-only viewer. Last
// write wins.
func (s *Session) Publish(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.graph.Clone()
	analysis := s.analysis
	s.mu.Unlock()

	if err := s.store.SavePublished(ctx, s.caseID, snapshot, analysis); err != nil {
		s.report(NotifyError, "Publish failed", err.Error())
		return err
	}
	if s.publish != nil {
		if err := s.publish(ctx, s.caseID, snapshot, analysis); err != nil {
			s.report(NotifyError, "Publish hand-off failed", err.Error())
			return err
		}
	}
	s.report(NotifySuccess, "Graph published",
		fmt.Sprintf("%d nodes, %d edges", len(snapshot.Nodes), len(snapshot.Edges)))
	return nil
}
