package workbench

// Zoom behavior: multiplicative steps clamped to a fixed range.
const (
	zoomStep = 0.08
	zoomMin  = 0.3
	zoomMax  = 2.5
)

// Viewport is the pan/zoom state of the editing canvas. It is view
// state, not graph state, so it is never persisted.
type Viewport struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Zoom    float64 `json:"zoom"`
}

// Selection holds the current node or edge selection; the two are
// mutually exclusive.
type Selection struct {
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
}

// dragState is a closed tagged union of the pointer interaction states:
// idle, panning the canvas, or dragging one node. Transitions are driven
// exclusively by PointerDown/PointerMove/PointerUp, and PointerUp is
// accepted in every state so a drag always terminates even when the
// pointer leaves the canvas.
type dragState interface {
	dragStateName() string
}

type idleState struct{}

type panningCanvas struct {
	startX      float64
	startY      float64
	baseOffsetX float64
	baseOffsetY float64
}

type draggingNode struct {
	nodeID string
	startX float64
	startY float64
	baseX  float64
	baseY  float64
}

func (idleState) dragStateName() string     { return "idle" }
func (panningCanvas) dragStateName() string { return "panning" }
func (draggingNode) dragStateName() string  { return "dragging" }
