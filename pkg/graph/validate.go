package graph

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/repolens/backend/pkg/common"

	"github.com/kaptinlin/jsonrepair"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrNoGraph signals that a payload has no usable graph shape at all.
// Callers keep their prior state when they see it.
var ErrNoGraph = errors.New("payload contains no graph")

type payloadNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Note  string  `json:"note"`
	Score float64 `json:"score"`
}

type payloadEdge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

type payload struct {
	Nodes    json.RawMessage  `json:"nodes"`
	Edges    json.RawMessage  `json:"edges"`
	Meta     *common.Meta     `json:"meta"`
	Analysis *common.Analysis `json:"analysis"`
}

// ImportResult reports what a validation pass accepted and dropped.
type ImportResult struct {
	NodesAccepted int
	NodesDropped  int
	EdgesAccepted int
	EdgesDropped  int
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// ValidatePayload sanitizes an arbitrary JSON payload into an
// invariant-respecting graph. It fails closed: a payload without
// array-typed nodes/edges yields ErrNoGraph. Element-level problems never
// reject the whole graph; offending nodes/edges are dropped one by one:
//
//   - nodes need a non-empty label after normalization; a missing id is
//     generated, a duplicate id is silently skipped (kept policy: the
//     later duplicate is discarded, not renamed)
//   - edges need distinct, existing endpoints; ids are generated on
//     collision, weight is coerced to an integer >= 1 and the relation
//     defaults to the generic label
//
// Slightly malformed JSON (trailing commas, unquoted keys) is run through
// jsonrepair before giving up. The optional sibling analysis object is
// passed through opaquely.
func ValidatePayload(raw []byte, source string) (*common.Graph, *common.Analysis, *ImportResult, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		repaired, repErr := jsonrepair.JSONRepair(string(raw))
		if repErr != nil {
			return nil, nil, nil, ErrNoGraph
		}
		if err := json.Unmarshal([]byte(repaired), &p); err != nil {
			return nil, nil, nil, ErrNoGraph
		}
	}

	if !isJSONArray(p.Nodes) || !isJSONArray(p.Edges) {
		return nil, nil, nil, ErrNoGraph
	}

	var rawNodes []payloadNode
	var rawEdges []payloadEdge
	if err := json.Unmarshal(p.Nodes, &rawNodes); err != nil {
		return nil, nil, nil, ErrNoGraph
	}
	if err := json.Unmarshal(p.Edges, &rawEdges); err != nil {
		return nil, nil, nil, ErrNoGraph
	}

	g := &common.Graph{
		Nodes: []common.Node{},
		Edges: []common.Edge{},
		Meta: common.Meta{
			Source:      source,
			GeneratedAt: time.Now().UTC(),
		},
	}
	if p.Meta != nil {
		g.Meta.SentenceCount = p.Meta.SentenceCount
		g.Meta.SourceLength = p.Meta.SourceLength
	}

	result := &ImportResult{}
	seen := map[string]struct{}{}

	for _, rn := range rawNodes {
		label := collapseSpaces(rn.Label)
		if label == "" {
			result.NodesDropped++
			continue
		}
		id := strings.TrimSpace(rn.ID)
		if id == "" {
			generated, err := gonanoid.New()
			if err != nil {
				result.NodesDropped++
				continue
			}
			id = generated
		}
		if _, dup := seen[id]; dup {
			result.NodesDropped++
			continue
		}
		seen[id] = struct{}{}
		g.Nodes = append(g.Nodes, common.Node{
			ID:    id,
			Label: label,
			Type:  common.ParseKind(rn.Type),
			X:     rn.X,
			Y:     rn.Y,
			Note:  rn.Note,
			Score: rn.Score,
		})
		result.NodesAccepted++
	}

	edgeIDs := map[string]struct{}{}
	for _, re := range rawEdges {
		src := strings.TrimSpace(re.Source)
		tgt := strings.TrimSpace(re.Target)
		if src == "" || tgt == "" || src == tgt {
			result.EdgesDropped++
			continue
		}
		if _, ok := seen[src]; !ok {
			result.EdgesDropped++
			continue
		}
		if _, ok := seen[tgt]; !ok {
			result.EdgesDropped++
			continue
		}
		id := strings.TrimSpace(re.ID)
		if id == "" {
			id = src + "--" + tgt
		}
		id = UniqueID(id, edgeIDs)

		weight := int(math.Round(re.Weight))
		if weight < 1 {
			weight = 1
		}
		relation := collapseSpaces(re.Relation)
		if relation == "" {
			relation = common.RelationRelated
		}
		g.Edges = append(g.Edges, common.Edge{
			ID:       id,
			Source:   src,
			Target:   tgt,
			Relation: relation,
			Weight:   weight,
		})
		result.EdgesAccepted++
	}

	return g, p.Analysis, result, nil
}

// ValidateGraphJSON is the plain variant for payloads without an analysis
// sibling, e.g. user file imports.
func ValidateGraphJSON(raw []byte, source string) (*common.Graph, *ImportResult, error) {
	g, _, result, err := ValidatePayload(raw, source)
	return g, result, err
}
