package graph

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/repolens/backend/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// defaultMaxEntities caps how many ranked candidates become nodes, so a
// long document does not drown the canvas in weight-1 word candidates.
const defaultMaxEntities = 40

// BuildOption customizes a single extraction run.
type BuildOption func(*buildConfig)

type buildConfig struct {
	source      string
	maxEntities int
	now         func() time.Time
}

// WithSource overrides the provenance label recorded in graph meta.
func WithSource(source string) BuildOption {
	return func(c *buildConfig) { c.source = source }
}

// WithMaxEntities overrides the candidate cap.
func WithMaxEntities(n int) BuildOption {
	return func(c *buildConfig) {
		if n > 0 {
			c.maxEntities = n
		}
	}
}

// WithClock overrides the meta timestamp source, for reproducible tests.
func WithClock(now func() time.Time) BuildOption {
	return func(c *buildConfig) { c.now = now }
}

// Slugify derives an ASCII/CJK-safe id token from a label: letters,
// digits and CJK runes survive lowercased, everything else collapses to
// single dashes. Labels with no usable runes at all fall back to a
// generated id.
func Slugify(label string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		id, err := gonanoid.New(8)
		if err != nil {
			return "node"
		}
		return "n-" + strings.ToLower(id)
	}
	return slug
}

// UniqueID disambiguates a slug against already-taken ids with a numeric
// suffix: "auth", "auth-2", "auth-3", ...
func UniqueID(slug string, taken map[string]struct{}) string {
	id := slug
	for n := 2; ; n++ {
		if _, exists := taken[id]; !exists {
			taken[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s-%d", slug, n)
	}
}

// Build runs the whole extraction pipeline over raw documentation text:
// normalize, harvest and filter candidates, classify, mine relations,
// assemble a deduplicated graph and lay it out. Deterministic for a given
// input, except for the generated_at timestamp.
func Build(raw string, opts ...BuildOption) *common.Graph {
	cfg := buildConfig{
		source:      "extraction",
		maxEntities: defaultMaxEntities,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	structured := stripStructure(raw)
	candidates := extractCandidates(structured)
	if len(candidates) > cfg.maxEntities {
		candidates = candidates[:cfg.maxEntities]
	}

	g := &common.Graph{
		Nodes: make([]common.Node, 0, len(candidates)),
		Edges: []common.Edge{},
		Meta: common.Meta{
			Source:       cfg.source,
			GeneratedAt:  cfg.now(),
			SourceLength: len(raw),
		},
	}

	taken := map[string]struct{}{}
	idByKey := map[string]string{}
	labels := make([]string, 0, len(candidates))
	for _, c := range candidates {
		id := UniqueID(Slugify(c.label), taken)
		idByKey[c.key] = id
		labels = append(labels, c.label)
		g.Nodes = append(g.Nodes, common.Node{
			ID:    id,
			Label: c.label,
			Type:  ClassifyLabel(c.label),
			Score: c.weight,
		})
	}

	normalized := reCodeSpan.ReplaceAllString(structured, " $1 ")
	mined, sentenceCount := mineRelations(normalized, labels)
	g.Meta.SentenceCount = sentenceCount

	edgeIDs := map[string]struct{}{}
	for _, rel := range mined {
		src, okS := idByKey[rel.sourceKey]
		tgt, okT := idByKey[rel.targetKey]
		if !okS || !okT || src == tgt {
			continue
		}
		g.Edges = append(g.Edges, common.Edge{
			ID:       UniqueID(src+"--"+tgt, edgeIDs),
			Source:   src,
			Target:   tgt,
			Relation: rel.relation,
			Weight:   rel.weight,
		})
	}

	// A graph with two or more nodes is never edgeless: chain them in
	// rank order with the generic relation when mining found nothing.
	if len(g.Edges) == 0 && len(g.Nodes) >= 2 {
		for i := 0; i+1 < len(g.Nodes); i++ {
			src, tgt := g.Nodes[i].ID, g.Nodes[i+1].ID
			g.Edges = append(g.Edges, common.Edge{
				ID:       UniqueID(src+"--"+tgt, edgeIDs),
				Source:   src,
				Target:   tgt,
				Relation: common.RelationRelated,
				Weight:   1,
			})
		}
	}

	Layout(g)
	return g
}
