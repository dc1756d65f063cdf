package graph

import (
	"math"
	"sort"

	"github.com/repolens/backend/pkg/common"
)

// Ring layout constants. Higher-degree nodes are pushed slightly outward
// on purpose: hubs crowding the visual center is harder to read than hubs
// on the rim.
const (
	ringCapacity     = 10
	ringBaseRadius   = 160.0
	ringRadiusStep   = 70.0
	degreeRadiusPush = 0.35
	ringAngleOffset  = 0.35
)

// Layout assigns 2-D coordinates with a degree-ordered concentric ring
// placement. Nodes are sorted by descending degree (sum of incident edge
// weights), filled into rings of fixed capacity, and spaced evenly within
// each ring with a small per-ring rotation so rings do not align
// radially. No force simulation; deterministic for a given graph.
func Layout(g *common.Graph) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}

	degrees := make(map[string]int, n)
	for _, node := range g.Nodes {
		degrees[node.ID] = 0
	}
	for _, e := range g.Edges {
		degrees[e.Source] += e.Weight
		degrees[e.Target] += e.Weight
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		da, db := degrees[g.Nodes[order[a]].ID], degrees[g.Nodes[order[b]].ID]
		if da != db {
			return da > db
		}
		return g.Nodes[order[a]].ID < g.Nodes[order[b]].ID
	})

	for pos, idx := range order {
		ring := pos / ringCapacity
		slot := pos % ringCapacity

		slots := ringCapacity
		if remaining := n - ring*ringCapacity; remaining < ringCapacity {
			slots = remaining
		}

		degree := degrees[g.Nodes[idx].ID]
		radius := ringBaseRadius + float64(ring)*ringRadiusStep + float64(degree)*degreeRadiusPush
		angle := 2*math.Pi*float64(slot)/float64(slots) + float64(ring)*ringAngleOffset

		g.Nodes[idx].X = math.Round(radius*math.Cos(angle)*100) / 100
		g.Nodes[idx].Y = math.Round(radius*math.Sin(angle)*100) / 100
	}
}

// RingPosition computes where the next manually added node should land:
// the coordinates the ring layout would give slot index on an otherwise
// degree-less canvas. Keeps add-node placement consistent with extraction
// layout.
func RingPosition(index int) (float64, float64) {
	if index < 0 {
		index = 0
	}
	ring := index / ringCapacity
	slot := index % ringCapacity
	radius := ringBaseRadius + float64(ring)*ringRadiusStep
	angle := 2*math.Pi*float64(slot)/float64(ringCapacity) + float64(ring)*ringAngleOffset
	return math.Round(radius*math.Cos(angle)*100) / 100, math.Round(radius*math.Sin(angle)*100) / 100
}
