// Package planner implements the k-shortest-path planner of spec §4.4: a
// virtual-source Dijkstra search over internal/searchmap's expanded graph,
// re-run with edges disabled to surface alternative candidates. It
// generalizes the teacher's container/heap-based internal/routing/astar.go
// to the search-map's virtual-source/edge-disabling scheme, built on
// gonum.org/v1/gonum/graph/simple + graph/path rather than a hand-rolled
// priority queue.
package planner

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/transitlab/railsim/internal/searchmap"
)

// virtualSourceID is a node ID guaranteed not to collide with any
// searchmap.Map node (Map IDs start at 0 and increase monotonically).
const virtualSourceID int64 = -1

// Segment is a maximal run of Ride edges within one route (spec §4.4).
type Segment struct {
	Routes                   map[int]bool
	Cost                     float64
	StartNode, EndNode       int64
	StartStation, EndStation int // physical stations StartNode/EndNode are copies of
	EdgeToNext               *searchmap.Edge // the walk/transfer edge leaving this segment, nil if final
}

// Path is an ordered list of segments from source to target.
type Path []Segment

func buildGonumGraph(m *searchmap.Map, extraEdges []simple.WeightedEdge) *simple.WeightedDirectedGraph {
	g := simple.NewWeightedDirectedGraph(0, 0)
	for id := range m.Nodes {
		g.AddNode(simple.Node(id))
	}
	g.AddNode(simple.Node(virtualSourceID))
	for _, e := range m.Edges {
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e.From), T: simple.Node(e.To), W: e.Cost()})
	}
	for _, e := range extraEdges {
		g.SetWeightedEdge(e)
	}
	return g
}

// KShortest computes up to k paths from the physical source station to the
// physical target station (spec §4.4). Fewer than k paths are returned if
// Dijkstra exhausts before finding that many distinct alternatives.
func KShortest(m *searchmap.Map, source, target int, k int) []Path {
	if k < 1 {
		k = 1
	}

	sourceCopies := m.NodesAt(source)
	targetCopies := m.NodesAt(target)
	if len(sourceCopies) == 0 || len(targetCopies) == 0 {
		return nil
	}

	var virtualEdges []simple.WeightedEdge
	for _, n := range sourceCopies {
		virtualEdges = append(virtualEdges, simple.WeightedEdge{F: simple.Node(virtualSourceID), T: simple.Node(n), W: 0})
	}

	var results []Path
	first := run(m, virtualEdges, targetCopies)
	if first == nil {
		return nil
	}
	results = append(results, first)

	for len(results) < k {
		prev := results[len(results)-1]
		disabled := disableFor(m, prev, targetCopies)
		alt := run(m, virtualEdges, targetCopies)
		restore(m, disabled)
		if alt == nil {
			break
		}
		if samePath(alt, results[len(results)-1]) {
			break
		}
		results = append(results, alt)
	}

	return results
}

func run(m *searchmap.Map, virtualEdges []simple.WeightedEdge, targetCopies []int64) Path {
	g := buildGonumGraph(m, virtualEdges)
	shortest := path.DijkstraFrom(simple.Node(virtualSourceID), g)

	bestWeight := -1.0
	var bestTarget int64 = -1
	candidates := append([]int64(nil), targetCopies...)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	for _, t := range candidates {
		nodes, weight := shortest.To(t)
		if len(nodes) == 0 {
			continue
		}
		if bestTarget == -1 || weight < bestWeight {
			bestWeight = weight
			bestTarget = t
		}
	}
	if bestTarget == -1 {
		return nil
	}

	nodes, _ := shortest.To(bestTarget)
	return toSegments(m, nodes)
}

func toSegments(m *searchmap.Map, nodes []graph.Node) Path {
	// nodes[0] is the virtual source; real travel starts at nodes[1].
	if len(nodes) < 2 {
		return nil
	}
	ids := make([]int64, 0, len(nodes)-1)
	for _, n := range nodes[1:] {
		ids = append(ids, n.ID())
	}

	var segs Path
	segStart := ids[0]
	segCost := 0.0
	for i := 0; i < len(ids)-1; i++ {
		e := edgeBetween(m, ids[i], ids[i+1])
		if e == nil {
			continue
		}
		if e.Kind == searchmap.Ride {
			segCost += float64(e.Weight)
			continue
		}
		segs = append(segs, Segment{
			Routes:       routesOf(m, segStart, ids[i]),
			Cost:         segCost,
			StartNode:    segStart,
			EndNode:      ids[i],
			StartStation: m.Nodes[segStart].Station,
			EndStation:   m.Nodes[ids[i]].Station,
			EdgeToNext:   e,
		})
		segStart = ids[i+1]
		segCost = 0
	}
	last := ids[len(ids)-1]
	segs = append(segs, Segment{
		Routes:       routesOf(m, segStart, last),
		Cost:         segCost,
		StartNode:    segStart,
		EndNode:      last,
		StartStation: m.Nodes[segStart].Station,
		EndStation:   m.Nodes[last].Station,
	})
	return segs
}

func routesOf(m *searchmap.Map, start, end int64) map[int]bool {
	startRoutes := m.RoutesServing(m.Nodes[start].Station)
	endRoutes := m.RoutesServing(m.Nodes[end].Station)
	out := make(map[int]bool)
	for r := range startRoutes {
		if endRoutes[r] {
			out[r] = true
		}
	}
	return out
}

func edgeBetween(m *searchmap.Map, from, to int64) *searchmap.Edge {
	for _, id := range m.Outgoing(from) {
		if e := m.Edges[id]; e.To == to {
			return e
		}
	}
	return nil
}

// disableFor implements spec §4.4 step 4: for each non-final segment,
// disable every walk edge leaving its end node; for the final segment,
// disable every incoming edge to the end node among the segment's routes.
func disableFor(m *searchmap.Map, p Path, targetCopies []int64) []*searchmap.Edge {
	var touched []*searchmap.Edge
	for i, seg := range p {
		if i < len(p)-1 {
			for _, id := range m.Outgoing(seg.EndNode) {
				e := m.Edges[id]
				if e.Kind != searchmap.Ride {
					e.Disabled = true
					touched = append(touched, e)
				}
			}
			continue
		}
		for _, id := range m.Incoming(seg.EndNode) {
			e := m.Edges[id]
			if seg.Routes[m.Nodes[e.From].RouteIdx] {
				e.Disabled = true
				touched = append(touched, e)
			}
		}
	}
	return touched
}

func restore(m *searchmap.Map, edges []*searchmap.Edge) {
	for _, e := range edges {
		e.Disabled = false
	}
}

func samePath(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].StartNode != b[i].StartNode || a[i].EndNode != b[i].EndNode {
			return false
		}
	}
	return true
}
