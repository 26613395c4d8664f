// Package searchmap expands the physical railmodel.Graph into the planner's
// search graph: each physical station is duplicated once per route that
// serves it, per spec §4.3. It is grounded on the teacher's
// internal/graph.Builder, which builds the same (stop_id, route_id) node
// shape connected by RIDE/WALK/TRANSFER edges — generalized here to a
// purely in-memory construction with no database involved.
package searchmap

import "github.com/transitlab/railsim/internal/railmodel"

// transferWeight is the inter-route transfer penalty between two node
// copies of the same physical station (spec §4.3).
const transferWeight = 1

// disabledCost is the large sentinel cost a Disabled edge reports, used by
// the planner to exclude it during k-best enumeration without mutating
// graph topology (spec §4.3).
const disabledCost = 1000

// EdgeKind tags a search-map edge as a route ride or an inter-route/walk
// hop; it mirrors railmodel.EdgeKind but the search map also needs the
// distinct "Transfer" shape (same physical station, different route).
type EdgeKind int

const (
	Ride EdgeKind = iota
	Transfer
	PhysicalWalk
)

// Node is one (physical station, serving route) copy.
type Node struct {
	ID       int64
	Station  int
	RouteIdx int
}

// Edge is a directed connection between two search-map nodes.
type Edge struct {
	ID       int64
	From, To int64
	Kind     EdgeKind
	Weight   int
	Disabled bool
}

// Cost is the edge's effective weight for Dijkstra: Weight when enabled, the
// disabledCost sentinel otherwise (spec §4.3).
func (e *Edge) Cost() float64 {
	if e.Disabled {
		return disabledCost
	}
	return float64(e.Weight)
}

// Map is the built planner search graph, plus the two mappings the builder
// retains (spec §4.3): which new nodes/edges each physical station/edge
// expanded into.
type Map struct {
	Nodes map[int64]*Node
	Edges map[int64]*Edge

	byStation map[int][]int64 // physical station -> its node copies
	OldNodeToNew map[int][]int64
	OldEdgeToNew map[string][]int64

	outgoing map[int64][]int64 // node -> outgoing edge IDs
	incoming map[int64][]int64 // node -> incoming edge IDs

	nextNodeID int64
	nextEdgeID int64
}

// NodesAt returns the node copies serving a physical station.
func (m *Map) NodesAt(station int) []int64 {
	return m.byStation[station]
}

// Outgoing returns the outgoing edge IDs from a node.
func (m *Map) Outgoing(node int64) []int64 {
	return m.outgoing[node]
}

// Incoming returns the incoming edge IDs into a node.
func (m *Map) Incoming(node int64) []int64 {
	return m.incoming[node]
}

// RoutesServing returns the distinct route indices with a node copy at the
// given physical station.
func (m *Map) RoutesServing(station int) map[int]bool {
	out := make(map[int]bool)
	for _, n := range m.byStation[station] {
		out[m.Nodes[n].RouteIdx] = true
	}
	return out
}

func (m *Map) newNode(station, routeIdx int) *Node {
	id := m.nextNodeID
	m.nextNodeID++
	n := &Node{ID: id, Station: station, RouteIdx: routeIdx}
	m.Nodes[id] = n
	m.byStation[station] = append(m.byStation[station], id)
	m.OldNodeToNew[station] = append(m.OldNodeToNew[station], id)
	return n
}

func (m *Map) addEdge(from, to int64, kind EdgeKind, weight int, oldEdgeKey string) *Edge {
	id := m.nextEdgeID
	m.nextEdgeID++
	e := &Edge{ID: id, From: from, To: to, Kind: kind, Weight: weight}
	m.Edges[id] = e
	m.outgoing[from] = append(m.outgoing[from], id)
	m.incoming[to] = append(m.incoming[to], id)
	if oldEdgeKey != "" {
		m.OldEdgeToNew[oldEdgeKey] = append(m.OldEdgeToNew[oldEdgeKey], id)
	}
	return e
}

// Build expands graph and routes into a Map (spec §4.3):
//   - one node per (station, route) pair the route serves
//   - RIDE edges between a route's consecutive node copies, weight = track length
//   - TRANSFER (weight 1) walk edges pairwise between every pair of node
//     copies of the same physical station
//   - physical Walk edges expanded into a complete bipartite set of walk
//     edges between the two endpoints' node copies, one per route pairing
func Build(graph *railmodel.Graph, routes []*railmodel.Route) *Map {
	m := &Map{
		Nodes:        make(map[int64]*Node),
		Edges:        make(map[int64]*Edge),
		byStation:    make(map[int][]int64),
		OldNodeToNew: make(map[int][]int64),
		OldEdgeToNew: make(map[string][]int64),
		outgoing:     make(map[int64][]int64),
		incoming:     make(map[int64][]int64),
	}

	nodeOf := make(map[[2]int]int64) // (station, routeIdx) -> node id
	for routeIdx, route := range routes {
		for _, station := range route.Stations {
			n := m.newNode(station, routeIdx)
			nodeOf[[2]int{station, routeIdx}] = n.ID
		}
	}

	for routeIdx, route := range routes {
		for from, trackID := range route.NextTrack {
			track := graph.Tracks[trackID]
			fromNode, ok1 := nodeOf[[2]int{from, routeIdx}]
			toNode, ok2 := nodeOf[[2]int{track.To, routeIdx}]
			if !ok1 || !ok2 {
				continue
			}
			m.addEdge(fromNode, toNode, Ride, track.Length, "")
		}
	}

	for station, copies := range m.byStation {
		for i, a := range copies {
			for j, b := range copies {
				if i == j {
					continue
				}
				_ = station
				m.addEdge(a, b, Transfer, transferWeight, "")
			}
		}
	}

	for id, walk := range graph.WalkEdges {
		for _, fromCopy := range m.byStation[walk.From] {
			for _, toCopy := range m.byStation[walk.To] {
				m.addEdge(fromCopy, toCopy, PhysicalWalk, walk.Weight, id)
			}
		}
	}

	return m
}
