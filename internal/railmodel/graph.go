package railmodel

import "fmt"

// Graph is the physical network: stations, directed weighted tracks, and
// bidirectional walk connections (stored as two directed WalkEdges each).
// IDs are dense small integers, never cross-pointers — see DESIGN.md for why
// (aliased mutable state between stations/tracks/trains is resolved at the
// use site through these maps, per spec §9).
type Graph struct {
	Stations    map[int]*Station
	stationName map[string]int

	Tracks       map[int]*Track
	tracksByFrom map[int][]int

	WalkEdges       map[string]*WalkEdge
	walkEdgesByFrom map[int][]string

	nextStationID int
	nextTrackID   int
}

func NewGraph() *Graph {
	return &Graph{
		Stations:        make(map[int]*Station),
		stationName:     make(map[string]int),
		Tracks:          make(map[int]*Track),
		tracksByFrom:    make(map[int][]int),
		WalkEdges:       make(map[string]*WalkEdge),
		walkEdgesByFrom: make(map[int][]string),
	}
}

// AddStation inserts a station under an external name, returning its dense
// ID. Re-adding the same name is a no-op and returns the existing ID.
func (g *Graph) AddStation(name string) int {
	if id, ok := g.stationName[name]; ok {
		return id
	}
	id := g.nextStationID
	g.nextStationID++
	g.Stations[id] = NewStation(id, name)
	g.stationName[name] = id
	return id
}

// StationID looks up a station's dense ID by its external name.
func (g *Graph) StationID(name string) (int, bool) {
	id, ok := g.stationName[name]
	return id, ok
}

// AddTrack inserts a directed track of the given length between two
// (already-added) stations and returns its dense ID.
func (g *Graph) AddTrack(from, to, length int) int {
	id := g.nextTrackID
	g.nextTrackID++
	g.Tracks[id] = NewTrack(id, from, to, length)
	g.tracksByFrom[from] = append(g.tracksByFrom[from], id)
	return id
}

// TracksFrom returns the outgoing track IDs from a station.
func (g *Graph) TracksFrom(station int) []int {
	return g.tracksByFrom[station]
}

// AddWalkPair inserts the two directed WalkEdges a bidirectional walk
// connection expands into. The reverse edge's ID is id+"_rev", per spec §6.
func (g *Graph) AddWalkPair(id string, from, to, weight int) {
	fwd := &WalkEdge{ID: id, From: from, To: to, Weight: weight}
	rev := &WalkEdge{ID: id + "_rev", From: to, To: from, Weight: weight}
	g.WalkEdges[fwd.ID] = fwd
	g.WalkEdges[rev.ID] = rev
	g.walkEdgesByFrom[from] = append(g.walkEdgesByFrom[from], fwd.ID)
	g.walkEdgesByFrom[to] = append(g.walkEdgesByFrom[to], rev.ID)
}

// WalksFrom returns the outgoing walk edge IDs from a station.
func (g *Graph) WalksFrom(station int) []string {
	return g.walkEdgesByFrom[station]
}

// ValidationError reports a rejected graph or route payload (spec §7:
// "reject before any state is built").
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid input: %s", e.Reason) }

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
