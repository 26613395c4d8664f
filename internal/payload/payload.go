// Package payload decodes the wire graph/route JSON documents (spec §6) into
// a railmodel.Graph and []*railmodel.Route, translating the wire format's
// string node/edge IDs into railmodel's dense integer IDs. It rejects
// malformed input before any simulator state is built, per spec §7.
package payload

import (
	"fmt"

	"github.com/transitlab/railsim/internal/railmodel"
)

// EdgeKind mirrors the wire format's edge "type" field.
type EdgeKind string

const (
	EdgeTrack EdgeKind = "track"
	EdgeWalk  EdgeKind = "walk"
)

// GraphPayload is the wire format of spec §6's "Graph payload".
type GraphPayload struct {
	Nodes []string      `json:"nodes"`
	Edges []EdgePayload `json:"edges"`
}

// EdgePayload is one edge of the wire graph.
type EdgePayload struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Weight int      `json:"weight"`
	Type   EdgeKind `json:"type"`
}

// RoutePayload is the wire format of spec §6's "Route payload".
type RoutePayload struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Nodes   []string `json:"nodes"`
	Edges   []string `json:"edges"`
	Offset  int      `json:"offset"`
}

// Graph decodes gp into a railmodel.Graph. trackIDs maps each wire track
// edge ID to its dense railmodel track ID, needed by Routes to resolve
// route payloads' edge-ID chains.
func Graph(gp GraphPayload) (g *railmodel.Graph, trackIDs map[string]int, err error) {
	g = railmodel.NewGraph()
	trackIDs = make(map[string]int)

	seenNode := make(map[string]bool)
	for _, n := range gp.Nodes {
		if seenNode[n] {
			return nil, nil, &railmodel.ValidationError{Reason: fmt.Sprintf("duplicate node id %q", n)}
		}
		seenNode[n] = true
		g.AddStation(n)
	}

	seenEdge := make(map[string]bool)
	for _, e := range gp.Edges {
		if seenEdge[e.ID] {
			return nil, nil, &railmodel.ValidationError{Reason: fmt.Sprintf("duplicate edge id %q", e.ID)}
		}
		seenEdge[e.ID] = true

		from, ok := g.StationID(e.Source)
		if !ok {
			return nil, nil, &railmodel.ValidationError{Reason: fmt.Sprintf("edge %q: dangling source %q", e.ID, e.Source)}
		}
		to, ok := g.StationID(e.Target)
		if !ok {
			return nil, nil, &railmodel.ValidationError{Reason: fmt.Sprintf("edge %q: dangling target %q", e.ID, e.Target)}
		}

		switch e.Type {
		case EdgeTrack:
			trackIDs[e.ID] = g.AddTrack(from, to, e.Weight)
		case EdgeWalk:
			g.AddWalkPair(e.ID, from, to, e.Weight)
		default:
			return nil, nil, &railmodel.ValidationError{Reason: fmt.Sprintf("edge %q: unknown edge kind %q", e.ID, e.Type)}
		}
	}

	return g, trackIDs, nil
}

// Routes decodes route payloads into railmodel.Routes, resolving each
// payload's node/edge ID chain against g and trackIDs (as returned by
// Graph). A route payload's edge list must walk its node list pairwise and
// reference only track edges — spec §7's "a route references a node not in
// the graph, or its station_to chain fails to cover its nodes set" rejection.
func Routes(g *railmodel.Graph, trackIDs map[string]int, rps []RoutePayload) ([]*railmodel.Route, error) {
	routes := make([]*railmodel.Route, 0, len(rps))
	for _, rp := range rps {
		if len(rp.Nodes) == 0 {
			return nil, &railmodel.ValidationError{Reason: fmt.Sprintf("route %q: empty node chain", rp.ID)}
		}
		start, ok := g.StationID(rp.Nodes[0])
		if !ok {
			return nil, &railmodel.ValidationError{Reason: fmt.Sprintf("route %q: node %q not in graph", rp.ID, rp.Nodes[0])}
		}
		if len(rp.Edges) != len(rp.Nodes)-1 {
			return nil, &railmodel.ValidationError{Reason: fmt.Sprintf("route %q: edge chain does not cover node chain", rp.ID)}
		}

		nextTrack := make(map[int]int, len(rp.Edges))
		cur := start
		for i, edgeID := range rp.Edges {
			trackID, ok := trackIDs[edgeID]
			if !ok {
				return nil, &railmodel.ValidationError{Reason: fmt.Sprintf("route %q: edge %q is not a track edge in the graph", rp.ID, edgeID)}
			}
			nextStationName := rp.Nodes[i+1]
			nextStation, ok := g.StationID(nextStationName)
			if !ok {
				return nil, &railmodel.ValidationError{Reason: fmt.Sprintf("route %q: node %q not in graph", rp.ID, nextStationName)}
			}
			track := g.Tracks[trackID]
			if track.From != cur || track.To != nextStation {
				return nil, &railmodel.ValidationError{Reason: fmt.Sprintf("route %q: edge %q does not connect %q to %q", rp.ID, edgeID, rp.Nodes[i], nextStationName)}
			}
			nextTrack[cur] = trackID
			cur = nextStation
		}

		route, err := railmodel.BuildRoute(rp.ID, rp.Name, g, start, nextTrack, rp.Offset)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}
