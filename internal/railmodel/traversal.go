package railmodel

// TraversalStep is one entry in the per-tick evaluation order: either a
// Station or a Track, tagged the same way a Train's Section is.
type TraversalStep = Section

// BuildTraversalOrder computes the once-per-simulator evaluation order
// described in spec §4.1: a BFS frontier seeded at every terminal station
// (no route-used outgoing track), alternating station -> incoming used
// tracks -> their source station, so that when a station is emitted every
// used track leaving it has already been emitted. This is exactly Kahn's
// algorithm for a topological sort of stations over the "has a route-used
// track to" relation, with tracks interleaved into the output as they're
// discharged.
func BuildTraversalOrder(g *Graph, routes []*Route) []TraversalStep {
	usedTracks := make(map[int]bool)
	for _, r := range routes {
		for _, trackID := range r.NextTrack {
			usedTracks[trackID] = true
		}
	}

	outRemaining := make(map[int]int)
	incomingUsed := make(map[int][]int) // station -> used track IDs arriving at it
	for id, t := range g.Tracks {
		if !usedTracks[id] {
			continue
		}
		outRemaining[t.From]++
		incomingUsed[t.To] = append(incomingUsed[t.To], id)
	}

	var ready []int
	for id := range g.Stations {
		if outRemaining[id] == 0 {
			ready = append(ready, id)
		}
	}
	// Deterministic order: callers get identical traversal orders across
	// runs with the same graph (spec §5 determinism).
	sortInts(ready)

	var order []TraversalStep
	emittedStation := make(map[int]bool)
	emittedTrack := make(map[int]bool)

	for len(ready) > 0 {
		s := ready[0]
		ready = ready[1:]
		if emittedStation[s] {
			continue
		}
		emittedStation[s] = true
		order = append(order, StationSection(s))

		tracks := append([]int(nil), incomingUsed[s]...)
		sortInts(tracks)
		for _, trackID := range tracks {
			if emittedTrack[trackID] {
				continue
			}
			emittedTrack[trackID] = true
			order = append(order, TrackSection(trackID))

			src := g.Tracks[trackID].From
			outRemaining[src]--
			if outRemaining[src] == 0 && !emittedStation[src] {
				ready = append(ready, src)
			}
		}
	}

	return order
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
