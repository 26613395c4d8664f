package railmodel

// Route is a named service: a start station, a per-station "next track"
// mapping, and a dispatch phase offset. A route must be a simple chain —
// from StartStation, following NextTrack reaches every station in Stations
// exactly once and then terminates.
type Route struct {
	ID           string
	Name         string
	StartStation int
	NextTrack    map[int]int // station ID -> track ID
	Stations     []int       // derived: the chain in traversal order
	Offset       int
}

// BuildRoute validates and derives a Route's station chain by walking
// NextTrack from start. g is used to resolve each track's destination
// station. Rejects anything that isn't a simple chain (spec §3 invariant).
func BuildRoute(id, name string, g *Graph, start int, nextTrack map[int]int, offset int) (*Route, error) {
	if _, ok := g.Stations[start]; !ok {
		return nil, invalidf("route %s: start station %d not in graph", id, start)
	}

	visited := make(map[int]bool)
	stations := []int{}
	cur := start
	for {
		if visited[cur] {
			return nil, invalidf("route %s: revisits station %d, not a simple chain", id, cur)
		}
		visited[cur] = true
		stations = append(stations, cur)

		trackID, hasNext := nextTrack[cur]
		if !hasNext {
			break
		}
		track, ok := g.Tracks[trackID]
		if !ok {
			return nil, invalidf("route %s: next_track %d for station %d not in graph", id, trackID, cur)
		}
		if track.From != cur {
			return nil, invalidf("route %s: track %d does not originate at station %d", id, trackID, cur)
		}
		cur = track.To
	}

	return &Route{
		ID:           id,
		Name:         name,
		StartStation: start,
		NextTrack:    nextTrack,
		Stations:     stations,
		Offset:       offset,
	}, nil
}

// Terminus reports whether station is the last stop of this route.
func (r *Route) Terminus(station int) bool {
	_, hasNext := r.NextTrack[station]
	return !hasNext
}

// Serves reports whether this route's chain includes station.
func (r *Route) Serves(station int) bool {
	_, ok := r.NextTrack[station]
	if ok {
		return true
	}
	return len(r.Stations) > 0 && r.Stations[len(r.Stations)-1] == station
}
