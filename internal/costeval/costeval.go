// Package costeval implements the passenger-weighted expected travel cost
// evaluator of spec §4.5. It generalizes the teacher's routing.Strategy
// (internal/routing/strategy.go)'s EdgeCost/ShouldStop shape into a
// per-trip expected-wait accumulator over cached k-path candidates.
package costeval

import (
	"github.com/transitlab/railsim/internal/planner"
	"github.com/transitlab/railsim/internal/railmodel"
	"github.com/transitlab/railsim/internal/simulator"
)

// WalkMultiplier and WaitMultiplier are the later (governing) multipliers
// from spec §4.5/§9's open question — the canonical code's two revisions
// disagreed (1.0 vs 2.5/2.1); the later values govern.
const (
	WalkMultiplier = 2.5
	WaitMultiplier = 2.1
)

// Trip is one origin-destination demand record (spec §6, §4.7).
type Trip struct {
	Start, End    int
	Count         int
	DepartureTime float64
}

// RouteTimeline maps each station a route serves to the cumulative ride
// time from that route's start station to it — used to evaluate a
// segment's boarding frequency at the right point in the route's own
// cadence (spec §4.5: "travel_time_from_route_start_to_segment_start").
type RouteTimeline struct {
	OffsetAt map[int]float64
}

// BuildTimelines computes one RouteTimeline per route.
func BuildTimelines(graph *railmodel.Graph, routes []*railmodel.Route) []RouteTimeline {
	out := make([]RouteTimeline, len(routes))
	for i, route := range routes {
		offsets := map[int]float64{route.StartStation: 0}
		station := route.StartStation
		cum := 0.0
		for {
			trackID, ok := route.NextTrack[station]
			if !ok {
				break
			}
			track := graph.Tracks[trackID]
			cum += float64(track.Length)
			offsets[track.To] = cum
			station = track.To
		}
		out[i] = RouteTimeline{OffsetAt: offsets}
	}
	return out
}

// Candidates is the planner's precomputed k-path candidate set, keyed by
// (start station, end station).
type Candidates map[[2]int][]planner.Path

// Evaluate sums, over trips, count × the minimum feasible candidate cost
// (spec §4.5 step 3); a trip with no feasible candidate contributes zero
// (spec §7's "unserved demand" rule).
func Evaluate(trips []Trip, candidates Candidates, freq simulator.FrequencyTable, timelines []RouteTimeline, granularity int) float64 {
	total := 0.0
	for _, trip := range trips {
		best, ok := EvaluateTrip(trip, candidates, freq, timelines, granularity)
		if !ok {
			continue
		}
		total += best * float64(trip.Count)
	}
	return total
}

// EvaluateTrip computes a single trip's minimum feasible candidate cost
// (spec §4.5 steps 2-3), before multiplying by trip.Count — the unit callers
// that memoize per-trip (internal/optimizer's evaluator cache) key on.
func EvaluateTrip(trip Trip, candidates Candidates, freq simulator.FrequencyTable, timelines []RouteTimeline, granularity int) (float64, bool) {
	paths := candidates[[2]int{trip.Start, trip.End}]
	return bestCandidateCost(paths, trip.DepartureTime, freq, timelines, granularity)
}

func bestCandidateCost(paths []planner.Path, departure float64, freq simulator.FrequencyTable, timelines []RouteTimeline, granularity int) (float64, bool) {
	best := 0.0
	found := false
	for _, p := range paths {
		cost, ok := evaluateCandidate(p, departure, freq, timelines, granularity)
		if !ok {
			continue
		}
		if !found || cost < best {
			best = cost
			found = true
		}
	}
	return best, found
}

func evaluateCandidate(p planner.Path, departure float64, freq simulator.FrequencyTable, timelines []RouteTimeline, granularity int) (float64, bool) {
	cost := 0.0
	currTime := departure

	for _, seg := range p {
		cost += seg.Cost // track_time

		if len(seg.Routes) == 0 {
			return 0, false
		}

		offset := minRouteOffset(seg, timelines)
		boardTime := currTime - offset
		epoch := int(boardTime) / granularity
		if epoch < 0 || epoch >= len(freq) {
			// Projected boarding epoch falls outside the horizon: truncate
			// (omit later segments), per spec §4.5 step 2.
			break
		}

		totalFreq := 0
		for r := range seg.Routes {
			totalFreq += freq[epoch][r]
		}
		if totalFreq == 0 {
			return 0, false
		}

		wait := float64(granularity) / float64(totalFreq) * WaitMultiplier
		cost += wait
		currTime += seg.Cost + wait

		if seg.EdgeToNext != nil {
			cost += float64(seg.EdgeToNext.Weight) * WalkMultiplier
			currTime += float64(seg.EdgeToNext.Weight)
		}
	}

	return cost, true
}

// minRouteOffset picks the smallest per-route travel-time-from-route-start
// among the segment's serving routes, so the epoch boundary used for the
// frequency lookup never undershoots any one route's own cadence — a
// pragmatic resolution where the spec's formula is ambiguous for segments
// whose Routes set has more than one member (see DESIGN.md).
func minRouteOffset(seg planner.Segment, timelines []RouteTimeline) float64 {
	best := 0.0
	found := false
	for r := range seg.Routes {
		if r < 0 || r >= len(timelines) {
			continue
		}
		off, ok := timelines[r].OffsetAt[seg.StartStation]
		if !ok {
			continue
		}
		if !found || off < best {
			best = off
			found = true
		}
	}
	return best
}
