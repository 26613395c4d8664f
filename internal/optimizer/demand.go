package optimizer

import (
	"math/rand"
	"sort"

	"github.com/transitlab/railsim/internal/costeval"
	"github.com/transitlab/railsim/internal/railmodel"
)

// SynthesizeDemand builds the demand set spec.md §6's run_optimize entry
// point describes: 30 × SCHEDULE_PERIOD random reachable origin-destination
// pairs, each count=1, RNG seed 5050, departures uniform in
// [2 × GRANULARITY, SCHEDULE_PERIOD).
func SynthesizeDemand(graph *railmodel.Graph, routes []*railmodel.Route, c railmodel.Constants) []costeval.Trip {
	reachable := reachablePairs(graph, routes)
	if len(reachable) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(int64(c.DefaultRNGSeed)))
	n := 30 * c.SchedulePeriod
	lo := 2 * c.ScheduleGranularity

	trips := make([]costeval.Trip, 0, n)
	for i := 0; i < n; i++ {
		pair := reachable[rng.Intn(len(reachable))]
		departure := float64(lo + rng.Intn(c.SchedulePeriod-lo))
		trips = append(trips, costeval.Trip{Start: pair[0], End: pair[1], Count: 1, DepartureTime: departure})
	}
	return trips
}

// reachablePairs enumerates ordered station pairs reachable from each other
// by walking some route's chain of stations (a conservative, cheap notion
// of "reachable" sufficient for demand synthesis — the planner itself is
// the authority on actual path existence at evaluation time).
func reachablePairs(graph *railmodel.Graph, routes []*railmodel.Route) [][2]int {
	var pairs [][2]int
	seen := make(map[[2]int]bool)
	for _, route := range routes {
		for i := range route.Stations {
			for j := i + 1; j < len(route.Stations); j++ {
				key := [2]int{route.Stations[i], route.Stations[j]}
				if !seen[key] {
					seen[key] = true
					pairs = append(pairs, key)
				}
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}
