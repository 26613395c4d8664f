// Package optimizer implements the coordinate-descent frequency optimizer
// of spec §4.7: one frequency bin+route increment at a time, validated by
// the solver+simulator, blacklisting regressions.
package optimizer

import (
	"context"
	"time"

	"github.com/transitlab/railsim/internal/cache"
	"github.com/transitlab/railsim/internal/costeval"
	"github.com/transitlab/railsim/internal/dispatchsolver"
	"github.com/transitlab/railsim/internal/planner"
	"github.com/transitlab/railsim/internal/railmodel"
	"github.com/transitlab/railsim/internal/searchmap"
	"github.com/transitlab/railsim/internal/simulator"
)

// defaultK is the number of alternative candidates the optimizer precomputes
// per (origin, destination) pair before hill-climbing (spec §4.4's planner
// default use inside the optimizer's evaluator calls).
const defaultK = 2

// evaluatorCacheTTL bounds how long a memoized per-trip evaluator cost
// survives, matching internal/httpapi's path-set cache TTL (spec §4.8).
const evaluatorCacheTTL = 10 * time.Minute

// evaluateCached is costeval.Evaluate, routed through internal/cache's
// evaluator-cost memoization (spec §4.8/SPEC_FULL §4.8): the hill-climb
// loop re-evaluates the same frequency table (plus one tentative increment)
// every iteration, so caching each trip's unit cost against a fingerprint of
// the frequency table actually being evaluated avoids recomputing segments
// that were already walked under an identical schedule. A cache miss or
// unreachable Redis falls straight back to costeval.EvaluateTrip — this is
// best-effort, never a correctness dependency.
func evaluateCached(trips []costeval.Trip, candidates costeval.Candidates, freq simulator.FrequencyTable, timelines []costeval.RouteTimeline, granularity int) float64 {
	ctx := context.Background()
	fingerprint := cache.FrequencyFingerprint(freq)

	total := 0.0
	for _, trip := range trips {
		key := cache.EvaluatorCostKey(trip.Start, trip.End, trip.DepartureTime, fingerprint)
		if cost, ok := cache.GetCost(ctx, key); ok {
			total += cost * float64(trip.Count)
			continue
		}
		cost, _ := costeval.EvaluateTrip(trip, candidates, freq, timelines, granularity)
		cache.SetCost(ctx, key, cost, evaluatorCacheTTL)
		total += cost * float64(trip.Count)
	}
	return total
}

type blacklistKey struct {
	epoch, route int
}

// Result is the optimizer's return value (spec §4.7: "(schedule, best_simulation_results)").
type Result struct {
	Frequencies simulator.FrequencyTable
	Results     *simulator.SimulationResults
}

// Run hill-climbs frequencies[epoch][route] starting from 1 everywhere,
// accepting an increment only when it strictly lowers the evaluator cost
// and the resulting schedule is solver-feasible (spec §4.7 steps 1-3).
// tickBudget bounds each candidate's ScheduleTrains validation call (spec
// §5's "a permitted extension"); zero means unbounded. Most callers pass 0
// or internal/config's SOLVER_TICK_BUDGET. strictInvariants is forwarded to
// every candidate Simulator (internal/config's STRICT_INVARIANTS, spec §7).
func Run(
	graph *railmodel.Graph,
	routes []*railmodel.Route,
	trips []costeval.Trip,
	iterations int,
	granularity int,
	tickBudget int,
	strictInvariants bool,
) Result {
	epochs := (iterations + granularity - 1) / granularity
	if epochs < 1 {
		epochs = 1
	}

	freq := make(simulator.FrequencyTable, epochs)
	for e := range freq {
		freq[e] = make([]int, len(routes))
		for r := range routes {
			freq[e][r] = 1
		}
	}

	blacklist := make(map[blacklistKey]bool)
	timelines := costeval.BuildTimelines(graph, routes)
	candidates := buildCandidates(graph, routes, trips)

	var learned []dispatchsolver.Clause
	var best *simulator.SimulationResults
	bestCost := evaluateCached(trips, candidates, freq, timelines, granularity)

	for {
		type candidate struct {
			epoch, route int
			cost         float64
		}
		var winner *candidate

		for e := 0; e < epochs; e++ {
			for r := range routes {
				key := blacklistKey{epoch: e, route: r}
				if blacklist[key] {
					continue
				}
				if freq[e][r] >= granularity {
					continue
				}
				freq[e][r]++
				cost := evaluateCached(trips, candidates, freq, timelines, granularity)
				freq[e][r]--

				if winner == nil || cost < winner.cost {
					winner = &candidate{epoch: e, route: r, cost: cost}
				}
			}
		}

		if winner == nil || winner.cost >= bestCost {
			break
		}

		freq[winner.epoch][winner.route]++

		sim, err := simulator.New(graph, routes)
		if err != nil {
			freq[winner.epoch][winner.route]--
			blacklist[blacklistKey{epoch: winner.epoch, route: winner.route}] = true
			continue
		}
		sim.WithStrictInvariants(strictInvariants)

		results, newLearned, ok := sim.ScheduleTrains(iterations, freq, learned, tickBudget)
		if !ok {
			freq[winner.epoch][winner.route]--
			blacklist[blacklistKey{epoch: winner.epoch, route: winner.route}] = true
			continue
		}

		learned = newLearned
		best = results
		bestCost = winner.cost
	}

	return Result{Frequencies: freq, Results: best}
}

// buildCandidates precomputes each distinct (start, end) trip pair's
// k-shortest path candidates once, up front, so the repeated evaluator
// calls inside the hill-climb loop never re-run Dijkstra (spec §4.5 step 1:
// "look up pre-computed k path candidates").
func buildCandidates(graph *railmodel.Graph, routes []*railmodel.Route, trips []costeval.Trip) costeval.Candidates {
	m := searchmap.Build(graph, routes)
	out := make(costeval.Candidates)
	seen := make(map[[2]int]bool)
	for _, trip := range trips {
		key := [2]int{trip.Start, trip.End}
		if seen[key] {
			continue
		}
		seen[key] = true
		out[key] = planner.KShortest(m, key[0], key[1], defaultK)
	}
	return out
}
