package costeval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitlab/railsim/internal/planner"
	"github.com/transitlab/railsim/internal/railmodel"
	"github.com/transitlab/railsim/internal/searchmap"
	"github.com/transitlab/railsim/internal/simulator"
)

func buildLinearRoute(t *testing.T) (*railmodel.Graph, *railmodel.Route) {
	t.Helper()
	g := railmodel.NewGraph()
	a := g.AddStation("A")
	b := g.AddStation("B")
	c := g.AddStation("C")
	ab := g.AddTrack(a, b, 4)
	bc := g.AddTrack(b, c, 4)
	route, err := railmodel.BuildRoute("R1", "Route 1", g, a, map[int]int{a: ab, b: bc}, 0)
	require.NoError(t, err)
	return g, route
}

func TestEvaluateSkipsInfeasibleZeroFrequencyEpoch(t *testing.T) {
	g, route := buildLinearRoute(t)
	routes := []*railmodel.Route{route}
	m := searchmap.Build(g, routes)
	timelines := BuildTimelines(g, routes)

	paths := planner.KShortest(m, route.StartStation, route.Stations[len(route.Stations)-1], 1)
	require.NotEmpty(t, paths)

	candidates := Candidates{{route.StartStation, route.Stations[2]}: paths}
	freq := simulator.FrequencyTable{{0}} // one epoch, route R1 never dispatched

	trips := []Trip{{Start: route.StartStation, End: route.Stations[2], Count: 5, DepartureTime: 0}}
	total := Evaluate(trips, candidates, freq, timelines, 12)
	assert.Equal(t, 0.0, total, "zero frequency makes the trip unserved, contributing zero cost")
}

func TestEvaluateWeightsByTripCount(t *testing.T) {
	g, route := buildLinearRoute(t)
	routes := []*railmodel.Route{route}
	m := searchmap.Build(g, routes)
	timelines := BuildTimelines(g, routes)

	end := route.Stations[2]
	paths := planner.KShortest(m, route.StartStation, end, 1)
	require.NotEmpty(t, paths)

	candidates := Candidates{{route.StartStation, end}: paths}
	freq := simulator.FrequencyTable{{4}}

	single := Evaluate([]Trip{{Start: route.StartStation, End: end, Count: 1, DepartureTime: 0}}, candidates, freq, timelines, 12)
	quintuple := Evaluate([]Trip{{Start: route.StartStation, End: end, Count: 5, DepartureTime: 0}}, candidates, freq, timelines, 12)
	assert.InDelta(t, single*5, quintuple, 1e-9)
}
