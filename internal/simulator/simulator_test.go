package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitlab/railsim/internal/railmodel"
)

func straightLineGraph(t *testing.T, names []string, weight int) (*railmodel.Graph, []int) {
	t.Helper()
	g := railmodel.NewGraph()
	ids := make([]int, len(names))
	for i, n := range names {
		ids[i] = g.AddStation(n)
	}
	for i := 0; i < len(ids)-1; i++ {
		g.AddTrack(ids[i], ids[i+1], weight)
	}
	return g, ids
}

// spec §8 scenario 1: single-route loop, cadence 3, A->B->C tracks weight 4.
func TestRunSingleRouteCadenceThree(t *testing.T) {
	g, ids := straightLineGraph(t, []string{"A", "B", "C"}, 4)
	nextTrack := map[int]int{
		ids[0]: g.TracksFrom(ids[0])[0],
		ids[1]: g.TracksFrom(ids[1])[0],
	}
	route, err := railmodel.BuildRoute("R1", "Route 1", g, ids[0], nextTrack, 0)
	require.NoError(t, err)

	sim, err := New(g, []*railmodel.Route{route})
	require.NoError(t, err)
	// The scenario counts from a first dispatch at t=0, so run it without
	// warm-up ticks (warm-up dispatches would arrive at B at t=1.5 first).
	c := railmodel.DefaultConstants()
	c.WarmupTicks = 0
	sim.WithConstants(c)

	sim.Run(10, 3)

	bStats := g.Stations[ids[1]].ArrivalTimes[0]
	require.NotEmpty(t, bStats)
	assert.Equal(t, 4.5, bStats[0])

	cStats := g.Stations[ids[2]].ArrivalTimes[0]
	require.NotEmpty(t, cStats)
	assert.Equal(t, 9.0, cStats[0])
}

// spec §8 scenario 2: back-pressure at terminus, route [A,B] weight 1, freq 1.
func TestRunBackPressureAtTerminus(t *testing.T) {
	g, ids := straightLineGraph(t, []string{"A", "B"}, 1)
	nextTrack := map[int]int{ids[0]: g.TracksFrom(ids[0])[0]}
	route, err := railmodel.BuildRoute("R1", "Route 1", g, ids[0], nextTrack, 0)
	require.NoError(t, err)

	sim, err := New(g, []*railmodel.Route{route})
	require.NoError(t, err)

	sim.Run(6, 1)

	// B never held more than one train, and trains queued at A waiting for it.
	aStats := g.Stations[ids[0]].ArrivalTimes[0]
	assert.NotEmpty(t, aStats)
}

func TestDueForCadenceNegativeTickWraps(t *testing.T) {
	assert.True(t, dueForCadence(0, 0, 3))
	assert.True(t, dueForCadence(3, 0, 3))
	assert.False(t, dueForCadence(1, 0, 3))
	assert.True(t, dueForCadence(-3, 0, 3))
	assert.True(t, dueForCadence(2, 2, 4))
}

// spec §7: a detected invariant breach panics by default.
func TestInvariantBreachPanicsWhenStrict(t *testing.T) {
	g, ids := straightLineGraph(t, []string{"A", "B"}, 1)
	nextTrack := map[int]int{ids[0]: g.TracksFrom(ids[0])[0]}
	route, err := railmodel.BuildRoute("R1", "Route 1", g, ids[0], nextTrack, 0)
	require.NoError(t, err)

	sim, err := New(g, []*railmodel.Route{route})
	require.NoError(t, err)

	assert.Panics(t, func() {
		sim.invariantBreach("test breach")
	})
}

// spec §7: STRICT_INVARIANTS=false softens a breach to a logged warning
// instead of a panic.
func TestInvariantBreachLogsWhenNotStrict(t *testing.T) {
	g, ids := straightLineGraph(t, []string{"A", "B"}, 1)
	nextTrack := map[int]int{ids[0]: g.TracksFrom(ids[0])[0]}
	route, err := railmodel.BuildRoute("R1", "Route 1", g, ids[0], nextTrack, 0)
	require.NoError(t, err)

	sim, err := New(g, []*railmodel.Route{route})
	require.NoError(t, err)
	sim.WithStrictInvariants(false)

	assert.NotPanics(t, func() {
		sim.invariantBreach("test breach")
	})
}

// A tick budget smaller than the schedule's natural length is reported the
// same way as solver infeasibility (spec §5's "a permitted extension").
func TestScheduleTrainsExhaustsTickBudget(t *testing.T) {
	g, ids := straightLineGraph(t, []string{"A", "B", "C"}, 4)
	nextTrack := map[int]int{
		ids[0]: g.TracksFrom(ids[0])[0],
		ids[1]: g.TracksFrom(ids[1])[0],
	}
	route, err := railmodel.BuildRoute("R1", "Route 1", g, ids[0], nextTrack, 0)
	require.NoError(t, err)

	sim, err := New(g, []*railmodel.Route{route})
	require.NoError(t, err)

	freq := FrequencyTable{{1}}
	results, _, ok := sim.ScheduleTrains(10, freq, nil, 2)
	assert.False(t, ok)
	assert.Nil(t, results)
}

// Zero means unbounded: the same schedule succeeds with no tick budget.
func TestScheduleTrainsUnboundedTickBudgetSucceeds(t *testing.T) {
	g, ids := straightLineGraph(t, []string{"A", "B", "C"}, 4)
	nextTrack := map[int]int{
		ids[0]: g.TracksFrom(ids[0])[0],
		ids[1]: g.TracksFrom(ids[1])[0],
	}
	route, err := railmodel.BuildRoute("R1", "Route 1", g, ids[0], nextTrack, 0)
	require.NoError(t, err)

	sim, err := New(g, []*railmodel.Route{route})
	require.NoError(t, err)

	freq := FrequencyTable{{1}}
	results, learned, ok := sim.ScheduleTrains(10, freq, nil, 0)
	assert.True(t, ok)
	require.NotNil(t, results)
	assert.Empty(t, learned)
}
