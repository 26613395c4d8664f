package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitlab/railsim/internal/costeval"
	"github.com/transitlab/railsim/internal/railmodel"
)

// spec §8 scenario 5: one route [A,B,C], one epoch worth of frequencies,
// trip (A->C, count=10, t=0). The optimizer should push that route's
// frequency upward while it keeps lowering cost.
func TestRunPushesFrequencyUpwardForSingleRoute(t *testing.T) {
	g := railmodel.NewGraph()
	a := g.AddStation("A")
	b := g.AddStation("B")
	c := g.AddStation("C")
	ab := g.AddTrack(a, b, 4)
	bc := g.AddTrack(b, c, 4)
	route, err := railmodel.BuildRoute("R1", "Route 1", g, a, map[int]int{a: ab, b: bc}, 0)
	require.NoError(t, err)

	trips := []costeval.Trip{{Start: a, End: c, Count: 10, DepartureTime: 0}}

	result := Run(g, []*railmodel.Route{route}, trips, 24, 12, 0, true)

	require.NotNil(t, result.Frequencies)
	assert.Greater(t, result.Frequencies[0][0], 1)
}

func TestSynthesizeDemandIsDeterministic(t *testing.T) {
	g := railmodel.NewGraph()
	a := g.AddStation("A")
	b := g.AddStation("B")
	g.AddTrack(a, b, 2)
	route, err := railmodel.BuildRoute("R1", "Route 1", g, a, map[int]int{a: g.TracksFrom(a)[0]}, 0)
	require.NoError(t, err)

	c := railmodel.DefaultConstants()
	first := SynthesizeDemand(g, []*railmodel.Route{route}, c)
	second := SynthesizeDemand(g, []*railmodel.Route{route}, c)
	assert.Equal(t, first, second)
	assert.Len(t, first, 30*c.SchedulePeriod)
}
