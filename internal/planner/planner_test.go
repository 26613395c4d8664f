package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitlab/railsim/internal/railmodel"
	"github.com/transitlab/railsim/internal/searchmap"
)

// spec §8 scenario 4: diamond S->X->T (R1) / S->Y->T (R2), weight 3 each,
// X<->Y walk weight 1. First path R1-only cost 6, second R2-only cost 6.
func TestKShortestDiamond(t *testing.T) {
	g := railmodel.NewGraph()
	s := g.AddStation("S")
	x := g.AddStation("X")
	y := g.AddStation("Y")
	term := g.AddStation("T")

	sx := g.AddTrack(s, x, 3)
	xt := g.AddTrack(x, term, 3)
	sy := g.AddTrack(s, y, 3)
	yt := g.AddTrack(y, term, 3)
	g.AddWalkPair("xy", x, y, 1)

	r1, err := railmodel.BuildRoute("R1", "R1", g, s, map[int]int{s: sx, x: xt}, 0)
	require.NoError(t, err)
	r2, err := railmodel.BuildRoute("R2", "R2", g, s, map[int]int{s: sy, y: yt}, 0)
	require.NoError(t, err)

	m := searchmap.Build(g, []*railmodel.Route{r1, r2})

	paths := KShortest(m, s, term, 2)
	require.Len(t, paths, 2)

	for _, p := range paths {
		total := 0.0
		for _, seg := range p {
			total += seg.Cost
		}
		assert.Equal(t, 6.0, total)
	}
}

func TestKShortestUnreachableReturnsNil(t *testing.T) {
	g := railmodel.NewGraph()
	a := g.AddStation("A")
	b := g.AddStation("B")
	_ = g.AddStation("Unreachable")
	g.AddTrack(a, b, 1)

	r1, err := railmodel.BuildRoute("R1", "R1", g, a, map[int]int{a: g.TracksFrom(a)[0]}, 0)
	require.NoError(t, err)

	m := searchmap.Build(g, []*railmodel.Route{r1})
	paths := KShortest(m, a, g.AddStation("Unreachable"), 1)
	assert.Nil(t, paths)
}
