package searchmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitlab/railsim/internal/railmodel"
)

// spec §8 scenario 4: S->X->T (R1) and S->Y->T (R2), weight 3 each, X<->Y walk weight 1.
func TestBuildDiamondDuplicatesStationsPerRoute(t *testing.T) {
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

	m := Build(g, []*railmodel.Route{r1, r2})

	assert.Len(t, m.NodesAt(s), 2)
	assert.Len(t, m.NodesAt(term), 2)
	assert.Len(t, m.NodesAt(x), 1)

	var rideCount, transferCount, walkCount int
	for _, e := range m.Edges {
		switch e.Kind {
		case Ride:
			rideCount++
		case Transfer:
			transferCount++
		case PhysicalWalk:
			walkCount++
		}
	}
	assert.Equal(t, 4, rideCount) // S->X, X->T, S->Y, Y->T, each once per route
	assert.Equal(t, 4, transferCount) // S has 2 copies (2 ordered pairs), T has 2 copies (2 ordered pairs)
	assert.Equal(t, 2, walkCount)     // X<->Y expanded across the one route pairing, one per direction
}
