package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphRejectsUnknownEdgeKind(t *testing.T) {
	gp := GraphPayload{
		Nodes: []string{"A", "B"},
		Edges: []EdgePayload{{ID: "e1", Source: "A", Target: "B", Weight: 4, Type: "teleport"}},
	}
	_, _, err := Graph(gp)
	require.Error(t, err)
}

func TestGraphRejectsDanglingSource(t *testing.T) {
	gp := GraphPayload{
		Nodes: []string{"A"},
		Edges: []EdgePayload{{ID: "e1", Source: "ghost", Target: "A", Weight: 4, Type: EdgeTrack}},
	}
	_, _, err := Graph(gp)
	require.Error(t, err)
}

func TestGraphExpandsWalkEdgeWithRevSuffix(t *testing.T) {
	gp := GraphPayload{
		Nodes: []string{"A", "B"},
		Edges: []EdgePayload{{ID: "w1", Source: "A", Target: "B", Weight: 2, Type: EdgeWalk}},
	}
	g, _, err := Graph(gp)
	require.NoError(t, err)
	assert.Contains(t, g.WalkEdges, "w1")
	assert.Contains(t, g.WalkEdges, "w1_rev")
	assert.Equal(t, g.WalkEdges["w1_rev"].From, g.WalkEdges["w1"].To)
}

func TestRoutesBuildsNextTrackChain(t *testing.T) {
	gp := GraphPayload{
		Nodes: []string{"A", "B", "C"},
		Edges: []EdgePayload{
			{ID: "ab", Source: "A", Target: "B", Weight: 4, Type: EdgeTrack},
			{ID: "bc", Source: "B", Target: "C", Weight: 4, Type: EdgeTrack},
		},
	}
	g, trackIDs, err := Graph(gp)
	require.NoError(t, err)

	rp := RoutePayload{ID: "R1", Name: "Line 1", Nodes: []string{"A", "B", "C"}, Edges: []string{"ab", "bc"}}
	routes, err := Routes(g, trackIDs, []RoutePayload{rp})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Len(t, routes[0].Stations, 3)
}

func TestRoutesRejectsMismatchedChain(t *testing.T) {
	gp := GraphPayload{
		Nodes: []string{"A", "B", "C"},
		Edges: []EdgePayload{
			{ID: "ab", Source: "A", Target: "B", Weight: 4, Type: EdgeTrack},
			{ID: "bc", Source: "B", Target: "C", Weight: 4, Type: EdgeTrack},
		},
	}
	g, trackIDs, err := Graph(gp)
	require.NoError(t, err)

	rp := RoutePayload{ID: "R1", Name: "Line 1", Nodes: []string{"A", "C"}, Edges: []string{"ab"}}
	_, err = Routes(g, trackIDs, []RoutePayload{rp})
	require.Error(t, err)
}
