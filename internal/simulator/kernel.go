// Package simulator implements the discrete-event movement engine: the
// per-tick advancement of trains across stations and tracks described in
// spec §4.2, fixed-cadence simulation (Run) and solver-driven scheduling
// (ScheduleTrains).
//
// Aliased mutable state (stations, tracks and trains all reference each
// other through train/track/station IDs) is kept in separate ID-keyed
// collections rather than cross-pointers, per spec §9 — Simulator.Trains is
// the single owner of every Train; Station and Track only ever hold IDs.
package simulator

import (
	"math"

	"github.com/transitlab/railsim/internal/obslog"
	"github.com/transitlab/railsim/internal/railmodel"
)

var logger = obslog.New("simulator")

// Simulator owns the physical graph, the routes running over it, and every
// live train. It is not safe for concurrent use — see spec §5.
type Simulator struct {
	Graph     *railmodel.Graph
	Routes    []*railmodel.Route
	Constants railmodel.Constants
	order     []railmodel.TraversalStep

	Trains     map[railmodel.TrainID]*railmodel.Train
	trainOrder []railmodel.TrainID // insertion order, for deterministic iteration
	nextCount  []int               // per-route next dispatch count
	trainRoute map[railmodel.TrainID]string

	// StrictInvariants controls invariantBreach's response to a detected
	// programmer error (spec §7): panic (true, the default) or a logged
	// critical warning (false, internal/config's STRICT_INVARIANTS=false).
	StrictInvariants bool
}

// New builds a Simulator: stations, tracks and traversal order from graph,
// and validates that every route's stations are present in it (spec §4.2).
func New(graph *railmodel.Graph, routes []*railmodel.Route) (*Simulator, error) {
	for _, r := range routes {
		for _, sid := range r.Stations {
			if _, ok := graph.Stations[sid]; !ok {
				return nil, &railmodel.ValidationError{Reason: "route " + r.ID + " references station not in graph"}
			}
		}
	}

	sim := &Simulator{
		Graph:            graph,
		Routes:           routes,
		Constants:        railmodel.DefaultConstants(),
		order:            railmodel.BuildTraversalOrder(graph, routes),
		Trains:           make(map[railmodel.TrainID]*railmodel.Train),
		nextCount:        make([]int, len(routes)),
		trainRoute:       make(map[railmodel.TrainID]string),
		StrictInvariants: true,
	}
	return sim, nil
}

// WithConstants overrides the default canonical constants (internal/config
// is the only caller expected to do this, for experimentation).
func (s *Simulator) WithConstants(c railmodel.Constants) *Simulator {
	s.Constants = c
	return s
}

// WithStrictInvariants wires internal/config's STRICT_INVARIANTS setting
// through to invariantBreach (spec §7).
func (s *Simulator) WithStrictInvariants(strict bool) *Simulator {
	s.StrictInvariants = strict
	return s
}

// invariantBreach reports a detected programmer error: a station receiving a
// train while already occupied, or a track queue found out of order. It
// panics unless StrictInvariants has been turned off, in which case it is
// logged at critical severity and execution continues (spec §7).
func (s *Simulator) invariantBreach(reason string, ctx ...interface{}) {
	if s.StrictInvariants {
		panic("simulator invariant breach: " + reason)
	}
	logger.Crit("simulator invariant breach softened to warning", append([]interface{}{"reason", reason}, ctx...)...)
}

func minf(xs ...float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		if x < m {
			m = x
		}
	}
	return m
}

func clamp0(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
