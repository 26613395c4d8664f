package simulator

import (
	"sort"

	"github.com/transitlab/railsim/internal/railmodel"
)

// TrainPosition is one train's recorded state at a single tick (spec §6).
type TrainPosition struct {
	ID                railmodel.TrainID
	Section           railmodel.Section
	Pos               float64
	DistanceTravelled float64
}

// WaitStats summarizes successive inter-arrival gaps at a station.
type WaitStats struct {
	Min, Max, Mean float64
}

// StationStatistics holds, per route serving a station, the wait-gap
// statistics, plus an aggregate across all routes when more than one serves
// it (spec §3, §6).
type StationStatistics struct {
	PerRoute map[int]WaitStats
	Overall  *WaitStats
}

// SimulationResults is the output of Run and ScheduleTrains (spec §4.2, §6).
type SimulationResults struct {
	TrainPositions    map[int][]TrainPosition // tick (t>=0) -> positions
	TrainToRoute      map[railmodel.TrainID]string
	StationStatistics map[int]StationStatistics
}

// waitStatsOf computes {min,max,mean} of successive differences in a sorted
// arrival sequence; the first arrival contributes no wait (spec §4.2).
func waitStatsOf(times []float64) (WaitStats, bool) {
	if len(times) < 2 {
		return WaitStats{}, false
	}
	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)

	min, max, sum := sorted[1]-sorted[0], sorted[1]-sorted[0], 0.0
	n := 0
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i] - sorted[i-1]
		if gap < min {
			min = gap
		}
		if gap > max {
			max = gap
		}
		sum += gap
		n++
	}
	return WaitStats{Min: min, Max: max, Mean: sum / float64(n)}, true
}

// stationStatistics builds per-station arrival statistics from the
// accumulated (t>=0) arrival records on every station in the graph.
func (s *Simulator) stationStatistics() map[int]StationStatistics {
	out := make(map[int]StationStatistics)
	for id, st := range s.Graph.Stations {
		if len(st.ArrivalTimes) == 0 {
			continue
		}
		perRoute := make(map[int]WaitStats)
		var merged []float64
		routesServing := 0
		for routeIdx, times := range st.ArrivalTimes {
			if len(times) == 0 {
				continue
			}
			routesServing++
			merged = append(merged, times...)
			if stats, ok := waitStatsOf(times); ok {
				perRoute[routeIdx] = stats
			}
		}
		if len(perRoute) == 0 {
			continue
		}
		entry := StationStatistics{PerRoute: perRoute}
		if routesServing > 1 {
			if stats, ok := waitStatsOf(merged); ok {
				entry.Overall = &stats
			}
		}
		out[id] = entry
	}
	return out
}

// snapshotPositions records every live train's current state at tick t
// (only called for t >= 0, per spec §3's "warm-up ticks are discarded").
func (s *Simulator) snapshotPositions() []TrainPosition {
	out := make([]TrainPosition, 0, len(s.trainOrder))
	for _, id := range s.trainOrder {
		tr, ok := s.Trains[id]
		if !ok {
			continue
		}
		out = append(out, TrainPosition{
			ID:                tr.ID,
			Section:           tr.Section,
			Pos:               tr.Pos,
			DistanceTravelled: tr.DistanceTravelled,
		})
	}
	return out
}
