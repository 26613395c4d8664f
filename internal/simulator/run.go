package simulator

import "github.com/transitlab/railsim/internal/railmodel"

// Run simulates iterations ticks at a uniform dispatch frequency (spec §4.2
// "Run"), discarding the warm-up window [-WarmupTicks, 0) and returning
// aggregated results for ticks [0, iterations).
//
// Each tick first dispatches every route due under frequency, then advances
// physics for that same tick — a just-dispatched train gets its first
// STATION_DWELL_TIME/track budget immediately, which is what makes a train
// dispatched at tick t0 in spec §8 scenario 1 reach B at t0+4.5 rather than a
// full tick later. Routes also dispatch during the warm-up ticks.
func (s *Simulator) Run(iterations int, frequency int) *SimulationResults {
	positions := make(map[int][]TrainPosition)

	for t := -s.Constants.WarmupTicks; t < iterations; t++ {
		for routeIdx, route := range s.Routes {
			if dueForCadence(t, route.Offset, frequency) {
				s.dispatchRoute(routeIdx, float64(t))
			}
		}

		s.stepPhysics(float64(t))

		if t >= 0 {
			positions[t] = s.snapshotPositions()
		}
	}

	return &SimulationResults{
		TrainPositions:    positions,
		TrainToRoute:      copyTrainRoute(s.trainRoute),
		StationStatistics: s.stationStatistics(),
	}
}

func copyTrainRoute(m map[railmodel.TrainID]string) map[railmodel.TrainID]string {
	out := make(map[railmodel.TrainID]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
