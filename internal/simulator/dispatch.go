package simulator

import "github.com/transitlab/railsim/internal/railmodel"

// dispatchRoute mints a new train on route routeIdx at tick t if its start
// station is free, returning the minted train's ID (spec §4.2 "Dispatch").
func (s *Simulator) dispatchRoute(routeIdx int, t float64) (railmodel.TrainID, bool) {
	route := s.Routes[routeIdx]
	st := s.Graph.Stations[route.StartStation]
	if st.HasOccupant {
		return railmodel.TrainID{}, false
	}
	if _, exists := s.Trains[railmodel.TrainID{RouteIdx: routeIdx, Count: s.nextCount[routeIdx]}]; exists {
		s.invariantBreach("dispatch reused a live train ID", "route", route.ID, "count", s.nextCount[routeIdx])
	}

	id := railmodel.TrainID{RouteIdx: routeIdx, Count: s.nextCount[routeIdx]}
	tr := &railmodel.Train{
		ID:      id,
		RouteIdx: routeIdx,
		Section: railmodel.StationSection(route.StartStation),
	}
	s.Trains[id] = tr
	s.trainOrder = append(s.trainOrder, id)
	s.trainRoute[id] = route.ID

	st.HasOccupant = true
	st.Occupant = id
	st.RecordArrival(routeIdx, t)

	s.nextCount[routeIdx]++
	logger.Debug("train dispatched", "train", id, "route", route.ID, "tick", t)
	return id, true
}

// dueForCadence reports whether route routeIdx is due to dispatch at tick t
// under a uniform frequency (spec §4.2: "(t - offset) mod frequency == 0").
func dueForCadence(t int, offset, frequency int) bool {
	if frequency <= 0 {
		return false
	}
	m := (t - offset) % frequency
	if m < 0 {
		m += frequency
	}
	return m == 0
}
