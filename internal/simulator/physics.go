package simulator

import (
	"math"

	"github.com/transitlab/railsim/internal/railmodel"
)

type leaderKind int

const (
	leaderNone leaderKind = iota
	leaderReal
	leaderStationOccupied
)

// leaderPositionFor resolves the "effective leader position" for the train
// at queue index idx on track, per spec §4.2.
func (s *Simulator) leaderPositionFor(track *railmodel.Track, idx int) (pos float64, kind leaderKind, blocker railmodel.TrainID) {
	if idx > 0 {
		leaderID := track.Queue[idx-1]
		return s.Trains[leaderID].Pos, leaderReal, leaderID
	}
	dest := s.Graph.Stations[track.To]
	if dest.HasOccupant {
		return math.Max(float64(track.Length)-s.Constants.MinTrainDistance, 0), leaderStationOccupied, dest.Occupant
	}
	return math.Inf(1), leaderNone, railmodel.TrainID{}
}

// trackEntryGap is the distance a newly-admitted train would have behind
// the current tail occupant (or +Inf if the track is empty).
func (s *Simulator) trackEntryGap(track *railmodel.Track) float64 {
	if len(track.Queue) == 0 {
		return math.Inf(1)
	}
	tail := s.Trains[track.Queue[len(track.Queue)-1]]
	return tail.Pos
}

// advanceTrainOnTrackAt advances the single train at queue index idx by up
// to budget ticks starting at absolute time startTime, respecting the
// track-end and leader headroom limits. If the train reaches the track end
// and the destination station is free, it is deposited there and
// advanceAtStation is invoked with the leftover budget at the exact instant
// of arrival — this is the recursive hand-off spec §4.2 describes, needed
// because the traversal order places the destination station earlier in
// the tick than the track (see railmodel.BuildTraversalOrder doc).
//
// startTime/budget track continuous sub-tick time rather than the integer
// tick index, so an arrival that completes partway through a tick (e.g.
// spec §8 scenario 1's t=4.5) is recorded at that exact instant.
func (s *Simulator) advanceTrainOnTrackAt(tr *railmodel.Train, track *railmodel.Track, idx int, startTime float64, budget float64) []Conflict {
	if budget <= 0 {
		return nil
	}

	leaderPos, kind, blocker := s.leaderPositionFor(track, idx)
	headroomEnd := float64(track.Length) - tr.Pos

	var headroomLeader float64
	switch kind {
	case leaderNone:
		headroomLeader = math.Inf(1)
	case leaderReal:
		// A real train ahead: keep MinTrainDistance clear of it once the
		// trailer is already within that gap; farther away the raw distance
		// to the leader governs instead (spec §4.2's "enforces ... when
		// closer than the gap, and the raw difference otherwise").
		if tr.Pos+s.Constants.MinTrainDistance >= leaderPos {
			headroomLeader = clamp0(leaderPos - s.Constants.MinTrainDistance - tr.Pos)
		} else {
			headroomLeader = leaderPos - tr.Pos
		}
	case leaderStationOccupied:
		// leaderPos already nets out MinTrainDistance from the track end
		// (spec §4.2); it is the stopping point itself, not a vehicle to
		// keep a further gap from.
		headroomLeader = clamp0(leaderPos - tr.Pos)
	}

	var conflicts []Conflict
	naive := minf(budget, headroomEnd)
	conflictLimit := headroomLeader
	if kind == leaderReal {
		// Closing inside MinTrainDistance of a real leader is a conflict even
		// when the raw-distance headroom above still allows the move.
		conflictLimit = leaderPos - s.Constants.MinTrainDistance - tr.Pos
	}
	if kind != leaderNone && naive > conflictLimit {
		conflicts = append(conflicts, Conflict{Tick: startTime, Trailer: tr.ID, Blocker: blocker})
	}

	distance := clamp0(minf(budget, headroomEnd, headroomLeader))
	tr.Pos += distance
	tr.DistanceTravelled += distance
	leftover := budget - distance
	arrivalInstant := startTime + distance

	if tr.Pos >= float64(track.Length) {
		dest := s.Graph.Stations[track.To]
		if dest.HasOccupant && idx != 0 {
			s.invariantBreach("track queue ordering violated: non-head train reached track end", "track", track.ID, "train", tr.ID)
		}
		if !dest.HasOccupant {
			track.Queue = track.Queue[1:]
			route := s.Routes[tr.ID.RouteIdx]
			tr.Section = railmodel.StationSection(track.To)
			tr.Pos = 0
			dest.HasOccupant = true
			dest.Occupant = tr.ID
			dest.RecordArrival(tr.ID.RouteIdx, arrivalInstant)
			conflicts = append(conflicts, s.advanceAtStation(tr, dest, route, arrivalInstant, leftover)...)
		}
	}

	return conflicts
}

// advanceAtStation advances a dwelling (or just-arrived) train by up to
// budget ticks starting at absolute time startTime: first completing
// STATION_DWELL_TIME, then attempting to depart onto its route's next
// track.
func (s *Simulator) advanceAtStation(tr *railmodel.Train, st *railmodel.Station, route *railmodel.Route, startTime float64, budget float64) []Conflict {
	if budget <= 0 {
		return nil
	}

	dwellRemaining := s.Constants.StationDwellTime - tr.Pos
	if dwellRemaining > 0 {
		advance := minf(budget, dwellRemaining)
		tr.Pos += advance
		tr.DistanceTravelled += advance
		budget -= advance
		startTime += advance
		if tr.Pos < s.Constants.StationDwellTime {
			return nil
		}
	}

	trackID, hasNext := route.NextTrack[st.ID]
	if !hasNext {
		st.HasOccupant = false
		delete(s.Trains, tr.ID)
		logger.Debug("train retired", "train", tr.ID, "station", st.ID, "distance_travelled", tr.DistanceTravelled)
		return nil
	}

	track := s.Graph.Tracks[trackID]
	if s.trackEntryGap(track) < s.Constants.MinTrainDistance {
		return nil
	}

	st.HasOccupant = false
	tr.Section = railmodel.TrackSection(trackID)
	tr.Pos = 0
	track.Queue = append(track.Queue, tr.ID)
	idx := len(track.Queue) - 1
	return s.advanceTrainOnTrackAt(tr, track, idx, startTime, budget)
}

func (s *Simulator) updateStationTick(stationID int, t float64) []Conflict {
	st := s.Graph.Stations[stationID]
	if !st.HasOccupant {
		return nil
	}
	tr := s.Trains[st.Occupant]
	route := s.Routes[tr.ID.RouteIdx]
	return s.advanceAtStation(tr, st, route, t, s.Constants.TimeStep)
}

func (s *Simulator) updateTrackTick(trackID int, t float64) []Conflict {
	track := s.Graph.Tracks[trackID]
	ids := append([]railmodel.TrainID(nil), track.Queue...)

	var conflicts []Conflict
	for _, id := range ids {
		tr, ok := s.Trains[id]
		if !ok {
			continue
		}
		idx := indexOfTrain(track.Queue, id)
		if idx < 0 {
			continue // already handed off to the destination station this tick
		}
		conflicts = append(conflicts, s.advanceTrainOnTrackAt(tr, track, idx, t, s.Constants.TimeStep)...)
	}
	return conflicts
}

// stepPhysics advances every section one tick in traversal order, returning
// any leader-headroom conflicts observed (used only by the solver-driven
// scheduling loop; Run discards them).
func (s *Simulator) stepPhysics(t float64) []Conflict {
	var conflicts []Conflict
	for _, sec := range s.order {
		switch sec.Kind {
		case railmodel.SectionStation:
			conflicts = append(conflicts, s.updateStationTick(sec.ID, t)...)
		case railmodel.SectionTrack:
			conflicts = append(conflicts, s.updateTrackTick(sec.ID, t)...)
		}
	}
	return conflicts
}

func indexOfTrain(q []railmodel.TrainID, id railmodel.TrainID) int {
	for i, x := range q {
		if x == id {
			return i
		}
	}
	return -1
}
