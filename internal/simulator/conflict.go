package simulator

import "github.com/transitlab/railsim/internal/railmodel"

// Conflict records that, at Tick, Trailer's naive (leader-unaware) movement
// would have closed to less than MinTrainDistance behind Blocker — the
// event internal/dispatchsolver turns into a learned clause (spec §4.6).
type Conflict struct {
	Tick    float64
	Trailer railmodel.TrainID
	Blocker railmodel.TrainID
}
