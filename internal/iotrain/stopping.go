package iotrain

// earlyStopper decides when validation F1 stopped improving. The first
// observation only initializes the baseline and never stops.
type earlyStopper struct {
	minDelta float64
	best     float64
	started  bool
}

func newEarlyStopper(minDelta float64) *earlyStopper {
	return &earlyStopper{minDelta: minDelta}
}

// ShouldStop reports whether training should stop after observing the
// epoch's validation F1. Any improvement is remembered as the new
// baseline even when it is below the delta.
func (s *earlyStopper) ShouldStop(f1 float64) bool {
	if !s.started {
		s.started = true
		s.best = f1
		return false
	}
	improvement := f1 - s.best
	if f1 > s.best {
		s.best = f1
	}
	return improvement < s.minDelta
}
