package result

import "apiwatch/internals/modules/probe"

// Transition is the detector's verdict for one fresh observation.
type Transition struct {
	Occurred   bool
	PrevStatus probe.Status
	NewStatus  probe.Status
}

// Detect compares a fresh observation against the most recent persisted
// one. The first-ever check of a monitor has no previous state and is
// never a transition.
func Detect(prev ProbeLog, hasPrev bool, observed probe.Status) Transition {
	if !hasPrev {
		return Transition{NewStatus: observed}
	}

	return Transition{
		Occurred:   prev.Status != observed,
		PrevStatus: prev.Status,
		NewStatus:  observed,
	}
}
