package components

// Status is the lifecycle state of an agent within one generation.
// Alive is the only non-terminal state; Crashed and Reached never change
// once entered.
type Status uint8

const (
	Alive Status = iota
	Crashed
	Reached
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Alive:
		return "alive"
	case Crashed:
		return "crashed"
	case Reached:
		return "reached"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Crashed or Reached.
func (s Status) Terminal() bool {
	return s != Alive
}

// Cause records why an agent left the Alive state.
type Cause uint8

const (
	CauseNone Cause = iota
	CauseReached
	CauseWall
	CauseObstacle
	CauseExhausted // brain ran out of directions
	CauseStepCap   // cursor passed the population step cap
)

// String returns the snake_case cause name used in telemetry.
func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseReached:
		return "reached"
	case CauseWall:
		return "wall"
	case CauseObstacle:
		return "obstacle"
	case CauseExhausted:
		return "exhausted"
	case CauseStepCap:
		return "step_cap"
	default:
		return "unknown"
	}
}

// Outcome is an agent's status together with its terminal cause.
// Values are only changed through Crash and Reach, so a terminal outcome
// is never overwritten.
type Outcome struct {
	Status Status
	Cause  Cause
}

// Crash returns the outcome after a crash for the given cause.
// Terminal outcomes are returned unchanged.
func (o Outcome) Crash(cause Cause) Outcome {
	if o.Status.Terminal() {
		return o
	}
	return Outcome{Status: Crashed, Cause: cause}
}

// Reach returns the outcome after touching the goal.
// Terminal outcomes are returned unchanged.
func (o Outcome) Reach() Outcome {
	if o.Status.Terminal() {
		return o
	}
	return Outcome{Status: Reached, Cause: CauseReached}
}

// Score holds an agent's last evaluated fitness and whether it is the
// unchanged copy of the previous generation's best.
type Score struct {
	Fitness float64
	Elite   bool
}
