package wizard

// Step is the wizard position. Steps only move forward except for the
// explicit Back from paying to reviewing.
type Step int

const (
	StepReviewing Step = iota + 1
	StepPaying
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepReviewing:
		return "reviewing"
	case StepPaying:
		return "paying"
	case StepConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}
