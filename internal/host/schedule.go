package host

import "fmt"

// ScheduleKind selects when systems run.
type ScheduleKind int

const (
	Startup ScheduleKind = iota
	Update
	FixedUpdate
	OnEnter
	OnExit
)

func (k ScheduleKind) String() string {
	switch k {
	case Startup:
		return "Startup"
	case Update:
		return "Update"
	case FixedUpdate:
		return "FixedUpdate"
	case OnEnter:
		return "OnEnter"
	case OnExit:
		return "OnExit"
	default:
		return fmt.Sprintf("ScheduleKind(%d)", int(k))
	}
}

// StateValue is one value of a state machine, e.g. GameState.Playing.
type StateValue struct {
	Name  string
	Value any
}

// Schedule is a schedule label. State is only set for OnEnter and OnExit.
type Schedule struct {
	Kind  ScheduleKind
	State StateValue
}

// ScheduleFor returns a schedule that is not bound to a state.
func ScheduleFor(kind ScheduleKind) Schedule {
	return Schedule{Kind: kind}
}

// OnEnterState returns the schedule run when entering the state.
func OnEnterState(state StateValue) Schedule {
	return Schedule{Kind: OnEnter, State: state}
}

// OnExitState returns the schedule run when leaving the state.
func OnExitState(state StateValue) Schedule {
	return Schedule{Kind: OnExit, State: state}
}

func (s Schedule) String() string {
	if s.Kind == OnEnter || s.Kind == OnExit {
		return fmt.Sprintf("%s(%s)", s.Kind, s.State.Name)
	}
	return s.Kind.String()
}
