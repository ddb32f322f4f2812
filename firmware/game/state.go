package game

// State is the top-level game phase.
type State uint8

const (
	StateInit State = iota
	StateActive
	StateFail
	StateWin
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateActive:
		return "active"
	case StateFail:
		return "fail"
	case StateWin:
		return "win"
	default:
		return "unknown"
	}
}

// Context is the complete game state. It changes once per tick.
type Context struct {
	State State
	Stage uint8

	Cursor uint8
	Target uint8
	// Direction moves the cursor clockwise (increasing index) when set.
	Direction bool

	// PhaseTicks counts ticks since the last cursor step or state entry.
	PhaseTicks uint32
	// IdleTicks counts Active ticks since the last hit.
	IdleTicks uint32
	// Passes counts cursor landings on the target during the attract animation.
	Passes uint8
}

func next(i uint8) uint8 { return (i + 1) % 16 }

func prev(i uint8) uint8 { return (i + 15) % 16 }
