package miner

// State is the search state of a Worker.
type State int32

const (
	Idle State = iota
	Searching
	Found
	Exhausted
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
