package download

// State is a step of a download run.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateFetching
	StateLinking
	StateConfirming
	StateDone
	StateAborted
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateSelecting:  "selecting",
	StateFetching:   "fetching",
	StateLinking:    "linking",
	StateConfirming: "confirming",
	StateDone:       "done",
	StateAborted:    "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
