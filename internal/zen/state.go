package zen

// State is reported on every zen transition.
type State int

const (
	// Waiting means zen mode is active but holds the engine stopped.
	Waiting State = iota
	// Jiggling means zen mode started the engine because the user is idle.
	Jiggling
	// Stopped means zen mode was turned off.
	Stopped
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "Waiting"
	case Jiggling:
		return "Jiggling"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
