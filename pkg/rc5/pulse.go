package rc5

// PulseClass is the length of a pulse in protocol units.
type PulseClass int

const (
	// ShortPulse is one half bit period (T).
	ShortPulse PulseClass = iota
	// LongPulse is two half bit periods (2T).
	LongPulse
	// InvalidPulse matches neither window.
	InvalidPulse
)

func (p PulseClass) String() string {
	switch p {
	case ShortPulse:
		return "short"
	case LongPulse:
		return "long"
	default:
		return "invalid"
	}
}

// Classify converts a raw pulse length in ticks to a PulseClass.
// The lower bound of each window is inclusive, the upper bound exclusive.
func (th Thresholds) Classify(ticks uint32) PulseClass {
	switch {
	case ticks >= th.ShortMin && ticks < th.ShortMax:
		return ShortPulse
	case ticks >= th.LongMin && ticks < th.LongMax:
		return LongPulse
	}
	return InvalidPulse
}
