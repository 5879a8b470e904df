package rc5

import "rc5rx/pkg/port"

// BitSymbol is the result of resolving an edge.
type BitSymbol int

const (
	// Zero is a logical 0.
	Zero BitSymbol = iota
	// One is a logical 1.
	One
	// NoBit is a legal edge on a bit boundary, it doesn't carry a bit.
	NoBit
	// InvalidBit is an edge that no legal bit sequence can produce.
	InvalidBit
)

func (b BitSymbol) String() string {
	switch b {
	case Zero:
		return "0"
	case One:
		return "1"
	case NoBit:
		return "-"
	default:
		return "invalid"
	}
}

// Logic tables: rows are the previous bit (Zero, One), columns the pulse class (Short, Long).
var (
	risingEdge = [2][2]BitSymbol{
		{Zero, InvalidBit}, // last bit 0
		{NoBit, Zero},      // last bit 1
	}
	fallingEdge = [2][2]BitSymbol{
		{NoBit, One},      // last bit 0
		{One, InvalidBit}, // last bit 1
	}
)

// Resolve returns the bit implied by an edge given the previous bit and the pulse class.
// A long pulse on a bit boundary folds two half bits into one transition.
func Resolve(edge port.EventType, last BitSymbol, pulse PulseClass) BitSymbol {
	if last != Zero && last != One {
		return InvalidBit
	}
	if pulse != ShortPulse && pulse != LongPulse {
		return InvalidBit
	}

	switch edge {
	case port.RisingEdge:
		return risingEdge[last][pulse]
	case port.FallingEdge:
		return fallingEdge[last][pulse]
	default:
		return InvalidBit
	}
}
