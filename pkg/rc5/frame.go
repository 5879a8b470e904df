package rc5

// FrameStatus reports whether the accumulator holds a whole frame.
type FrameStatus int

const (
	InProgress FrameStatus = iota
	Complete
)

// accumulator is the shift register a frame is built in, MSB first.
type accumulator struct {
	// data holds the committed bits.
	data uint32
	// remaining is the number of commits left before the frame is complete.
	remaining int
	// width is the frame width in bits.
	width int
}

func (a *accumulator) reset() {
	a.data = 0
	a.remaining = a.width - 1
}

// commit shifts one bit into the register.
// It must only be called with Zero or One.
func (a *accumulator) commit(bit BitSymbol) FrameStatus {
	a.data <<= 1
	if bit == One {
		a.data |= 1
	}

	if a.remaining == 0 {
		return Complete
	}

	a.remaining--
	return InProgress
}
