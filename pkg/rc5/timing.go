package rc5

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidTiming is returned if the timing parameters can't produce two
// separate pulse windows or the frame width is out of range.
var ErrInvalidTiming = errors.New("invalid rc5 timing")

const (
	// HalfBit is the RC5 half bit period T (889 µs nominal, rounded like most receivers do).
	HalfBit = 900 * time.Microsecond
	// Tolerance is accepted deviation around T and 2T.
	Tolerance = 270 * time.Microsecond
	// SignalTimeout is the gap after which a partial frame is dropped.
	SignalTimeout = 3600 * time.Microsecond
	// TickFrequency is the default capture clock (1 tick = 1 µs).
	TickFrequency = 1_000_000
	// MaxWidth is the size of the accumulator register.
	MaxWidth = 32
)

// Timing holds the configuration inputs of a decoder.
type Timing struct {
	// TickFrequency is the frequency of the capture clock in Hz.
	TickFrequency uint32
	// HalfBit is the protocol half bit period T.
	HalfBit time.Duration
	// Tolerance is applied symmetrically around T and 2T.
	Tolerance time.Duration
	// Width is the number of bits in a frame, the synchronization bit not included.
	Width int
	// Timeout is the signal timeout window.
	Timeout time.Duration
}

// Thresholds are the pulse windows expressed in capture ticks.
type Thresholds struct {
	ShortMin, ShortMax uint32
	LongMin, LongMax   uint32
	// Timeout is the signal timeout in ticks.
	Timeout uint32
}

// DefaultTiming returns the RC5 timing for a 1 MHz capture clock and 13 bit
// frames (14 bit RC5 frame minus the start bit consumed by synchronization).
func DefaultTiming() Timing {
	return Timing{
		TickFrequency: TickFrequency,
		HalfBit:       HalfBit,
		Tolerance:     Tolerance,
		Width:         LegacyWidth,
		Timeout:       SignalTimeout,
	}
}

// Thresholds derives the tick windows:
//  ShortMin = T-tol, ShortMax = T+tol, LongMin = 2T-tol, LongMax = 2T+tol
// converted with the capture clock in kHz.
func (t Timing) Thresholds() (Thresholds, error) {
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}

	khz := int64(t.TickFrequency) / 1000
	halfBit := t.HalfBit.Microseconds()
	tol := t.Tolerance.Microseconds()

	toTicks := func(us int64) uint32 {
		v := us * khz / 1000
		if v > math.MaxUint32 {
			return math.MaxUint32
		}
		return uint32(v)
	}

	th := Thresholds{
		ShortMin: toTicks(halfBit - tol),
		ShortMax: toTicks(halfBit + tol),
		LongMin:  toTicks(2*halfBit - tol),
		LongMax:  toTicks(2*halfBit + tol),
		Timeout:  toTicks(t.Timeout.Microseconds()),
	}

	// a coarse clock can round the windows together, the gap must survive the conversion
	if th.ShortMin == 0 || th.ShortMax >= th.LongMin || th.LongMin >= th.LongMax || th.Timeout == 0 {
		return Thresholds{}, ErrInvalidTiming
	}
	return th, nil
}

// Validate checks that the short and long windows don't touch and the width fits the register.
func (t Timing) Validate() error {
	switch {
	case t.TickFrequency < 1000:
		return ErrInvalidTiming
	case t.HalfBit <= 0 || t.Tolerance <= 0:
		return ErrInvalidTiming
	case 2*t.Tolerance >= t.HalfBit:
		// T+tol must stay below 2T-tol
		return ErrInvalidTiming
	case t.Width < 1 || t.Width > MaxWidth:
		return ErrInvalidTiming
	case t.Timeout <= 0:
		return ErrInvalidTiming
	}
	return nil
}

// Ticks converts a duration into capture ticks, saturating at math.MaxUint32.
func (t Timing) Ticks(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}

	ns := uint64(d)
	f := uint64(t.TickFrequency)
	sec := uint64(time.Second)

	ticks := ns/sec*f + ns%sec*f/sec
	if ticks > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ticks)
}
