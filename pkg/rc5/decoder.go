// Package rc5 is a software decoder for the Philips RC5 infrared protocol.
// It turns edge events (pulse length in capture ticks and edge direction)
// into raw frames.
//
// https://www.sbprojects.net/knowledge/ir/rc5.php
package rc5

import (
	"sync"

	"github.com/womat/debug"
	"rc5rx/pkg/port"
)

// Phase is the externally visible state of the decoder.
type Phase int

const (
	// Idle is the empty state, the decoder waits for the synchronizing falling edge.
	Idle Phase = iota
	// Accumulating means the decoder is synchronized and collects bits.
	Accumulating
	// FrameReady means a complete frame waits to be taken.
	FrameReady
	// Error means an invalid transition was seen, the next event resets the decoder.
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case FrameReady:
		return "frame ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText is used by the json encoder of the data web service.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Snapshot is a copy of the decoder state.
type Snapshot struct {
	Phase         Phase     `json:"phase"`
	Accumulator   uint32    `json:"accumulator"`
	BitsRemaining int       `json:"bitsRemaining"`
	LastBit       BitSymbol `json:"lastBit"`
	ErrorLatched  bool      `json:"errorLatched"`
	Synchronized  bool      `json:"synchronized"`
	FrameReady    bool      `json:"frameReady"`
	Enabled       bool      `json:"enabled"`
}

// Stats counts decoded frames and the reasons the decoder was reset.
type Stats struct {
	// Frames is the number of completed frames.
	Frames uint64 `json:"frames"`
	// TimingOutOfRange counts pulses outside both windows.
	TimingOutOfRange uint64 `json:"timingOutOfRange"`
	// FramingInconsistency counts events received while an invalid transition was latched.
	FramingInconsistency uint64 `json:"framingInconsistency"`
	// SignalTimeout counts partial frames dropped by a timeout.
	SignalTimeout uint64 `json:"signalTimeout"`
	// FrameOverrun counts edges ignored because a frame was not taken yet.
	FrameOverrun uint64 `json:"frameOverrun"`
}

// Decoder is the RC5 decoding state machine.
//
// OnEdge and OnTimeout are meant to be called from one producer (the capture loop),
// TakeFrame from one consumer. All methods are serialized by an internal lock,
// so TakeFrame reads and clears a frame in one step.
type Decoder struct {
	mu sync.Mutex

	th  Thresholds
	acc accumulator

	// lastBit is the last committed bit (Zero or One).
	lastBit BitSymbol
	// errorLatched is set by an invalid transition, the next event resets the decoder.
	errorLatched bool
	// synchronized is set by the first falling edge after a reset.
	synchronized bool
	// frameReady is set when the accumulator holds a complete frame.
	frameReady bool
	// enabled is cleared while the local transmitter is active.
	enabled bool

	stats Stats
}

// New creates a decoder for the given timing. The decoder starts enabled and idle.
func New(t Timing) (*Decoder, error) {
	th, err := t.Thresholds()
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		th:      th,
		acc:     accumulator{width: t.Width},
		enabled: true,
	}
	d.reset()

	debug.DebugLog.Printf("rc5 thresholds: short %d..%d, long %d..%d ticks, timeout %d ticks",
		th.ShortMin, th.ShortMax, th.LongMin, th.LongMax, th.Timeout)
	return d, nil
}

// Thresholds returns the pulse windows the decoder classifies with.
func (d *Decoder) Thresholds() Thresholds {
	return d.th
}

// Width returns the frame width in bits.
func (d *Decoder) Width() int {
	return d.acc.width
}

// OnEdge processes one edge. ticks is the time since the previous edge.
func (d *Decoder) OnEdge(ticks uint32, edge port.EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return
	}

	if d.frameReady {
		// don't overwrite a frame nobody has read yet
		d.stats.FrameOverrun++
		return
	}

	if d.errorLatched {
		d.stats.FramingInconsistency++
		debug.TraceLog.Printf("rc5: event after invalid transition, reset (%d %v)", ticks, edge)
		d.reset()
		return
	}

	if !d.synchronized {
		// the first falling edge is the middle of the first start bit,
		// it only sets the phase, its length is meaningless after idle
		if edge == port.FallingEdge {
			d.synchronized = true
		}
		return
	}

	pulse := d.th.Classify(ticks)
	if pulse == InvalidPulse {
		d.stats.TimingOutOfRange++
		debug.TraceLog.Printf("rc5: pulse %d ticks out of range, reset", ticks)
		d.reset()
		return
	}

	switch bit := Resolve(edge, d.lastBit, pulse); bit {
	case InvalidBit:
		debug.TraceLog.Printf("rc5: invalid transition (%v %v after %v)", edge, pulse, d.lastBit)
		d.errorLatched = true
	case NoBit:
	case Zero, One:
		d.lastBit = bit
		if d.acc.commit(bit) == Complete {
			d.frameReady = true
			d.stats.Frames++
		}
	}
}

// OnTimeout resets the decoder, whatever state it is in.
func (d *Decoder) OnTimeout() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return
	}

	if d.synchronized && !d.frameReady {
		d.stats.SignalTimeout++
		debug.TraceLog.Printf("rc5: signal timeout, %d bits missing", d.acc.remaining+1)
	}
	d.reset()
}

// TakeFrame returns the completed frame and resets the decoder.
// ok is false if no frame is ready.
func (d *Decoder) TakeFrame() (raw uint32, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.frameReady {
		return 0, false
	}

	raw = d.acc.data
	d.reset()
	return raw, true
}

// Disable resets the decoder and ignores all events until Enable is called.
// It's used while the local transmitter is active.
func (d *Decoder) Disable() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.enabled = false
	d.reset()
}

// Enable resets the decoder and resumes decoding.
func (d *Decoder) Enable() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reset()
	d.enabled = true
}

// Enabled reports whether events are processed.
func (d *Decoder) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.enabled
}

// Snapshot returns a copy of the current state.
func (d *Decoder) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Snapshot{
		Phase:         d.phase(),
		Accumulator:   d.acc.data,
		BitsRemaining: d.acc.remaining,
		LastBit:       d.lastBit,
		ErrorLatched:  d.errorLatched,
		Synchronized:  d.synchronized,
		FrameReady:    d.frameReady,
		Enabled:       d.enabled,
	}
}

// Phase returns the current phase.
func (d *Decoder) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.phase()
}

// Stats returns a copy of the counters.
func (d *Decoder) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stats
}

func (d *Decoder) phase() Phase {
	switch {
	case d.frameReady:
		return FrameReady
	case d.errorLatched:
		return Error
	case d.synchronized:
		return Accumulating
	default:
		return Idle
	}
}

// reset restores the empty state. The first start bit of a frame is always 1.
func (d *Decoder) reset() {
	d.acc.reset()
	d.lastBit = One
	d.errorLatched = false
	d.synchronized = false
	d.frameReady = false
}
