package rc5

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"rc5rx/pkg/port"
)

type edge struct {
	ticks uint32
	typ   port.EventType
}

// manchester returns the edges of a frame: the synchronizing falling edge
// of the first start bit followed by the edges of bits (e.g. "10110010").
// A 1 has a falling edge in the middle of the bit, a 0 a rising edge.
func manchester(bits string) []edge {
	const t = 900

	edges := []edge{{ticks: 2 * t, typ: port.FallingEdge}}
	prev := byte('1')

	for i := 0; i < len(bits); i++ {
		mid := port.RisingEdge
		boundary := port.FallingEdge
		if bits[i] == '1' {
			mid, boundary = port.FallingEdge, port.RisingEdge
		}

		if bits[i] == prev {
			edges = append(edges, edge{t, boundary}, edge{t, mid})
		} else {
			edges = append(edges, edge{2 * t, mid})
		}
		prev = bits[i]
	}
	return edges
}

func newDecoder(c *qt.C, width int) *Decoder {
	timing := DefaultTiming()
	timing.Width = width
	d, err := New(timing)
	c.Assert(err, qt.IsNil)
	return d
}

func feed(d *Decoder, edges []edge) {
	for _, e := range edges {
		d.OnEdge(e.ticks, e.typ)
	}
}

func assertIdle(c *qt.C, d *Decoder) {
	s := d.Snapshot()
	c.Assert(s.Phase, qt.Equals, Idle)
	c.Assert(s.BitsRemaining, qt.Equals, d.Width()-1)
	c.Assert(s.Accumulator, qt.Equals, uint32(0))
	c.Assert(s.Synchronized, qt.IsFalse)
	c.Assert(s.FrameReady, qt.IsFalse)
	c.Assert(s.ErrorLatched, qt.IsFalse)
	c.Assert(s.LastBit, qt.Equals, One)
}

func TestDecodeFrame(t *testing.T) {
	c := qt.New(t)
	d := newDecoder(c, 8)

	sequence := []edge{
		{1800, port.FallingEdge}, // sync
		{900, port.RisingEdge},
		{900, port.FallingEdge}, // 1
		{1800, port.RisingEdge}, // 0
		{1800, port.FallingEdge}, // 1
		{900, port.RisingEdge},
		{900, port.FallingEdge}, // 1
		{1800, port.RisingEdge}, // 0
		{900, port.FallingEdge},
		{900, port.RisingEdge},   // 0
		{1800, port.FallingEdge}, // 1
		{1800, port.RisingEdge},  // 0
	}

	for i, e := range sequence {
		d.OnEdge(e.ticks, e.typ)
		if i < len(sequence)-1 {
			c.Assert(d.Phase(), qt.Not(qt.Equals), FrameReady, qt.Commentf("edge %d", i))
		}
	}

	c.Assert(d.Phase(), qt.Equals, FrameReady)

	raw, ok := d.TakeFrame()
	c.Assert(ok, qt.IsTrue)
	c.Assert(raw, qt.Equals, uint32(0b10110010))

	_, ok = d.TakeFrame()
	c.Assert(ok, qt.IsFalse)
	assertIdle(c, d)
	c.Assert(d.Stats().Frames, qt.Equals, uint64(1))
}

func TestDecodePatterns(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		bits  string
		width int
		want  uint32
	}{
		{bits: "10110010", width: 8, want: 0b10110010},
		{bits: "00000000", width: 8, want: 0},
		{bits: "11111111", width: 8, want: 0xff},
		{bits: "01010101", width: 8, want: 0x55},
		{bits: "1", width: 1, want: 1},
		{bits: "1101010011110", width: LegacyWidth, want: 0b1101010011110},
		{bits: "11110000111100001111000011110000", width: 32, want: 0xf0f0f0f0},
	}

	for _, test := range tests {
		c.Run(test.bits, func(c *qt.C) {
			d := newDecoder(c, test.width)
			feed(d, manchester(test.bits))

			raw, ok := d.TakeFrame()
			c.Assert(ok, qt.IsTrue)
			c.Assert(raw, qt.Equals, test.want)
		})
	}
}

func TestBackToBackFrames(t *testing.T) {
	c := qt.New(t)
	d := newDecoder(c, 8)

	for _, bits := range []string{"10110010", "01100111"} {
		feed(d, manchester(bits))
		raw, ok := d.TakeFrame()
		c.Assert(ok, qt.IsTrue)
		c.Assert(raw, qt.Equals, uint32(parseBits(bits)))
		// line idles until the next frame
		d.OnTimeout()
	}
	c.Assert(d.Stats().Frames, qt.Equals, uint64(2))
	c.Assert(d.Stats().SignalTimeout, qt.Equals, uint64(0))
}

func TestUndrainedFrameIsProtected(t *testing.T) {
	c := qt.New(t)
	d := newDecoder(c, 8)

	feed(d, manchester("10110010"))
	before := d.Snapshot()
	c.Assert(before.Phase, qt.Equals, FrameReady)

	feed(d, manchester("01010101"))
	d.OnEdge(5000, port.RisingEdge)
	c.Assert(d.Snapshot(), qt.DeepEquals, before)
	c.Assert(d.Stats().FrameOverrun, qt.Not(qt.Equals), uint64(0))

	raw, ok := d.TakeFrame()
	c.Assert(ok, qt.IsTrue)
	c.Assert(raw, qt.Equals, uint32(0b10110010))

	_, ok = d.TakeFrame()
	c.Assert(ok, qt.IsFalse)
}

func TestDoubleInvalidResets(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name   string
		second edge
	}{
		{name: "valid falling", second: edge{900, port.FallingEdge}},
		{name: "valid rising", second: edge{1800, port.RisingEdge}},
		{name: "out of range", second: edge{100, port.RisingEdge}},
	}

	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			d := newDecoder(c, 8)

			d.OnEdge(1800, port.FallingEdge) // sync, last bit is 1
			d.OnEdge(1800, port.FallingEdge) // falling long after 1 is invalid
			c.Assert(d.Phase(), qt.Equals, Error)
			c.Assert(d.Snapshot().ErrorLatched, qt.IsTrue)

			d.OnEdge(test.second.ticks, test.second.typ)
			assertIdle(c, d)
			c.Assert(d.Stats().FramingInconsistency, qt.Equals, uint64(1))
		})
	}
}

func TestInvalidTimingResets(t *testing.T) {
	c := qt.New(t)
	d := newDecoder(c, 8)

	edges := manchester("101")
	feed(d, edges)
	c.Assert(d.Phase(), qt.Equals, Accumulating)

	d.OnEdge(1300, port.RisingEdge) // between the windows
	assertIdle(c, d)
	c.Assert(d.Stats().TimingOutOfRange, qt.Equals, uint64(1))
}

func TestTimeoutMidFrame(t *testing.T) {
	c := qt.New(t)
	d := newDecoder(c, 8)

	feed(d, manchester("101"))
	s := d.Snapshot()
	c.Assert(s.BitsRemaining, qt.Equals, 8-1-3)
	c.Assert(s.Accumulator, qt.Equals, uint32(0b101))

	d.OnTimeout()
	assertIdle(c, d)
	c.Assert(d.Stats().SignalTimeout, qt.Equals, uint64(1))

	_, ok := d.TakeFrame()
	c.Assert(ok, qt.IsFalse)

	// the rest of the interrupted frame must not complete anything
	feed(d, manchester("10010")[1:])
	_, ok = d.TakeFrame()
	c.Assert(ok, qt.IsFalse)
}

func TestTimeoutIsIdempotent(t *testing.T) {
	c := qt.New(t)

	setups := map[string]func(d *Decoder){
		"idle":         func(d *Decoder) {},
		"synchronized": func(d *Decoder) { d.OnEdge(1800, port.FallingEdge) },
		"accumulating": func(d *Decoder) { feed(d, manchester("1100")) },
		"error": func(d *Decoder) {
			d.OnEdge(1800, port.FallingEdge)
			d.OnEdge(1800, port.FallingEdge)
		},
		"frame ready": func(d *Decoder) { feed(d, manchester("11001100")) },
	}

	for name, setup := range setups {
		c.Run(name, func(c *qt.C) {
			d := newDecoder(c, 8)
			setup(d)

			for i := 0; i < 3; i++ {
				d.OnTimeout()
				assertIdle(c, d)
			}
		})
	}
}

func TestRisingEdgeBeforeSyncIsIgnored(t *testing.T) {
	c := qt.New(t)
	d := newDecoder(c, 8)

	d.OnEdge(900, port.RisingEdge)
	d.OnEdge(1800, port.RisingEdge)
	d.OnEdge(50000, port.RisingEdge)
	assertIdle(c, d)

	// the sync edge may follow any idle time
	d.OnEdge(60000, port.FallingEdge)
	c.Assert(d.Phase(), qt.Equals, Accumulating)
	c.Assert(d.Snapshot().BitsRemaining, qt.Equals, 7)
}

func TestDisableSuppressesEvents(t *testing.T) {
	c := qt.New(t)
	d := newDecoder(c, 8)

	feed(d, manchester("10"))
	d.Disable()
	c.Assert(d.Enabled(), qt.IsFalse)

	before := d.Snapshot()
	c.Assert(before.Phase, qt.Equals, Idle)
	c.Assert(before.Enabled, qt.IsFalse)

	feed(d, manchester("10110010"))
	d.OnTimeout()
	c.Assert(d.Snapshot(), qt.DeepEquals, before)

	_, ok := d.TakeFrame()
	c.Assert(ok, qt.IsFalse)

	d.Enable()
	c.Assert(d.Enabled(), qt.IsTrue)
	assertIdle(c, d)

	feed(d, manchester("10110010"))
	raw, ok := d.TakeFrame()
	c.Assert(ok, qt.IsTrue)
	c.Assert(raw, qt.Equals, uint32(0b10110010))
}

func TestNewRejectsInvalidTiming(t *testing.T) {
	c := qt.New(t)

	timing := DefaultTiming()
	timing.Width = 33
	_, err := New(timing)
	c.Assert(err, qt.ErrorIs, ErrInvalidTiming)
}

func parseBits(bits string) uint32 {
	var v uint32
	for i := 0; i < len(bits); i++ {
		v <<= 1
		if bits[i] == '1' {
			v |= 1
		}
	}
	return v
}
