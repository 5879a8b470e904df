package capture

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"rc5rx/pkg/port"
	"rc5rx/pkg/rc5"
)

// frameEvents returns timestamped edges of 0b10110010, starting at start.
func frameEvents(start time.Duration) []port.Event {
	const t = 900 * time.Microsecond

	gaps := []struct {
		d   time.Duration
		typ port.EventType
	}{
		{0, port.FallingEdge},
		{t, port.RisingEdge}, {t, port.FallingEdge},
		{2 * t, port.RisingEdge},
		{2 * t, port.FallingEdge},
		{t, port.RisingEdge}, {t, port.FallingEdge},
		{2 * t, port.RisingEdge},
		{t, port.FallingEdge}, {t, port.RisingEdge},
		{2 * t, port.FallingEdge},
		{2 * t, port.RisingEdge},
	}

	events := make([]port.Event, 0, len(gaps))
	ts := start
	for _, g := range gaps {
		ts += g.d
		events = append(events, port.Event{Timestamp: ts, Type: g.typ})
	}
	return events
}

func setup(c *qt.C, timeout time.Duration) (chan port.Event, *rc5.Decoder, *Receiver) {
	timing := rc5.DefaultTiming()
	timing.Width = 8
	timing.Timeout = timeout

	d, err := rc5.New(timing)
	c.Assert(err, qt.IsNil)

	line := make(chan port.Event)
	r := New(line, d, timing)
	c.Cleanup(func() { _ = r.Close() })
	return line, d, r
}

func receive(c *qt.C, r *Receiver) uint32 {
	select {
	case raw := <-r.C:
		return raw
	case <-time.After(time.Second):
		c.Fatal("no frame received")
	}
	return 0
}

func TestReceiveFrames(t *testing.T) {
	c := qt.New(t)
	line, d, r := setup(c, time.Minute)

	start := 10 * time.Millisecond
	for i := 0; i < 3; i++ {
		for _, evt := range frameEvents(start) {
			line <- evt
		}
		c.Assert(receive(c, r), qt.Equals, uint32(0b10110010))
		start += 100 * time.Millisecond
	}

	c.Assert(d.Stats().Frames, qt.Equals, uint64(3))
}

func TestTimeoutDropsPartialFrame(t *testing.T) {
	c := qt.New(t)
	line, d, r := setup(c, 20*time.Millisecond)

	events := frameEvents(time.Millisecond)
	for _, evt := range events[:6] {
		line <- evt
	}

	waitFor(c, func() bool { return d.Stats().SignalTimeout == 1 })
	c.Assert(d.Phase(), qt.Equals, rc5.Idle)

	// a complete frame afterwards is decoded normally
	for _, evt := range frameEvents(time.Second) {
		line <- evt
	}
	c.Assert(receive(c, r), qt.Equals, uint32(0b10110010))
}

func TestCloseStopsReceiver(t *testing.T) {
	c := qt.New(t)
	_, _, r := setup(c, time.Minute)

	c.Assert(r.Close(), qt.IsNil)
	c.Assert(r.Close(), qt.IsNil)

	_, open := <-r.C
	c.Assert(open, qt.IsFalse)
}

func TestClosedLineStopsReceiver(t *testing.T) {
	c := qt.New(t)
	line, _, r := setup(c, time.Minute)

	close(line)

	select {
	case _, open := <-r.C:
		c.Assert(open, qt.IsFalse)
	case <-time.After(time.Second):
		c.Fatal("receiver still running")
	}
}

func waitFor(c *qt.C, cond func() bool) {
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			c.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}
