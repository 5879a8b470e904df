// Package capture is the timer/capture stage between an edge source and the rc5 decoder.
// It measures the time between edges, runs the signal timeout
// and hands completed frames to the application.
package capture

import (
	"sync"
	"time"

	"github.com/womat/debug"
	"rc5rx/pkg/port"
	"rc5rx/pkg/rc5"
)

// frameBuffer is the number of frames buffered on channel C.
const frameBuffer = 8

// Decoder is the state machine fed by the Receiver.
type Decoder interface {
	OnEdge(ticks uint32, edge port.EventType)
	OnTimeout()
	TakeFrame() (uint32, bool)
}

// Receiver feeds line events into a decoder.
// Edge and timeout callbacks are delivered from a single go routine, so they never overlap.
type Receiver struct {
	decoder Decoder
	timing  rc5.Timing

	// lastTimestamp is the time of the last detected event.
	lastTimestamp time.Duration

	// C is the channel to send the decoded raw frames
	C chan uint32

	// rx is the channel to receive the line events
	rx <-chan port.Event

	// quit is the channel to stop the Receiver
	quit chan struct{}
	once sync.Once
	// done signals that run() is stopped
	done chan struct{}
}

// New starts a Receiver reading events from c.
func New(c <-chan port.Event, d Decoder, t rc5.Timing) *Receiver {
	r := Receiver{
		decoder: d,
		timing:  t,
		C:       make(chan uint32, frameBuffer),
		rx:      c,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go r.run()
	return &r
}

// Close stops the Receiver and closes C.
func (r *Receiver) Close() error {
	r.once.Do(func() { close(r.quit) })

	// wait until run() is terminated
	<-r.done
	return nil
}

// run receives events and sends them to the decoder.
// The timeout timer is restarted by every edge and fires once per silence.
func (r *Receiver) run() {
	defer close(r.done)
	defer close(r.C)

	timeout := time.NewTimer(r.timing.Timeout)
	defer timeout.Stop()

	for {
		select {
		case <-r.quit:
			return

		case <-timeout.C:
			r.decoder.OnTimeout()

		case evt, open := <-r.rx:
			if !open {
				debug.InfoLog.Print("line closed, receiver stopped")
				return
			}

			if !timeout.Stop() {
				select {
				case <-timeout.C:
				default:
				}
			}
			timeout.Reset(r.timing.Timeout)

			r.handle(evt)
		}
	}
}

// handle converts the time since the last event to ticks and passes the edge to the decoder.
func (r *Receiver) handle(evt port.Event) {
	period := evt.Timestamp - r.lastTimestamp
	r.lastTimestamp = evt.Timestamp

	r.decoder.OnEdge(r.timing.Ticks(period), evt.Type)

	raw, ok := r.decoder.TakeFrame()
	if !ok {
		return
	}

	select {
	case r.C <- raw:
	default:
		debug.ErrorLog.Printf("frame buffer full, frame 0x%x dropped", raw)
	}
}
