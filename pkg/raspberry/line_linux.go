//go:build linux

package raspberry

import (
	"strings"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"
	"rc5rx/pkg/port"
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested line.
type Line struct {
	gpiodLine *gpiod.Line
	// send edge changes to channel
	C chan port.Event
}

// Open opens a GPIO character device, e.g. gpiochip0.
func Open(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name)
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewLine requests control of a single line on a chip.
//   If granted, control is maintained until the Line is closed.
//   Both edges are watched and sent with their kernel timestamp to channel C.
//   There can only be one watcher on the line at a time.
func (c *Chip) NewLine(cfg LineConfig) (*Line, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	line := &Line{
		C: make(chan port.Event)}

	handler := func(evt gpiod.LineEvent) {
		t, ok := eventType(evt.Type)
		if !ok {
			debug.ErrorLog.Printf("invalid line event: %v", evt.Type)
			return
		}

		line.C <- port.Event{Type: t, Timestamp: evt.Timestamp}
	}

	opts := []gpiod.LineReqOption{gpiod.WithEventHandler(handler), gpiod.WithBothEdges, gpiod.AsInput}

	switch strings.ToLower(cfg.Terminator) {
	case PullUp:
		opts = append(opts, gpiod.WithPullUp)
	case PullDown:
		opts = append(opts, gpiod.WithPullDown)
	}

	if cfg.ActiveLow {
		opts = append(opts, gpiod.AsActiveLow)
	}

	var err error
	if line.gpiodLine, err = c.gpiodChip.RequestLine(cfg.Gpio, opts...); err != nil {
		return nil, err
	}

	return line, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Close releases all resources held by the requested line.
//
// Note that this includes waiting for any running event handler to return.
// As a consequence the Close must not be called from the context of the event
// handler - the Close should be called from a different goroutine.
func (l *Line) Close() error {
	if err := l.gpiodLine.Close(); err != nil {
		return err
	}
	close(l.C)
	return nil
}

func eventType(t gpiod.LineEventType) (port.EventType, bool) {
	switch t {
	case gpiod.LineEventRisingEdge:
		return port.RisingEdge, true
	case gpiod.LineEventFallingEdge:
		return port.FallingEdge, true
	default:
		return 0, false
	}
}
