//go:build !linux

package raspberry

import (
	"time"

	"rc5rx/pkg/port"
)

// Chip is an emulated chip for development on systems without gpio character devices.
type Chip struct{}

// Line is an emulated line, events are injected with EmuEdge.
type Line struct {
	start time.Time
	C     chan port.Event
}

// Open returns an emulated chip.
func Open(name string) (*Chip, error) {
	return &Chip{}, nil
}

// NewLine creates an emulated line.
func (c *Chip) NewLine(cfg LineConfig) (*Line, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Line{start: time.Now(), C: make(chan port.Event)}, nil
}

// Close releases the Chip.
func (c *Chip) Close() error {
	return nil
}

// EmuEdge emulates an edge on the line.
func (l *Line) EmuEdge(t port.EventType) {
	l.C <- port.Event{Type: t, Timestamp: time.Since(l.start)}
}

// Close closes channel C.
func (l *Line) Close() error {
	close(l.C)
	return nil
}
