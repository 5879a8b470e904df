// Package port holds the definition of a physical port
package port

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidEdge is returned if an edge name can't be parsed.
var ErrInvalidEdge = errors.New("invalid edge type")

// EventType indicates the type of change to the line active state.
//
// Note that for active low lines a low line level results in a high active
// state.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates an inactive to active event (low to high).
	RisingEdge
	// FallingEdge indicates an active to inactive event (high to low).
	FallingEdge
)

// Event is a single edge detected on a line.
type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}

func (t EventType) String() string {
	switch t {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	default:
		return "unknown"
	}
}

// ParseEventType converts "rising"/"r" or "falling"/"f" to an EventType.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rising", "r":
		return RisingEdge, nil
	case "falling", "f":
		return FallingEdge, nil
	default:
		return 0, ErrInvalidEdge
	}
}
