// Package raspberry is the watcher for gpio ports
package raspberry

import (
	"fmt"
	"strings"
)

// ErrInvalidParam is returned for an unknown line terminator.
var ErrInvalidParam = fmt.Errorf("invalid parameters")

// Terminator values of a line.
const (
	PullUp   = "pullup"
	PullDown = "pulldown"
	NoPull   = "none"
)

// LineConfig defines the line the IR receiver is connected to.
type LineConfig struct {
	// Gpio is the line offset on the chip (BCM number on a Raspberry Pi).
	Gpio int
	// Terminator is the bias of the line: pullup, pulldown or none.
	Terminator string
	// ActiveLow inverts the line, most IR receiver modules pull the line low while a carrier is detected.
	ActiveLow bool
}

// Validate checks the terminator.
func (cfg LineConfig) Validate() error {
	switch strings.ToLower(cfg.Terminator) {
	case PullUp, PullDown, NoPull:
	default:
		return fmt.Errorf("terminator %q: %w", cfg.Terminator, ErrInvalidParam)
	}

	if cfg.Gpio < 0 {
		return fmt.Errorf("gpio %d: %w", cfg.Gpio, ErrInvalidParam)
	}
	return nil
}
