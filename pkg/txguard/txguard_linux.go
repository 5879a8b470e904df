//go:build linux

package txguard

import (
	"github.com/warthog618/gpio"
)

// Pin watches the "transmitter active" pin (high while sending).
type Pin struct {
	*Guard
	gpioPin *gpio.Pin
}

// Open maps the gpio memory and watches pin.
// The current level is applied before Open returns.
func Open(pin int, sw Switch) (*Pin, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}

	p := &Pin{Guard: newGuard(sw), gpioPin: gpio.NewPin(pin)}
	p.gpioPin.Input()
	p.Set(bool(p.gpioPin.Read()))

	if err := p.gpioPin.Watch(gpio.EdgeBoth, func(g *gpio.Pin) {
		p.Set(bool(g.Read()))
	}); err != nil {
		_ = gpio.Close()
		return nil, err
	}

	return p, nil
}

// Close removes the watch and unmaps the gpio memory.
func (p *Pin) Close() error {
	p.gpioPin.Unwatch()
	return gpio.Close()
}
