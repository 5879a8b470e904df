//go:build !linux

package txguard

// Pin is not available without gpio memory.
type Pin struct {
	*Guard
}

// Open returns ErrNotSupported.
func Open(pin int, sw Switch) (*Pin, error) {
	return nil, ErrNotSupported
}

// Close does nothing.
func (p *Pin) Close() error {
	return nil
}
