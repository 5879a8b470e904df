package rc5

import (
	"errors"
	"fmt"
)

// ErrUnsupportedWidth is returned if a frame can't be split into RC5 fields.
var ErrUnsupportedWidth = errors.New("unsupported frame width")

// LegacyWidth is the width of an RC5 frame after the first start bit was used for synchronization:
//  bit 12     field bit (second start bit, inverted command bit 6)
//  bit 11     toggle bit
//  bits 10..6 address
//  bits 5..0  command
const LegacyWidth = 13

// Frame is a decoded frame split into its fields.
type Frame struct {
	Raw     uint32 `json:"raw"`
	Width   int    `json:"width"`
	Field   bool   `json:"field"`
	Toggle  bool   `json:"toggle"`
	Address uint8  `json:"address"`
	Command uint8  `json:"command"`
}

// ParseFrame splits a raw frame into toggle, address and command.
// A cleared field bit means the command is in the extended range 64..127.
// For widths other than LegacyWidth only Raw and Width are set and ErrUnsupportedWidth is returned.
func ParseFrame(raw uint32, width int) (Frame, error) {
	f := Frame{Raw: raw, Width: width}
	if width != LegacyWidth {
		return f, ErrUnsupportedWidth
	}

	f.Field = (raw>>12)&1 == 1
	f.Toggle = (raw>>11)&1 == 1
	f.Address = uint8(raw>>6) & 0x1f
	f.Command = uint8(raw) & 0x3f

	if !f.Field {
		f.Command |= 1 << 6
	}

	return f, nil
}

func (f Frame) String() string {
	if f.Width != LegacyWidth {
		return fmt.Sprintf("raw: 0x%0*x", (f.Width+3)/4, f.Raw)
	}
	return fmt.Sprintf("raw: 0x%04x address: %d command: %d toggle: %v", f.Raw, f.Address, f.Command, f.Toggle)
}
