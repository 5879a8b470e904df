// Package replay decodes recorded edge captures offline.
//
// A capture file is yaml:
//  tickfrequency: 1000000
//  records:
//    - {ticks: 1800, edge: falling}
//    - {ticks: 900, edge: rising}
//    - {timeout: true}
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
	"rc5rx/pkg/port"
)

// ErrEmptyCapture is returned for a capture without records.
var ErrEmptyCapture = errors.New("capture has no records")

// Decoder is the state machine a capture is fed into.
type Decoder interface {
	OnEdge(ticks uint32, edge port.EventType)
	OnTimeout()
	TakeFrame() (uint32, bool)
}

// Record is one edge or a timeout.
type Record struct {
	Ticks   uint32 `yaml:"ticks"`
	Edge    string `yaml:"edge"`
	Timeout bool   `yaml:"timeout"`
}

// Capture is a recorded sequence of edges.
type Capture struct {
	// TickFrequency is the clock the ticks were measured with, 0 means the decoder default.
	TickFrequency uint32   `yaml:"tickfrequency"`
	Records       []Record `yaml:"records"`
}

// Load reads and checks a capture.
func Load(r io.Reader) (*Capture, error) {
	var c Capture

	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}

	if len(c.Records) == 0 {
		return nil, ErrEmptyCapture
	}

	for i, rec := range c.Records {
		if rec.Timeout {
			continue
		}
		if _, err := port.ParseEventType(rec.Edge); err != nil {
			return nil, fmt.Errorf("record %d: %q: %w", i, rec.Edge, err)
		}
	}

	return &c, nil
}

// LoadFile reads a capture file.
func LoadFile(name string) (*Capture, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return Load(file)
}

// Run feeds all records into d and returns the frames in the order they completed.
func (c *Capture) Run(d Decoder) []uint32 {
	var frames []uint32

	for _, rec := range c.Records {
		if rec.Timeout {
			d.OnTimeout()
			continue
		}

		// checked by Load
		edge, _ := port.ParseEventType(rec.Edge)
		d.OnEdge(rec.Ticks, edge)

		if raw, ok := d.TakeFrame(); ok {
			frames = append(frames, raw)
		}
	}

	return frames
}
