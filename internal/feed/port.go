// Package feed streams live telemetry frames (controls, observations, GPS
// fixes) from a serial line into the localizer. A frame is one newline
// terminated record; see ParseFrame for the wire format.
package feed

import "io"

// Porter is the minimal interface the feed needs from a serial port. The
// abstraction keeps the monitor loop testable without hardware attached.
type Porter interface {
	io.Reader
	io.Closer
}

// PortMode holds serial port configuration parameters.
type PortMode struct {
	BaudRate int
	DataBits int
}

// DefaultPortMode returns the mode used by the telemetry bridge firmware.
func DefaultPortMode() *PortMode {
	return &PortMode{
		BaudRate: 115200,
		DataBits: 8,
	}
}
