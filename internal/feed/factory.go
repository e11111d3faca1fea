package feed

import (
	"go.bug.st/serial"
)

// OpenSerial opens a real serial port at path and returns a Feed reading
// from it.
func OpenSerial(path string, mode *PortMode) (*Feed, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: mode.BaudRate,
		DataBits: mode.DataBits,
	})
	if err != nil {
		return nil, err
	}
	return NewFeed(port), nil
}
