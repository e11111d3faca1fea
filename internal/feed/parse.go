package feed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/banshee-data/pose.report/internal/telemetry"
)

// FrameType identifies the kind of record carried on one line.
type FrameType int

const (
	FrameControl FrameType = iota
	FrameObservations
	FrameFix
)

// Frame is one parsed telemetry record. Only the field matching Type is
// populated.
type Frame struct {
	Type         FrameType
	Control      telemetry.Control
	Observations []mcl.Observation
	Fix          mcl.Pose
}

// ParseFrame parses one line of the feed wire format:
//
//	CTL,<velocity>,<yawrate>
//	OBS,<x>,<y>;<x>,<y>;...            (OBS with no pairs is a valid empty scan)
//	GPS,<x>,<y>,<theta>
//
// Blank lines and lines with an unknown tag are rejected so a desynced
// stream surfaces instead of being silently swallowed.
func ParseFrame(line string) (Frame, error) {
	line = strings.TrimSpace(line)
	tag, rest, _ := strings.Cut(line, ",")
	switch tag {
	case "CTL":
		parts := strings.Split(rest, ",")
		if len(parts) != 2 {
			return Frame{}, fmt.Errorf("feed: CTL wants 2 fields, got %d", len(parts))
		}
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Frame{}, fmt.Errorf("feed: CTL velocity: %w", err)
		}
		w, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Frame{}, fmt.Errorf("feed: CTL yawrate: %w", err)
		}
		return Frame{Type: FrameControl, Control: telemetry.Control{Velocity: v, YawRate: w}}, nil

	case "OBS":
		frame := Frame{Type: FrameObservations, Observations: []mcl.Observation{}}
		if rest == "" {
			return frame, nil
		}
		for _, pair := range strings.Split(rest, ";") {
			xs, ys, ok := strings.Cut(pair, ",")
			if !ok {
				return Frame{}, fmt.Errorf("feed: OBS pair %q wants x,y", pair)
			}
			x, err := strconv.ParseFloat(xs, 64)
			if err != nil {
				return Frame{}, fmt.Errorf("feed: OBS x: %w", err)
			}
			y, err := strconv.ParseFloat(ys, 64)
			if err != nil {
				return Frame{}, fmt.Errorf("feed: OBS y: %w", err)
			}
			frame.Observations = append(frame.Observations, mcl.Observation{X: x, Y: y})
		}
		return frame, nil

	case "GPS":
		parts := strings.Split(rest, ",")
		if len(parts) != 3 {
			return Frame{}, fmt.Errorf("feed: GPS wants 3 fields, got %d", len(parts))
		}
		vals := make([]float64, 3)
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return Frame{}, fmt.Errorf("feed: GPS field %d: %w", i, err)
			}
			vals[i] = v
		}
		return Frame{Type: FrameFix, Fix: mcl.Pose{X: vals[0], Y: vals[1], Theta: vals[2]}}, nil
	}
	return Frame{}, fmt.Errorf("feed: unknown frame tag %q", tag)
}
