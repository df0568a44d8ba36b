package editor

import (
	"github.com/zurustar/drumvis/pkg/clock"
	"github.com/zurustar/drumvis/pkg/control"
)

// Key is a host-independent key binding.
type Key int

const (
	KeyNone Key = iota
	KeyPlayPause
	KeyStop
	KeyBPMUp
	KeyBPMDown
	KeySpeed1
	KeySpeed2
	KeySpeed3
	KeySpeed4
	KeySpeed5
	KeySpeed6
	KeyFigure
	KeyClear
	KeyQuit
)

// BPM steps for the arrow keys.
const (
	BPMStep      = 1
	BPMShiftStep = 10
)

// CommandFor translates a key press into a command given the current clock
// state. It returns nil for KeyNone and KeyQuit; quitting is up to the host.
func CommandFor(key Key, shift bool, snap clock.Snapshot) control.Command {
	step := BPMStep
	if shift {
		step = BPMShiftStep
	}

	switch key {
	case KeyPlayPause:
		return control.Transport{Action: control.PlayPause}
	case KeyStop:
		return control.Transport{Action: control.Stop}
	case KeyBPMUp:
		return control.BPMChanged{BPM: min(snap.BPM+step, clock.MaxBPM)}
	case KeyBPMDown:
		return control.BPMChanged{BPM: max(snap.BPM-step, clock.MinBPM)}
	case KeySpeed1, KeySpeed2, KeySpeed3, KeySpeed4, KeySpeed5, KeySpeed6:
		return control.SpeedChanged{Speed: clock.Speeds[key-KeySpeed1]}
	case KeyFigure:
		return control.TimeFigureChanged{Figure: snap.Figure.Next().String()}
	case KeyClear:
		return control.ClearRequested{}
	}
	return nil
}

// Press applies the command bound to key.
func (s *Session) Press(key Key, shift bool) error {
	cmd := CommandFor(key, shift, s.Snapshot())
	if cmd == nil {
		return nil
	}
	return s.Handle(cmd)
}
