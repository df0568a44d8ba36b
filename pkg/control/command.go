// Package control routes user commands to the playback clock and the MIDI
// asset store.
package control

import (
	"errors"
	"fmt"

	"github.com/zurustar/drumvis/pkg/asset"
)

// ErrInvalidInput is returned for commands carrying out-of-range values.
var ErrInvalidInput = errors.New("invalid input")

// Command is a UI event. Implementations are the types in this file.
type Command interface {
	Name() string
}

// BPMChanged sets the tempo. Valid range is 1..300.
type BPMChanged struct {
	BPM int
}

// SpeedChanged sets the speed multiplier; one of clock.Speeds.
type SpeedChanged struct {
	Speed float64
}

// TimeFigureChanged sets the grid subdivision: "1/4", "1/8" or "1/16".
type TimeFigureChanged struct {
	Figure string
}

// Action is a transport button.
type Action int

const (
	Play Action = iota
	Pause
	PlayPause
	Stop
)

func (a Action) String() string {
	switch a {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case PlayPause:
		return "play/pause"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Transport drives the clock state machine.
type Transport struct {
	Action Action
}

// LoadRequested asks for a MIDI file to be loaded.
type LoadRequested struct {
	Path string
}

// ClearRequested drops the loaded MIDI data.
type ClearRequested struct{}

// LoadCompleted carries the result of an asynchronous load back to the UI
// thread. Seq identifies the request; stale results are ignored.
type LoadCompleted struct {
	Seq   uint64
	Path  string
	Asset *asset.Asset
	Err   error
}

func (BPMChanged) Name() string        { return "BPMChanged" }
func (SpeedChanged) Name() string      { return "SpeedChanged" }
func (TimeFigureChanged) Name() string { return "TimeFigureChanged" }
func (Transport) Name() string         { return "Transport" }
func (LoadRequested) Name() string     { return "LoadRequested" }
func (ClearRequested) Name() string    { return "ClearRequested" }
func (LoadCompleted) Name() string     { return "LoadCompleted" }
