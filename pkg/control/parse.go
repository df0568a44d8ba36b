package control

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLine reads a text command, as typed into the headless console:
//
//	play | pause | toggle | stop | clear
//	bpm <n> | speed <x> | figure <1/4|1/8|1/16> | load <path>
//
// Values are checked by Dispatch, not here.
func ParseLine(line string) (Command, error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "play":
		return Transport{Action: Play}, nil
	case "pause":
		return Transport{Action: Pause}, nil
	case "toggle":
		return Transport{Action: PlayPause}, nil
	case "stop":
		return Transport{Action: Stop}, nil
	case "clear":
		return ClearRequested{}, nil
	case "bpm":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: bpm %q", ErrInvalidInput, arg)
		}
		return BPMChanged{BPM: n}, nil
	case "speed":
		x, err := strconv.ParseFloat(strings.TrimSuffix(arg, "x"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: speed %q", ErrInvalidInput, arg)
		}
		return SpeedChanged{Speed: x}, nil
	case "figure":
		return TimeFigureChanged{Figure: arg}, nil
	case "load":
		return LoadRequested{Path: arg}, nil
	case "":
		return nil, fmt.Errorf("%w: empty command", ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrInvalidInput, verb)
	}
}
