package control

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    Command
		wantErr bool
	}{
		{"play", Transport{Action: Play}, false},
		{"  PAUSE ", Transport{Action: Pause}, false},
		{"toggle", Transport{Action: PlayPause}, false},
		{"stop", Transport{Action: Stop}, false},
		{"clear", ClearRequested{}, false},
		{"bpm 90", BPMChanged{BPM: 90}, false},
		{"bpm 400", BPMChanged{BPM: 400}, false},
		{"speed 1.5", SpeedChanged{Speed: 1.5}, false},
		{"speed 2x", SpeedChanged{Speed: 2}, false},
		{"figure 1/16", TimeFigureChanged{Figure: "1/16"}, false},
		{"load /tmp/my song.mid", LoadRequested{Path: "/tmp/my song.mid"}, false},
		{"bpm fast", nil, true},
		{"speed", nil, true},
		{"", nil, true},
		{"rewind", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseLine(tt.line)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseLine(%q) error = %v, want ErrInvalidInput", tt.line, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLine(%q) unexpected error: %v", tt.line, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseLine(%q) = %#v, want %#v", tt.line, got, tt.want)
		}
	}
}
