package asset

import (
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const testPPQ = 960

// note is a fixture note-on positioned in ticks; off follows after dur ticks.
type note struct {
	tick uint32
	key  uint8
	vel  uint8
	dur  uint32
}

// writeSMF writes a format 1 file: track 0 carries the name and optional tempo,
// each entry of noteTracks becomes one further track.
func writeSMF(t *testing.T, name string, bpm float64, noteTracks ...[]note) string {
	t.Helper()

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(testPPQ)

	var track0 smf.Track
	track0.Add(0, smf.MetaTrackSequenceName("conductor"))
	if bpm > 0 {
		track0.Add(0, smf.MetaTempo(bpm))
	}
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		t.Fatalf("add tempo track: %v", err)
	}

	for _, notes := range noteTracks {
		var tr smf.Track
		var pos uint32
		for _, n := range notes {
			tr.Add(n.tick-pos, midi.NoteOn(0, n.key, n.vel))
			tr.Add(n.dur, midi.NoteOff(0, n.key))
			pos = n.tick + n.dur
		}
		tr.Close(0)
		if err := sm.Add(tr); err != nil {
			t.Fatalf("add note track: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := sm.WriteFile(path); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// drumFixture is two tracks at 100 BPM with kick/snare/tom at 0.5s, 1.0s, 1.5s.
// At 100 BPM and 960 PPQ one second is 1600 ticks.
func drumFixture(t *testing.T) string {
	t.Helper()
	return writeSMF(t, "drums.mid", 100, []note{
		{tick: 800, key: 36, vel: 100, dur: 100},
		{tick: 1600, key: 38, vel: 90, dur: 100},
		{tick: 2400, key: 40, vel: 80, dur: 100},
	})
}
