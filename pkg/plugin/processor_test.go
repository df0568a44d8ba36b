package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/zurustar/drumvis/pkg/asset"
)

func TestProcessor_Info(t *testing.T) {
	p := NewProcessor(nil)
	if p.Name() != Name {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.AcceptsMIDI() || p.ProducesMIDI() || p.IsMIDIEffect() {
		t.Error("visualizer neither consumes nor produces MIDI")
	}
	if p.TailSeconds() != 0 {
		t.Errorf("TailSeconds() = %v, want 0", p.TailSeconds())
	}

	p.PrepareToPlay(48000, 256)
	if p.SampleRate() != 48000 || p.BlockSize() != 256 {
		t.Errorf("PrepareToPlay not recorded: %v %d", p.SampleRate(), p.BlockSize())
	}
	p.ReleaseResources()
}

func TestProcessor_IsLayoutSupported(t *testing.T) {
	tests := []struct {
		in, out int
		want    bool
	}{
		{1, 1, true},
		{2, 2, true},
		{1, 2, false},
		{2, 1, false},
		{0, 0, false},
		{6, 6, false},
	}
	p := NewProcessor(nil)
	for _, tt := range tests {
		if got := p.IsLayoutSupported(tt.in, tt.out); got != tt.want {
			t.Errorf("IsLayoutSupported(%d, %d) = %v, want %v", tt.in, tt.out, got, tt.want)
		}
	}
}

func TestProcessor_ProcessBlockPassesThrough(t *testing.T) {
	p := NewProcessor(nil)
	in := [][]float32{{0.1, -0.2, 0.3}, {0.5, 0.5, -0.5}}
	out := [][]float32{make([]float32, 3), make([]float32, 3), {9, 9, 9}}

	p.ProcessBlock(in, out)

	for ch := 0; ch < 2; ch++ {
		for i := range in[ch] {
			if out[ch][i] != in[ch][i] {
				t.Errorf("out[%d][%d] = %v, want %v", ch, i, out[ch][i], in[ch][i])
			}
		}
	}
	for i, v := range out[2] {
		if v != 0 {
			t.Errorf("extra output sample %d = %v, want silence", i, v)
		}
	}
}

func TestProcessor_ProcessBlockInPlace(t *testing.T) {
	buf := [][]float32{{0.25, 0.5}}
	NewProcessor(nil).ProcessBlock(buf, buf)
	if buf[0][0] != 0.25 || buf[0][1] != 0.5 {
		t.Errorf("in-place processing changed audio: %v", buf[0])
	}
}

func TestProcessor_LoadAndClear(t *testing.T) {
	p := NewProcessor(nil)
	if p.HasMIDILoaded() || p.LoadedFileName() != asset.NoFileName {
		t.Fatal("new processor should have nothing loaded")
	}

	path := writeFixture(t)
	a, err := p.LoadMIDIFile(path)
	if err != nil {
		t.Fatalf("LoadMIDIFile() error = %v", err)
	}
	if !p.HasMIDILoaded() || p.LoadedFileName() != "kick.mid" || p.Current() != a {
		t.Error("processor should expose the loaded asset")
	}

	p.ClearMIDIData()
	if p.HasMIDILoaded() {
		t.Error("ClearMIDIData should drop the asset")
	}

	_, err = p.LoadMIDIFile(filepath.Join(t.TempDir(), "nope.mid"))
	if !errors.Is(err, asset.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func writeFixture(t *testing.T) string {
	t.Helper()
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, midi.NoteOn(9, 36, 110))
	tr.Add(120, midi.NoteOff(9, 36))
	tr.Close(0)
	if err := sm.Add(tr); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "kick.mid")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := sm.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	return path
}
