package window

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/zurustar/drumvis/pkg/clock"
	"github.com/zurustar/drumvis/pkg/config"
	"github.com/zurustar/drumvis/pkg/control"
	"github.com/zurustar/drumvis/pkg/editor"
	"github.com/zurustar/drumvis/pkg/plugin"
	"github.com/zurustar/drumvis/pkg/render"
	"github.com/zurustar/drumvis/pkg/view"
)

func newSession() *editor.Session {
	return editor.New(plugin.NewProcessor(nil))
}

// writeKick は120BPMで拍ごとにキックが4つ鳴るファイルを書く（2秒）
func writeKick(t *testing.T) string {
	t.Helper()
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	for i := 0; i < 4; i++ {
		tr.Add(0, midi.NoteOn(9, 36, 100))
		tr.Add(480, midi.NoteOff(9, 36))
	}
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

func TestNewGame(t *testing.T) {
	s := newSession()
	game := NewGame(s, 10*time.Second)

	if game.session != s {
		t.Error("game should keep the session")
	}
	if game.timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", game.timeout)
	}
	if w, h := game.Layout(1200, 800); w != 1200 || h != 800 {
		t.Errorf("Layout() = %dx%d, want 1200x800", w, h)
	}
}

func TestBindingFor(t *testing.T) {
	tests := []struct {
		key  ebiten.Key
		want editor.Key
	}{
		{ebiten.KeySpace, editor.KeyPlayPause},
		{ebiten.KeyS, editor.KeyStop},
		{ebiten.KeyUp, editor.KeyBPMUp},
		{ebiten.KeyDown, editor.KeyBPMDown},
		{ebiten.Key1, editor.KeySpeed1},
		{ebiten.Key6, editor.KeySpeed6},
		{ebiten.KeyF, editor.KeyFigure},
		{ebiten.KeyC, editor.KeyClear},
		{ebiten.KeyEscape, editor.KeyQuit},
		{ebiten.KeyQ, editor.KeyQuit},
		{ebiten.KeyA, editor.KeyNone},
		{ebiten.Key7, editor.KeyNone},
	}
	for _, tt := range tests {
		if got := bindingFor(tt.key); got != tt.want {
			t.Errorf("bindingFor(%v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGame_Update(t *testing.T) {
	start := time.Unix(100, 0)

	tests := []struct {
		name    string
		presses []keyPress
		elapsed time.Duration
		timeout time.Duration
		wantEnd bool
		check   func(clock.Snapshot) bool
	}{
		{
			name:  "入力なし",
			check: func(s clock.Snapshot) bool { return s.State == clock.Stopped },
		},
		{
			name:    "Shift+UpでBPM+10",
			presses: []keyPress{{key: editor.KeyBPMUp, shift: true}},
			check:   func(s clock.Snapshot) bool { return s.BPM == 130 },
		},
		{
			name:    "速度と拍の切り替え",
			presses: []keyPress{{key: editor.KeySpeed6}, {key: editor.KeyFigure}},
			check:   func(s clock.Snapshot) bool { return s.Speed == 2 && s.Figure == clock.Eighth },
		},
		{
			name:    "Escで終了",
			presses: []keyPress{{key: editor.KeyQuit}},
			wantEnd: true,
		},
		{
			name:    "タイムアウトで終了",
			elapsed: 5 * time.Second,
			timeout: 5 * time.Second,
			wantEnd: true,
		},
		{
			name:    "タイムアウト前は継続",
			elapsed: 4 * time.Second,
			timeout: 5 * time.Second,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession()
			game := NewGame(s, tt.timeout)
			game.startTime = start

			err := game.update(tt.presses, start.Add(tt.elapsed))
			if tt.wantEnd {
				if !errors.Is(err, ebiten.Termination) {
					t.Fatalf("update() = %v, want ebiten.Termination", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("update() unexpected error: %v", err)
			}
			if tt.check != nil && !tt.check(s.Snapshot()) {
				t.Errorf("unexpected snapshot %+v", s.Snapshot())
			}
		})
	}
}

func TestGame_UpdateAdvancesPlayback(t *testing.T) {
	base := time.Unix(100, 0)
	now := base
	s := editor.New(plugin.NewProcessor(nil), editor.WithNowFunc(func() time.Time { return now }))
	if err := s.Load(writeKick(t)); err != nil {
		t.Fatal(err)
	}

	game := NewGame(s, 0)
	if err := game.update([]keyPress{{key: editor.KeyPlayPause}}, now); err != nil {
		t.Fatal(err)
	}
	now = base.Add(500 * time.Millisecond)
	if err := game.update(nil, now); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().Time; got < 0.49 || got > 0.51 {
		t.Errorf("Time = %v, want 0.5", got)
	}
}

func TestGame_DrawStatusBar(t *testing.T) {
	s := newSession()
	game := NewGame(s, 0)
	rec := render.NewRecorder(400, 300)

	game.draw(rec)

	var status bool
	for _, op := range rec.Operations("Text") {
		if op.Args["text"] == s.Status() {
			status = true
			if y := op.Args["y"].(float64); y < 300-statusBarHeight {
				t.Errorf("status drawn at y=%v, want inside the bar", y)
			}
		}
	}
	if !status {
		t.Error("status line not drawn")
	}
}

func TestSplitStatusBar(t *testing.T) {
	tests := []struct {
		screen    view.Rect
		wantAreaH float64
		wantBarH  float64
	}{
		{view.Rect{W: 1200, H: 800}, 780, 20},
		{view.Rect{W: 100, H: 10}, 0, 10},
		{view.Rect{}, 0, 0},
	}
	for _, tt := range tests {
		area, bar := splitStatusBar(tt.screen)
		if area.H != tt.wantAreaH || bar.H != tt.wantBarH {
			t.Errorf("splitStatusBar(%+v) heights = %v/%v, want %v/%v", tt.screen, area.H, bar.H, tt.wantAreaH, tt.wantBarH)
		}
		if bar.Y != area.Bottom() {
			t.Errorf("bar should start where the area ends: %v vs %v", bar.Y, area.Bottom())
		}
	}
}

func TestRunHeadless_Commands(t *testing.T) {
	s := newSession()
	path := writeKick(t)
	input := strings.Join([]string{
		"load " + path,
		"bpm 90",
		"bpm 999",
		"rewind",
		"status",
		"quit",
		"bpm 60",
	}, "\n")
	var out bytes.Buffer

	cfg := config.Default().Window
	if err := RunHeadless(s, cfg, 5*time.Second, strings.NewReader(input), &out); err != nil {
		t.Fatalf("RunHeadless() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"Loaded kick.mid", "90 BPM", "Error:", "unknown command"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if s.Snapshot().BPM != 90 {
		t.Errorf("BPM = %d, want 90 (commands after quit are ignored)", s.Snapshot().BPM)
	}
}

func TestRunHeadless_Timeout(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	start := time.Now()
	err := RunHeadless(newSession(), config.Default().Window, 150*time.Millisecond, pr, io.Discard)
	if err != nil {
		t.Fatalf("RunHeadless() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond || elapsed > 2*time.Second {
		t.Errorf("returned after %v, want about 150ms", elapsed)
	}
}

func TestRunHeadless_EndsWithPlayback(t *testing.T) {
	s := newSession()
	if err := s.Load(writeKick(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.Handle(control.SpeedChanged{Speed: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Handle(control.Transport{Action: control.Play}); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- RunHeadless(s, config.Default().Window, 0, strings.NewReader(""), io.Discard)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunHeadless() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunHeadless did not return after playback finished")
	}
	if st := s.Snapshot().State; st != clock.Stopped {
		t.Errorf("State = %v, want stopped", st)
	}
}
