package control

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/zurustar/drumvis/pkg/asset"
	"github.com/zurustar/drumvis/pkg/clock"
)

// fakeLibrary serves assets from memory.
type fakeLibrary struct {
	mu      sync.Mutex
	files   map[string]*asset.Asset
	current *asset.Asset
	clears  int
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{files: map[string]*asset.Asset{}, current: asset.Empty}
}

func (f *fakeLibrary) lookup(path string) (*asset.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", asset.ErrNotFound, path)
	}
	return a, nil
}

func (f *fakeLibrary) LoadMIDIFile(path string) (*asset.Asset, error) {
	a, err := f.lookup(path)
	if err != nil {
		return nil, err
	}
	f.SetMIDIData(a)
	return a, nil
}

func (f *fakeLibrary) SetMIDIData(a *asset.Asset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a == nil {
		a = asset.Empty
	}
	f.current = a
}

func (f *fakeLibrary) ClearMIDIData() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = asset.Empty
	f.clears++
}

func (f *fakeLibrary) Current() *asset.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func testAsset(path string, tempo, length float64) *asset.Asset {
	return asset.New(path, []asset.Track{{Events: []asset.NoteEvent{
		{Kind: asset.NoteOn, Pitch: 36, Velocity: 100, Time: 0},
		{Kind: asset.NoteOff, Pitch: 36, Time: length},
	}}}, tempo)
}

func TestDispatch_Settings(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr error
		check   func(s clock.Snapshot) bool
	}{
		{"valid BPM", BPMChanged{BPM: 90}, nil, func(s clock.Snapshot) bool { return s.BPM == 90 }},
		{"minimum BPM", BPMChanged{BPM: 1}, nil, func(s clock.Snapshot) bool { return s.BPM == 1 }},
		{"maximum BPM", BPMChanged{BPM: 300}, nil, func(s clock.Snapshot) bool { return s.BPM == 300 }},
		{"zero BPM rejected", BPMChanged{BPM: 0}, ErrInvalidInput, func(s clock.Snapshot) bool { return s.BPM == 120 }},
		{"huge BPM rejected", BPMChanged{BPM: 301}, ErrInvalidInput, func(s clock.Snapshot) bool { return s.BPM == 120 }},
		{"valid speed", SpeedChanged{Speed: 0.75}, nil, func(s clock.Snapshot) bool { return s.Speed == 0.75 }},
		{"unknown speed rejected", SpeedChanged{Speed: 3}, ErrInvalidInput, func(s clock.Snapshot) bool { return s.Speed == 1 }},
		{"valid figure", TimeFigureChanged{Figure: "1/16"}, nil, func(s clock.Snapshot) bool { return s.Figure == clock.Sixteenth }},
		{"figure with spaces", TimeFigureChanged{Figure: " 1/8 "}, nil, func(s clock.Snapshot) bool { return s.Figure == clock.Eighth }},
		{"unknown figure rejected", TimeFigureChanged{Figure: "3/4"}, ErrInvalidInput, func(s clock.Snapshot) bool { return s.Figure == clock.Quarter }},
		{"empty path rejected", LoadRequested{Path: "  "}, ErrInvalidInput, func(s clock.Snapshot) bool { return true }},
		{"unknown transport rejected", Transport{Action: Action(42)}, ErrInvalidInput, func(s clock.Snapshot) bool { return s.State == clock.Stopped }},
		{"nil command rejected", nil, ErrInvalidInput, func(s clock.Snapshot) bool { return true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.New()
			d := NewDispatcher(clk, newFakeLibrary())
			err := d.Dispatch(tt.cmd)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Dispatch(%v) error = %v", tt.cmd, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Dispatch(%v) error = %v, want %v", tt.cmd, err, tt.wantErr)
			}
			if s := clk.Snapshot(); !tt.check(s) {
				t.Errorf("unexpected clock state %+v", s)
			}
		})
	}
}

func TestDispatch_Transport(t *testing.T) {
	clk := clock.New()
	clk.SetLength(10)
	d := NewDispatcher(clk, newFakeLibrary())

	steps := []struct {
		action Action
		want   clock.State
	}{
		{Play, clock.Playing},
		{Pause, clock.Paused},
		{PlayPause, clock.Playing},
		{PlayPause, clock.Paused},
		{Stop, clock.Stopped},
		{Pause, clock.Stopped},
	}
	for i, st := range steps {
		if err := d.Dispatch(Transport{Action: st.action}); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got := clk.State(); got != st.want {
			t.Errorf("step %d (%v): state = %v, want %v", i, st.action, got, st.want)
		}
	}
}

func TestDispatch_SyncLoadAdoptsTempoAndLength(t *testing.T) {
	clk := clock.New()
	lib := newFakeLibrary()
	lib.files["drums.mid"] = testAsset("drums.mid", 100.7, 8)
	d := NewDispatcher(clk, lib)

	clk.SetLength(100)
	clk.Start()
	clk.Tick(2 * time.Second)

	if err := d.Dispatch(LoadRequested{Path: "drums.mid"}); err != nil {
		t.Fatalf("Dispatch(LoadRequested) error = %v", err)
	}
	s := clk.Snapshot()
	if s.State != clock.Stopped || s.Time != 0 {
		t.Errorf("load should stop the clock: %+v", s)
	}
	if s.Length != 8 {
		t.Errorf("Length = %v, want 8", s.Length)
	}
	if s.BPM != 100 {
		t.Errorf("BPM = %d, want 100 (truncated file tempo)", s.BPM)
	}
	if lib.Current().Path() != "drums.mid" {
		t.Error("library should hold the new asset")
	}
}

func TestDispatch_DefaultTempoKeepsUserBPM(t *testing.T) {
	clk := clock.New()
	lib := newFakeLibrary()
	lib.files["a.mid"] = testAsset("a.mid", 120, 4)
	d := NewDispatcher(clk, lib)

	if err := d.Dispatch(BPMChanged{BPM: 95}); err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(LoadRequested{Path: "a.mid"}); err != nil {
		t.Fatal(err)
	}
	if got := clk.Snapshot().BPM; got != 95 {
		t.Errorf("BPM = %d, want user value 95 kept for a 120 BPM file", got)
	}
}

func TestDispatch_SyncLoadFailure(t *testing.T) {
	clk := clock.New()
	lib := newFakeLibrary()
	lib.files["ok.mid"] = testAsset("ok.mid", 120, 4)
	d := NewDispatcher(clk, lib)
	if err := d.Dispatch(LoadRequested{Path: "ok.mid"}); err != nil {
		t.Fatal(err)
	}

	err := d.Dispatch(LoadRequested{Path: "missing.mid"})
	if !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if lib.Current().Path() != "ok.mid" || clk.Snapshot().Length != 4 {
		t.Error("failed load should keep the previous asset and length")
	}
}

func TestDispatch_Clear(t *testing.T) {
	clk := clock.New()
	lib := newFakeLibrary()
	lib.files["a.mid"] = testAsset("a.mid", 120, 4)
	d := NewDispatcher(clk, lib)
	if err := d.Dispatch(LoadRequested{Path: "a.mid"}); err != nil {
		t.Fatal(err)
	}
	clk.Start()

	for i := 0; i < 2; i++ {
		if err := d.Dispatch(ClearRequested{}); err != nil {
			t.Fatal(err)
		}
	}
	s := clk.Snapshot()
	if lib.Current().HasLoaded() || s.State != clock.Stopped || s.Length != 0 {
		t.Errorf("after clear: loaded=%v state=%v length=%v", lib.Current().HasLoaded(), s.State, s.Length)
	}
}

func TestDispatch_AsyncLoad(t *testing.T) {
	clk := clock.New()
	lib := newFakeLibrary()
	lib.files["song.mid"] = testAsset("song.mid", 140, 6)
	q := NewQueue()
	d := NewDispatcher(clk, lib, WithAsyncLoads(q), WithLoadFunc(lib.lookup))

	if !d.Async() {
		t.Fatal("dispatcher should be async")
	}
	if err := d.Dispatch(LoadRequested{Path: "song.mid"}); err != nil {
		t.Fatal(err)
	}
	d.Wait()

	if lib.Current().HasLoaded() {
		t.Fatal("async load must not swap the asset before the result is dispatched")
	}
	cmds := q.Drain()
	if len(cmds) != 1 {
		t.Fatalf("queue has %d commands, want 1", len(cmds))
	}
	if err := d.Dispatch(cmds[0]); err != nil {
		t.Fatal(err)
	}
	if lib.Current().Path() != "song.mid" || clk.Snapshot().BPM != 140 || clk.Snapshot().Length != 6 {
		t.Errorf("async result not applied: path=%q snap=%+v", lib.Current().Path(), clk.Snapshot())
	}
}

func TestDispatch_AsyncLoadFailureAndStaleResults(t *testing.T) {
	clk := clock.New()
	lib := newFakeLibrary()
	lib.files["new.mid"] = testAsset("new.mid", 120, 3)
	q := NewQueue()
	d := NewDispatcher(clk, lib, WithAsyncLoads(q), WithLoadFunc(lib.lookup))

	if err := d.Dispatch(LoadRequested{Path: "gone.mid"}); err != nil {
		t.Fatal(err)
	}
	d.Wait()
	failed, _ := q.Pop()
	if err := d.Dispatch(failed); !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	// a later request makes earlier results stale
	stale := LoadCompleted{Seq: 1, Path: "old.mid", Asset: testAsset("old.mid", 80, 9)}
	if err := d.Dispatch(LoadRequested{Path: "new.mid"}); err != nil {
		t.Fatal(err)
	}
	d.Wait()
	if err := d.Dispatch(stale); err != nil {
		t.Fatal(err)
	}
	if lib.Current().HasLoaded() {
		t.Error("stale result should be ignored")
	}
	fresh, _ := q.Pop()
	if err := d.Dispatch(fresh); err != nil {
		t.Fatal(err)
	}
	if lib.Current().Path() != "new.mid" {
		t.Errorf("Path() = %q, want new.mid", lib.Current().Path())
	}
}

func TestDispatch_ClearOutdatesLoadInFlight(t *testing.T) {
	clk := clock.New()
	lib := newFakeLibrary()
	lib.files["late.mid"] = testAsset("late.mid", 120, 5)
	q := NewQueue()
	d := NewDispatcher(clk, lib, WithAsyncLoads(q), WithLoadFunc(lib.lookup))

	if err := d.Dispatch(LoadRequested{Path: "late.mid"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(ClearRequested{}); err != nil {
		t.Fatal(err)
	}
	d.Wait()
	for _, cmd := range q.Drain() {
		if err := d.Dispatch(cmd); err != nil {
			t.Fatal(err)
		}
	}
	if lib.Current().HasLoaded() || clk.Snapshot().Length != 0 {
		t.Errorf("load finishing after clear was applied: path=%q length=%v", lib.Current().Path(), clk.Snapshot().Length)
	}
}

func TestDispatch_DirectResultOutdatesLoadInFlight(t *testing.T) {
	clk := clock.New()
	lib := newFakeLibrary()
	lib.files["async.mid"] = testAsset("async.mid", 90, 7)
	q := NewQueue()
	d := NewDispatcher(clk, lib, WithAsyncLoads(q), WithLoadFunc(lib.lookup))

	if err := d.Dispatch(LoadRequested{Path: "async.mid"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(LoadCompleted{Path: "cli.mid", Asset: testAsset("cli.mid", 120, 3)}); err != nil {
		t.Fatal(err)
	}
	d.Wait()
	for _, cmd := range q.Drain() {
		if err := d.Dispatch(cmd); err != nil {
			t.Fatal(err)
		}
	}
	if lib.Current().Path() != "cli.mid" || clk.Snapshot().Length != 3 {
		t.Errorf("Path() = %q length=%v, want cli.mid kept", lib.Current().Path(), clk.Snapshot().Length)
	}
}
