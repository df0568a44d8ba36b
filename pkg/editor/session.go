// Package editor is one visualizer session: the playback clock, the command
// dispatcher and the renderer around a plugin processor. Hosts drive it with
// Tick, Handle and Draw.
package editor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zurustar/drumvis/pkg/asset"
	"github.com/zurustar/drumvis/pkg/clock"
	"github.com/zurustar/drumvis/pkg/control"
	"github.com/zurustar/drumvis/pkg/fileutil"
	"github.com/zurustar/drumvis/pkg/logger"
	"github.com/zurustar/drumvis/pkg/plugin"
	"github.com/zurustar/drumvis/pkg/render"
	"github.com/zurustar/drumvis/pkg/view"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	log   *slog.Logger
	style render.Style
	async bool
	now   func() time.Time

	bpm    int
	speed  float64
	figure clock.Figure
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithStyle sets the renderer style.
func WithStyle(style render.Style) Option {
	return func(o *options) { o.style = style }
}

// WithAsyncLoads parses files off the host thread; results are applied on
// the next Tick.
func WithAsyncLoads() Option {
	return func(o *options) { o.async = true }
}

// WithPlayback sets the initial tempo, speed and grid figure. Zero values
// keep the clock defaults.
func WithPlayback(bpm int, speed float64, figure clock.Figure) Option {
	return func(o *options) {
		o.bpm = bpm
		o.speed = speed
		o.figure = figure
	}
}

// WithNowFunc replaces the wall-clock source used when playback starts.
func WithNowFunc(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Session serializes ticks, commands and drawing behind one mutex, so a
// host may call it from a timer goroutine and its UI thread alike.
type Session struct {
	mu       sync.Mutex
	proc     *plugin.Processor
	clock    *clock.Clock
	disp     *control.Dispatcher
	queue    *control.Queue
	renderer *render.Renderer
	log      *slog.Logger

	message string
	pending int
}

// New creates a session over proc.
func New(proc *plugin.Processor, opts ...Option) *Session {
	o := options{style: render.DefaultStyle()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetLogger()
	}

	clk := clock.New()
	if o.now != nil {
		clk.SetNowFunc(o.now)
	}
	if o.bpm != 0 {
		clk.SetBPM(o.bpm)
	}
	if o.speed != 0 {
		if err := clk.SetSpeed(o.speed); err != nil {
			o.log.Warn("ignoring initial speed", "speed", o.speed, "error", err)
		}
	}
	if o.figure != 0 {
		if err := clk.SetFigure(o.figure); err != nil {
			o.log.Warn("ignoring initial time figure", "figure", int(o.figure), "error", err)
		}
	}
	clk.SetLength(proc.Current().LengthSeconds())

	s := &Session{
		proc:     proc,
		clock:    clk,
		renderer: render.New(o.style),
		log:      o.log,
	}

	dopts := []control.Option{control.WithLogger(o.log)}
	if o.async {
		s.queue = control.NewQueue()
		dopts = append(dopts, control.WithAsyncLoads(s.queue))
	}
	s.disp = control.NewDispatcher(clk, proc, dopts...)
	return s
}

// Tick applies finished background loads and advances the clock to now.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()
	s.clock.Advance(now)
}

// TickDelta advances the clock by a fixed wall-clock delta.
func (s *Session) TickDelta(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()
	s.clock.Tick(d)
}

func (s *Session) drainLocked() {
	if s.queue == nil {
		return
	}
	for _, cmd := range s.queue.Drain() {
		if err := s.handleLocked(cmd); err != nil {
			s.log.Debug("background result rejected", "command", cmd.Name(), "error", err)
		}
	}
}

// Handle dispatches a command and records a user-facing message.
func (s *Session) Handle(cmd control.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handleLocked(cmd)
}

func (s *Session) handleLocked(cmd control.Command) error {
	err := s.disp.Dispatch(cmd)

	switch c := cmd.(type) {
	case control.LoadRequested:
		if err == nil && s.disp.Async() {
			s.pending++
			s.message = "Loading " + c.Path
		}
	case control.LoadCompleted:
		if c.Seq != 0 && s.pending > 0 {
			s.pending--
		}
	}

	if err != nil {
		s.message = describe(err)
		return err
	}

	switch cmd.(type) {
	case control.LoadRequested, control.LoadCompleted:
		if s.pending == 0 {
			if a := s.proc.Current(); a.HasLoaded() {
				s.message = "Loaded " + a.FileName()
			}
		}
	case control.ClearRequested:
		s.message = "MIDI data cleared"
	}
	return nil
}

// Load parses path on the calling goroutine and applies it, regardless of
// WithAsyncLoads. Background loads still in flight are discarded.
func (s *Session) Load(path string) error {
	a, err := asset.LoadFile(path)
	return s.Handle(control.LoadCompleted{Path: path, Asset: a, Err: err})
}

// LoadFrom parses a MIDI file from r, named name, and applies it. Used for
// files that arrive without a filesystem path, such as drag and drop.
func (s *Session) LoadFrom(name string, r io.Reader) error {
	var (
		a   *asset.Asset
		err error
	)
	if !fileutil.IsMIDIPath(name) {
		err = fmt.Errorf("%w: %s", asset.ErrUnsupportedFormat, name)
	} else {
		a, err = asset.Parse(name, r)
	}
	return s.Handle(control.LoadCompleted{Path: name, Asset: a, Err: err})
}

// describe turns an error into a one-line message for the status bar.
func describe(err error) string {
	switch {
	case errors.Is(err, asset.ErrNotFound):
		return "File not found"
	case errors.Is(err, asset.ErrUnsupportedFormat):
		return "Unsupported format: choose a .mid or .midi file"
	case errors.Is(err, asset.ErrUnreadable):
		return "Could not open the MIDI file"
	case errors.Is(err, asset.ErrCorrupt):
		return "Could not read the MIDI file"
	case errors.Is(err, control.ErrInvalidInput):
		return err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// Draw renders the piano roll over the whole surface.
func (s *Session) Draw(surface render.Surface) {
	w, h := surface.Size()
	s.DrawIn(surface, view.Rect{W: w, H: h})
}

// DrawIn renders the piano roll into area.
func (s *Session) DrawIn(surface render.Surface, area view.Rect) {
	s.mu.Lock()
	a := s.proc.Current()
	snap := s.clock.Snapshot()
	s.mu.Unlock()

	// asset and snapshot are immutable copies; draw outside the lock
	s.renderer.Draw(surface, area, a, snap)
}

// Snapshot returns the clock state.
func (s *Session) Snapshot() clock.Snapshot {
	return s.clock.Snapshot()
}

// Asset returns the current asset.
func (s *Session) Asset() *asset.Asset {
	return s.proc.Current()
}

// Processor returns the plugin processor.
func (s *Session) Processor() *plugin.Processor {
	return s.proc
}

// Message returns the last load or validation message.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Loading reports whether a background load is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Status returns a one-line transport summary.
func (s *Session) Status() string {
	snap := s.clock.Snapshot()
	a := s.proc.Current()
	return fmt.Sprintf("%s %s  %.1fs / %.1fs  %d BPM  x%g  %s  %s",
		stateIcon(snap.State), snap.State, snap.Time, snap.Length,
		snap.BPM, snap.Speed, snap.Figure, a.FileName())
}

func stateIcon(st clock.State) string {
	switch st {
	case clock.Playing:
		return ">"
	case clock.Paused:
		return "="
	default:
		return "#"
	}
}

// Close waits for background loads to finish.
func (s *Session) Close() {
	s.disp.Wait()
}
