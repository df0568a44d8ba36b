package control

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zurustar/drumvis/pkg/asset"
	"github.com/zurustar/drumvis/pkg/clock"
	"github.com/zurustar/drumvis/pkg/logger"
)

// Library owns the loaded MIDI data; plugin.Processor implements it.
type Library interface {
	LoadMIDIFile(path string) (*asset.Asset, error)
	SetMIDIData(a *asset.Asset)
	ClearMIDIData()
	Current() *asset.Asset
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithAsyncLoads makes LoadRequested parse on a goroutine and post a
// LoadCompleted to q instead of loading inline. The host drains q on its UI
// thread and dispatches the results.
func WithAsyncLoads(q *Queue) Option {
	return func(d *Dispatcher) {
		d.queue = q
	}
}

// WithLoadFunc replaces the parser used by asynchronous loads.
func WithLoadFunc(f func(path string) (*asset.Asset, error)) Option {
	return func(d *Dispatcher) {
		d.loadFile = f
	}
}

// Dispatcher applies commands to the clock and the library. Dispatch is
// meant to be called from one goroutine; asynchronous loads only touch the
// queue.
type Dispatcher struct {
	clock    *clock.Clock
	lib      Library
	queue    *Queue
	loadFile func(path string) (*asset.Asset, error)
	log      *slog.Logger

	seq     atomic.Uint64
	pending sync.WaitGroup
}

// NewDispatcher creates a dispatcher that loads synchronously unless
// WithAsyncLoads is given.
func NewDispatcher(clk *clock.Clock, lib Library, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		clock:    clk,
		lib:      lib,
		loadFile: asset.LoadFile,
		log:      logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.GetLogger()
	}
	return d
}

// Async reports whether loads complete through the queue.
func (d *Dispatcher) Async() bool {
	return d.queue != nil
}

// Dispatch validates and applies cmd. Invalid values are rejected with
// ErrInvalidInput and the previous setting is kept. Load failures return
// the asset package's sentinel errors.
func (d *Dispatcher) Dispatch(cmd Command) error {
	switch c := cmd.(type) {
	case BPMChanged:
		if c.BPM < clock.MinBPM || c.BPM > clock.MaxBPM {
			return fmt.Errorf("%w: BPM %d out of range %d-%d", ErrInvalidInput, c.BPM, clock.MinBPM, clock.MaxBPM)
		}
		d.clock.SetBPM(c.BPM)
		d.log.Debug("BPM updated", "bpm", c.BPM)

	case SpeedChanged:
		if err := d.clock.SetSpeed(c.Speed); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		d.log.Debug("speed updated", "speed", c.Speed)

	case TimeFigureChanged:
		f, err := clock.ParseFigure(strings.TrimSpace(c.Figure))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := d.clock.SetFigure(f); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		d.log.Debug("time figure updated", "figure", f.String())

	case Transport:
		return d.transport(c.Action)

	case LoadRequested:
		return d.load(strings.TrimSpace(c.Path))

	case LoadCompleted:
		return d.complete(c)

	case ClearRequested:
		// 読み込み中の結果で復活させない
		d.seq.Add(1)
		d.lib.ClearMIDIData()
		d.clock.Stop()
		d.clock.SetLength(0)
		d.log.Info("MIDI data cleared")

	case nil:
		return fmt.Errorf("%w: nil command", ErrInvalidInput)

	default:
		return fmt.Errorf("%w: unknown command %s", ErrInvalidInput, cmd.Name())
	}
	return nil
}

func (d *Dispatcher) transport(a Action) error {
	switch a {
	case Play:
		d.clock.Start()
	case Pause:
		d.clock.Pause()
	case PlayPause:
		d.clock.TogglePlay()
	case Stop:
		d.clock.Stop()
	default:
		return fmt.Errorf("%w: transport action %d", ErrInvalidInput, int(a))
	}
	d.log.Debug("transport", "action", a.String(), "state", d.clock.State().String())
	return nil
}

func (d *Dispatcher) load(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidInput)
	}

	seq := d.seq.Add(1)
	if d.queue == nil {
		a, err := d.lib.LoadMIDIFile(path)
		if err != nil {
			return err
		}
		d.adopt(a)
		return nil
	}

	d.log.Debug("loading MIDI file in background", "path", path, "seq", seq)
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		a, err := d.loadFile(path)
		d.queue.Push(LoadCompleted{Seq: seq, Path: path, Asset: a, Err: err})
	}()
	return nil
}

// complete applies a load result. Seq 0 marks a result loaded by the caller
// itself; it counts as the newest request and outdates loads in flight.
func (d *Dispatcher) complete(c LoadCompleted) error {
	if c.Seq == 0 {
		d.seq.Add(1)
	} else if c.Seq != d.seq.Load() {
		d.log.Debug("discarding stale load result", "path", c.Path, "seq", c.Seq)
		return nil
	}
	if c.Err != nil {
		d.log.Warn("failed to load MIDI file", "path", c.Path, "error", c.Err)
		return c.Err
	}
	if c.Asset == nil {
		return fmt.Errorf("%w: load of %s returned no data", ErrInvalidInput, c.Path)
	}
	d.lib.SetMIDIData(c.Asset)
	d.adopt(c.Asset)
	return nil
}

// adopt resets playback for a newly loaded file and takes over its tempo.
func (d *Dispatcher) adopt(a *asset.Asset) {
	d.clock.Stop()
	d.clock.SetLength(a.LengthSeconds())
	if tempo := a.Tempo(); tempo > 0 && tempo != asset.DefaultTempo {
		d.clock.SetBPM(int(tempo))
	}
}

// Wait blocks until background loads have posted their results.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}
