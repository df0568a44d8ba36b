// Package clock provides the playback clock: a virtual time cursor advanced
// by periodic ticks, scaled by tempo and a user speed multiplier.
package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Tempo limits.
const (
	MinBPM     = 1
	MaxBPM     = 300
	DefaultBPM = 120
)

// ReferenceBPM is the tempo at which virtual time runs at wall-clock speed.
const ReferenceBPM = 120.0

// Speeds lists the accepted speed multipliers.
var Speeds = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

var (
	// ErrInvalidSpeed speed multiplier is not one of Speeds
	ErrInvalidSpeed = errors.New("invalid speed multiplier")

	// ErrInvalidFigure time figure is not one of Figures
	ErrInvalidFigure = errors.New("invalid time figure")
)

// State is the transport state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a copy of the clock state for rendering.
type Snapshot struct {
	Time   float64 // virtual seconds
	State  State
	BPM    int
	Speed  float64
	Figure Figure
	Length float64
}

// ScrollSpeed returns (BPM/120) × speed.
func (s Snapshot) ScrollSpeed() float64 {
	return float64(s.BPM) / ReferenceBPM * s.Speed
}

// Animated reports whether the view follows the playhead.
func (s Snapshot) Animated() bool {
	return s.State != Stopped
}

// BeatSeconds returns the grid interval in virtual seconds for the current
// tempo, speed and time figure.
func (s Snapshot) BeatSeconds() float64 {
	if s.BPM <= 0 || s.Speed <= 0 {
		return 0
	}
	return 60 / (float64(s.BPM) * s.Speed) * 4 / float64(s.Figure.Denominator())
}

// Clock is the playback clock. All methods are safe for concurrent use.
// Virtual time is reset to 0 whenever playback stops or reaches the length.
type Clock struct {
	mu     sync.Mutex
	time   float64
	state  State
	last   time.Time
	bpm    int
	speed  float64
	figure Figure
	length float64
	now    func() time.Time
}

// New creates a stopped clock at 120 BPM, speed 1, time figure 1/4.
func New() *Clock {
	return &Clock{
		bpm:    DefaultBPM,
		speed:  1.0,
		figure: Quarter,
		now:    time.Now,
	}
}

// SetNowFunc replaces the wall-clock source used as the Start baseline.
func (c *Clock) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	c.now = now
}

// Start moves Stopped or Paused to Playing and captures the wall-time baseline.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing {
		return
	}
	c.state = Playing
	c.last = c.now()
}

// Pause moves Playing to Paused, preserving virtual time.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing {
		c.state = Paused
	}
}

// TogglePlay pauses when playing and starts otherwise.
func (c *Clock) TogglePlay() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing {
		c.state = Paused
	} else {
		c.state = Playing
		c.last = c.now()
	}
	return c.state
}

// Stop moves to Stopped and resets virtual time to 0. No tick applies after
// Stop returns.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Clock) stopLocked() {
	c.state = Stopped
	c.time = 0
}

// Advance integrates the wall time elapsed since the previous sample.
// It does nothing unless the clock is playing.
func (c *Clock) Advance(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Playing {
		return
	}
	elapsed := now.Sub(c.last)
	if elapsed < 0 {
		elapsed = 0
	}
	c.last = now
	c.tickLocked(elapsed.Seconds())
}

// Tick advances by a synthetic wall-clock delta.
func (c *Clock) Tick(delta time.Duration) {
	c.OnTick(delta.Seconds())
}

// OnTick advances by deltaSeconds of wall time.
func (c *Clock) OnTick(deltaSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Playing {
		return
	}
	c.last = c.last.Add(time.Duration(deltaSeconds * float64(time.Second)))
	c.tickLocked(deltaSeconds)
}

func (c *Clock) tickLocked(deltaSeconds float64) {
	// an empty asset stops on the first tick
	if c.length <= 0 {
		c.stopLocked()
		return
	}
	if deltaSeconds > 0 {
		c.time += deltaSeconds * float64(c.bpm) / ReferenceBPM * c.speed
	}
	if c.time >= c.length {
		c.stopLocked()
	}
}

// SetBPM sets the tempo, clamped to [MinBPM, MaxBPM], and returns the value
// applied. Virtual time is kept.
func (c *Clock) SetBPM(bpm int) int {
	bpm = max(MinBPM, min(MaxBPM, bpm))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bpm = bpm
	return bpm
}

// SetSpeed sets the speed multiplier. Values outside Speeds are rejected and
// the previous multiplier is kept.
func (c *Clock) SetSpeed(speed float64) error {
	if !ValidSpeed(speed) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
	return nil
}

// SetFigure sets the time figure used for grid spacing.
func (c *Clock) SetFigure(f Figure) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFigure, int(f))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.figure = f
	return nil
}

// SetLength sets the asset length that playback loops against.
// The virtual time is clamped into [0, length].
func (c *Clock) SetLength(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.length = seconds
	if c.time > seconds {
		c.time = seconds
	}
}

// State returns the transport state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Time returns the current virtual time in seconds.
func (c *Clock) Time() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}

// Snapshot returns a consistent copy of the clock state.
func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Time:   c.time,
		State:  c.state,
		BPM:    c.bpm,
		Speed:  c.speed,
		Figure: c.figure,
		Length: c.length,
	}
}

// ValidSpeed reports whether speed is one of Speeds.
func ValidSpeed(speed float64) bool {
	for _, s := range Speeds {
		if s == speed {
			return true
		}
	}
	return false
}
