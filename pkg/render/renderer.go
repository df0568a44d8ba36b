package render

import (
	"math"

	"github.com/zurustar/drumvis/pkg/asset"
	"github.com/zurustar/drumvis/pkg/clock"
	"github.com/zurustar/drumvis/pkg/view"
)

// EmptyHint is shown when no file is loaded.
const EmptyHint = "Load a MIDI file to see the piano roll"

// Style holds the presentation tunables.
type Style struct {
	KeyWidth          float64
	StaticNoteWidth   float64
	AnimatedNoteWidth float64
	CornerRadius      float64
	GlowRadius        float64
	GlowGain          float64
	NoteHue           float64 // turns, 0..1
	NoteSaturation    float64
	Animation         view.Animation
}

// DefaultStyle returns the standard look.
func DefaultStyle() Style {
	return Style{
		KeyWidth:          80,
		StaticNoteWidth:   4,
		AnimatedNoteWidth: 20,
		CornerRadius:      2,
		GlowRadius:        50,
		GlowGain:          0.35,
		NoteHue:           0.6,
		NoteSaturation:    0.8,
		Animation:         view.DefaultAnimation(),
	}
}

// Renderer turns an asset and a clock snapshot into draw calls. It holds no
// mutable state and never modifies its inputs.
type Renderer struct {
	style Style
}

// New creates a renderer with the given style.
func New(style Style) *Renderer {
	return &Renderer{style: style}
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style {
	return r.style
}

// Draw paints the piano roll for a into area.
func (r *Renderer) Draw(s Surface, area view.Rect, a *asset.Asset, snap clock.Snapshot) {
	s.FillRect(area, ColorBackground)
	if area.Empty() {
		return
	}

	if !a.HasLoaded() {
		s.Text(EmptyHint, area.X+area.W/2, area.Y+area.H/2, AlignCenter, ColorHint)
		return
	}

	pitches := view.NewPitchWindow(a.LowestNote(), a.HighestNote())
	keyArea, noteArea := area.SplitLeft(r.style.KeyWidth)

	r.drawKeys(s, keyArea, pitches)

	s.FillRect(noteArea, ColorNoteArea)

	m := r.Mapper(noteArea, a.LengthSeconds(), snap)
	r.drawGrid(s, noteArea, m, snap)
	r.drawNotes(s, noteArea, m, pitches, a)

	if m.Animated() {
		x := m.TargetX()
		s.Line(x, noteArea.Y, x, noteArea.Bottom(), 2, ColorTargetLine)
	}
}

// Mapper returns the time mapper used for noteArea in the given clock state.
func (r *Renderer) Mapper(noteArea view.Rect, length float64, snap clock.Snapshot) view.Mapper {
	if snap.Animated() {
		return view.NewAnimatedMapper(noteArea, length, snap.Time, r.style.Animation)
	}
	return view.NewStaticMapper(noteArea, length)
}

func (r *Renderer) drawKeys(s Surface, keyArea view.Rect, pitches view.PitchWindow) {
	for _, k := range pitches.Keys(keyArea) {
		if k.Black {
			s.FillRect(k.Rect, ColorBlackKey)
		} else {
			s.FillRect(k.Rect, ColorWhiteKey)
		}
		s.StrokeRect(k.Rect, 1, ColorKeyBorder)
		if k.Label != "" {
			s.Text(k.Label, k.Rect.X+2, k.Rect.Y, AlignLeft, ColorKeyLabel)
		}
	}
}

func (r *Renderer) drawGrid(s Surface, area view.Rect, m view.Mapper, snap clock.Snapshot) {
	for _, l := range view.GridLines(m, snap.BeatSeconds()) {
		s.Line(l.X, area.Y, l.X, area.Bottom(), 1, ColorGrid)
		s.Text(l.Label, l.X+2, area.Y, AlignLeft, ColorGridLabel)
	}
}

func (r *Renderer) drawNotes(s Surface, area view.Rect, m view.Mapper, pitches view.PitchWindow, a *asset.Asset) {
	width := r.style.StaticNoteWidth
	if m.Animated() {
		width = r.style.AnimatedNoteWidth
	}
	height := pitches.NoteHeight(area)
	window := m.TimeWindow()

	for _, tr := range a.Tracks() {
		for _, ev := range tr.Events {
			if !ev.IsNoteOn() || !pitches.Contains(int(ev.Pitch)) || !window.Contains(ev.Time) {
				continue
			}
			x := m.X(ev.Time)
			if !m.Animated() {
				// 終端のノートも領域内に収める
				x = math.Max(area.X, math.Min(x, area.Right()-width))
			}
			rect, ok := clipX(view.Rect{X: x, Y: pitches.NoteY(int(ev.Pitch), area), W: width, H: height}, area)
			if !ok {
				continue
			}

			vel := float64(ev.Velocity) / 127
			fill := NoteColor(r.style.NoteHue, r.style.NoteSaturation, 0.3+0.7*vel, 0.4+0.6*vel)
			if m.Animated() {
				fill = Brighter(fill, r.glow(x-m.TargetX()))
			}

			s.FillRoundedRect(rect, r.style.CornerRadius, fill)
			s.StrokeRoundedRect(rect, r.style.CornerRadius, 1, Brighter(fill, 0.3))
		}
	}
}

// glow returns how far a note dx pixels from the target line is pushed
// toward white.
func (r *Renderer) glow(dx float64) float64 {
	d := math.Abs(dx)
	if r.style.GlowRadius <= 0 || d >= r.style.GlowRadius {
		return 0
	}
	return (1 - d/r.style.GlowRadius) * r.style.GlowGain
}

// clipX trims rect horizontally to area.
func clipX(rect, area view.Rect) (view.Rect, bool) {
	left := math.Max(rect.X, area.X)
	right := math.Min(rect.Right(), area.Right())
	if right <= left {
		return view.Rect{}, false
	}
	rect.X, rect.W = left, right-left
	return rect, true
}
