package view

import "fmt"

// Pitch window constants.
const (
	MinPitch    = 0
	MaxPitch    = 127
	MinSpan     = 24
	PitchMargin = 2

	// NoteHeightRatio is the fraction of a row a note occupies.
	NoteHeightRatio = 0.8
	// noteTopOffset centers the note inside its row.
	noteTopOffset = 0.1
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchWindow is the inclusive range of pitches shown as rows.
type PitchWindow struct {
	Low, High int
}

// NewPitchWindow derives the visible range from the observed note range.
// Spans under two octaves are widened around their center, then a margin
// is added and the result clamped to [0, 127].
func NewPitchWindow(lowest, highest int) PitchWindow {
	if highest < lowest {
		lowest, highest = highest, lowest
	}
	if highest-lowest < MinSpan {
		center := (lowest + highest) / 2
		lowest = center - MinSpan/2
		highest = center + MinSpan/2
	}
	return PitchWindow{
		Low:  max(MinPitch, lowest-PitchMargin),
		High: min(MaxPitch, highest+PitchMargin),
	}
}

// Rows returns the number of pitch rows.
func (w PitchWindow) Rows() int {
	return w.High - w.Low + 1
}

// Contains reports whether pitch p has a row.
func (w PitchWindow) Contains(p int) bool {
	return p >= w.Low && p <= w.High
}

// RowHeight returns the height of a single pitch row inside area.
func (w PitchWindow) RowHeight(area Rect) float64 {
	rows := w.Rows()
	if rows <= 0 {
		return 0
	}
	return area.H / float64(rows)
}

// RowY returns the top of pitch p's row. Higher pitches are nearer the top.
func (w PitchWindow) RowY(p int, area Rect) float64 {
	return area.Y + float64(w.High-p)*w.RowHeight(area)
}

// NoteY returns the top edge of a note rectangle for pitch p.
func (w PitchWindow) NoteY(p int, area Rect) float64 {
	h := w.RowHeight(area)
	return area.Y + float64(w.High-p)*h + noteTopOffset*h
}

// NoteHeight returns the height of a note rectangle.
func (w PitchWindow) NoteHeight(area Rect) float64 {
	return w.RowHeight(area) * NoteHeightRatio
}

// Key is one piano key row of the keyboard strip.
type Key struct {
	Pitch int
	Rect  Rect
	Black bool
	Label string // empty for black keys
}

// Keys lays out one key per row, top (highest pitch) to bottom.
func (w PitchWindow) Keys(area Rect) []Key {
	h := w.RowHeight(area)
	keys := make([]Key, 0, w.Rows())
	for i := 0; i < w.Rows(); i++ {
		p := w.High - i
		k := Key{
			Pitch: p,
			Rect:  Rect{X: area.X, Y: area.Y + float64(i)*h, W: area.W, H: h},
			Black: IsBlackKey(p),
		}
		if !k.Black {
			k.Label = NoteName(p)
		}
		keys = append(keys, k)
	}
	return keys
}

// IsBlackKey reports whether pitch class of p is a sharp.
func IsBlackKey(p int) bool {
	switch ((p % 12) + 12) % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// NoteName returns names like "C4" (middle C is 60) or "F#-1".
func NoteName(p int) string {
	pc := ((p % 12) + 12) % 12
	octave := p/12 - 1
	if p < 0 && p%12 != 0 {
		octave--
	}
	return fmt.Sprintf("%s%d", noteNames[pc], octave)
}
