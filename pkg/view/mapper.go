package view

// Animation defaults.
const (
	DefaultTargetRatio = 0.25
	DefaultLookAhead   = 12.0
	DefaultLookBehind  = 1.0
)

// Animation tunes the scrolling view.
type Animation struct {
	TargetRatio float64 // target line position as a fraction of the area width
	LookAhead   float64 // seconds shown after the playhead
	LookBehind  float64 // seconds kept before the playhead
}

// DefaultAnimation returns the standard scrolling parameters.
func DefaultAnimation() Animation {
	return Animation{
		TargetRatio: DefaultTargetRatio,
		LookAhead:   DefaultLookAhead,
		LookBehind:  DefaultLookBehind,
	}
}

// TimeWindow is the range of event times worth drawing.
type TimeWindow struct {
	Start, End float64
}

// Contains reports whether t lies in [Start, End].
func (w TimeWindow) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// Mapper converts event timestamps to x coordinates. A static mapper shows
// the whole file; an animated mapper scrolls so the playhead sits on the
// target line.
type Mapper struct {
	area     Rect
	length   float64
	animated bool
	current  float64
	anim     Animation
}

// NewStaticMapper maps [0, length] onto the full area width.
func NewStaticMapper(area Rect, length float64) Mapper {
	return Mapper{area: area, length: length, anim: DefaultAnimation()}
}

// NewAnimatedMapper maps time relative to current onto area.
func NewAnimatedMapper(area Rect, length, current float64, anim Animation) Mapper {
	if anim.LookAhead <= 0 {
		anim.LookAhead = DefaultLookAhead
	}
	if anim.TargetRatio < 0 || anim.TargetRatio > 1 {
		anim.TargetRatio = DefaultTargetRatio
	}
	if anim.LookBehind < 0 {
		anim.LookBehind = 0
	}
	return Mapper{area: area, length: length, animated: true, current: current, anim: anim}
}

// Animated reports whether the mapper scrolls.
func (m Mapper) Animated() bool { return m.animated }

// Area returns the mapped area.
func (m Mapper) Area() Rect { return m.area }

// Current returns the playhead time used by an animated mapper.
func (m Mapper) Current() float64 { return m.current }

// TargetX returns the x of the playhead line.
func (m Mapper) TargetX() float64 {
	return m.area.X + m.anim.TargetRatio*m.area.W
}

// WindowWidth returns the seconds spanned by the area width. Animated views
// use the look-ahead, or the file length when the file is shorter.
func (m Mapper) WindowWidth() float64 {
	if !m.animated {
		return m.length
	}
	if m.length > 0 && m.length < m.anim.LookAhead {
		return m.length
	}
	return m.anim.LookAhead
}

// X converts an event time to a horizontal coordinate.
func (m Mapper) X(t float64) float64 {
	if !m.animated {
		if m.length <= 0 {
			return m.area.X
		}
		return m.area.X + t/m.length*m.area.W
	}
	return m.TargetX() + (t-m.current)*m.PixelsPerSecond()
}

// PixelsPerSecond returns the horizontal scale.
func (m Mapper) PixelsPerSecond() float64 {
	w := m.WindowWidth()
	if w <= 0 {
		return 0
	}
	return m.area.W / w
}

// TimeWindow returns the range of times to consider for drawing.
func (m Mapper) TimeWindow() TimeWindow {
	if !m.animated {
		return TimeWindow{Start: 0, End: m.length}
	}
	return TimeWindow{Start: m.current - m.anim.LookBehind, End: m.current + m.anim.LookAhead}
}
