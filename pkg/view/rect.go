// Package view maps the note timeline onto screen space: pitch rows, piano
// key geometry, time-to-x conversion and grid placement.
package view

// Rect is an axis-aligned rectangle with the origin at the top-left.
type Rect struct {
	X, Y, W, H float64
}

// Right returns X+W.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns Y+H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Inset shrinks the rectangle by d on every side.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
	out.W = max(out.W, 0)
	out.H = max(out.H, 0)
	return out
}

// SplitLeft cuts a strip of width w off the left side.
func (r Rect) SplitLeft(w float64) (left, rest Rect) {
	w = max(0, min(w, r.W))
	left = Rect{X: r.X, Y: r.Y, W: w, H: r.H}
	rest = Rect{X: r.X + w, Y: r.Y, W: r.W - w, H: r.H}
	return left, rest
}

// SplitTop cuts a strip of height h off the top.
func (r Rect) SplitTop(h float64) (top, rest Rect) {
	h = max(0, min(h, r.H))
	top = Rect{X: r.X, Y: r.Y, W: r.W, H: h}
	rest = Rect{X: r.X, Y: r.Y + h, W: r.W, H: r.H - h}
	return top, rest
}

// ContainsX reports whether x lies within [X, Right].
func (r Rect) ContainsX(x float64) bool {
	return x >= r.X && x <= r.Right()
}
