// Package render draws the piano roll onto an abstract Surface.
package render

import (
	"image/color"

	"github.com/zurustar/drumvis/pkg/view"
)

// Align selects how Text positions its anchor point.
type Align int

const (
	// AlignLeft anchors the text's top-left corner.
	AlignLeft Align = iota
	// AlignCenter anchors the text's center.
	AlignCenter
)

// Surface is a 2D drawing target with the origin at the top-left.
type Surface interface {
	Size() (width, height float64)
	FillRect(r view.Rect, c color.Color)
	StrokeRect(r view.Rect, width float64, c color.Color)
	FillRoundedRect(r view.Rect, radius float64, c color.Color)
	StrokeRoundedRect(r view.Rect, radius, width float64, c color.Color)
	Line(x1, y1, x2, y2, width float64, c color.Color)
	Text(s string, x, y float64, align Align, c color.Color)
}
