// Package termui hosts a session in the terminal: a bubbletea program
// drawing the piano roll onto a grid of styled cells.
package termui

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/zurustar/drumvis/pkg/render"
	"github.com/zurustar/drumvis/pkg/view"
)

// Pixel size of one terminal cell. Renderer styles are in pixels; a cell
// is roughly twice as tall as wide.
const (
	CellWidth  = 8
	CellHeight = 16
)

type cell struct {
	ch rune
	fg colorful.Color
	bg colorful.Color
}

// Grid is a render.Surface over terminal cells.
type Grid struct {
	cols, rows int
	cells      []cell
}

// NewGrid creates a cols×rows grid, cleared to black.
func NewGrid(cols, rows int) *Grid {
	cols, rows = max(cols, 0), max(rows, 0)
	g := &Grid{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range g.cells {
		g.cells[i] = cell{ch: ' ', fg: colorful.Color{R: 1, G: 1, B: 1}}
	}
	return g
}

// Cols returns the width in cells.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the height in cells.
func (g *Grid) Rows() int { return g.rows }

// Size returns the pixel size the renderer lays out against.
func (g *Grid) Size() (float64, float64) {
	return float64(g.cols * CellWidth), float64(g.rows * CellHeight)
}

func (g *Grid) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return nil
	}
	return &g.cells[row*g.cols+col]
}

// span converts a pixel range to a cell range. Non-empty ranges cover at
// least one cell.
func span(from, to float64, size, limit int) (int, int) {
	c0 := int(math.Round(from / float64(size)))
	c1 := int(math.Round(to / float64(size)))
	if c1 <= c0 && to > from {
		c0 = int(math.Floor(from / float64(size)))
		c1 = c0 + 1
	}
	return max(c0, 0), min(c1, limit)
}

// toColorful converts c and returns its straight alpha.
func toColorful(c color.Color) (colorful.Color, float64) {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return colorful.Color{}, 0
	}
	// un-premultiply
	return colorful.Color{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
	}, float64(a) / 0xffff
}

// FillRect paints the cells covered by r, blending by alpha.
func (g *Grid) FillRect(r view.Rect, c color.Color) {
	if r.Empty() {
		return
	}
	col, alpha := toColorful(c)
	if alpha == 0 {
		return
	}
	c0, c1 := span(r.X, r.Right(), CellWidth, g.cols)
	r0, r1 := span(r.Y, r.Bottom(), CellHeight, g.rows)
	for row := r0; row < r1; row++ {
		for x := c0; x < c1; x++ {
			cl := g.at(x, row)
			cl.bg = cl.bg.BlendRgb(col, alpha).Clamped()
			cl.ch = ' '
		}
	}
}

// StrokeRect draws a box outline when r spans at least two cells each way.
func (g *Grid) StrokeRect(r view.Rect, width float64, c color.Color) {
	if r.Empty() || width <= 0 {
		return
	}
	c0, c1 := span(r.X, r.Right(), CellWidth, g.cols)
	r0, r1 := span(r.Y, r.Bottom(), CellHeight, g.rows)
	if c1-c0 < 2 || r1-r0 < 2 {
		return
	}
	col, _ := toColorful(c)
	set := func(x, y int, ch rune) {
		if cl := g.at(x, y); cl != nil {
			cl.ch, cl.fg = ch, col
		}
	}
	for x := c0 + 1; x < c1-1; x++ {
		set(x, r0, '─')
		set(x, r1-1, '─')
	}
	for y := r0 + 1; y < r1-1; y++ {
		set(c0, y, '│')
		set(c1-1, y, '│')
	}
	set(c0, r0, '┌')
	set(c1-1, r0, '┐')
	set(c0, r1-1, '└')
	set(c1-1, r1-1, '┘')
}

// FillRoundedRect fills like FillRect; cells have no corners to round.
func (g *Grid) FillRoundedRect(r view.Rect, radius float64, c color.Color) {
	g.FillRect(r, c)
}

// StrokeRoundedRect strokes like StrokeRect.
func (g *Grid) StrokeRoundedRect(r view.Rect, radius, width float64, c color.Color) {
	g.StrokeRect(r, width, c)
}

// Line draws vertical and horizontal lines with box-drawing runes and
// anything else as dots.
func (g *Grid) Line(x1, y1, x2, y2, width float64, c color.Color) {
	col, alpha := toColorful(c)
	if alpha == 0 {
		return
	}
	cx1, cy1 := int(x1/CellWidth), int(y1/CellHeight)
	cx2, cy2 := int(x2/CellWidth), int(y2/CellHeight)
	if y2 >= y1 && math.Mod(y2, CellHeight) == 0 && cy2 > cy1 {
		cy2--
	}

	ch := '·'
	switch {
	case cx1 == cx2:
		ch = '│'
	case cy1 == cy2:
		ch = '─'
	}

	steps := max(abs(cx2-cx1), abs(cy2-cy1))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		x := cx1 + int(math.Round(t*float64(cx2-cx1)))
		y := cy1 + int(math.Round(t*float64(cy2-cy1)))
		if cl := g.at(x, y); cl != nil {
			cl.ch, cl.fg = ch, col
		}
	}
}

// Text writes s starting at the cell containing (x, y).
func (g *Grid) Text(s string, x, y float64, align render.Align, c color.Color) {
	col, _ := toColorful(c)
	runes := []rune(s)
	cx := int(x / CellWidth)
	if align == render.AlignCenter {
		cx -= len(runes) / 2
	}
	cy := int(y / CellHeight)
	for i, r := range runes {
		if cl := g.at(cx+i, cy); cl != nil {
			cl.ch, cl.fg = r, col
		}
	}
}

// Plain returns the grid's runes without styling, one line per row.
func (g *Grid) Plain() string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < g.cols; col++ {
			b.WriteRune(g.at(col, row).ch)
		}
	}
	return b.String()
}

type styleKey struct {
	fg, bg string
}

// Render returns the grid as styled terminal lines. Runs of cells with the
// same colors share one lipgloss style.
func (g *Grid) Render() string {
	styles := make(map[styleKey]lipgloss.Style)
	style := func(k styleKey) lipgloss.Style {
		st, ok := styles[k]
		if !ok {
			st = lipgloss.NewStyle().Foreground(lipgloss.Color(k.fg)).Background(lipgloss.Color(k.bg))
			styles[k] = st
		}
		return st
	}

	var b strings.Builder
	var run strings.Builder
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var cur styleKey
		run.Reset()
		for col := 0; col < g.cols; col++ {
			cl := g.at(col, row)
			k := styleKey{fg: cl.fg.Hex(), bg: cl.bg.Hex()}
			if col > 0 && k != cur {
				b.WriteString(style(cur).Render(run.String()))
				run.Reset()
			}
			cur = k
			run.WriteRune(cl.ch)
		}
		if run.Len() > 0 {
			b.WriteString(style(cur).Render(run.String()))
		}
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
