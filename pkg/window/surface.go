package window

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/zurustar/drumvis/pkg/render"
	"github.com/zurustar/drumvis/pkg/view"
)

var (
	// デフォルトフォント
	defaultFace = text.NewGoXFace(basicfont.Face7x13)

	// 三角形描画用の白画像
	whiteImage = func() *ebiten.Image {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		return img
	}()
	whiteSubImage = whiteImage.SubImage(whiteImage.Bounds().Inset(1)).(*ebiten.Image)
)

// 角丸1つあたりの分割数
const cornerSegments = 6

// Surface はebiten.Imageにrender.Surfaceを実装する
type Surface struct {
	dst *ebiten.Image
}

// NewSurface dstに描画するSurfaceを作成
func NewSurface(dst *ebiten.Image) *Surface {
	return &Surface{dst: dst}
}

// Size は描画先のサイズを返す
func (s *Surface) Size() (float64, float64) {
	b := s.dst.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// FillRect は矩形を塗りつぶす
func (s *Surface) FillRect(r view.Rect, c color.Color) {
	if r.Empty() {
		return
	}
	vector.DrawFilledRect(s.dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, false)
}

// StrokeRect は矩形の枠線を描画する
func (s *Surface) StrokeRect(r view.Rect, width float64, c color.Color) {
	if r.Empty() {
		return
	}
	vector.StrokeRect(s.dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), float32(width), c, false)
}

// FillRoundedRect は角丸矩形を塗りつぶす
func (s *Surface) FillRoundedRect(r view.Rect, radius float64, c color.Color) {
	if r.Empty() {
		return
	}
	if radius <= 0 {
		s.FillRect(r, c)
		return
	}
	path := roundedRectPath(r, radius)
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	s.drawTriangles(vs, is, c)
}

// StrokeRoundedRect は角丸矩形の枠線を描画する
func (s *Surface) StrokeRoundedRect(r view.Rect, radius, width float64, c color.Color) {
	if r.Empty() {
		return
	}
	if radius <= 0 {
		s.StrokeRect(r, width, c)
		return
	}
	path := roundedRectPath(r, radius)
	op := &vector.StrokeOptions{Width: float32(width)}
	vs, is := path.AppendVerticesAndIndicesForStroke(nil, nil, op)
	s.drawTriangles(vs, is, c)
}

// Line は線分を描画する
func (s *Surface) Line(x1, y1, x2, y2, width float64, c color.Color) {
	vector.StrokeLine(s.dst, float32(x1), float32(y1), float32(x2), float32(y2), float32(width), c, true)
}

// Text は文字列を描画する（yは文字列の上端）
func (s *Surface) Text(str string, x, y float64, align render.Align, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	if align == render.AlignCenter {
		op.PrimaryAlign = text.AlignCenter
	}
	text.Draw(s.dst, str, defaultFace, op)
}

func (s *Surface) drawTriangles(vs []ebiten.Vertex, is []uint16, c color.Color) {
	r, g, b, a := c.RGBA()
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(r) / 65535.0
		vs[i].ColorG = float32(g) / 65535.0
		vs[i].ColorB = float32(b) / 65535.0
		vs[i].ColorA = float32(a) / 65535.0
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	s.dst.DrawTriangles(vs, is, whiteSubImage, op)
}

// roundedRectPath は角丸矩形のパスを作る
// 半径は短辺の半分に制限する
func roundedRectPath(r view.Rect, radius float64) *vector.Path {
	radius = min(radius, r.W/2, r.H/2)

	corners := []struct {
		cx, cy, start float64
	}{
		{r.Right() - radius, r.Y + radius, -math.Pi / 2},
		{r.Right() - radius, r.Bottom() - radius, 0},
		{r.X + radius, r.Bottom() - radius, math.Pi / 2},
		{r.X + radius, r.Y + radius, math.Pi},
	}

	path := &vector.Path{}
	for i, c := range corners {
		for j := 0; j <= cornerSegments; j++ {
			angle := c.start + float64(j)*(math.Pi/2)/cornerSegments
			x := float32(c.cx + radius*math.Cos(angle))
			y := float32(c.cy + radius*math.Sin(angle))
			if i == 0 && j == 0 {
				path.MoveTo(x, y)
			} else {
				path.LineTo(x, y)
			}
		}
	}
	path.Close()
	return path
}
