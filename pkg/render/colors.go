package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Fixed palette.
var (
	ColorBackground = color.NRGBA{0x40, 0x40, 0x40, 0xff}
	ColorNoteArea   = color.NRGBA{0x2a, 0x2a, 0x2a, 0xff}
	ColorGrid       = color.NRGBA{0x40, 0x40, 0x40, 0xff}
	ColorGridLabel  = color.NRGBA{0xd3, 0xd3, 0xd3, 0xff}
	ColorWhiteKey   = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	ColorBlackKey   = color.NRGBA{0x1a, 0x1a, 0x1a, 0xff}
	ColorKeyBorder  = color.NRGBA{0x80, 0x80, 0x80, 0xff}
	ColorKeyLabel   = color.NRGBA{0x00, 0x00, 0x00, 0xff}
	ColorHint       = color.NRGBA{0x80, 0x80, 0x80, 0xff}
	ColorTargetLine = color.NRGBA{0xff, 0x5a, 0x36, 0xff}
)

// NoteColor builds a note fill from an HSV hue in turns, saturation and
// brightness (clamped to 1), with the given opacity in [0, 1].
func NoteColor(hue, saturation, brightness, alpha float64) color.NRGBA {
	c := colorful.Hsv(hue*360, clamp01(saturation), clamp01(brightness))
	return toNRGBA(c, alpha)
}

// Brighter moves c toward white. amount 0.3 mixes in about 23% white.
func Brighter(c color.NRGBA, amount float64) color.NRGBA {
	if amount <= 0 {
		return c
	}
	cf, _ := colorful.MakeColor(color.NRGBA{c.R, c.G, c.B, 0xff})
	white := colorful.Color{R: 1, G: 1, B: 1}
	return toNRGBA(cf.BlendRgb(white, 1-1/(1+amount)), float64(c.A)/255)
}

func toNRGBA(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{r, g, b, uint8(math.Round(clamp01(alpha) * 255))}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
