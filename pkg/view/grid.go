package view

import "fmt"

// GridLine is a vertical time marker.
type GridLine struct {
	X     float64
	Time  float64
	Label string
}

// maxGridLines bounds the lines produced for tiny beat intervals.
const maxGridLines = 2048

// StaticGridInterval returns the spacing for the whole-file view:
// 1s, 5s beyond a minute and 10s beyond five minutes.
func StaticGridInterval(length float64) float64 {
	switch {
	case length > 300:
		return 10
	case length > 60:
		return 5
	default:
		return 1
	}
}

// GridLines places markers every interval seconds of virtual time.
// Static mappers use StaticGridInterval and ignore beat; animated mappers use
// beat, aligned to multiples of beat from zero. Only lines inside the area
// are returned.
func GridLines(m Mapper, beat float64) []GridLine {
	if !m.animated {
		if m.length <= 0 {
			return nil
		}
		return collect(m, 0, m.length, StaticGridInterval(m.length))
	}
	if beat <= 0 {
		return nil
	}

	// visible time span from the left edge to the right edge
	pps := m.PixelsPerSecond()
	if pps <= 0 {
		return nil
	}
	from := m.current - (m.TargetX()-m.area.X)/pps
	to := m.current + (m.area.Right()-m.TargetX())/pps
	from = max(from, 0)

	start := float64(int(from/beat)) * beat
	return collect(m, start, to, beat)
}

func collect(m Mapper, from, to, interval float64) []GridLine {
	var lines []GridLine
	for i := 0; i < maxGridLines; i++ {
		t := from + float64(i)*interval
		if t > to+1e-9 {
			break
		}
		x := m.X(t)
		if !m.area.ContainsX(x) {
			continue
		}
		lines = append(lines, GridLine{X: x, Time: t, Label: fmt.Sprintf("%.1fs", t)})
	}
	return lines
}
