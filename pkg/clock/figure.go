package clock

import "fmt"

// Figure is the beat subdivision used for grid spacing, stored as the
// denominator of the note value.
type Figure int

const (
	Quarter   Figure = 4
	Eighth    Figure = 8
	Sixteenth Figure = 16
)

// Figures lists the selectable time figures in menu order.
var Figures = []Figure{Quarter, Eighth, Sixteenth}

// ParseFigure accepts "1/4", "1/8" or "1/16".
func ParseFigure(s string) (Figure, error) {
	for _, f := range Figures {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFigure, s)
}

// Valid reports whether f is one of Figures.
func (f Figure) Valid() bool {
	return f == Quarter || f == Eighth || f == Sixteenth
}

// Denominator returns 4, 8 or 16. Invalid figures count as quarters.
func (f Figure) Denominator() int {
	if !f.Valid() {
		return int(Quarter)
	}
	return int(f)
}

// Next returns the following figure, wrapping from 1/16 to 1/4.
func (f Figure) Next() Figure {
	for i, g := range Figures {
		if g == f {
			return Figures[(i+1)%len(Figures)]
		}
	}
	return Quarter
}

func (f Figure) String() string {
	return fmt.Sprintf("1/%d", int(f))
}
