package asset

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTempoMap_Seconds(t *testing.T) {
	tests := []struct {
		name   string
		ppq    int
		events []TempoEvent
		tick   int64
		want   float64
	}{
		{"default tempo", 480, nil, 480, 0.5},
		{"negative tick", 480, nil, -10, 0},
		{"100 BPM", 960, []TempoEvent{{0, 600000}}, 1600, 1.0},
		{"tempo change mid file", 480, []TempoEvent{{0, 500000}, {480, 1000000}}, 960, 1.5},
		{"late first tempo", 480, []TempoEvent{{960, 250000}}, 1440, 1.25},
		{"unsorted events", 480, []TempoEvent{{480, 1000000}, {0, 500000}}, 960, 1.5},
		{"invalid tempo ignored", 480, []TempoEvent{{0, 0}}, 480, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := NewTempoMap(tt.ppq, tt.events)
			if got := tm.Seconds(tt.tick); !approx(got, tt.want, 1e-9) {
				t.Errorf("Seconds(%d) = %v, want %v", tt.tick, got, tt.want)
			}
		})
	}
}

func TestTempoMap_Monotonic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Seconds never decreases", prop.ForAll(
		func(a, b int64, micros float64) bool {
			tm := NewTempoMap(480, []TempoEvent{{0, micros}, {1000, micros * 2}})
			if a > b {
				a, b = b, a
			}
			return tm.Seconds(a) <= tm.Seconds(b)
		},
		gen.Int64Range(0, 100000),
		gen.Int64Range(0, 100000),
		gen.Float64Range(100000, 2000000),
	))

	properties.TestingRun(t)
}
