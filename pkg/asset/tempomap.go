package asset

import "sort"

// DefaultMicrosPerBeat is the SMF default tempo (120 BPM).
const DefaultMicrosPerBeat = 500000

// TempoEvent represents a tempo change in a MIDI file.
type TempoEvent struct {
	Tick          int64   // absolute tick position
	MicrosPerBeat float64 // microseconds per quarter note
}

// TempoMap converts absolute ticks to seconds, considering tempo changes.
// Segment start times are precalculated so a lookup is a binary search.
type TempoMap struct {
	ppq         int
	events      []TempoEvent
	secondsAtEv []float64
}

// NewTempoMap creates a TempoMap for the given resolution. Events need not be
// sorted. A map without an event at tick 0 starts at 120 BPM.
func NewTempoMap(ppq int, events []TempoEvent) *TempoMap {
	if ppq <= 0 {
		ppq = 480
	}
	evs := make([]TempoEvent, 0, len(events)+1)
	for _, ev := range events {
		if ev.MicrosPerBeat > 0 && ev.Tick >= 0 {
			evs = append(evs, ev)
		}
	}
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].Tick < evs[j].Tick })
	if len(evs) == 0 || evs[0].Tick > 0 {
		evs = append([]TempoEvent{{Tick: 0, MicrosPerBeat: DefaultMicrosPerBeat}}, evs...)
	}

	tm := &TempoMap{ppq: ppq, events: evs}
	tm.precalculate()
	return tm
}

func (tm *TempoMap) precalculate() {
	tm.secondsAtEv = make([]float64, len(tm.events))
	for i := 1; i < len(tm.events); i++ {
		prev := tm.events[i-1]
		ticks := float64(tm.events[i].Tick - prev.Tick)
		tm.secondsAtEv[i] = tm.secondsAtEv[i-1] + ticks*prev.MicrosPerBeat/float64(tm.ppq)/1e6
	}
}

// Seconds converts an absolute tick position to seconds.
func (tm *TempoMap) Seconds(tick int64) float64 {
	if tick <= 0 {
		return 0
	}
	// last event at or before tick
	i := sort.Search(len(tm.events), func(i int) bool { return tm.events[i].Tick > tick }) - 1
	if i < 0 {
		i = 0
	}
	ev := tm.events[i]
	return tm.secondsAtEv[i] + float64(tick-ev.Tick)*ev.MicrosPerBeat/float64(tm.ppq)/1e6
}

// PPQ returns the ticks per quarter note.
func (tm *TempoMap) PPQ() int {
	return tm.ppq
}
