// Package asset loads Standard MIDI Files and answers read-only queries about
// the loaded note timeline: tempo, duration, note range and track events.
package asset

import (
	"math"
	"path/filepath"
)

// DefaultTempo is reported when the file has no usable tempo event.
const DefaultTempo = 120.0

// NoFileName is returned by FileName when nothing is loaded.
const NoFileName = "No file loaded"

// Kind distinguishes note-on from note-off events.
type Kind int

const (
	NoteOn Kind = iota
	NoteOff
)

func (k Kind) String() string {
	if k == NoteOn {
		return "note-on"
	}
	return "note-off"
}

// NoteEvent is a single note-on or note-off, positioned in seconds.
type NoteEvent struct {
	Kind     Kind
	Channel  uint8
	Pitch    uint8
	Velocity uint8
	Time     float64
}

// IsNoteOn reports whether the event starts a sounding note.
func (e NoteEvent) IsNoteOn() bool {
	return e.Kind == NoteOn && e.Velocity > 0
}

// Track is an ordered-by-time sequence of note events.
type Track struct {
	Name   string
	Events []NoteEvent
	end    float64 // time of the last event of any kind
}

// Asset is an immutable parsed MIDI file. The zero value and Empty behave as
// "nothing loaded".
type Asset struct {
	path    string
	tracks  []Track
	tempo   float64
	length  float64
	lowest  int
	highest int
	notes   int
}

// Empty is the sentinel returned when nothing is loaded.
var Empty = &Asset{tempo: DefaultTempo, lowest: 0, highest: 127}

// New builds an asset from already-timed tracks and derives length and note
// range. Events within each track must be ordered by time.
func New(path string, tracks []Track, tempo float64) *Asset {
	a := &Asset{
		path:    path,
		tracks:  tracks,
		tempo:   tempo,
		lowest:  math.MaxInt,
		highest: math.MinInt,
	}
	for _, tr := range tracks {
		a.length = math.Max(a.length, tr.end)
		for _, ev := range tr.Events {
			a.length = math.Max(a.length, ev.Time)
			if !ev.IsNoteOn() {
				continue
			}
			a.notes++
			a.lowest = min(a.lowest, int(ev.Pitch))
			a.highest = max(a.highest, int(ev.Pitch))
		}
	}
	if a.notes == 0 {
		a.lowest, a.highest = 0, 127
	}
	return a
}

// HasLoaded reports whether the asset came from a file.
func (a *Asset) HasLoaded() bool {
	return a != nil && a.path != ""
}

// Path returns the originating file path, or "" when empty.
func (a *Asset) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// FileName returns the base name of the file, or NoFileName.
func (a *Asset) FileName() string {
	if !a.HasLoaded() {
		return NoFileName
	}
	return filepath.Base(a.path)
}

// TrackCount returns the number of tracks.
func (a *Asset) TrackCount() int {
	if a == nil {
		return 0
	}
	return len(a.tracks)
}

// Tracks returns the tracks in file order. The slice must not be modified.
func (a *Asset) Tracks() []Track {
	if a == nil {
		return nil
	}
	return a.tracks
}

// Tempo returns the BPM of the first tempo event, or DefaultTempo.
func (a *Asset) Tempo() float64 {
	if a == nil || a.tempo <= 0 {
		return DefaultTempo
	}
	return a.tempo
}

// LengthSeconds returns the timestamp of the last event across all tracks.
func (a *Asset) LengthSeconds() float64 {
	if a == nil {
		return 0
	}
	return a.length
}

// LowestNote returns the lowest note-on pitch, or 0 when there are none.
func (a *Asset) LowestNote() int {
	if a == nil {
		return 0
	}
	return a.lowest
}

// HighestNote returns the highest note-on pitch, or 127 when there are none.
func (a *Asset) HighestNote() int {
	if a == nil {
		return 127
	}
	return a.highest
}

// NoteCount returns the number of note-on events with velocity > 0.
func (a *Asset) NoteCount() int {
	if a == nil {
		return 0
	}
	return a.notes
}

// AllNoteEvents returns every note-on with velocity > 0, track by track.
func (a *Asset) AllNoteEvents() []NoteEvent {
	if a == nil {
		return nil
	}
	out := make([]NoteEvent, 0, a.notes)
	for _, tr := range a.tracks {
		for _, ev := range tr.Events {
			if ev.IsNoteOn() {
				out = append(out, ev)
			}
		}
	}
	return out
}

// AllEvents returns every note-on and note-off, track by track.
func (a *Asset) AllEvents() []NoteEvent {
	if a == nil {
		return nil
	}
	var out []NoteEvent
	for _, tr := range a.tracks {
		out = append(out, tr.Events...)
	}
	return out
}
