package asset

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// timeline converts absolute ticks to seconds.
type timeline interface {
	Seconds(tick int64) float64
}

// timeCodeTimeline handles SMPTE time division, which ignores tempo events.
type timeCodeTimeline struct {
	ticksPerSecond float64
}

func (tc timeCodeTimeline) Seconds(tick int64) float64 {
	if tick <= 0 || tc.ticksPerSecond <= 0 {
		return 0
	}
	return float64(tick) / tc.ticksPerSecond
}

// rawEvent is a note event still positioned in ticks.
type rawEvent struct {
	tick  int64
	event NoteEvent
}

type rawTrack struct {
	name    string
	events  []rawEvent
	endTick int64
}

// Parse reads a Standard MIDI File from r. path only identifies the asset;
// nothing is opened. Timestamps are resolved to seconds through the file's
// tempo map.
func Parse(path string, r io.Reader) (*Asset, error) {
	sm, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	// 途中で切れたファイルはエラーなしで読めてしまうことがある
	if len(sm.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %s: no tracks", ErrCorrupt, path)
	}
	for i, tr := range sm.Tracks {
		if !tr.IsClosed() {
			return nil, fmt.Errorf("%w: %s: track %d has no end of track", ErrCorrupt, path, i)
		}
	}

	var (
		raws       = make([]rawTrack, 0, len(sm.Tracks))
		tempos     []TempoEvent
		firstTempo float64
		haveTempo  bool
	)

	for _, tr := range sm.Tracks {
		var rt rawTrack
		var abs int64
		for _, ev := range tr {
			abs += int64(ev.Delta)
			msg := ev.Message

			var ch, key, vel uint8
			var bpm float64
			var name string
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				rt.events = append(rt.events, rawEvent{abs, NoteEvent{Kind: NoteOn, Channel: ch, Pitch: key, Velocity: vel}})
			case msg.GetNoteOff(&ch, &key, &vel):
				rt.events = append(rt.events, rawEvent{abs, NoteEvent{Kind: NoteOff, Channel: ch, Pitch: key, Velocity: vel}})
			case msg.GetNoteEnd(&ch, &key):
				// note-on with velocity 0
				rt.events = append(rt.events, rawEvent{abs, NoteEvent{Kind: NoteOff, Channel: ch, Pitch: key}})
			case msg.GetMetaTempo(&bpm):
				if bpm > 0 && !math.IsInf(bpm, 0) {
					tempos = append(tempos, TempoEvent{Tick: abs, MicrosPerBeat: 60e6 / bpm})
				}
				if !haveTempo {
					firstTempo, haveTempo = bpm, true
				}
			case msg.GetMetaTrackName(&name):
				if rt.name == "" {
					rt.name = decodeName(name)
				}
			}
		}
		rt.endTick = abs
		raws = append(raws, rt)
	}

	var tl timeline
	switch tf := sm.TimeFormat.(type) {
	case smf.MetricTicks:
		tl = NewTempoMap(int(tf.Resolution()), tempos)
	case smf.TimeCode:
		tl = timeCodeTimeline{ticksPerSecond: float64(tf.FramesPerSecond) * float64(tf.SubFrames)}
	default:
		return nil, fmt.Errorf("%w: %s: unknown time format", ErrCorrupt, path)
	}

	tracks := make([]Track, len(raws))
	for i, rt := range raws {
		events := make([]NoteEvent, len(rt.events))
		for j, re := range rt.events {
			events[j] = re.event
			events[j].Time = tl.Seconds(re.tick)
		}
		tracks[i] = Track{Name: rt.name, Events: events}
		tracks[i].end = tl.Seconds(rt.endTick)
	}

	tempo := DefaultTempo
	if haveTempo && firstTempo > 0 && !math.IsInf(firstTempo, 0) && !math.IsNaN(firstTempo) {
		tempo = firstTempo
	}

	return New(path, tracks, tempo), nil
}

// decodeName returns s unchanged when it is valid UTF-8, otherwise it is
// decoded as Shift_JIS.
func decodeName(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, _, err := transform.String(japanese.ShiftJIS.NewDecoder(), s)
	if err != nil {
		return s
	}
	return decoded
}
