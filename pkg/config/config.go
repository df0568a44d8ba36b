// Package config loads presentation and playback settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/drumvis/pkg/clock"
	"github.com/zurustar/drumvis/pkg/fileutil"
	"github.com/zurustar/drumvis/pkg/render"
	"github.com/zurustar/drumvis/pkg/view"
)

// ErrInvalidConfig is returned when a value is out of range or the file
// cannot be decoded.
var ErrInvalidConfig = errors.New("invalid config")

// FileNames are looked up, case-insensitively, by Locate.
var FileNames = []string{"drumvis.yaml", "drumvis.yml"}

// Config is the root of the YAML document.
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	Window   WindowConfig   `yaml:"window"`
	Playback PlaybackConfig `yaml:"playback"`
}

// RenderConfig tunes the piano roll.
type RenderConfig struct {
	KeyWidth          float64 `yaml:"key_width"`
	StaticNoteWidth   float64 `yaml:"static_note_width"`
	AnimatedNoteWidth float64 `yaml:"animated_note_width"`
	CornerRadius      float64 `yaml:"corner_radius"`
	GlowRadius        float64 `yaml:"glow_radius"`
	GlowGain          float64 `yaml:"glow_gain"`
	TargetRatio       float64 `yaml:"target_ratio"`
	LookAhead         float64 `yaml:"look_ahead"`
	LookBehind        float64 `yaml:"look_behind"`
	NoteHue           float64 `yaml:"note_hue"`
	NoteSaturation    float64 `yaml:"note_saturation"`
}

// WindowConfig sizes the host window and its tick rate.
type WindowConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Title    string `yaml:"title"`
	TickRate int    `yaml:"tick_rate"`
}

// PlaybackConfig holds the initial transport settings.
type PlaybackConfig struct {
	BPM    int     `yaml:"bpm"`
	Speed  float64 `yaml:"speed"`
	Figure string  `yaml:"figure"`
}

// Default returns the built-in settings.
func Default() *Config {
	style := render.DefaultStyle()
	return &Config{
		Render: RenderConfig{
			KeyWidth:          style.KeyWidth,
			StaticNoteWidth:   style.StaticNoteWidth,
			AnimatedNoteWidth: style.AnimatedNoteWidth,
			CornerRadius:      style.CornerRadius,
			GlowRadius:        style.GlowRadius,
			GlowGain:          style.GlowGain,
			TargetRatio:       style.Animation.TargetRatio,
			LookAhead:         style.Animation.LookAhead,
			LookBehind:        style.Animation.LookBehind,
			NoteHue:           style.NoteHue,
			NoteSaturation:    style.NoteSaturation,
		},
		Window: WindowConfig{
			Width:    1200,
			Height:   800,
			Title:    "drumvis",
			TickRate: clock.DefaultTickRate,
		},
		Playback: PlaybackConfig{
			BPM:    clock.DefaultBPM,
			Speed:  1.0,
			Figure: clock.Quarter.String(),
		},
	}
}

// Load reads and validates a YAML file. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of Default and validates the result.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate rejects values the renderer or the clock cannot use.
func (c *Config) Validate() error {
	r := c.Render
	checks := []struct {
		ok  bool
		msg string
	}{
		{r.KeyWidth >= 0, "render.key_width must be >= 0"},
		{r.StaticNoteWidth > 0, "render.static_note_width must be > 0"},
		{r.AnimatedNoteWidth > 0, "render.animated_note_width must be > 0"},
		{r.CornerRadius >= 0, "render.corner_radius must be >= 0"},
		{r.GlowRadius >= 0, "render.glow_radius must be >= 0"},
		{r.GlowGain >= 0 && r.GlowGain <= 1, "render.glow_gain must be in [0, 1]"},
		{r.TargetRatio >= 0 && r.TargetRatio <= 1, "render.target_ratio must be in [0, 1]"},
		{r.LookAhead > 0, "render.look_ahead must be > 0"},
		{r.LookBehind >= 0, "render.look_behind must be >= 0"},
		{r.NoteHue >= 0 && r.NoteHue <= 1, "render.note_hue must be in [0, 1]"},
		{r.NoteSaturation >= 0 && r.NoteSaturation <= 1, "render.note_saturation must be in [0, 1]"},
		{c.Window.Width > 0 && c.Window.Height > 0, "window size must be positive"},
		{c.Window.TickRate > 0 && c.Window.TickRate <= 1000, "window.tick_rate must be in [1, 1000]"},
		{c.Playback.BPM >= clock.MinBPM && c.Playback.BPM <= clock.MaxBPM, "playback.bpm must be in [1, 300]"},
		{clock.ValidSpeed(c.Playback.Speed), "playback.speed must be one of 0.5, 0.75, 1, 1.25, 1.5, 2"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, chk.msg)
		}
	}
	if _, err := clock.ParseFigure(c.Playback.Figure); err != nil {
		return fmt.Errorf("%w: playback.figure: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Style converts the render section for the renderer.
func (r RenderConfig) Style() render.Style {
	return render.Style{
		KeyWidth:          r.KeyWidth,
		StaticNoteWidth:   r.StaticNoteWidth,
		AnimatedNoteWidth: r.AnimatedNoteWidth,
		CornerRadius:      r.CornerRadius,
		GlowRadius:        r.GlowRadius,
		GlowGain:          r.GlowGain,
		NoteHue:           r.NoteHue,
		NoteSaturation:    r.NoteSaturation,
		Animation: view.Animation{
			TargetRatio: r.TargetRatio,
			LookAhead:   r.LookAhead,
			LookBehind:  r.LookBehind,
		},
	}
}

// FigureValue returns the parsed playback figure, defaulting to 1/4.
func (p PlaybackConfig) FigureValue() clock.Figure {
	f, err := clock.ParseFigure(p.Figure)
	if err != nil {
		return clock.Quarter
	}
	return f
}

// Locate returns the first config file found in dirs, matching FileNames
// case-insensitively.
func Locate(dirs ...string) (string, bool) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range FileNames {
			if path, err := fileutil.FindFileCaseInsensitive(dir, name); err == nil {
				return path, true
			}
		}
	}
	return "", false
}
