// Package plugin is the audio-plugin shell around the visualizer. Audio
// passes through untouched; the processor only owns the loaded MIDI asset.
package plugin

import (
	"log/slog"
	"sync"

	"github.com/zurustar/drumvis/pkg/asset"
	"github.com/zurustar/drumvis/pkg/logger"
)

// Name is the plugin name reported to hosts.
const Name = "DrumVisualizer"

// Channel counts accepted for the main bus.
const (
	Mono   = 1
	Stereo = 2
)

// Processor is the plugin's processing side. It exclusively owns the asset
// store; editors load and clear through it and read snapshots via Current.
type Processor struct {
	store *asset.Store
	log   *slog.Logger

	mu         sync.Mutex
	sampleRate float64
	blockSize  int
	prepared   bool
}

// NewProcessor creates a processor with an empty store.
// A nil logger uses logger.GetLogger().
func NewProcessor(log *slog.Logger) *Processor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Processor{
		store: asset.NewStore(log),
		log:   log,
	}
}

// Name returns the plugin name.
func (p *Processor) Name() string { return Name }

// AcceptsMIDI reports whether the plugin takes MIDI input.
func (p *Processor) AcceptsMIDI() bool { return false }

// ProducesMIDI reports whether the plugin emits MIDI.
func (p *Processor) ProducesMIDI() bool { return false }

// IsMIDIEffect reports whether the plugin is a pure MIDI effect.
func (p *Processor) IsMIDIEffect() bool { return false }

// TailSeconds returns the audio tail length; there is none.
func (p *Processor) TailSeconds() float64 { return 0 }

// PrepareToPlay records the stream format before processing starts.
func (p *Processor) PrepareToPlay(sampleRate float64, blockSize int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sampleRate = sampleRate
	p.blockSize = blockSize
	p.prepared = true
	p.log.Debug("prepare to play", "sampleRate", sampleRate, "blockSize", blockSize)
}

// ReleaseResources is called when playback stops.
func (p *Processor) ReleaseResources() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prepared = false
}

// SampleRate returns the rate given to PrepareToPlay.
func (p *Processor) SampleRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sampleRate
}

// BlockSize returns the block size given to PrepareToPlay.
func (p *Processor) BlockSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blockSize
}

// IsLayoutSupported accepts mono or stereo where input matches output.
func (p *Processor) IsLayoutSupported(inputs, outputs int) bool {
	if outputs != Mono && outputs != Stereo {
		return false
	}
	return inputs == outputs
}

// ProcessBlock passes input channels through to the outputs and silences
// outputs that have no matching input. in and out may share buffers.
func (p *Processor) ProcessBlock(in, out [][]float32) {
	for ch, dst := range out {
		if ch < len(in) {
			n := copy(dst, in[ch])
			clear(dst[n:])
			continue
		}
		clear(dst)
	}
}

// LoadMIDIFile loads path into the store, replacing the previous file on
// success.
func (p *Processor) LoadMIDIFile(path string) (*asset.Asset, error) {
	a, err := p.store.Load(path)
	if err != nil {
		p.log.Warn("failed to load MIDI file", "path", path, "error", err)
		return nil, err
	}
	return a, nil
}

// SetMIDIData installs an asset parsed elsewhere, such as by a background
// load. nil clears.
func (p *Processor) SetMIDIData(a *asset.Asset) {
	p.store.Set(a)
}

// Current returns the loaded asset, or asset.Empty.
func (p *Processor) Current() *asset.Asset {
	return p.store.Current()
}

// ClearMIDIData drops the loaded file.
func (p *Processor) ClearMIDIData() {
	p.store.Clear()
}

// HasMIDILoaded reports whether a file is loaded.
func (p *Processor) HasMIDILoaded() bool {
	return p.store.HasLoaded()
}

// LoadedFileName returns the loaded file name or asset.NoFileName.
func (p *Processor) LoadedFileName() string {
	return p.store.FileName()
}
