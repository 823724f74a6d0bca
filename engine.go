// Package dx7go is the public surface of a six-operator FM synthesis
// engine patterned after a classic hardware rack synth: a fixed voice
// pool, a 32-entry algorithm router, and a MIDI-driven control surface,
// wrapped with real-time audio output.
package dx7go

import (
	"errors"
	"sync"

	intaudio "github.com/cbegin/dx7-go/internal/audio"
	intdx7 "github.com/cbegin/dx7-go/internal/dx7"
	"github.com/cbegin/dx7-go/internal/midi"
)

// PlaybackEvent carries engine lifecycle notifications from Watch().
type PlaybackEvent struct {
	Kind    int
	Note    int
	Channel int
}

const (
	EventVoiceStolen int = iota
	EventAllSoundOff
	EventPatchLoaded
)

// EngineOption configures a Player at construction time.
type EngineOption func(*engineConfig)

type engineConfig struct {
	channel      int
	omni         bool
	feedbackMode intdx7.FeedbackMode
	patch        intdx7.Patch
}

func defaultEngineConfig() engineConfig {
	return engineConfig{channel: 1, feedbackMode: intdx7.FeedbackModeMatrix, patch: intdx7.DefaultPatch()}
}

// WithChannel sets the 1-based MIDI channel the engine listens on.
func WithChannel(channel int) EngineOption {
	return func(c *engineConfig) { c.channel = channel }
}

// WithOmniMode makes the engine respond to every MIDI channel.
func WithOmniMode(omni bool) EngineOption {
	return func(c *engineConfig) { c.omni = omni }
}

// WithClassicFeedback selects the classic feedback mode, which feeds
// operator 0's previous raw sine sample into its feedback term, instead of
// the default matrix-scaled-sine mode.
func WithClassicFeedback() EngineOption {
	return func(c *engineConfig) { c.feedbackMode = intdx7.FeedbackModeClassic }
}

// WithPatch seeds the engine with an initial patch instead of the built-in
// default.
func WithPatch(p intdx7.Patch) EngineOption {
	return func(c *engineConfig) { c.patch = p }
}

// Player owns a synthesis engine plus, optionally, a live audio output
// stream. It is the type the live host binary (cmd/dx7play) constructs.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	engine     *intdx7.Engine
	parser     *midi.Parser
	audio      *intaudio.Player
	wrapper    *stereoWrapper

	eventChMu sync.Mutex
	eventCh   chan PlaybackEvent
}

// NewPlayer constructs a Player with its own fixed voice pool, ready to
// receive MIDI bytes and render audio. It returns an error for a
// non-positive sample rate, a channel outside 1..16 or a patch algorithm
// outside 1..32.
func NewPlayer(sampleRate int, opts ...EngineOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("dx7go: sampleRate must be positive")
	}
	cfg := defaultEngineConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.channel < 1 || cfg.channel > 16 {
		return nil, errors.New("dx7go: channel must be in 1..16")
	}
	if cfg.patch.Algorithm < 1 || cfg.patch.Algorithm > 32 {
		return nil, errors.New("dx7go: patch algorithm must be in 1..32")
	}
	engine := intdx7.New(sampleRate, cfg.patch,
		intdx7.WithChannel(cfg.channel),
		intdx7.WithOmniMode(cfg.omni),
		intdx7.WithFeedbackMode(cfg.feedbackMode),
	)
	engine.Start()

	p := &Player{
		sampleRate: sampleRate,
		engine:     engine,
	}
	p.parser = midi.NewParser(&engineHandler{p: p})
	return p, nil
}

// engineHandler adapts Engine's midi.Handler-shaped methods to also emit
// PlaybackEvents: EventVoiceStolen when a note-on steals a voice, and
// EventPatchLoaded after each SysEx message, whether or not it decoded.
// Control changes, All Sound Off included, are passed on without an event.
type engineHandler struct {
	p *Player
}

func (h *engineHandler) NoteOn(channel, note, velocity int) {
	before := h.p.engine.Stats().VoiceSteals
	h.p.engine.NoteOn(channel, note, velocity)
	after := h.p.engine.Stats().VoiceSteals
	if after != before {
		h.p.sendEvent(PlaybackEvent{Kind: EventVoiceStolen, Note: note, Channel: channel})
	}
}
func (h *engineHandler) NoteOff(channel, note int)              { h.p.engine.NoteOff(channel, note) }
func (h *engineHandler) ControlChange(channel, cc, value int)   { h.p.engine.ControlChange(channel, cc, value) }
func (h *engineHandler) PitchBend(channel, value14 int)         { h.p.engine.PitchBend(channel, value14) }
func (h *engineHandler) ProgramChange(channel, program int)     { h.p.engine.ProgramChange(channel, program) }
func (h *engineHandler) ChannelPressure(channel, pressure int)  { h.p.engine.ChannelPressure(channel, pressure) }
func (h *engineHandler) SysEx(data []byte) {
	h.p.engine.SysEx(data)
	h.p.sendEvent(PlaybackEvent{Kind: EventPatchLoaded})
}
func (h *engineHandler) ParseError() { h.p.engine.ParseError() }

// FeedMIDI pushes raw MIDI bytes into the parser; safe to call from any
// ingress thread.
func (p *Player) FeedMIDI(bytes []byte) {
	p.parser.FeedBytes(bytes)
}

// stereoWrapper duplicates the engine's mono output across both audio
// channels to satisfy intaudio.SampleSource's interleaved-stereo contract.
type stereoWrapper struct {
	engine *intdx7.Engine
	mono   []float32
}

func (w *stereoWrapper) Process(dst []float32) {
	frames := len(dst) / 2
	if cap(w.mono) < frames {
		w.mono = make([]float32, frames)
	}
	w.mono = w.mono[:frames]
	w.engine.RenderBlock(w.mono, frames)
	for i := 0; i < frames; i++ {
		dst[i*2] = w.mono[i]
		dst[i*2+1] = w.mono[i]
	}
}

// StartAudio opens a live output stream backed by the host audio device.
func (p *Player) StartAudio() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		return nil
	}
	p.wrapper = &stereoWrapper{engine: p.engine}
	backend, err := intaudio.NewPlayer(p.sampleRate, p.wrapper)
	if err != nil {
		return err
	}
	p.audio = backend
	p.audio.Play()
	return nil
}

// StopAudio closes the live output stream, if any. The engine keeps
// running and can be rendered offline or restarted.
func (p *Player) StopAudio() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// RenderBlock renders frames mono samples directly, bypassing any live
// audio device.
func (p *Player) RenderBlock(out []float32, frames int) {
	p.engine.RenderBlock(out, frames)
}

// LoadPatch replaces the active patch.
func (p *Player) LoadPatch(patch intdx7.Patch) {
	p.engine.LoadPatch(patch)
	p.sendEvent(PlaybackEvent{Kind: EventPatchLoaded})
}

// Stats exposes the underlying voice-pool and MIDI-error counters.
func (p *Player) Stats() intdx7.Stats {
	return p.engine.Stats()
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

// Watch returns a buffered channel of playback events. Repeated calls
// replace the previous channel.
func (p *Player) Watch() <-chan PlaybackEvent {
	p.eventChMu.Lock()
	defer p.eventChMu.Unlock()
	ch := make(chan PlaybackEvent, 8)
	p.eventCh = ch
	return ch
}
