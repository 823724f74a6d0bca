package dx7

import (
	"math"
	"sync"
)

// Option configures an Engine at construction time, following the
// functional-options idiom.
type Option func(*config)

type config struct {
	feedbackMode FeedbackMode
	omni         bool
	channel      int
}

func defaultConfig() config {
	return config{feedbackMode: FeedbackModeMatrix, channel: 1}
}

// WithFeedbackMode selects matrix (default) or classic previous-sample
// feedback (resolves the open feedback-semantics question).
func WithFeedbackMode(m FeedbackMode) Option {
	return func(c *config) { c.feedbackMode = m }
}

// WithOmniMode makes the engine respond to MIDI on every channel instead of
// only the configured one (resolves the open omni-mode question).
func WithOmniMode(omni bool) Option {
	return func(c *config) { c.omni = omni }
}

// WithChannel sets the 1-based MIDI channel the engine listens on.
func WithChannel(channel int) Option {
	return func(c *config) { c.channel = channel }
}

// Engine is the synthesis core: a voice pool, shared controller state, and
// the currently-loaded patch. One coarse mutex guards voice-pool
// allocation/release transitions (issued from the MIDI-ingress thread);
// the per-sample render path (audio thread) holds that same mutex only
// once, around the entire block, per the concurrency model in section 5.
type Engine struct {
	mu sync.Mutex

	sampleRate float64
	patch      Patch
	pool       *VoicePool
	ctrl       *Controllers
	cfg        config

	sampleClock int64
	running     bool

	patchBank       map[int]Patch
	lastProgram     int
	lastPressure    int
	aftertouchDepth float64
}

// New constructs an Engine with a fixed voice pool already allocated; no
// further allocation occurs on the audio-render path.
func New(sampleRate int, patch Patch, opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Engine{
		sampleRate: float64(sampleRate),
		patch:      patch,
		pool:       NewVoicePool(float64(sampleRate)),
		ctrl:       NewControllers(),
		cfg:        cfg,
	}
}

// Start/Stop gate the render path; stopped engines render silence and
// ignore incoming note events other than All Sound Off/Reset bookkeeping.
func (e *Engine) Start() { e.mu.Lock(); e.running = true; e.mu.Unlock() }
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.pool.SilenceAll()
	e.mu.Unlock()
}

// LoadPatch swaps the active patch. Safe to call from ingress; never
// touches in-flight voices (they keep playing with their captured
// parameters until they decay or are released).
func (e *Engine) LoadPatch(p Patch) {
	e.mu.Lock()
	e.patch = p
	e.mu.Unlock()
}

// Patch returns a copy of the currently active patch.
func (e *Engine) Patch() Patch {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patch
}

// acceptsChannel reports whether the engine should act on a message
// addressed to the given 1-based MIDI channel.
func (e *Engine) acceptsChannel(channel int) bool {
	return e.cfg.omni || channel == e.cfg.channel
}

// NoteOn allocates (or steals) a voice for the given note. channel is
// 1-based.
func (e *Engine) NoteOn(channel, note, velocity int) {
	if !e.acceptsChannel(channel) {
		return
	}
	if velocity <= 0 {
		e.NoteOff(channel, note)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.pool.Allocate(&e.patch, note, float64(velocity)/127, channel, e.sampleClock)
}

// NoteOff releases a voice matching (note, channel), respecting sustain.
func (e *Engine) NoteOff(channel, note int) {
	if !e.acceptsChannel(channel) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pool.Release(note, channel, e.ctrl.SustainPedal())
}

// ControlChange applies a continuous-controller message, reacting to
// sustain edges, All Notes Off, All Sound Off and Reset Controllers.
func (e *Engine) ControlChange(channel, cc, value int) {
	if !e.acceptsChannel(channel) {
		return
	}
	res := e.ctrl.ApplyCC(cc, value)
	if res.SustainEdge == 0 && !res.AllNotesOff && !res.AllSoundOff && !res.ResetControl {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if res.SustainEdge == -1 {
		e.pool.ReleaseSustained()
	}
	if res.AllNotesOff {
		e.pool.ReleaseAll()
	}
	if res.AllSoundOff {
		e.pool.SilenceAll()
	}
	if res.ResetControl {
		e.ctrl.Reset()
	}
}

// PitchBend applies a 14-bit pitch-bend value.
func (e *Engine) PitchBend(channel, value14 int) {
	if !e.acceptsChannel(channel) {
		return
	}
	e.ctrl.SetPitchBend(value14)
}

// ProgramChange records a program change; only acts if a patch bank has
// been registered via SetPatchBank, otherwise it is recognized but inert
// (see design notes on unimplemented placeholders).
func (e *Engine) ProgramChange(channel, program int) {
	if !e.acceptsChannel(channel) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastProgram = program
	if e.patchBank != nil {
		if p, ok := e.patchBank[program]; ok {
			e.patch = p
		}
	}
}

// ChannelPressure scales active voices' effective velocity by a
// configurable, default-zero depth; inert unless SetAftertouchDepth has
// been called.
func (e *Engine) ChannelPressure(channel, pressure int) {
	if !e.acceptsChannel(channel) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastPressure = pressure
	if e.aftertouchDepth == 0 {
		return
	}
	p := float64(pressure) / 127
	for i := range e.pool.voices {
		v := &e.pool.voices[i]
		if v.active {
			v.velocity *= 1 + e.aftertouchDepth*p
		}
	}
}

// SetPatchBank registers a program-number to patch map consulted by
// ProgramChange.
func (e *Engine) SetPatchBank(bank map[int]Patch) {
	e.mu.Lock()
	e.patchBank = bank
	e.mu.Unlock()
}

// SetAftertouchDepth configures how strongly Channel Pressure scales
// voice velocity; zero (the default) leaves Channel Pressure inert.
func (e *Engine) SetAftertouchDepth(depth float64) {
	e.mu.Lock()
	e.aftertouchDepth = depth
	e.mu.Unlock()
}

// RenderBlock fills out with frames mono float32 samples in [-1,1],
// advancing the sample clock and every active voice. This is the sole
// entry point used by the audio-render thread; it performs no allocation
// and no formatted I/O.
func (e *Engine) RenderBlock(out []float32, frames int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		for i := 0; i < frames && i < len(out); i++ {
			out[i] = 0
		}
		return
	}
	for i := 0; i < frames && i < len(out); i++ {
		s := e.pool.RenderSample(e.ctrl, e.cfg.feedbackMode) * 0.5
		out[i] = float32(math.Tanh(s)) // soft clip into (-1, 1)
		e.sampleClock++
	}
}

// IncMIDIError records a transient MIDI parse error (orphan data byte,
// SysEx overflow, unrecognized status) without surfacing it.
func (e *Engine) IncMIDIError() {
	e.mu.Lock()
	e.pool.IncMIDIError()
	e.mu.Unlock()
}

// Stats returns a snapshot of voice-pool and controller diagnostics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Stats()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
