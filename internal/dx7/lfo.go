package dx7

import "math"

// LFOWave selects the voice LFO's waveform. Sine is the required baseline;
// the rest extend the original hardware's modulation options.
type LFOWave int

const (
	LFOSine LFOWave = iota
	LFOTriangle
	LFOSawUp
	LFOSawDown
	LFOSquare
	LFOSampleHold
)

// VoiceLFO is a single low-frequency oscillator owned by one voice (one per
// voice, not shared across the engine), driving both amplitude and pitch
// modulation of that voice's six operators.
type VoiceLFO struct {
	phase    float64
	wave     LFOWave
	held     float64
	lastSeed float64
}

// Reset zeros the LFO's phase and held sample-and-hold value, called at
// note-on.
func (l *VoiceLFO) Reset() {
	l.phase = 0
	l.held = 0
	l.lastSeed = 0
}

// lfoFrequency computes the LFO rate in Hz from the patch's lfo_speed and the
// live mod-wheel-derived speed multiplier.
func lfoFrequency(lfoSpeed int, modWheel float64, controllersActive bool) float64 {
	mult := 1.0
	if controllersActive {
		mult = 0.1 + modWheel*2.9
	}
	return (float64(lfoSpeed) / 99) * 6 * mult
}

// Sample advances the LFO by one sample and returns its instantaneous
// value in [-1, 1].
func (l *VoiceLFO) Sample(wave LFOWave, freqHz, sampleRate float64) float64 {
	l.wave = wave
	var v float64
	switch wave {
	case LFOTriangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case LFOSawUp:
		v = 2*l.phase - 1
	case LFOSawDown:
		v = 1 - 2*l.phase
	case LFOSquare:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	case LFOSampleHold:
		v = l.held
	default: // LFOSine
		v = math.Sin(2 * math.Pi * l.phase)
	}

	prevPhase := l.phase
	l.phase += freqHz / sampleRate
	l.phase -= math.Floor(l.phase)

	if wave == LFOSampleHold && l.phase < prevPhase {
		l.lastSeed = math.Sin(l.phase*12345.6789 + l.lastSeed*67890.1234)
		l.held = l.lastSeed - math.Floor(l.lastSeed)
		l.held = l.held*2 - 1
	}

	return v
}
