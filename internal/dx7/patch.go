package dx7

// Patch is a complete, immutable-during-playback timbre definition: six
// operators, an algorithm, feedback, and an LFO.
type Patch struct {
	Name      string
	Operators [6]OperatorParams
	Algorithm int // [1,32]
	Feedback  int // [0,7]

	LFOSpeed         int // [0,99]
	LFODelay         int // [0,99]
	LFOPMD           int // [0,99] pitch modulation depth
	LFOAMD           int // [0,99] amplitude modulation depth
	LFOSync          bool
	LFOWave          LFOWave
	LFOPitchModSens  int // [0,7]

	PitchEnvRates  [4]int // [0,99]
	PitchEnvLevels [4]int // [0,50]

	Transpose int // [-24,24]

	// Fields present in the original hardware's voice data but dropped
	// from the distilled spec's data model; carried here since nothing
	// excludes them.
	PolyMono         bool
	PitchBendRange   int // semitones, default 2
	PortamentoMode   bool
	PortamentoGliss  bool
	PortamentoTime   int // [0,99]
}

// DefaultPatch returns a plain sine patch, useful as a fallback and in
// tests: algorithm 25 (no modulation) with only operator 1 at a non-zero
// output level.
func DefaultPatch() Patch {
	p := Patch{
		Name:           "INIT VOICE",
		Algorithm:      25,
		Feedback:       0,
		LFOSpeed:       35,
		LFOWave:        LFOSine,
		PitchBendRange: 2,
	}
	for i := range p.Operators {
		op := OperatorParams{
			FreqRatio:      1.0,
			EnvRates:       [4]int{99, 99, 99, 99},
			EnvLevels:      [4]int{99, 99, 99, 0},
			OutputLevel:    70,
			KeyVelSens:     2,
			BreakPoint:     60,
			LeftCurve:      CurveLinearDown,
			RightCurve:     CurveLinearDown,
			KeyRateScaling: 0,
		}
		if i > 0 {
			op.OutputLevel = 0
		}
		p.Operators[i] = op
	}
	return p
}
