// Package dx7 implements the six-operator FM voice model: envelopes,
// operators, the algorithm router, and the voice pool that drives them.
package dx7

// Stage identifies which of the four envelope segments is active.
type Stage int

const (
	StageAttack Stage = iota
	StageDecay1
	StageDecay2
	StageRelease
)

// rateTable maps a 0-99 rate value to a nominal full-scale stage time in
// seconds. Reproduced verbatim; do not "simplify" the curve.
var rateTable = [100]float64{
	30.0, 25.0, 20.0, 18.0, 16.0, 14.0, 12.0, 10.0, 8.0, 6.0,
	5.5, 5.0, 4.5, 4.0, 3.5, 3.0, 2.8, 2.6, 2.4, 2.2,
	2.0, 1.8, 1.6, 1.4, 1.2, 1.0, 0.95, 0.90, 0.85, 0.80,
	0.75, 0.70, 0.65, 0.60, 0.55, 0.50, 0.47, 0.44, 0.41, 0.38,
	0.35, 0.32, 0.29, 0.26, 0.23, 0.20, 0.19, 0.18, 0.17, 0.16,
	0.15, 0.14, 0.13, 0.12, 0.11, 0.10, 0.095, 0.090, 0.085, 0.080,
	0.075, 0.070, 0.065, 0.060, 0.055, 0.050, 0.047, 0.044, 0.041, 0.038,
	0.035, 0.032, 0.029, 0.026, 0.023, 0.020, 0.018, 0.016, 0.014, 0.012,
	0.010, 0.009, 0.008, 0.007, 0.006, 0.005, 0.0045, 0.004, 0.0035, 0.003,
	0.0025, 0.002, 0.0018, 0.0016, 0.0014, 0.0012, 0.001, 0.0008, 0.0006, 0.0004,
}

func rateToTime(rate int, levelDiff float64) float64 {
	if rate <= 0 {
		return 30.0
	}
	if rate >= 99 {
		return 0.0004
	}
	d := levelDiff
	if d < 0 {
		d = -d
	}
	scale := d / 99
	if scale < 0.1 {
		scale = 0.1
	}
	return rateTable[rate] * scale
}

// Envelope is a per-operator four-stage piecewise-linear amplitude envelope.
type Envelope struct {
	Stage        Stage
	Level        float64
	rate         float64
	target       float64
	samplesIn    int
	rates        [4]int
	levels       [4]int
	rateScale    float64
	sampleRate   float64
}

// Init starts the envelope at Attack from level 0. rateScale is the
// rate_scale * key_rate_scaling/7 term computed at note-on by
// OperatorState.init (operator.go).
func (e *Envelope) Init(rates, levels [4]int, rateScale float64, sampleRate float64) {
	e.rates = rates
	e.levels = levels
	e.rateScale = rateScale
	e.sampleRate = sampleRate
	e.Stage = StageAttack
	e.Level = 0
	e.samplesIn = 0
	e.beginStage(StageAttack, float64(levels[StageAttack])/99)
}

// SetKeyRateScale folds the per-voice rate_scale * key_rate_scaling/7 term
// (computed at note-on from the MIDI note and the operator's
// key_rate_scaling parameter) into stage-time computation.
func (e *Envelope) SetKeyRateScale(scale float64) {
	e.rateScale = scale
}

func (e *Envelope) stageTime(stage Stage, levelDiff float64) float64 {
	t := rateToTime(e.rates[stage], levelDiff*99)
	divisor := 1 + e.rateScale
	if divisor <= 0 {
		divisor = 1
	}
	return t / divisor
}

func (e *Envelope) beginStage(stage Stage, target float64) {
	e.Stage = stage
	e.target = target
	diff := target - e.Level
	t := e.stageTime(stage, diff)
	if t <= 0 || diff == 0 {
		if stage == StageRelease {
			e.rate = -0.1
		} else {
			e.rate = 0
		}
		return
	}
	e.rate = diff / (t * e.sampleRate)
}

// Advance moves the envelope forward by one sample and returns the new
// level.
func (e *Envelope) Advance() float64 {
	e.samplesIn++
	switch e.Stage {
	case StageAttack:
		e.Level += e.rate
		if e.Level >= e.target || e.rates[StageAttack] >= 99 {
			e.Level = e.target
			e.beginStage(StageDecay1, float64(e.levels[StageDecay1])/99)
		}
	case StageDecay1:
		e.Level += e.rate
		if (e.rate <= 0 && e.Level <= e.target) || (e.rate > 0 && e.Level >= e.target) || e.rates[StageDecay1] >= 99 {
			e.Level = e.target
			e.beginStage(StageDecay2, float64(e.levels[StageDecay2])/99)
		}
	case StageDecay2:
		e.Level += e.rate
		if (e.rate <= 0 && e.Level <= e.target) || (e.rate > 0 && e.Level >= e.target) {
			e.Level = e.target
			e.rate = 0
		}
	case StageRelease:
		e.Level += e.rate
		if e.Level <= e.target {
			e.Level = e.target
		}
	}
	if e.Level < 0 {
		e.Level = 0
	}
	if e.Level > 1 {
		e.Level = 1
	}
	return e.Level
}

// TriggerRelease switches the envelope into its Release stage, computing a
// fresh rate from the current level toward the release target.
func (e *Envelope) TriggerRelease() {
	target := float64(e.levels[StageRelease]) / 99
	e.beginStage(StageRelease, target)
}

// Idle reports whether the envelope has decayed below the deactivation
// threshold used by the voice pool to reclaim a voice. This is checked
// unconditionally of stage: a patch whose decay targets reach zero before
// Release is ever triggered (env_level[2] == 0, a common one-shot/percussive
// configuration) must still be reclaimable without an explicit note-off.
func (e *Envelope) Idle() bool {
	return e.Level <= 0.001
}
