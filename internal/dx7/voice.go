package dx7

import "math"

// MaxVoices is the size of the fixed voice pool.
const MaxVoices = 16

// midiNoteToHz converts a MIDI note number to frequency, ignoring bend.
func midiNoteToHz(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// baseHz folds pitch bend (normalized [-1,1], scaled by the patch's
// pitch-bend range) into a note's frequency.
func baseHz(note int, bend float64, bendRangeSemitones int) float64 {
	return midiNoteToHz(note) * math.Pow(2, bend*float64(bendRangeSemitones)/12)
}

// Voice is one polyphonic note: six operators, a shared LFO, and the
// bookkeeping needed for allocation, sustain, stealing and portamento.
type Voice struct {
	active      bool
	midiNote    int
	velocity    float64 // [0,1]
	channel     int
	noteOnTime  int64 // monotonic sample counter, used as the LRU steal key
	sustainHeld bool

	operators [6]OperatorState
	lfo       VoiceLFO

	portamentoFromHz  float64
	portamentoStep    float64
	portamentoSamples int

	// patch points at ownPatch, the copy of the engine's patch taken at
	// allocation, so a later LoadPatch does not change a sounding voice.
	patch    *Patch
	ownPatch Patch
}

// allocate (re)initializes this voice for a new note. prevNote is the most
// recently allocated note on the same channel (whether or not it is still
// held), used to seed a portamento glide when the patch requests one; pass
// -1 when there is none.
func (v *Voice) allocate(patch *Patch, note int, velocity float64, channel int, now int64, sampleRate float64, prevNote int) {
	v.active = true
	v.midiNote = note
	v.velocity = velocity
	v.channel = channel
	v.noteOnTime = now
	v.sustainHeld = false
	v.ownPatch = *patch
	v.patch = &v.ownPatch
	v.lfo.Reset()

	for i := range v.operators {
		v.operators[i].init(patch.Operators[i], note, velocity, sampleRate)
	}

	v.portamentoSamples = 0
	if patch.PortamentoMode && prevNote >= 0 {
		fromHz := midiNoteToHz(prevNote + patch.Transpose)
		toHz := midiNoteToHz(note + patch.Transpose)
		glideTime := rateToTime(patch.PortamentoTime, 99)
		samples := int(glideTime * sampleRate)
		if samples < 1 {
			samples = 1
		}
		v.portamentoFromHz = fromHz
		v.portamentoStep = (toHz - fromHz) / float64(samples)
		v.portamentoSamples = samples
	}
}

// release moves every operator to its Release stage, unless the sustain
// pedal is down, in which case it only marks the voice for deferred
// release.
func (v *Voice) release(sustainDown bool) {
	if sustainDown {
		v.sustainHeld = true
		return
	}
	for i := range v.operators {
		v.operators[i].Release()
	}
}

// forceRelease triggers Release regardless of sustain (All Notes Off, or
// the sustain pedal coming back up on a held voice).
func (v *Voice) forceRelease() {
	v.sustainHeld = false
	for i := range v.operators {
		v.operators[i].Release()
	}
}

// idle reports whether every operator has decayed below the deactivation
// threshold.
func (v *Voice) idle() bool {
	for i := range v.operators {
		if !v.operators[i].Idle() {
			return false
		}
	}
	return true
}

// renderSample advances this voice by one sample: reapplies live
// controllers to compute per-operator frequency (including pitch bend and
// any in-flight portamento glide), advances the shared LFO, advances all
// six operators, and mixes them through the algorithm router.
func (v *Voice) renderSample(ctrl *Controllers, feedbackMode FeedbackMode, sampleRate float64) float64 {
	note := v.midiNote
	bendRange := 2
	if v.patch != nil {
		note += v.patch.Transpose
		bendRange = v.patch.PitchBendRange
		if bendRange <= 0 {
			bendRange = 2
		}
	}

	var voiceBaseHz float64
	if v.portamentoSamples > 0 {
		voiceBaseHz = v.portamentoFromHz * math.Pow(2, ctrl.PitchBend()*float64(bendRange)/12)
		v.portamentoFromHz += v.portamentoStep
		v.portamentoSamples--
	} else {
		voiceBaseHz = baseHz(note, ctrl.PitchBend(), bendRange)
	}

	for i := range v.operators {
		v.operators[i].setFrequency(voiceBaseHz)
	}

	lfoSpeed, lfoWave, lfoPMD, lfoAMD, lfoPitchSens, feedback, algorithm := 35, LFOSine, 0, 0, 0, 0, 1
	if v.patch != nil {
		lfoSpeed = v.patch.LFOSpeed
		lfoWave = v.patch.LFOWave
		lfoPMD = v.patch.LFOPMD
		lfoAMD = v.patch.LFOAMD
		lfoPitchSens = v.patch.LFOPitchModSens
		feedback = v.patch.Feedback
		algorithm = v.patch.Algorithm
	}
	freqHz := lfoFrequency(lfoSpeed, ctrl.ModWheel(), ctrl.Active())
	lfoValue := v.lfo.Sample(lfoWave, freqHz, sampleRate)

	prevOp0Raw := v.operators[0].prevRaw

	var raw, levels [6]float64
	for i := range v.operators {
		raw[i], levels[i] = v.operators[i].advance(v.velocity, lfoValue, float64(lfoAMD), float64(lfoPMD), float64(lfoPitchSens), sampleRate)
	}

	sample := processAlgorithm(raw, levels, algorithm, feedback, prevOp0Raw, feedbackMode)

	gain := ctrl.Volume() * ctrl.Expression() * v.velocity
	sample *= gain

	if v.idle() {
		v.active = false
	}
	return sample
}
