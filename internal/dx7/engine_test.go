package dx7

import (
	"math"
	"testing"
)

func TestEngineGeneratesSignal(t *testing.T) {
	patch := DefaultPatch()
	patch.Operators[0].OutputLevel = 99
	e := New(48000, patch)
	e.Start()
	e.NoteOn(1, 60, 100)

	var nonZero bool
	out := make([]float32, 4096)
	e.RenderBlock(out, len(out))
	for _, s := range out {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected non-zero output")
	}
}

func TestOutputStaysWithinUnitRange(t *testing.T) {
	patch := DefaultPatch()
	for i := range patch.Operators {
		patch.Operators[i].OutputLevel = 99
		patch.Operators[i].EnvRates = [4]int{99, 99, 99, 99}
		patch.Operators[i].EnvLevels = [4]int{99, 99, 99, 99}
	}
	patch.Algorithm = 25
	patch.Feedback = 7
	e := New(48000, patch)
	e.Start()
	for n := 40; n < 90; n += 7 {
		e.NoteOn(1, n, 127)
	}
	out := make([]float32, 48000)
	e.RenderBlock(out, len(out))
	for i, s := range out {
		if s > 1 || s < -1 {
			t.Fatalf("sample %d out of range: %v", i, s)
		}
	}
}

func TestVoiceStealingPicksOldest(t *testing.T) {
	e := New(48000, DefaultPatch())
	e.Start()
	out := make([]float32, 1)
	for i := 0; i < MaxVoices; i++ {
		e.NoteOn(1, 40+i, 100)
		e.RenderBlock(out, 1) // advance sampleClock so note-on times differ
	}
	if got := e.Stats().ActiveVoices; got != MaxVoices {
		t.Fatalf("expected %d active voices, got %d", MaxVoices, got)
	}

	e.NoteOn(1, 90, 100) // pool full, must steal
	stats := e.Stats()
	if stats.VoiceSteals != 1 {
		t.Fatalf("expected exactly 1 steal, got %d", stats.VoiceSteals)
	}
	if stats.ActiveVoices != MaxVoices {
		t.Fatalf("active voice count should stay capped at %d, got %d", MaxVoices, stats.ActiveVoices)
	}
	// The oldest note (40) must no longer be findable.
	if v := e.pool.Find(40, 1); v != nil {
		t.Fatalf("expected note 40 to have been stolen")
	}
	if v := e.pool.Find(90, 1); v == nil {
		t.Fatalf("expected note 90 to have been allocated")
	}
}

func TestNoteOffOnInactiveNoteIsNoOp(t *testing.T) {
	e := New(48000, DefaultPatch())
	e.Start()
	before := e.Stats()
	e.NoteOff(1, 72) // nothing active
	after := e.Stats()
	if before != after {
		t.Fatalf("expected no state change for note-off on inactive note")
	}
}

func TestSustainDefersReleaseUntilPedalUp(t *testing.T) {
	patch := DefaultPatch()
	patch.Operators[0].EnvRates = [4]int{99, 99, 99, 5}
	patch.Operators[0].EnvLevels = [4]int{99, 99, 99, 0}
	patch.Operators[0].OutputLevel = 99
	e := New(48000, patch)
	e.Start()

	e.NoteOn(1, 60, 100)
	e.ControlChange(1, 64, 127) // sustain on
	e.NoteOff(1, 60)

	v := e.pool.Find(60, 1)
	if v == nil {
		t.Fatalf("expected voice to remain active while sustained")
	}
	if v.operators[0].env.Stage == StageRelease {
		t.Fatalf("expected envelope to stay out of Release while sustain held")
	}

	e.ControlChange(1, 64, 0) // sustain off
	v = e.pool.Find(60, 1)
	if v == nil || v.operators[0].env.Stage != StageRelease {
		t.Fatalf("expected release to trigger once sustain pedal lifts")
	}
}

func TestAllSoundOffDeactivatesImmediately(t *testing.T) {
	e := New(48000, DefaultPatch())
	e.Start()
	e.NoteOn(1, 60, 100)
	e.NoteOn(1, 64, 100)
	e.ControlChange(1, 120, 127)
	if got := e.Stats().ActiveVoices; got != 0 {
		t.Fatalf("expected All Sound Off to zero active voices immediately, got %d", got)
	}
}

func TestPitchBendShiftsFrequencyUpward(t *testing.T) {
	patch := DefaultPatch()
	patch.Operators[0].OutputLevel = 99
	e := New(48000, patch)
	e.Start()
	e.NoteOn(1, 69, 100) // A4, 440 Hz

	zeroCrossings := func(bendValue14 int) int {
		e2 := New(48000, patch)
		e2.Start()
		e2.NoteOn(1, 69, 100)
		e2.PitchBend(1, bendValue14)
		out := make([]float32, 48000)
		e2.RenderBlock(out, len(out))
		count := 0
		for i := 1; i < len(out); i++ {
			if (out[i-1] >= 0) != (out[i] >= 0) {
				count++
			}
		}
		return count
	}

	base := zeroCrossings(8192)   // center, no bend
	bent := zeroCrossings(16383)  // max bend up
	if bent <= base {
		t.Fatalf("expected pitch bend up to raise frequency (more zero crossings): base=%d bent=%d", base, bent)
	}
}

func TestAlgorithmTableCarrierCounts(t *testing.T) {
	for alg := 1; alg <= 32; alg++ {
		carriers := AlgorithmCarriers(alg)
		if len(carriers) == 0 {
			t.Errorf("algorithm %d has no carriers", alg)
		}
		for _, c := range carriers {
			if c < 1 || c > 6 {
				t.Errorf("algorithm %d has out-of-range carrier %d", alg, c)
			}
		}
	}
}

func TestFeedbackChangesOutput(t *testing.T) {
	patch := DefaultPatch()
	patch.Operators[0].OutputLevel = 99
	// Operator 1 is not modulated in algorithm 25, so its fed-back sample
	// reaches the output instead of being replaced by the router.
	patch.Algorithm = 25

	render := func(feedback int) []float32 {
		p := patch
		p.Feedback = feedback
		e := New(48000, p)
		e.Start()
		e.NoteOn(1, 60, 100)
		out := make([]float32, 1000)
		e.RenderBlock(out, len(out))
		return out
	}

	a := render(0)
	b := render(7)
	var diff float64
	for i := range a {
		diff += math.Abs(float64(a[i] - b[i]))
	}
	if diff == 0 {
		t.Fatalf("expected feedback to change output")
	}
}
