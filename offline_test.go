package dx7go

import (
	"math"
	"testing"

	"github.com/cbegin/dx7-go/internal/dx7"
)

func instantPatch() dx7.Patch {
	p := dx7.DefaultPatch()
	for i := range p.Operators {
		p.Operators[i].EnvRates = [4]int{99, 99, 99, 99}
		p.Operators[i].EnvLevels = [4]int{99, 99, 99, 0}
	}
	p.Operators[0].OutputLevel = 99
	p.Algorithm = 25 // all six operators are carriers, no modulation
	return p
}

func TestRenderNoteProducesSignalThenDecays(t *testing.T) {
	patch := instantPatch()
	samples := RenderNote(patch, 48000, 60, 100, 0.05, 0.05)

	var maxAbs float32
	for _, s := range samples[:2400] {
		if a := float32(math.Abs(float64(s))); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs < 0.01 {
		t.Fatalf("expected audible signal while note held, got max=%v", maxAbs)
	}

	tail := samples[len(samples)-100:]
	for _, s := range tail {
		if a := math.Abs(float64(s)); a > 0.05 {
			t.Fatalf("expected release tail to decay near zero, got %v", s)
		}
	}
}

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	wav := EncodeWAVFloat32LE(samples, 48000, 1)

	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers")
	}
	if string(wav[12:16]) != "fmt " || string(wav[36:40]) != "data" {
		t.Fatalf("missing fmt/data chunk markers")
	}
	wantSize := 44 + len(samples)*4
	if len(wav) != wantSize {
		t.Fatalf("unexpected WAV size: got %d want %d", len(wav), wantSize)
	}
}

func TestFindLoopPointsReturnsOrderedRange(t *testing.T) {
	patch := dx7.DefaultPatch()
	patch.LFOSpeed = 50
	_, start, end := FindLoopPoints(patch, 48000, 60, 100, 2, 48000)
	if end <= start {
		t.Fatalf("expected end > start, got start=%d end=%d", start, end)
	}
}
