package dx7go

import (
	"encoding/binary"
	"math"

	intdx7 "github.com/cbegin/dx7-go/internal/dx7"
)

// RenderNote renders a single note-on/note-off pair offline (no live audio
// device involved) and returns mono float32 samples.
func RenderNote(patch intdx7.Patch, sampleRate int, note, velocity int, holdSeconds, releaseTailSeconds float64) []float32 {
	engine := intdx7.New(sampleRate, patch)
	engine.Start()
	engine.NoteOn(1, note, velocity)

	holdFrames := int(holdSeconds * float64(sampleRate))
	tailFrames := int(releaseTailSeconds * float64(sampleRate))
	out := make([]float32, holdFrames+tailFrames)

	engine.RenderBlock(out[:holdFrames], holdFrames)
	engine.NoteOff(1, note)
	engine.RenderBlock(out[holdFrames:], tailFrames)
	return out
}

// EncodeWAVFloat32LE writes a minimal RIFF/WAVE container of 32-bit IEEE
// float samples, with no dependency on a C audio library.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // IEEE float
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// FindLoopPoints renders a held note and locates a seamless loop of
// approximately numCycles LFO cycles, starting and ending on (or very
// near) a zero crossing. It returns the sample range [start,end) within
// the rendered buffer.
func FindLoopPoints(patch intdx7.Patch, sampleRate int, note, velocity int, numCycles int, maxSamples int) (samples []float32, start, end int) {
	engine := intdx7.New(sampleRate, patch)
	engine.Start()
	engine.NoteOn(1, note, velocity)

	buf := make([]float32, maxSamples)
	engine.RenderBlock(buf, maxSamples)

	lfoFreq := float64(patch.LFOSpeed) / 99 * 6
	if lfoFreq <= 0 {
		return buf, 0, min(sampleRate, maxSamples)
	}

	targetSamples := int(float64(numCycles) / lfoFreq * float64(sampleRate))
	if targetSamples < 1 {
		targetSamples = 1
	}

	searchLimit := maxSamples / 4
	startIdx := 0
	found := false
	for i := 1; i < searchLimit; i++ {
		prev, cur := buf[i-1], buf[i]
		if (prev >= 0 && cur < 0) || (prev < 0 && cur >= 0) || math.Abs(float64(cur)) < 0.001 {
			startIdx = i
			found = true
			break
		}
	}
	if !found {
		startIdx = 0
	}

	endIdx := startIdx + targetSamples
	for i := endIdx; i < maxSamples-1; i++ {
		prev, cur := buf[i-1], buf[i]
		if (prev >= 0 && cur < 0) || (prev < 0 && cur >= 0) || math.Abs(float64(cur)) < 0.001 {
			endIdx = i
			found = true
			break
		}
	}
	if endIdx >= maxSamples {
		endIdx = maxSamples - 1
	}
	return buf, startIdx, endIdx
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
