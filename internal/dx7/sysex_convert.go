package dx7

import "github.com/cbegin/dx7-go/internal/sysex"

// fromWire converts a decoded SysEx voice dump into the engine's in-memory
// Patch representation.
func fromWire(v sysex.Voice) Patch {
	var p Patch
	p.Name = v.Name
	p.Algorithm = v.Algorithm
	p.Feedback = v.Feedback
	p.LFOSpeed = v.LFOSpeed
	p.LFODelay = v.LFODelay
	p.LFOPMD = v.LFOPMD
	p.LFOAMD = v.LFOAMD
	p.LFOSync = v.LFOSync
	p.LFOWave = LFOWave(v.LFOWave)
	p.LFOPitchModSens = v.LFOPitchModSens
	p.PitchEnvRates = v.PitchEnvRates
	p.PitchEnvLevels = v.PitchEnvLevels
	p.Transpose = v.Transpose
	p.PitchBendRange = 2

	for i := 0; i < 6; i++ {
		src := v.Operators[i]
		p.Operators[i] = OperatorParams{
			FreqRatio:      sysex.FreqRatioFromWire(src.FreqCoarse, src.FreqFine),
			Detune:         src.Detune,
			EnvRates:       src.EnvRates,
			EnvLevels:      src.EnvLevels,
			OutputLevel:    src.OutputLevel,
			KeyVelSens:     src.KeyVelSens,
			BreakPoint:     src.BreakPoint,
			LeftDepth:      src.LeftDepth,
			RightDepth:     src.RightDepth,
			LeftCurve:      Curve(src.LeftCurve),
			RightCurve:     Curve(src.RightCurve),
			KeyRateScaling: src.KeyRateScaling,
			OscSync:        src.OscSync,
		}
	}
	return p
}

// toWire converts an in-memory Patch into the wire-level Voice structure
// ready for sysex.Encode.
func toWire(p Patch, channel int) sysex.Voice {
	var v sysex.Voice
	v.Channel = channel
	v.Name = p.Name
	v.Algorithm = p.Algorithm
	v.Feedback = p.Feedback
	v.LFOSpeed = p.LFOSpeed
	v.LFODelay = p.LFODelay
	v.LFOPMD = p.LFOPMD
	v.LFOAMD = p.LFOAMD
	v.LFOSync = p.LFOSync
	v.LFOWave = int(p.LFOWave)
	v.LFOPitchModSens = p.LFOPitchModSens
	v.PitchEnvRates = p.PitchEnvRates
	v.PitchEnvLevels = p.PitchEnvLevels
	v.Transpose = p.Transpose

	for i := 0; i < 6; i++ {
		src := p.Operators[i]
		coarse, fine := sysex.FreqRatioToWire(src.FreqRatio)
		v.Operators[i] = sysex.Operator{
			EnvRates:       src.EnvRates,
			EnvLevels:      src.EnvLevels,
			BreakPoint:     src.BreakPoint,
			LeftDepth:      src.LeftDepth,
			RightDepth:     src.RightDepth,
			LeftCurve:      int(src.LeftCurve),
			RightCurve:     int(src.RightCurve),
			KeyRateScaling: src.KeyRateScaling,
			KeyVelSens:     src.KeyVelSens,
			OutputLevel:    src.OutputLevel,
			OscSync:        src.OscSync,
			FreqCoarse:     coarse,
			FreqFine:       fine,
			Detune:         src.Detune,
		}
	}
	return v
}

// EncodePatch packs a Patch into a 163-byte SysEx frame for the given
// output channel.
func EncodePatch(p Patch, channel int) []byte {
	return sysex.Encode(toWire(p, channel))
}

// DecodePatch unpacks a SysEx frame into a Patch.
func DecodePatch(frame []byte) (Patch, error) {
	v, err := sysex.Decode(frame)
	if err != nil {
		return Patch{}, err
	}
	return fromWire(v), nil
}
