// Package patchfile loads the plain-text KEY = VALUE patch format described
// by the external interfaces section: a peripheral convenience format, not
// part of the synthesis core.
package patchfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cbegin/dx7-go/internal/dx7"
)

// Load parses a patch-file stream into a dx7.Patch. Unknown keys are
// ignored; malformed numeric values return an error naming the offending
// key.
func Load(r io.Reader) (dx7.Patch, error) {
	p := dx7.DefaultPatch()
	scanner := bufio.NewScanner(r)

	op := -1
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[OP") && strings.HasSuffix(line, "]") {
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, "[OP"), "]"))
			if err != nil || n < 1 || n > 6 {
				return p, fmt.Errorf("patchfile: bad operator section %q", line)
			}
			op = n - 1
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(line[:eq]))
		val := strings.TrimSpace(line[eq+1:])

		var err error
		if op >= 0 {
			err = applyOperatorKey(&p.Operators[op], key, val)
		} else {
			err = applyGlobalKey(&p, key, val)
		}
		if err != nil {
			return p, err
		}
	}
	if err := scanner.Err(); err != nil {
		return p, err
	}
	return p, nil
}

func parseInt(key, val string) (int, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("patchfile: key %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("patchfile: key %s: %w", key, err)
	}
	return f, nil
}

func parseBool(val string) bool {
	return val == "1" || strings.EqualFold(val, "true") || strings.EqualFold(val, "on")
}

func applyGlobalKey(p *dx7.Patch, key, val string) error {
	var err error
	switch key {
	case "NAME":
		p.Name = val
	case "ALGORITHM":
		p.Algorithm, err = parseInt(key, val)
	case "FEEDBACK":
		p.Feedback, err = parseInt(key, val)
	case "LFO_SPEED":
		p.LFOSpeed, err = parseInt(key, val)
	case "LFO_DELAY":
		p.LFODelay, err = parseInt(key, val)
	case "LFO_PMD":
		p.LFOPMD, err = parseInt(key, val)
	case "LFO_AMD":
		p.LFOAMD, err = parseInt(key, val)
	case "LFO_SYNC":
		p.LFOSync = parseBool(val)
	case "LFO_WAVE":
		var n int
		n, err = parseInt(key, val)
		p.LFOWave = dx7.LFOWave(n)
	case "LFO_PITCH_MOD_SENS":
		p.LFOPitchModSens, err = parseInt(key, val)
	case "TRANSPOSE":
		p.Transpose, err = parseInt(key, val)
	case "POLY_MONO":
		p.PolyMono = parseBool(val)
	case "PITCH_BEND_RANGE":
		p.PitchBendRange, err = parseInt(key, val)
	case "PORTAMENTO_MODE":
		p.PortamentoMode = parseBool(val)
	case "PORTAMENTO_GLISS":
		p.PortamentoGliss = parseBool(val)
	case "PORTAMENTO_TIME":
		p.PortamentoTime, err = parseInt(key, val)
	}
	return err
}

func applyOperatorKey(o *dx7.OperatorParams, key, val string) error {
	var err error
	switch key {
	case "FREQ_RATIO":
		o.FreqRatio, err = parseFloat(key, val)
	case "DETUNE":
		o.Detune, err = parseInt(key, val)
	case "OUTPUT_LEVEL":
		o.OutputLevel, err = parseInt(key, val)
	case "KEY_VEL_SENS":
		o.KeyVelSens, err = parseInt(key, val)
	case "ENV_ATTACK":
		o.EnvRates[0], err = parseInt(key, val)
	case "ENV_DECAY1":
		o.EnvRates[1], err = parseInt(key, val)
	case "ENV_DECAY2":
		o.EnvRates[2], err = parseInt(key, val)
	case "ENV_RELEASE":
		o.EnvRates[3], err = parseInt(key, val)
	case "ENV_LEVEL1":
		o.EnvLevels[0], err = parseInt(key, val)
	case "ENV_LEVEL2":
		o.EnvLevels[1], err = parseInt(key, val)
	case "ENV_LEVEL3":
		o.EnvLevels[2], err = parseInt(key, val)
	case "ENV_LEVEL4":
		o.EnvLevels[3], err = parseInt(key, val)
	case "KEY_LEVEL_SCALE_BREAK_POINT":
		o.BreakPoint, err = parseInt(key, val)
	case "KEY_LEVEL_SCALE_LEFT_DEPTH":
		o.LeftDepth, err = parseInt(key, val)
	case "KEY_LEVEL_SCALE_RIGHT_DEPTH":
		o.RightDepth, err = parseInt(key, val)
	case "KEY_LEVEL_SCALE_LEFT_CURVE":
		var n int
		n, err = parseInt(key, val)
		o.LeftCurve = dx7.Curve(n)
	case "KEY_LEVEL_SCALE_RIGHT_CURVE":
		var n int
		n, err = parseInt(key, val)
		o.RightCurve = dx7.Curve(n)
	case "KEY_RATE_SCALING":
		o.KeyRateScaling, err = parseInt(key, val)
	case "OSC_SYNC":
		o.OscSync = parseBool(val)
	}
	return err
}
