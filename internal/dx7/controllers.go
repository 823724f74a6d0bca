package dx7

import (
	"math"
	"sync/atomic"
)

// Controllers holds the live, process-wide MIDI controller state shared
// between the MIDI-ingress thread (writer) and the audio-render thread
// (reader, once per sample). Every field the audio thread reads without
// taking the voice-pool mutex is stored behind atomic float64-bits, the
// same pattern the reference engine uses for its master-gain field.
type Controllers struct {
	pitchBend  atomic.Uint64
	modWheel   atomic.Uint64
	breath     atomic.Uint64
	foot       atomic.Uint64
	volume     atomic.Uint64
	expression atomic.Uint64
	pan        atomic.Uint64
	sustain    atomic.Bool
	portamento atomic.Bool

	raw [128]atomic.Uint64
}

// NewControllers returns a Controllers block initialized to the documented
// defaults: volume and expression at unity, everything else neutral.
func NewControllers() *Controllers {
	c := &Controllers{}
	c.volume.Store(math.Float64bits(1.0))
	c.expression.Store(math.Float64bits(1.0))
	return c
}

func storeF(a *atomic.Uint64, v float64) { a.Store(math.Float64bits(v)) }
func loadF(a *atomic.Uint64) float64     { return math.Float64frombits(a.Load()) }

func (c *Controllers) PitchBend() float64  { return loadF(&c.pitchBend) }
func (c *Controllers) ModWheel() float64   { return loadF(&c.modWheel) }
func (c *Controllers) Breath() float64     { return loadF(&c.breath) }
func (c *Controllers) Foot() float64       { return loadF(&c.foot) }
func (c *Controllers) Volume() float64     { return loadF(&c.volume) }
func (c *Controllers) Expression() float64 { return loadF(&c.expression) }
func (c *Controllers) Pan() float64        { return loadF(&c.pan) }
func (c *Controllers) SustainPedal() bool  { return c.sustain.Load() }
func (c *Controllers) Portamento() bool    { return c.portamento.Load() }
func (c *Controllers) Raw(cc int) float64  { return loadF(&c.raw[cc&0x7F]) }

// Active reports whether the mod wheel, pitch bend, breath or foot
// controller is off zero, used to gate the LFO speed-multiplier term (spec
// section 4.6). Volume, expression, pan and the switches are not consulted.
func (c *Controllers) Active() bool {
	return c.ModWheel() != 0 || c.PitchBend() != 0 || c.Breath() != 0 || c.Foot() != 0
}

// ApplyCC updates both the raw CC vector and, for recognized controller
// numbers, the named semantic field. Returns the subset of side effects the
// voice pool must react to (sustain edge, all-notes-off, reset).
type CCResult struct {
	SustainEdge    int // -1 = released, 0 = none, +1 = pressed
	AllNotesOff    bool
	AllSoundOff    bool
	ResetControl   bool
}

func (c *Controllers) ApplyCC(cc, value int) CCResult {
	storeF(&c.raw[cc&0x7F], float64(value)/127)

	var res CCResult
	switch cc {
	case 1:
		storeF(&c.modWheel, float64(value)/127)
	case 2:
		storeF(&c.breath, float64(value)/127)
	case 4:
		storeF(&c.foot, float64(value)/127)
	case 7:
		storeF(&c.volume, float64(value)/127)
	case 10:
		storeF(&c.pan, float64(value)/63.5-1)
	case 11:
		storeF(&c.expression, float64(value)/127)
	case 64:
		was := c.sustain.Load()
		now := value >= 64
		c.sustain.Store(now)
		if !was && now {
			res.SustainEdge = 1
		} else if was && !now {
			res.SustainEdge = -1
		}
	case 65:
		c.portamento.Store(value >= 64)
	case 120:
		res.AllSoundOff = true
	case 121:
		res.ResetControl = true
	case 123:
		res.AllNotesOff = true
	}
	return res
}

// Reset restores the power-on defaults (CC 121, Reset All Controllers).
func (c *Controllers) Reset() {
	storeF(&c.pitchBend, 0)
	storeF(&c.modWheel, 0)
	storeF(&c.breath, 0)
	storeF(&c.foot, 0)
	storeF(&c.volume, 1)
	storeF(&c.expression, 1)
	storeF(&c.pan, 0)
	c.sustain.Store(false)
	c.portamento.Store(false)
}

// SetPitchBend stores a 14-bit MIDI pitch-bend value (0..16383) as a
// normalized [-1,1] bend.
func (c *Controllers) SetPitchBend(value14 int) {
	storeF(&c.pitchBend, (float64(value14)-8192)/8192)
}
