package dx7

import "github.com/cbegin/dx7-go/internal/sysex"

// SysEx decodes an incoming patch dump and loads it as the active patch.
// data is the payload as delivered by midi.Parser: the leading 0xF0 and
// trailing 0xF7 already stripped. sysex.Decode expects the full wire frame,
// so they are put back before decoding. Malformed dumps (bad header or
// checksum) are dropped; the engine keeps its previous patch.
func (e *Engine) SysEx(data []byte) {
	frame := make([]byte, 0, len(data)+2)
	frame = append(frame, 0xF0)
	frame = append(frame, data...)
	frame = append(frame, 0xF7)

	p, err := sysex.Decode(frame)
	if err != nil {
		e.IncMIDIError()
		return
	}
	e.LoadPatch(fromWire(p))
}

// ParseError implements midi.Handler: a transient, silently-counted
// ingress error.
func (e *Engine) ParseError() {
	e.IncMIDIError()
}
