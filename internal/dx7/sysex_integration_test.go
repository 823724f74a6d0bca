package dx7

import (
	"testing"

	"github.com/cbegin/dx7-go/internal/midi"
)

// TestMIDIParserToEngineSysExRoundTrip drives a full encoded SysEx dump
// through the byte-level MIDI parser (which strips the leading 0xF0 and
// trailing 0xF7 before calling Handler.SysEx) into Engine.SysEx, verifying
// the seam between the two packages: the engine must re-wrap the frame
// markers before handing the payload to sysex.Decode.
func TestMIDIParserToEngineSysExRoundTrip(t *testing.T) {
	want := DefaultPatch()
	want.Name = "ROUND TRIP"
	want.Algorithm = 11
	want.Feedback = 4
	frame := EncodePatch(want, 0)

	e := New(48000, DefaultPatch())
	p := midi.NewParser(e)
	p.FeedBytes(frame)

	got := e.Patch()
	if got.Name != want.Name {
		t.Fatalf("expected patch name %q to survive the parser seam, got %q", want.Name, got.Name)
	}
	if got.Algorithm != want.Algorithm || got.Feedback != want.Feedback {
		t.Fatalf("expected algorithm/feedback to survive the parser seam, got %+v", got)
	}
}
