package dx7go

import (
	"testing"
)

func TestPlayerFeedMIDIProducesNoteOn(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	pl.FeedMIDI([]byte{0x90, 60, 100})

	stats := pl.Stats()
	if stats.ActiveVoices != 1 {
		t.Fatalf("expected 1 active voice, got %d", stats.ActiveVoices)
	}
	if stats.NotesPlayed != 1 {
		t.Fatalf("expected 1 note played, got %d", stats.NotesPlayed)
	}
}

func TestPlayerRunningStatusRepeatsNoteOn(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	// Status byte once, then two more (note,velocity) pairs under running status.
	pl.FeedMIDI([]byte{0x90, 60, 100, 62, 100, 64, 100})

	stats := pl.Stats()
	if stats.ActiveVoices != 3 {
		t.Fatalf("expected 3 active voices via running status, got %d", stats.ActiveVoices)
	}
}

func TestPlayerChannelFilter(t *testing.T) {
	pl, err := NewPlayer(48000, WithChannel(2))
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	pl.FeedMIDI([]byte{0x90, 60, 100}) // channel 1, should be ignored
	if pl.Stats().ActiveVoices != 0 {
		t.Fatalf("expected channel filter to drop non-matching channel")
	}
	pl.FeedMIDI([]byte{0x91, 60, 100}) // channel 2
	if pl.Stats().ActiveVoices != 1 {
		t.Fatalf("expected channel 2 note on to be accepted")
	}
}

func TestPlayerOmniModeAcceptsAllChannels(t *testing.T) {
	pl, err := NewPlayer(48000, WithChannel(2), WithOmniMode(true))
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	pl.FeedMIDI([]byte{0x90, 60, 100}) // channel 1
	if pl.Stats().ActiveVoices != 1 {
		t.Fatalf("expected omni mode to accept channel 1, got %d voices", pl.Stats().ActiveVoices)
	}
}

func TestPlayerVoiceStealingCountsAndEvents(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	ch := pl.Watch()

	notes := []byte{60, 62, 64, 65, 67, 69, 71, 72, 74, 76, 77, 79, 81, 83, 84, 86, 88}
	for _, n := range notes {
		pl.FeedMIDI([]byte{0x90, n, 100})
	}

	stats := pl.Stats()
	if stats.ActiveVoices != 16 {
		t.Fatalf("expected pool capped at 16 active voices, got %d", stats.ActiveVoices)
	}
	if stats.VoiceSteals == 0 {
		t.Fatalf("expected at least one voice steal for %d note-ons", len(notes))
	}

	var sawSteal bool
	select {
	case ev := <-ch:
		if ev.Kind == EventVoiceStolen {
			sawSteal = true
		}
	default:
	}
	// sendEvent drops an event only when the buffer is full; the single
	// steal here lands in an empty buffer.
	if !sawSteal {
		t.Fatalf("expected an EventVoiceStolen event on the Watch channel")
	}
}

func TestPlayerRenderBlockStaysInRange(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	pl.FeedMIDI([]byte{0x90, 60, 100})

	out := make([]float32, 4096)
	pl.RenderBlock(out, len(out))
	for _, s := range out {
		if s > 1 || s < -1 {
			t.Fatalf("sample out of [-1,1] range: %v", s)
		}
	}
}
