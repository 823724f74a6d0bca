package dx7

// VoicePool is the fixed-size array of voices, allocated once at engine
// construction and never resized.
type VoicePool struct {
	voices [MaxVoices]Voice

	sampleRate float64

	activeCount int
	notesPlayed uint64
	voiceSteals uint64
	midiErrors  uint64

	// lastNoteByChannel tracks the most recently allocated note per
	// channel, used to seed portamento glides.
	lastNoteByChannel [16]int
}

// NewVoicePool returns a pool ready for use.
func NewVoicePool(sampleRate float64) *VoicePool {
	p := &VoicePool{sampleRate: sampleRate}
	for i := range p.lastNoteByChannel {
		p.lastNoteByChannel[i] = -1
	}
	return p
}

// Allocate finds a free voice (first-fit) or steals the oldest active
// voice (smallest noteOnTime), and initializes it for the given note.
func (p *VoicePool) Allocate(patch *Patch, note int, velocity float64, channel int, now int64) *Voice {
	idx := -1
	for i := range p.voices {
		if !p.voices[i].active {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = p.oldestVoiceIndex()
		p.voiceSteals++
	} else {
		p.activeCount++
	}

	prevNote := p.lastNoteByChannel[channel&0x0F]
	p.voices[idx].allocate(patch, note, velocity, channel, now, p.sampleRate, prevNote)
	p.lastNoteByChannel[channel&0x0F] = note
	p.notesPlayed++
	return &p.voices[idx]
}

func (p *VoicePool) oldestVoiceIndex() int {
	oldest := 0
	oldestTime := p.voices[0].noteOnTime
	for i := 1; i < len(p.voices); i++ {
		if p.voices[i].noteOnTime < oldestTime {
			oldest = i
			oldestTime = p.voices[i].noteOnTime
		}
	}
	return oldest
}

// Find returns the active voice matching (note, channel), or nil.
func (p *VoicePool) Find(note, channel int) *Voice {
	for i := range p.voices {
		v := &p.voices[i]
		if v.active && v.midiNote == note && v.channel == channel {
			return v
		}
	}
	return nil
}

// Release triggers note-off handling for a matching active voice: deferred
// if the sustain pedal is down, immediate otherwise.
func (p *VoicePool) Release(note, channel int, sustainDown bool) {
	v := p.Find(note, channel)
	if v == nil {
		return
	}
	v.release(sustainDown)
}

// ReleaseSustained forces Release on every voice still held only by the
// sustain pedal; called when the pedal comes back up.
func (p *VoicePool) ReleaseSustained() {
	for i := range p.voices {
		v := &p.voices[i]
		if v.active && v.sustainHeld {
			v.forceRelease()
		}
	}
}

// ReleaseAll forces every active voice into Release (CC 123, All Notes
// Off).
func (p *VoicePool) ReleaseAll() {
	for i := range p.voices {
		if p.voices[i].active {
			p.voices[i].forceRelease()
		}
	}
}

// SilenceAll immediately deactivates every voice (CC 120, All Sound Off).
func (p *VoicePool) SilenceAll() {
	for i := range p.voices {
		if p.voices[i].active {
			p.voices[i].active = false
			p.activeCount--
		}
	}
}

// RenderSample advances every active voice by one sample and returns the
// sum, reclaiming any voice that has fully decayed.
func (p *VoicePool) RenderSample(ctrl *Controllers, feedbackMode FeedbackMode) float64 {
	var sum float64
	for i := range p.voices {
		v := &p.voices[i]
		if !v.active {
			continue
		}
		sum += v.renderSample(ctrl, feedbackMode, p.sampleRate)
		if !v.active {
			p.activeCount--
		}
	}
	return sum
}

// Stats is a snapshot of pool counters for the external stats() API.
type Stats struct {
	ActiveVoices int
	NotesPlayed  uint64
	VoiceSteals  uint64
	MIDIErrors   uint64
}

func (p *VoicePool) Stats() Stats {
	return Stats{
		ActiveVoices: p.activeCount,
		NotesPlayed:  p.notesPlayed,
		VoiceSteals:  p.voiceSteals,
		MIDIErrors:   p.midiErrors,
	}
}

func (p *VoicePool) IncMIDIError() { p.midiErrors++ }
