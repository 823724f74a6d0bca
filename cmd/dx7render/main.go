// Command dx7render offline-renders a single note through a patch file and
// writes a WAV file, without touching any audio device.
package main

import (
	"flag"
	"log"
	"os"

	dx7go "github.com/cbegin/dx7-go"
	"github.com/cbegin/dx7-go/internal/dx7"
	"github.com/cbegin/dx7-go/internal/patchfile"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		patchPath  = flag.String("patch", "", "path to a KEY=VALUE patch file (default: built-in patch)")
		note       = flag.Int("note", 60, "MIDI note number")
		velocity   = flag.Int("velocity", 100, "MIDI velocity (1-127)")
		hold       = flag.Float64("hold", 1.0, "seconds to hold the note before release")
		tail       = flag.Float64("tail", 1.5, "seconds of release tail to render")
		out        = flag.String("out", "out.wav", "output WAV path")
	)
	flag.Parse()

	patch := dx7.DefaultPatch()
	if *patchPath != "" {
		f, err := os.Open(*patchPath)
		if err != nil {
			log.Fatal(err)
		}
		patch, err = patchfile.Load(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
	}

	samples := dx7go.RenderNote(patch, *sampleRate, *note, *velocity, *hold, *tail)
	wav := dx7go.EncodeWAVFloat32LE(samples, *sampleRate, 1)
	if err := os.WriteFile(*out, wav, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s: %d samples at %d Hz\n", *out, len(samples), *sampleRate)
}
