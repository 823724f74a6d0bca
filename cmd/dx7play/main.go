// Command dx7play wires a live MIDI input port to the synthesis engine and
// plays the result through the host audio device.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	dx7go "github.com/cbegin/dx7-go"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cbegin/dx7-go/internal/patchfile"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		channel    = flag.Int("channel", 1, "MIDI channel to listen on (1-16)")
		omni       = flag.Bool("omni", false, "respond to all MIDI channels")
		patchPath  = flag.String("patch", "", "path to a KEY=VALUE patch file")
		listPorts  = flag.Bool("list-ports", false, "list available MIDI input ports and exit")
		portIdx    = flag.Int("port", -1, "MIDI input port index; -1 uses the only port, or lists the ports and exits if there are several")
	)
	flag.Parse()

	if *listPorts {
		for i, in := range midi.GetInPorts() {
			fmt.Printf("%d: %s\n", i, in.String())
		}
		return
	}

	opts := []dx7go.EngineOption{dx7go.WithChannel(*channel), dx7go.WithOmniMode(*omni)}
	pl, err := dx7go.NewPlayer(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}

	if *patchPath != "" {
		f, err := os.Open(*patchPath)
		if err != nil {
			log.Fatal(err)
		}
		patch, err := patchfile.Load(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
		pl.LoadPatch(patch)
	}

	if err := pl.StartAudio(); err != nil {
		log.Fatal(err)
	}

	in, err := resolveInPort(*portIdx)
	if err != nil {
		log.Fatal(err)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		pl.FeedMIDI([]byte(msg))
	})
	if err != nil {
		log.Fatal(err)
	}
	defer stop()

	log.Printf("listening on %s, channel %d (omni=%v)\n", in.String(), *channel, *omni)
	select {}
}

func resolveInPort(idx int) (drivers.In, error) {
	ports := midi.GetInPorts()
	if len(ports) == 0 {
		return nil, fmt.Errorf("dx7play: no MIDI input ports available")
	}
	if idx >= 0 && idx < len(ports) {
		return ports[idx], nil
	}
	if len(ports) == 1 {
		return ports[0], nil
	}
	for i, p := range ports {
		fmt.Printf("%d: %s\n", i, p.String())
	}
	return nil, fmt.Errorf("dx7play: multiple MIDI ports found, pass -port N")
}
