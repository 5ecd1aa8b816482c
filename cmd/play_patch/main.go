package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	modpatch "github.com/modpatch/modpatch-go"
	"github.com/modpatch/modpatch-go/internal/patch"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		backend    = flag.String("backend", "ebiten", "audio backend: ebiten|portaudio")
		jsonPath   = flag.String("file", "", "path to a JSON patch description")
		luaPath    = flag.String("lua", "", "path to a Lua patch script")
		sinkName   = flag.String("sink", "out", "sink module name")
		duration   = flag.Float64("dur", 5, "seconds to play")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
	)
	flag.Parse()

	desc, sink, err := resolvePatch(*jsonPath, *luaPath, *sinkName)
	if err != nil {
		log.Fatal(err)
	}

	pl, err := modpatch.NewPlayer(*sampleRate,
		modpatch.WithBackend(parseBackend(*backend)),
		modpatch.WithSink(sink),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := pl.Load(desc); err != nil {
		log.Fatal(err)
	}
	pl.SetMasterVolume(*volume)
	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("playing %d modules for %.1fs\n", len(pl.Graph().ModuleNames()), *duration)
	time.Sleep(time.Duration(*duration * float64(time.Second)))
	if err := pl.Stop(); err != nil {
		log.Fatal(err)
	}
}

func resolvePatch(jsonPath, luaPath, sink string) (*patch.Description, string, error) {
	switch {
	case luaPath != "":
		src, err := os.ReadFile(luaPath)
		if err != nil {
			return nil, "", err
		}
		desc, scriptSink, err := modpatch.LoadPatchScript(string(src))
		if err != nil {
			return nil, "", err
		}
		if scriptSink != "" {
			sink = scriptSink
		}
		return desc, sink, nil
	case jsonPath != "":
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, "", err
		}
		desc, err := patch.ParseJSON(data)
		if err != nil {
			return nil, "", err
		}
		return desc, sink, nil
	default:
		return demoPatch(), "out", nil
	}
}

// demoPatch is a vibrato saw: a slow sine modulates the saw's frequency, and
// a gain stage feeds the sink.
func demoPatch() *patch.Description {
	return &patch.Description{
		UGens: []patch.UGenDef{
			{Type: "sine", Name: "lfo", Params: map[string]float64{"frequency": 5, "amplitude": 8}},
			{Type: "saw", Name: "osc", Params: map[string]float64{"frequency": 220}},
			{Type: "gain", Name: "out", Params: map[string]float64{"gain": 0.4}},
		},
		Connections: []patch.ConnectionDef{
			{From: "lfo", Output: 0, To: "osc", Input: 0},
			{From: "osc", Output: 0, To: "out", Input: 0},
		},
	}
}

func parseBackend(name string) modpatch.Backend {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "portaudio":
		return modpatch.BackendPortAudio
	default:
		return modpatch.BackendEbiten
	}
}
