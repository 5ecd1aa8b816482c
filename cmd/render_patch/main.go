package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	modpatch "github.com/modpatch/modpatch-go"
	"github.com/modpatch/modpatch-go/internal/patch"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "render sample rate")
		jsonPath   = flag.String("file", "", "path to a JSON patch description")
		luaPath    = flag.String("lua", "", "path to a Lua patch script")
		sinkName   = flag.String("sink", "out", "sink module name")
		duration   = flag.Float64("dur", 2, "seconds to render")
		outPath    = flag.String("o", "patch.wav", "output WAV path")
	)
	flag.Parse()

	desc, sink, err := loadPatch(*jsonPath, *luaPath, *sinkName)
	if err != nil {
		log.Fatal(err)
	}
	samples, err := modpatch.RenderSamples(desc, sink, *sampleRate, *duration)
	if err != nil {
		log.Fatal(err)
	}
	wav := modpatch.EncodeWAVFloat32LE(samples, *sampleRate, 2)
	if err := os.WriteFile(*outPath, wav, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %d frames to %s\n", len(samples)/2, *outPath)
}

func loadPatch(jsonPath, luaPath, sink string) (*patch.Description, string, error) {
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
		return nil, "", fmt.Errorf("provide -file or -lua")
	}
}
