package modpatch

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/modpatch/modpatch-go/internal/graph"
	"github.com/modpatch/modpatch-go/internal/patch"
)

const renderBlock = 256

// RenderSamples builds a graph from desc and renders seconds of the sink
// module's output as interleaved stereo float32 (mono fanned to both
// channels). It runs entirely offline, block by block, the same way the
// realtime path does.
func RenderSamples(desc *patch.Description, sink string, sampleRate int, seconds float64) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	g := graph.New()
	if err := patch.Build(g, desc); err != nil {
		return nil, err
	}
	return RenderGraph(g, sink, sampleRate, seconds)
}

// RenderGraph renders seconds of an already-constructed graph.
func RenderGraph(g *graph.Graph, sink string, sampleRate int, seconds float64) ([]float32, error) {
	if _, ok := g.Module(sink); !ok {
		return nil, errors.New("sink module " + sink + " not in graph")
	}
	if err := g.Prepare(sampleRate, renderBlock); err != nil {
		return nil, err
	}
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	for done := 0; done < frames; {
		n := frames - done
		if n > renderBlock {
			n = renderBlock
		}
		if err := g.Process(n); err != nil {
			return nil, err
		}
		buf, _ := g.OutputBuffer(sink, 0)
		for i := 0; i < n; i++ {
			v := float32(buf[i])
			out[(done+i)*2] = v
			out[(done+i)*2+1] = v
		}
		done += n
	}
	return out, nil
}

// EncodeWAVFloat32LE wraps interleaved samples in a minimal IEEE-float WAV
// container.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
