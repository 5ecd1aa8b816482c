// Package modpatch is a modular audio synthesis engine: band-limited
// oscillators and other unit generators wired into a patch graph that is
// processed once per audio block. The root package binds a graph's sink
// module to a realtime output backend and exposes the control surface.
package modpatch

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/modpatch/modpatch-go/internal/audio"
	"github.com/modpatch/modpatch-go/internal/graph"
	"github.com/modpatch/modpatch-go/internal/patch"
)

// Backend selects the realtime output implementation.
type Backend = audio.Backend

const (
	BackendEbiten    = audio.BackendEbiten
	BackendPortAudio = audio.BackendPortAudio
)

const defaultMaxBlock = 2048

type Option func(*playerConfig)

type playerConfig struct {
	backend  Backend
	sink     string
	maxBlock int
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{backend: BackendEbiten, sink: "out", maxBlock: defaultMaxBlock}
}

// WithBackend selects the audio output backend (default ebiten).
func WithBackend(backend Backend) Option {
	return func(cfg *playerConfig) { cfg.backend = backend }
}

// WithSink names the module whose first output feeds the device
// (default "out").
func WithSink(name string) Option {
	return func(cfg *playerConfig) { cfg.sink = name }
}

// WithMaxBlock sets the largest block the graph is prepared for.
func WithMaxBlock(frames int) Option {
	return func(cfg *playerConfig) { cfg.maxBlock = frames }
}

// Player owns one patch graph and streams its sink module to an audio
// output. Topology and parameter calls are control-plane operations; the
// audio thread only runs Graph.Process.
type Player struct {
	mu         sync.Mutex
	graph      *graph.Graph
	sampleRate int
	backend    Backend
	sink       string
	maxBlock   int
	output     audio.Output
	volume     atomic.Uint64 // float64 bits
}

func NewPlayer(sampleRate int, opts ...Option) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxBlock <= 0 {
		return nil, errors.New("max block must be positive")
	}
	p := &Player{
		graph:      graph.New(),
		sampleRate: sampleRate,
		backend:    cfg.backend,
		sink:       cfg.sink,
		maxBlock:   cfg.maxBlock,
	}
	p.volume.Store(math.Float64bits(1))
	return p, nil
}

// Graph exposes the patch graph for direct construction.
func (p *Player) Graph() *graph.Graph { return p.graph }

// Load applies a declarative patch description to the graph. An invalid
// description leaves the graph untouched.
func (p *Player) Load(desc *patch.Description) error {
	return patch.Build(p.graph, desc)
}

// LoadJSON parses and applies a JSON patch description.
func (p *Player) LoadJSON(data []byte) error {
	desc, err := patch.ParseJSON(data)
	if err != nil {
		return err
	}
	return p.Load(desc)
}

// SetSink renames the sink module. Takes effect on the next Start.
func (p *Player) SetSink(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = name
}

// Start prepares the graph and opens the output device. The sink module must
// exist and the graph must be schedulable; a cycle without a designated
// feedback edge is rejected here, before the audio thread ever runs.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.output != nil {
		return errors.New("already started")
	}
	if _, ok := p.graph.Module(p.sink); !ok {
		return errors.New("sink module " + p.sink + " not in graph")
	}
	if err := p.graph.Prepare(p.sampleRate, p.maxBlock); err != nil {
		return err
	}
	if err := p.graph.Process(0); err != nil {
		return err
	}
	src := &graphSource{
		graph:    p.graph,
		sink:     p.sink,
		maxBlock: p.maxBlock,
		volume:   &p.volume,
	}
	out, err := audio.NewOutput(p.backend, p.sampleRate, src)
	if err != nil {
		return err
	}
	p.output = out
	out.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.output != nil {
		p.output.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.output != nil {
		p.output.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.output == nil {
		return nil
	}
	err := p.output.Stop()
	p.output = nil
	return err
}

// SetParameter sets a named parameter on a module by name. Safe to call
// while audio is running; the write never blocks the audio thread.
func (p *Player) SetParameter(module, name string, value float64) error {
	return p.graph.SetParameter(module, name, value)
}

// Parameter reads a named parameter from a module.
func (p *Player) Parameter(module, name string) (float64, error) {
	return p.graph.Parameter(module, name)
}

// SetMasterVolume sets the output volume scalar. 1.0 is unity.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.volume.Store(math.Float64bits(volume))
}

func (p *Player) MasterVolume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// PlaybackPosition returns the frame count the listener actually hears.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	out := p.output
	p.mu.Unlock()
	if out == nil {
		return 0
	}
	return int64(out.Position().Seconds() * float64(p.sampleRate))
}

// graphSource pulls blocks from the graph on the audio thread and fans the
// mono sink output to both stereo channels.
type graphSource struct {
	graph    *graph.Graph
	sink     string
	maxBlock int
	volume   *atomic.Uint64
}

func (s *graphSource) Process(dst []float32) {
	frames := len(dst) / 2
	vol := math.Float64frombits(s.volume.Load())
	done := 0
	for done < frames {
		n := frames - done
		if n > s.maxBlock {
			n = s.maxBlock
		}
		// Look the sink buffer up only after the block is computed, so a
		// concurrent plan swap can't hand us a superseded plan's samples.
		err := s.graph.Process(n)
		buf, ok := s.graph.OutputBuffer(s.sink, 0)
		if err != nil || !ok {
			for i := 0; i < n; i++ {
				dst[(done+i)*2] = 0
				dst[(done+i)*2+1] = 0
			}
			done += n
			continue
		}
		for i := 0; i < n; i++ {
			v := float32(buf[i] * vol)
			dst[(done+i)*2] = v
			dst[(done+i)*2+1] = v
		}
		done += n
	}
}
