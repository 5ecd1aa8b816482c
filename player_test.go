package modpatch

import (
	"errors"
	"testing"

	"github.com/modpatch/modpatch-go/internal/graph"
	"github.com/modpatch/modpatch-go/internal/ugen"
)

func TestNewPlayerValidation(t *testing.T) {
	if _, err := NewPlayer(0); err == nil {
		t.Error("zero sample rate accepted")
	}
	if _, err := NewPlayer(48000, WithMaxBlock(0)); err == nil {
		t.Error("zero max block accepted")
	}
	if _, err := NewPlayer(48000, WithBackend(BackendPortAudio), WithSink("mix")); err != nil {
		t.Errorf("valid options rejected: %v", err)
	}
}

func TestPlayerMasterVolume(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	if got := pl.MasterVolume(); got != 1 {
		t.Fatalf("default master volume = %v, want 1", got)
	}
	pl.SetMasterVolume(0.35)
	if got := pl.MasterVolume(); got != 0.35 {
		t.Fatalf("master volume = %v, want 0.35", got)
	}
	pl.SetMasterVolume(-2)
	if got := pl.MasterVolume(); got != 0 {
		t.Fatalf("master volume should clamp to 0, got %v", got)
	}
}

func TestPlayerLoadJSON(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	patchJSON := []byte(`{
		"ugens": [
			{"type": "saw", "name": "osc", "params": {"frequency": 220}},
			{"type": "gain", "name": "out", "params": {"gain": 0.4}}
		],
		"connections": [
			{"from": "osc", "output": 0, "to": "out", "input": 0}
		]
	}`)
	if err := pl.LoadJSON(patchJSON); err != nil {
		t.Fatal(err)
	}
	names := pl.Graph().ModuleNames()
	if len(names) != 2 {
		t.Fatalf("modules: %v", names)
	}
	if got, err := pl.Parameter("osc", "frequency"); err != nil || got != 220 {
		t.Errorf("frequency = %v, %v", got, err)
	}
	if err := pl.SetParameter("out", "gain", 0.5); err != nil {
		t.Fatal(err)
	}
	if got, _ := pl.Parameter("out", "gain"); got != 0.5 {
		t.Errorf("gain = %v", got)
	}
	if err := pl.LoadJSON([]byte("{")); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestPlayerStartRequiresSink(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	if err := pl.Start(); err == nil {
		t.Error("start with no sink module accepted")
	}
	pl.SetSink("mix")
	pl.Graph().AddModule("out", ugen.NewGain())
	if err := pl.Start(); err == nil {
		t.Error("start with renamed missing sink accepted")
	}
}

func TestPlayerStartRejectsCycle(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	g := pl.Graph()
	g.AddModule("out", ugen.NewGain())
	g.AddModule("fb", ugen.NewGain())
	g.Connect("out", 0, "fb", 0)
	g.Connect("fb", 0, "out", 0)
	if err := pl.Start(); !errors.Is(err, graph.ErrGraphCycle) {
		t.Errorf("got %v, want ErrGraphCycle", err)
	}
}

func TestPlayerStopIdempotent(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	if err := pl.Stop(); err != nil {
		t.Errorf("stop before start: %v", err)
	}
	// pause/resume before start are no-ops
	pl.Pause()
	pl.Resume()
	if pos := pl.PlaybackPosition(); pos != 0 {
		t.Errorf("position before start: %d", pos)
	}
}

func TestGraphSourceFansMonoToStereo(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	g := pl.Graph()
	g.AddModule("src", ugen.NewConst(0.5))
	g.AddModule("out", ugen.NewGain())
	g.Connect("src", 0, "out", 0)
	if err := g.Prepare(48000, 64); err != nil {
		t.Fatal(err)
	}
	pl.SetMasterVolume(0.5)

	src := &graphSource{graph: g, sink: "out", maxBlock: 64, volume: &pl.volume}
	dst := make([]float32, 200*2)
	src.Process(dst)
	for i := 0; i < len(dst); i += 2 {
		if dst[i] != 0.25 || dst[i+1] != 0.25 {
			t.Fatalf("frame %d: got %v/%v, want 0.25 in both channels", i/2, dst[i], dst[i+1])
		}
	}
}

// blockCounter emits the number of blocks processed so far, making it
// visible which Process call produced the samples a reader copied out.
type blockCounter struct {
	n float64
}

func (b *blockCounter) Process(inputs, outputs [][]float64) {
	b.n++
	out := outputs[0]
	for i := range out {
		out[i] = b.n
	}
}

func (b *blockCounter) NumInputs() int              { return 0 }
func (b *blockCounter) NumOutputs() int             { return 1 }
func (b *blockCounter) InputName(index int) string  { return "" }
func (b *blockCounter) OutputName(index int) string { return "output" }

func (b *blockCounter) SetParameter(name string, value float64) error {
	return ugen.ErrInvalidParameter
}

func (b *blockCounter) Parameter(name string) (float64, error) {
	return 0, ugen.ErrInvalidParameter
}

func (b *blockCounter) ParameterNames() []string { return nil }
func (b *blockCounter) Name() string             { return "Block Counter" }
func (b *blockCounter) Description() string      { return "Counts processed blocks" }
func (b *blockCounter) Reset()                   { b.n = 0 }
func (b *blockCounter) Prepare(sampleRate int)   {}
func (b *blockCounter) Clone() ugen.UGen         { return &blockCounter{} }

// While topology edits swap plans concurrently, every block the source hands
// out must carry the value the matching Process call just computed (or
// silence from a freshly swapped plan), never a superseded plan's samples.
func TestGraphSourceNeverCopiesStaleBlock(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	g := pl.Graph()
	if err := g.AddModule("out", &blockCounter{}); err != nil {
		t.Fatal(err)
	}
	if err := g.Prepare(48000, 64); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			g.AddModule("tmp", ugen.NewConst(0))
			g.RemoveModule("tmp")
		}
	}()

	src := &graphSource{graph: g, sink: "out", maxBlock: 64, volume: &pl.volume}
	dst := make([]float32, 64*2)
	blocks := 0
	for i := 0; i < 2000; i++ {
		src.Process(dst)
		blocks++
		if v := dst[0]; v != 0 && v != float32(blocks) {
			t.Fatalf("block %d: got %v, want %d or silence", blocks, v, blocks)
		}
	}
	close(stop)
	<-done
}

func TestGraphSourceSilenceOnMissingSink(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	g := pl.Graph()
	g.AddModule("src", ugen.NewConst(1))
	if err := g.Prepare(48000, 64); err != nil {
		t.Fatal(err)
	}
	src := &graphSource{graph: g, sink: "missing", maxBlock: 64, volume: &pl.volume}
	dst := []float32{9, 9, 9, 9}
	src.Process(dst)
	for i, v := range dst {
		if v != 0 {
			t.Errorf("sample %d: got %v, want 0", i, v)
		}
	}
}
