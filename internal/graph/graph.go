// Package graph implements the modular patch graph: a registry of named
// unit generators, typed connections between them, and a per-block scheduler
// that streams buffers producer-to-consumer in topological order.
//
// All topology edits and parameter calls are control-plane operations guarded
// by a mutex. Every edit compiles a fresh immutable execution plan and
// publishes it atomically; the audio thread only loads the current plan, so a
// block in progress always runs against one coherent topology and Process
// never allocates, locks or resizes.
package graph

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/modpatch/modpatch-go/internal/ugen"
)

type connection struct {
	from     string
	output   int
	to       string
	input    int
	feedback bool
}

type moduleEntry struct {
	name string
	node ugen.UGen
}

// Graph is one patch-graph engine instance.
type Graph struct {
	mu         sync.Mutex
	modules    map[string]ugen.UGen
	order      []string // insertion order, the deterministic scheduling tie-break
	conns      []connection
	sampleRate int
	maxFrames  int
	plan       atomic.Pointer[plan]
}

func New() *Graph {
	return &Graph{modules: make(map[string]ugen.UGen)}
}

// AddModule registers node under name.
func (g *Graph) AddModule(name string, node ugen.UGen) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.modules[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	g.modules[name] = node
	g.order = append(g.order, name)
	if g.maxFrames > 0 {
		node.Prepare(g.sampleRate)
	}
	g.recompileLocked()
	return nil
}

// RemoveModule unregisters name and removes every connection referencing it.
func (g *Graph) RemoveModule(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.modules[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	delete(g.modules, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.from != name && c.to != name {
			kept = append(kept, c)
		}
	}
	g.conns = kept
	g.recompileLocked()
	return nil
}

// Connect routes fromModule's output slot into toModule's input slot.
// Multiple connections into the same destination slot are summed.
func (g *Graph) Connect(fromModule string, outputIndex int, toModule string, inputIndex int) error {
	return g.connect(fromModule, outputIndex, toModule, inputIndex, false)
}

// ConnectFeedback routes like Connect but designates the edge as a feedback
// break: it is excluded from scheduling constraints and the destination reads
// the source's previous-block output.
func (g *Graph) ConnectFeedback(fromModule string, outputIndex int, toModule string, inputIndex int) error {
	return g.connect(fromModule, outputIndex, toModule, inputIndex, true)
}

func (g *Graph) connect(fromModule string, outputIndex int, toModule string, inputIndex int, feedback bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	from, ok := g.modules[fromModule]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModule, fromModule)
	}
	to, ok := g.modules[toModule]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModule, toModule)
	}
	if outputIndex < 0 || outputIndex >= from.NumOutputs() {
		return fmt.Errorf("%w: output %d of %q (has %d)", ErrIndexOutOfRange, outputIndex, fromModule, from.NumOutputs())
	}
	if inputIndex < 0 || inputIndex >= to.NumInputs() {
		return fmt.Errorf("%w: input %d of %q (has %d)", ErrIndexOutOfRange, inputIndex, toModule, to.NumInputs())
	}
	g.conns = append(g.conns, connection{fromModule, outputIndex, toModule, inputIndex, feedback})
	g.recompileLocked()
	return nil
}

// Disconnect removes the exact connection tuple. It is a no-op if the tuple
// is absent, so connect-then-disconnect restores the pre-connect state.
func (g *Graph) Disconnect(fromModule string, outputIndex int, toModule string, inputIndex int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, c := range g.conns {
		if c.from == fromModule && c.output == outputIndex && c.to == toModule && c.input == inputIndex {
			g.conns = append(g.conns[:i], g.conns[i+1:]...)
			g.recompileLocked()
			return
		}
	}
}

// ModuleNames returns the registered names in insertion order.
func (g *Graph) ModuleNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Module looks up a node by name.
func (g *Graph) Module(name string) (ugen.UGen, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node, ok := g.modules[name]
	return node, ok
}

// SetParameter sets a named parameter on a module. The write reaches the
// audio thread without blocking it.
func (g *Graph) SetParameter(module, name string, value float64) error {
	node, ok := g.Module(module)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModule, module)
	}
	return node.SetParameter(name, value)
}

// Parameter reads a named parameter from a module.
func (g *Graph) Parameter(module, name string) (float64, error) {
	node, ok := g.Module(module)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownModule, module)
	}
	return node.Parameter(name)
}

// Prepare propagates the sample rate to every module and sizes all block
// buffers for at most maxFrames frames. It must be called before Process;
// Process itself never resizes.
func (g *Graph) Prepare(sampleRate, maxFrames int) error {
	if sampleRate <= 0 || maxFrames <= 0 {
		return fmt.Errorf("%w: sampleRate %d, maxFrames %d", ErrNotPrepared, sampleRate, maxFrames)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sampleRate = sampleRate
	g.maxFrames = maxFrames
	for _, name := range g.order {
		g.modules[name].Prepare(sampleRate)
	}
	g.recompileLocked()
	return nil
}

// Process runs one block of numFrames frames through every module in
// topological order. Runs on the audio thread; allocation-free.
func (g *Graph) Process(numFrames int) error {
	p := g.plan.Load()
	if p == nil {
		return ErrNotPrepared
	}
	if p.err != nil {
		return p.err
	}
	if numFrames < 0 || numFrames > p.maxFrames {
		return fmt.Errorf("%w: block of %d frames exceeds prepared capacity %d", ErrNotPrepared, numFrames, p.maxFrames)
	}
	p.run(numFrames)
	return nil
}

// OutputBuffer returns the buffer holding the most recent block of the named
// module's output slot. The slice stays valid until the next topology edit.
func (g *Graph) OutputBuffer(module string, outputIndex int) ([]float64, bool) {
	p := g.plan.Load()
	if p == nil {
		return nil, false
	}
	pn, ok := p.byName[module]
	if !ok || outputIndex < 0 || outputIndex >= len(pn.outputs) {
		return nil, false
	}
	return pn.outputs[outputIndex], true
}

func (g *Graph) recompileLocked() {
	if g.maxFrames <= 0 {
		return
	}
	g.plan.Store(compile(g.order, g.modules, g.conns, g.maxFrames))
}
