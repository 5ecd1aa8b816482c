// Package ugen defines the unit-generator contract shared by every
// processing node in a patch graph, plus the built-in node family.
package ugen

import "errors"

// ErrInvalidParameter reports an unknown parameter name or a value outside
// the parameter's valid domain.
var ErrInvalidParameter = errors.New("invalid parameter")

// UGen is a polymorphic processing node. Process reads its bound inputs and
// fully populates its outputs for one block; the block length is the length
// of the bound output buffers. A nil entry in inputs means the slot is
// unconnected and contributes nothing.
//
// Process runs on the audio thread and must not allocate. Parameter access
// may come from a control thread concurrently with Process; implementations
// store externally writable scalars atomically.
type UGen interface {
	Process(inputs, outputs [][]float64)

	NumInputs() int
	NumOutputs() int
	InputName(index int) string
	OutputName(index int) string

	SetParameter(name string, value float64) error
	Parameter(name string) (float64, error)
	ParameterNames() []string

	Name() string
	Description() string

	// Reset returns the node to its initial DSP state (e.g. phase 0).
	Reset()
	// Prepare propagates the sample rate before the first Process call.
	Prepare(sampleRate int)
	// Clone returns a deep copy of the node including its DSP state.
	Clone() UGen
}

var (
	_ UGen = (*SineOsc)(nil)
	_ UGen = (*SawOsc)(nil)
	_ UGen = (*TriangleOsc)(nil)
	_ UGen = (*PulseOsc)(nil)
	_ UGen = (*TableOsc)(nil)
	_ UGen = (*Gain)(nil)
	_ UGen = (*Const)(nil)
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
