package ugen

import "fmt"

// MaxGain bounds the gain parameter.
const MaxGain = 10.0

// Gain is a pure transform node: output = input * gain. It demonstrates the
// non-generator side of the UGen contract.
type Gain struct {
	gain atomicFloat
}

func NewGain() *Gain {
	g := &Gain{}
	g.gain.Store(1)
	return g
}

func (g *Gain) Process(inputs, outputs [][]float64) {
	if len(outputs) == 0 || len(outputs[0]) == 0 {
		return
	}
	out := outputs[0]
	if len(inputs) == 0 || inputs[0] == nil {
		for i := range out {
			out[i] = 0
		}
		return
	}
	in := inputs[0]
	gain := g.gain.Load()
	for i := range out {
		out[i] = in[i] * gain
	}
}

func (g *Gain) NumInputs() int  { return 1 }
func (g *Gain) NumOutputs() int { return 1 }

func (g *Gain) InputName(index int) string {
	if index == 0 {
		return "Input"
	}
	return ""
}

func (g *Gain) OutputName(index int) string {
	if index == 0 {
		return "Output"
	}
	return ""
}

func (g *Gain) SetParameter(name string, value float64) error {
	if name != "gain" {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
	}
	g.gain.Store(clamp(value, 0, MaxGain))
	return nil
}

func (g *Gain) Parameter(name string) (float64, error) {
	if name != "gain" {
		return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
	}
	return g.gain.Load(), nil
}

func (g *Gain) ParameterNames() []string { return []string{"gain"} }

func (g *Gain) Name() string        { return "Gain Module" }
func (g *Gain) Description() string { return "A simple gain control module" }

func (g *Gain) Reset() { g.gain.Store(1) }

func (g *Gain) Prepare(sampleRate int) {}

func (g *Gain) Clone() UGen {
	c := NewGain()
	c.gain.Store(g.gain.Load())
	return c
}

// SetGain clamps into [0, MaxGain].
func (g *Gain) SetGain(gain float64) { g.gain.Store(clamp(gain, 0, MaxGain)) }

func (g *Gain) GainValue() float64 { return g.gain.Load() }
