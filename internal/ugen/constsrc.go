package ugen

import "fmt"

// Const emits a fixed value every sample. Useful as a DC offset, a control
// signal for modulation inputs, and as a deterministic source in tests.
type Const struct {
	value atomicFloat
}

func NewConst(value float64) *Const {
	c := &Const{}
	c.value.Store(value)
	return c
}

func (c *Const) Process(inputs, outputs [][]float64) {
	if len(outputs) == 0 || len(outputs[0]) == 0 {
		return
	}
	out := outputs[0]
	v := c.value.Load()
	for i := range out {
		out[i] = v
	}
}

func (c *Const) NumInputs() int  { return 0 }
func (c *Const) NumOutputs() int { return 1 }

func (c *Const) InputName(index int) string { return "" }

func (c *Const) OutputName(index int) string {
	if index == 0 {
		return "output"
	}
	return ""
}

func (c *Const) SetParameter(name string, value float64) error {
	if name != "value" {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
	}
	c.value.Store(value)
	return nil
}

func (c *Const) Parameter(name string) (float64, error) {
	if name != "value" {
		return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
	}
	return c.value.Load(), nil
}

func (c *Const) ParameterNames() []string { return []string{"value"} }

func (c *Const) Name() string        { return "Constant" }
func (c *Const) Description() string { return "Emits a constant value every sample" }

// Reset is a no-op: value is a parameter, and Const has no DSP state.
func (c *Const) Reset() {}

func (c *Const) Prepare(sampleRate int) {}

func (c *Const) Clone() UGen {
	return NewConst(c.value.Load())
}
