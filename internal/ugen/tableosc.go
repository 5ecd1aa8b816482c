package ugen

import (
	"fmt"
	"math"

	"github.com/modpatch/modpatch-go/internal/dsp"
)

// sharedSineTable is immutable after init; instances and clones alias it.
var sharedSineTable = dsp.NewSineTable()

// TableOsc produces sine samples by cubic interpolation into a precomputed
// table, driven by a phase accumulator whose period is the table length.
// It is cheaper than transcendental evaluation when the frequency input is
// modulated every sample. Input 0, when connected, is a per-sample frequency
// control in Hz and overrides the frequency parameter.
type TableOsc struct {
	table      []float64
	phasor     *dsp.Phasor
	frequency  atomicFloat
	amplitude  atomicFloat
	phase      atomicFloat // table index units, [0, TableSize)
	sampleRate atomicFloat
}

func NewTable() *TableOsc {
	t := &TableOsc{
		table:  sharedSineTable,
		phasor: dsp.NewPhasor(dsp.TableSize),
	}
	t.frequency.Store(defaultFrequency)
	t.amplitude.Store(1)
	t.sampleRate.Store(defaultSampleRate)
	return t
}

func (t *TableOsc) Process(inputs, outputs [][]float64) {
	if len(outputs) == 0 || len(outputs[0]) == 0 {
		return
	}
	out := outputs[0]
	var ctrl []float64
	if len(inputs) > 0 {
		ctrl = inputs[0]
	}

	// The atomics are canonical; the phasor is block-local audio-thread state.
	t.phasor.SetInvSampleRate(1 / t.sampleRate.Load())
	t.phasor.SetFrequency(t.frequency.Load())
	t.phasor.SetPhase(t.phase.Load())
	amp := t.amplitude.Load()

	if ctrl != nil {
		for i := range out {
			out[i] = amp * dsp.InterpolateAt(t.table, t.phasor.StepControl(ctrl[i]))
		}
	} else {
		for i := range out {
			out[i] = amp * dsp.InterpolateAt(t.table, t.phasor.Step())
		}
	}
	t.phase.Store(t.phasor.Phase())
}

func (t *TableOsc) NumInputs() int  { return 1 }
func (t *TableOsc) NumOutputs() int { return 1 }

func (t *TableOsc) InputName(index int) string {
	if index == 0 {
		return "Frequency Control"
	}
	return ""
}

func (t *TableOsc) OutputName(index int) string {
	if index == 0 {
		return "output"
	}
	return ""
}

func (t *TableOsc) SetParameter(name string, value float64) error {
	switch name {
	case "frequency":
		if value <= 0 {
			return fmt.Errorf("%w: frequency must be positive, got %g", ErrInvalidParameter, value)
		}
		t.frequency.Store(value)
	case "amplitude":
		if value < 0 {
			return fmt.Errorf("%w: amplitude must be non-negative, got %g", ErrInvalidParameter, value)
		}
		t.amplitude.Store(value)
	case "phase":
		phase := math.Mod(value, dsp.TableSize)
		if phase < 0 {
			phase += dsp.TableSize
		}
		t.phase.Store(phase)
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
	}
	return nil
}

func (t *TableOsc) Parameter(name string) (float64, error) {
	switch name {
	case "frequency":
		return t.frequency.Load(), nil
	case "amplitude":
		return t.amplitude.Load(), nil
	case "phase":
		return t.phase.Load(), nil
	}
	return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
}

func (t *TableOsc) ParameterNames() []string {
	return []string{"frequency", "amplitude", "phase"}
}

func (t *TableOsc) Name() string { return "Table Oscillator" }

func (t *TableOsc) Description() string {
	return "A table-lookup sine oscillator with cubic interpolation"
}

func (t *TableOsc) Reset() { t.phase.Store(0) }

func (t *TableOsc) Prepare(sampleRate int) {
	t.sampleRate.Store(float64(sampleRate))
}

func (t *TableOsc) Clone() UGen {
	c := NewTable()
	c.frequency.Store(t.frequency.Load())
	c.amplitude.Store(t.amplitude.Load())
	c.phase.Store(t.phase.Load())
	c.sampleRate.Store(t.sampleRate.Load())
	return c
}
