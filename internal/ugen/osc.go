package ugen

import (
	"fmt"
	"math"

	"github.com/modpatch/modpatch-go/internal/dsp"
)

const (
	defaultFrequency  = 440.0
	defaultSampleRate = 48000.0
)

// waveFn evaluates one waveform sample from the normalized phase t in [0,1),
// the normalized increment dt, and (for pulse) the effective pulse width.
type waveFn func(t, dt, width float64) float64

// oscState is the shared core of the oscillator family: atomic parameters,
// the modulated generate loop, and the parameter map. Concrete oscillators
// embed it and install their waveform function.
type oscState struct {
	frequency  atomicFloat
	amplitude  atomicFloat
	phase      atomicFloat // radians, [0, 2π)
	pulseWidth atomicFloat
	sampleRate atomicFloat
	wave       waveFn
	hasWidth   bool
	name       string
	desc       string
}

func (o *oscState) init(name, desc string, wave waveFn) {
	o.name = name
	o.desc = desc
	o.wave = wave
	o.frequency.Store(defaultFrequency)
	o.amplitude.Store(1)
	o.sampleRate.Store(defaultSampleRate)
}

// generate runs the block loop in lanes of eight, applying per-lane
// modulation and carrying the final lane's phase forward. The remainder past
// the last full lane uses the same per-sample math, so lane and scalar
// processing agree exactly.
func (o *oscState) generate(inputs, outputs [][]float64) {
	if len(outputs) == 0 || len(outputs[0]) == 0 {
		return
	}
	out := outputs[0]
	var freqMod, ampMod, pwMod []float64
	if len(inputs) > 0 {
		freqMod = inputs[0]
	}
	if len(inputs) > 1 {
		ampMod = inputs[1]
	}
	if o.hasWidth && len(inputs) > 2 {
		pwMod = inputs[2]
	}

	phase := o.phase.Load()
	baseFreq := o.frequency.Load()
	baseAmp := o.amplitude.Load()
	baseWidth := o.pulseWidth.Load()
	sr := o.sampleRate.Load()

	n := len(out)
	for start := 0; start < n; start += 8 {
		end := start + 8
		if end > n {
			end = n
		}
		for k := start; k < end; k++ {
			freq := baseFreq
			if freqMod != nil {
				freq += freqMod[k]
			}
			amp := baseAmp
			if ampMod != nil {
				amp *= ampMod[k]
			}
			width := baseWidth
			if pwMod != nil {
				width = clamp(baseWidth+pwMod[k], 0, 1)
			}

			t := phase / dsp.TwoPi
			dt := freq / sr
			out[k] = amp * o.wave(t, dt, width)

			phase += dsp.TwoPi * freq / sr
			for phase >= dsp.TwoPi {
				phase -= dsp.TwoPi
			}
			for phase < 0 {
				phase += dsp.TwoPi
			}
		}
	}
	o.phase.Store(phase)
}

func (o *oscState) NumInputs() int {
	if o.hasWidth {
		return 3
	}
	return 2
}

func (o *oscState) NumOutputs() int { return 1 }

func (o *oscState) InputName(index int) string {
	switch index {
	case 0:
		return "Frequency Modulation"
	case 1:
		return "Amplitude Modulation"
	case 2:
		if o.hasWidth {
			return "Pulse Width Modulation"
		}
	}
	return ""
}

func (o *oscState) OutputName(index int) string {
	if index == 0 {
		return "output"
	}
	return ""
}

func (o *oscState) SetFrequency(frequency float64) error {
	if frequency <= 0 {
		return fmt.Errorf("%w: frequency must be positive, got %g", ErrInvalidParameter, frequency)
	}
	o.frequency.Store(frequency)
	return nil
}

func (o *oscState) SetAmplitude(amplitude float64) error {
	if amplitude < 0 {
		return fmt.Errorf("%w: amplitude must be non-negative, got %g", ErrInvalidParameter, amplitude)
	}
	o.amplitude.Store(amplitude)
	return nil
}

// SetPhase normalizes into [0, 2π).
func (o *oscState) SetPhase(phase float64) {
	phase = math.Mod(phase, dsp.TwoPi)
	if phase < 0 {
		phase += dsp.TwoPi
	}
	o.phase.Store(phase)
}

func (o *oscState) Frequency() float64 { return o.frequency.Load() }
func (o *oscState) Amplitude() float64 { return o.amplitude.Load() }
func (o *oscState) Phase() float64     { return o.phase.Load() }

func (o *oscState) SetParameter(name string, value float64) error {
	switch name {
	case "frequency":
		return o.SetFrequency(value)
	case "amplitude":
		return o.SetAmplitude(value)
	case "phase":
		o.SetPhase(value)
		return nil
	case "pulseWidth":
		if o.hasWidth {
			o.pulseWidth.Store(clamp(value, 0, 1))
			return nil
		}
	}
	return fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
}

func (o *oscState) Parameter(name string) (float64, error) {
	switch name {
	case "frequency":
		return o.frequency.Load(), nil
	case "amplitude":
		return o.amplitude.Load(), nil
	case "phase":
		return o.phase.Load(), nil
	case "pulseWidth":
		if o.hasWidth {
			return o.pulseWidth.Load(), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
}

func (o *oscState) ParameterNames() []string {
	names := []string{"frequency", "amplitude", "phase"}
	if o.hasWidth {
		names = append(names, "pulseWidth")
	}
	return names
}

func (o *oscState) Name() string        { return o.name }
func (o *oscState) Description() string { return o.desc }

func (o *oscState) Reset() { o.phase.Store(0) }

func (o *oscState) Prepare(sampleRate int) {
	o.sampleRate.Store(float64(sampleRate))
}

// copyFrom duplicates all parameter and DSP state for Clone.
func (o *oscState) copyFrom(src *oscState) {
	o.frequency.Store(src.frequency.Load())
	o.amplitude.Store(src.amplitude.Load())
	o.phase.Store(src.phase.Load())
	o.pulseWidth.Store(src.pulseWidth.Load())
	o.sampleRate.Store(src.sampleRate.Load())
}

func sineWave(t, _, _ float64) float64 {
	return math.Sin(dsp.TwoPi * t)
}

func sawWave(t, dt, _ float64) float64 {
	return 2*t - 1 - dsp.PolyBLEP(t, dt)
}

func triangleWave(t, dt, _ float64) float64 {
	value := 2*math.Abs(2*t-1) - 1
	blep1 := dsp.PolyBLEP(t, dt)
	blep2 := dsp.PolyBLEP(math.Mod(t+0.5, 1), dt)
	return value + 4*(blep1-blep2)
}

func pulseWave(t, dt, width float64) float64 {
	value := -1.0
	if t < width {
		value = 1.0
	}
	value -= dsp.PolyBLEP(t, dt)
	value += dsp.PolyBLEP(math.Mod(t+1-width, 1), dt)
	return value
}

// SineOsc is a sine wave oscillator. The waveform is continuous, so no edge
// correction is applied.
type SineOsc struct{ oscState }

func NewSine() *SineOsc {
	o := &SineOsc{}
	o.init("Sine Oscillator", "A sine wave oscillator", sineWave)
	return o
}

func (o *SineOsc) Process(inputs, outputs [][]float64) { o.generate(inputs, outputs) }

func (o *SineOsc) Clone() UGen {
	c := NewSine()
	c.copyFrom(&o.oscState)
	return c
}

// SawOsc is an anti-aliased sawtooth oscillator.
type SawOsc struct{ oscState }

func NewSaw() *SawOsc {
	o := &SawOsc{}
	o.init("Saw Oscillator", "An anti-aliased sawtooth wave oscillator", sawWave)
	return o
}

func (o *SawOsc) Process(inputs, outputs [][]float64) { o.generate(inputs, outputs) }

func (o *SawOsc) Clone() UGen {
	c := NewSaw()
	c.copyFrom(&o.oscState)
	return c
}

// TriangleOsc is an anti-aliased triangle oscillator. The two slope
// discontinuities per cycle are corrected with a PolyBLEP pair.
type TriangleOsc struct{ oscState }

func NewTriangle() *TriangleOsc {
	o := &TriangleOsc{}
	o.init("Triangle Oscillator", "An anti-aliased triangle wave oscillator", triangleWave)
	return o
}

func (o *TriangleOsc) Process(inputs, outputs [][]float64) { o.generate(inputs, outputs) }

func (o *TriangleOsc) Clone() UGen {
	c := NewTriangle()
	c.copyFrom(&o.oscState)
	return c
}

// PulseOsc is an anti-aliased pulse oscillator with variable pulse width and
// a third modulation input for the width.
type PulseOsc struct{ oscState }

func NewPulse() *PulseOsc {
	o := &PulseOsc{}
	o.init("Pulse Oscillator", "An anti-aliased pulse wave oscillator with pulse width control", pulseWave)
	o.hasWidth = true
	o.pulseWidth.Store(0.5)
	return o
}

func (o *PulseOsc) Process(inputs, outputs [][]float64) { o.generate(inputs, outputs) }

// SetPulseWidth clamps into [0, 1].
func (o *PulseOsc) SetPulseWidth(width float64) {
	o.pulseWidth.Store(clamp(width, 0, 1))
}

func (o *PulseOsc) PulseWidth() float64 { return o.pulseWidth.Load() }

func (o *PulseOsc) Clone() UGen {
	c := NewPulse()
	c.copyFrom(&o.oscState)
	return c
}
