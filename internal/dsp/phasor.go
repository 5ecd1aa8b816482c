package dsp

import "math"

// TwoPi is the canonical oscillator period.
const TwoPi = 2 * math.Pi

// Phasor accumulates a phase value modulo a fixed period (wrap). It advances
// either by a fixed per-sample increment derived from a frequency, or by a
// per-sample control input scaled by freqFactor = invSampleRate * wrap.
//
// Every processing mode funnels through the same step kernel, so scalar,
// block and unrolled batch stepping produce bit-identical trajectories.
type Phasor struct {
	phase      float64
	phaseInc   float64 // frequency * invSampleRate * wrap
	freqFactor float64 // invSampleRate * wrap
	frequency  float64
	wrap       float64
}

// NewPhasor creates a phasor with the given period. Callers must set the
// sample rate with SetInvSampleRate before processing.
func NewPhasor(wrap float64) *Phasor {
	return &Phasor{wrap: wrap}
}

// SetInvSampleRate installs 1/sampleRate and recomputes the fixed increment.
func (p *Phasor) SetInvSampleRate(invSampleRate float64) {
	p.freqFactor = invSampleRate * p.wrap
	p.phaseInc = p.frequency * p.freqFactor
}

// SetFrequency sets the frequency in Hz used by the fixed-increment modes.
func (p *Phasor) SetFrequency(frequency float64) {
	p.frequency = frequency
	p.phaseInc = frequency * p.freqFactor
}

// SetPhase normalizes into [0, wrap).
func (p *Phasor) SetPhase(phase float64) {
	phase = math.Mod(phase, p.wrap)
	if phase < 0 {
		phase += p.wrap
	}
	p.phase = phase
}

func (p *Phasor) Phase() float64 { return p.phase }

func (p *Phasor) Wrap() float64 { return p.wrap }

func step(phase, inc, wrap float64) float64 {
	phase = math.Mod(phase+inc, wrap)
	if phase < 0 {
		phase += wrap
	}
	return phase
}

// Step advances by one sample at the configured frequency and returns the
// new phase.
func (p *Phasor) Step() float64 {
	p.phase = step(p.phase, p.phaseInc, p.wrap)
	return p.phase
}

// StepControl advances by one sample at the given control frequency (Hz)
// and returns the new phase.
func (p *Phasor) StepControl(control float64) float64 {
	p.phase = step(p.phase, control*p.freqFactor, p.wrap)
	return p.phase
}

// Process fills out with the phase trajectory at the configured frequency.
func (p *Phasor) Process(out []float64) {
	phase := p.phase
	for i := range out {
		phase = step(phase, p.phaseInc, p.wrap)
		out[i] = phase
	}
	p.phase = phase
}

// Process8 is the unrolled batch variant of Process. It steps in groups of
// eight and ignores any remainder beyond the last full group, matching the
// fixed-size lanes used by the oscillators.
func (p *Phasor) Process8(out []float64) {
	phase := p.phase
	n := len(out) / 8
	for g := 0; g < n; g++ {
		base := g * 8
		for j := 0; j < 8; j++ {
			phase = step(phase, p.phaseInc, p.wrap)
			out[base+j] = phase
		}
	}
	p.phase = phase
}

// ProcessControl advances by in[i]*freqFactor per sample, treating the
// control input as a frequency in Hz.
func (p *Phasor) ProcessControl(in, out []float64) {
	phase := p.phase
	for i := range out {
		phase = step(phase, in[i]*p.freqFactor, p.wrap)
		out[i] = phase
	}
	p.phase = phase
}

// ProcessControl8 is the unrolled batch variant of ProcessControl.
func (p *Phasor) ProcessControl8(in, out []float64) {
	phase := p.phase
	n := len(out) / 8
	for g := 0; g < n; g++ {
		base := g * 8
		for j := 0; j < 8; j++ {
			phase = step(phase, in[base+j]*p.freqFactor, p.wrap)
			out[base+j] = phase
		}
	}
	p.phase = phase
}
