package dsp

import "math"

// TableSize is the length of the precomputed sine table.
const TableSize = 2048

// NewSineTable builds one cycle of a sine wave sampled at TableSize points.
func NewSineTable() []float64 {
	table := make([]float64, TableSize)
	for i := range table {
		table[i] = math.Sin(TwoPi * float64(i) / TableSize)
	}
	return table
}

// CubicInterpolate evaluates a 4-point cubic through v0..v3 at fractional
// position t in [0,1) between v1 and v2.
func CubicInterpolate(v0, v1, v2, v3, t float64) float64 {
	p := (v3 - v2) - (v0 - v1)
	q := (v0 - v1) - p
	r := v2 - v0
	s := v1
	return p*t*t*t + q*t*t + r*t + s
}

// InterpolateAt reads table at a fractional index with cubic interpolation,
// wrapping all indices modulo the table length. Negative and out-of-range
// indices are valid; the fractional part is always non-negative.
func InterpolateAt(table []float64, index float64) float64 {
	n := len(table)
	floor := math.Floor(index)
	frac := index - floor
	idx := int(floor) % n
	if idx < 0 {
		idx += n
	}
	v0 := table[(idx-1+n)%n]
	v1 := table[idx]
	v2 := table[(idx+1)%n]
	v3 := table[(idx+2)%n]
	return CubicInterpolate(v0, v1, v2, v3, frac)
}
