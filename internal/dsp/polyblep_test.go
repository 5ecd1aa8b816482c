package dsp

import (
	"math"
	"testing"
)

func TestPolyBLEPZeroAwayFromEdges(t *testing.T) {
	dt := 0.01
	for _, tt := range []float64{0.02, 0.25, 0.5, 0.75, 0.98} {
		if got := PolyBLEP(tt, dt); got != 0 {
			t.Errorf("PolyBLEP(%v, %v) = %v, want 0", tt, dt, got)
		}
	}
}

func TestPolyBLEPAtWrap(t *testing.T) {
	dt := 100.0 / 48000.0
	// Exactly at the discontinuity the residual is -1: it cancels half the
	// step so the corrected waveform crosses smoothly.
	if got := PolyBLEP(0, dt); got != -1 {
		t.Errorf("PolyBLEP(0, dt) = %v, want -1", got)
	}
	// Just before the wrap the residual approaches +1.
	if got := PolyBLEP(1-dt/1000, dt); math.Abs(got-1) > 0.01 {
		t.Errorf("PolyBLEP just below 1 = %v, want ~1", got)
	}
}

func TestPolyBLEPContinuousAtRegionBoundaries(t *testing.T) {
	dt := 0.01
	eps := 1e-9
	// The residual fades to zero where the correction region ends.
	if got := PolyBLEP(dt-eps, dt); math.Abs(got) > 1e-6 {
		t.Errorf("residual at t=dt⁻: %v, want ~0", got)
	}
	if got := PolyBLEP(1-dt+eps, dt); math.Abs(got) > 1e-6 {
		t.Errorf("residual at t=(1-dt)⁺: %v, want ~0", got)
	}
}

func TestPolyBLEPFirstRegionFormula(t *testing.T) {
	dt := 0.02
	tt := 0.005
	tn := tt / dt
	want := tn + tn - tn*tn - 1
	if got := PolyBLEP(tt, dt); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
