package dsp

// PolyBLEP returns the polynomial band-limited step residual for a waveform
// discontinuity near the current sample. t is the normalized phase in [0,1),
// dt the normalized per-sample increment (frequency/sampleRate). The result
// is zero except within one sample of a wrap point.
func PolyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
