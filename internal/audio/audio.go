// Package audio hosts the realtime output backends. A backend pulls
// interleaved stereo float32 blocks from a Source on its audio thread.
package audio

import (
	"fmt"
	"time"
)

// Source generates audio. Process fills dst with interleaved stereo samples
// and runs on the audio thread: no allocation, no locks, no I/O.
type Source interface {
	Process(dst []float32)
}

// FinishingSource additionally signals when playback has ended; the backend
// stops pulling once Finished reports true.
type FinishingSource interface {
	Source
	Finished() bool
}

// Output is a started audio device bound to one Source.
type Output interface {
	Play()
	Pause()
	IsPlaying() bool
	// Position is the device-side playback position, i.e. what the listener
	// actually hears right now.
	Position() time.Duration
	Stop() error
}

// Backend names an output implementation.
type Backend string

const (
	BackendEbiten    Backend = "ebiten"
	BackendPortAudio Backend = "portaudio"
)

// NewOutput opens the named backend at the given sample rate.
func NewOutput(backend Backend, sampleRate int, source Source) (Output, error) {
	switch backend {
	case BackendEbiten, "":
		return newEbitenOutput(sampleRate, source)
	case BackendPortAudio:
		return newPortAudioOutput(sampleRate, source)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
}
