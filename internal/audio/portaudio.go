package audio

import (
	"sync/atomic"
	"time"

	pa "github.com/gordonklaus/portaudio"
)

const portAudioFramesPerBuffer = 512

// portAudioOutput drives a portaudio stream from its callback. While paused
// the callback keeps running and emits silence, so Pause/Play never tear down
// the device.
type portAudioOutput struct {
	stream     *pa.Stream
	sampleRate int
	playing    atomic.Bool
	frames     atomic.Int64
}

func newPortAudioOutput(sampleRate int, source Source) (Output, error) {
	if err := pa.Initialize(); err != nil {
		return nil, err
	}
	o := &portAudioOutput{sampleRate: sampleRate}
	var finished bool
	callback := func(out []float32) {
		if finished || !o.playing.Load() {
			for i := range out {
				out[i] = 0
			}
			return
		}
		source.Process(out)
		o.frames.Add(int64(len(out) / 2))
		if fs, ok := source.(FinishingSource); ok && fs.Finished() {
			finished = true
		}
	}
	stream, err := pa.OpenDefaultStream(0, 2, float64(sampleRate), portAudioFramesPerBuffer, callback)
	if err != nil {
		_ = pa.Terminate()
		return nil, err
	}
	o.stream = stream
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = pa.Terminate()
		return nil, err
	}
	return o, nil
}

func (o *portAudioOutput) Play()           { o.playing.Store(true) }
func (o *portAudioOutput) Pause()          { o.playing.Store(false) }
func (o *portAudioOutput) IsPlaying() bool { return o.playing.Load() }

func (o *portAudioOutput) Position() time.Duration {
	return time.Duration(float64(o.frames.Load()) / float64(o.sampleRate) * float64(time.Second))
}

func (o *portAudioOutput) Stop() error {
	o.playing.Store(false)
	err := o.stream.Stop()
	if cerr := o.stream.Close(); err == nil {
		err = cerr
	}
	if terr := pa.Terminate(); err == nil {
		err = terr
	}
	return err
}
