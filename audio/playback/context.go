// Package playback wraps the platform audio output device. It exposes a
// small Context/Source surface with a real oto-based implementation and a
// mock used in tests and headless environments. When no audio device is
// available the engine runs against the mock and stays silent instead of
// failing.
package playback

import (
	"time"

	"github.com/charmbracelet/log"
)

// Clip is a stereo PCM buffer ready for playback. Mono material uses the
// same slice for both channels.
type Clip struct {
	Left       []float32
	Right      []float32
	SampleRate int
}

// MonoClip wraps a mono buffer as a playable clip.
func MonoClip(samples []float32, sampleRate int) Clip {
	return Clip{Left: samples, Right: samples, SampleRate: sampleRate}
}

// Frames returns the number of sample frames in the clip.
func (c Clip) Frames() int { return len(c.Left) }

// Duration returns the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Left)) / float64(c.SampleRate) * float64(time.Second))
}

// Source is one active playback instance. Stop is idempotent and safe to
// call after natural completion.
type Source interface {
	// Play starts playback. Calling Play twice has no effect.
	Play()

	// Stop halts playback and releases the underlying player. Never errors,
	// even when the source already finished naturally.
	Stop()

	// IsPlaying reports whether audio is currently audible.
	IsPlaying() bool

	// SetGain retunes the per-channel gain of a running source without
	// restarting it.
	SetGain(left, right float64)

	// Done is closed when playback ends, naturally or via Stop. Looping
	// sources only complete via Stop.
	Done() <-chan struct{}
}

// Context is the audio output device boundary.
type Context interface {
	// NewSource builds a source for the clip. loop keeps the source playing
	// until stopped.
	NewSource(clip Clip, loop bool) (Source, error)

	// SampleRate returns the device output rate.
	SampleRate() int

	// IsReady reports whether the device accepted initialization.
	IsReady() bool

	// Close releases the device. Sources created from a closed context are
	// already stopped.
	Close() error
}

// ContextType selects the backend implementation.
type ContextType int

const (
	// ContextAuto tries the real device and falls back to the mock.
	ContextAuto ContextType = iota
	// ContextProduction uses the real audio device via oto.
	ContextProduction
	// ContextMock simulates playback timing without audio output.
	ContextMock
)

// NewContext creates an audio context of the requested type.
func NewContext(kind ContextType, sampleRate int) (Context, error) {
	switch kind {
	case ContextMock:
		return NewMockContext(sampleRate), nil
	case ContextProduction:
		return newProductionContext(sampleRate)
	case ContextAuto:
		ctx, err := newProductionContext(sampleRate)
		if err != nil {
			log.Warn("audio device unavailable, running silent", "error", err)
			return NewMockContext(sampleRate), nil
		}
		return ctx, nil
	default:
		return NewMockContext(sampleRate), nil
	}
}
