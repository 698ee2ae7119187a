// Package speech is the boundary to the speech output device. Backends turn
// narration text into PCM; the engine treats them as opaque asynchronous
// sinks. A subprocess backend (espeak-ng) is the primary implementation,
// with a fully procedural chime voice as the always-available fallback.
package speech

import "context"

// Params controls one synthesized utterance.
type Params struct {
	Voice  string  // Concrete backend voice id
	Pitch  float64 // 0.5 to 2.0, 1.0 is the voice's natural pitch
	Rate   float64 // Speech rate multiplier, 1.0 is normal
	Volume float64 // 0.0 to 1.0
}

// PitchMin and PitchMax bound the valid pitch range. Spatial pitch offsets
// are clamped into this range.
const (
	PitchMin = 0.5
	PitchMax = 2.0
)

// Voice describes one concrete backend voice and the abstract voice
// categories it can serve. Category matching replaces name matching so
// voice selection does not depend on backend-specific naming.
type Voice struct {
	ID         string
	Name       string
	Gender     string
	Categories []string
}

// Serves reports whether the voice declares the given category.
func (v Voice) Serves(category string) bool {
	for _, c := range v.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Backend converts text to speech audio.
type Backend interface {
	// Synthesize renders text to PCM. It honors ctx cancellation.
	Synthesize(ctx context.Context, text string, p Params) (*Audio, error)

	// Voices returns the concrete voices this backend offers.
	Voices() []Voice

	// IsAvailable reports whether the backend can synthesize right now.
	IsAvailable() bool

	// Shutdown releases backend resources.
	Shutdown() error
}

// Audio is synthesized speech as mono float32 PCM.
type Audio struct {
	Samples    []float32
	SampleRate int
}

// Resample converts the audio to the target rate with linear interpolation,
// good enough for speech. Returns the receiver when rates already match.
func (a *Audio) Resample(targetRate int) *Audio {
	if a.SampleRate == targetRate || a.SampleRate <= 0 || targetRate <= 0 || len(a.Samples) == 0 {
		return a
	}

	ratio := float64(targetRate) / float64(a.SampleRate)
	out := make([]float32, int(float64(len(a.Samples))*ratio))
	for i := range out {
		pos := float64(i) / ratio
		idx := int(pos)
		if idx >= len(a.Samples)-1 {
			out[i] = a.Samples[len(a.Samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = a.Samples[idx]*(1-frac) + a.Samples[idx+1]*frac
	}
	return &Audio{Samples: out, SampleRate: targetRate}
}
