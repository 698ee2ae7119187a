package speech

import (
	"context"
	"math"
	"strings"
)

const chimeSampleRate = 44100

// ChimeBackend is the synthesis backend of last resort. It renders each word
// as a short pitched chime so narration stays audible as abstract speech-like
// cues even when no real voice engine exists on the system. It never fails
// and needs no external binaries.
type ChimeBackend struct{}

// NewChimeBackend returns the procedural chime voice.
func NewChimeBackend() *ChimeBackend { return &ChimeBackend{} }

// Synthesize renders one chime per word. Word length picks the syllable
// frequency inside a pentatonic-ish ladder so longer words sound lower,
// which keeps repeated phrases recognizable.
func (c *ChimeBackend) Synthesize(ctx context.Context, text string, p Params) (*Audio, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return &Audio{Samples: make([]float32, chimeSampleRate/10), SampleRate: chimeSampleRate}, nil
	}

	rate := clampf(p.Rate, 0.5, 3.0)
	pitch := clampf(p.Pitch, PitchMin, PitchMax)
	volume := math.Max(0, math.Min(1, p.Volume))

	sylDur := 0.11 / rate
	gapDur := 0.05 / rate
	sylFrames := int(sylDur * chimeSampleRate)
	gapFrames := int(gapDur * chimeSampleRate)

	ladder := []float64{523.25, 587.33, 659.25, 783.99, 880.00} // C5 D5 E5 G5 A5

	samples := make([]float32, 0, len(words)*(sylFrames+gapFrames))
	for _, w := range words {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		base := ladder[wordKey(w)%len(ladder)] * pitch
		for i := 0; i < sylFrames; i++ {
			t := float64(i) / chimeSampleRate
			env := chimeEnvelope(float64(i) / float64(sylFrames))
			s := math.Sin(2*math.Pi*base*t) + 0.35*math.Sin(2*math.Pi*base*2*t)
			samples = append(samples, float32(s*env*volume*0.4))
		}
		samples = append(samples, make([]float32, gapFrames)...)
	}
	return &Audio{Samples: samples, SampleRate: chimeSampleRate}, nil
}

// wordKey maps a word to a stable small integer.
func wordKey(w string) int {
	h := 0
	for _, r := range strings.ToLower(w) {
		h = h*31 + int(r)
	}
	if h < 0 {
		h = -h
	}
	return h
}

// chimeEnvelope is a fast attack with an exponential-ish tail, u in [0,1).
func chimeEnvelope(u float64) float64 {
	const attack = 0.08
	if u < attack {
		return u / attack
	}
	d := (u - attack) / (1 - attack)
	return (1 - d) * (1 - d)
}

// Voices exposes a single voice that serves every category.
func (c *ChimeBackend) Voices() []Voice {
	return []Voice{{
		ID:         "chime",
		Name:       "Chime",
		Gender:     "neutral",
		Categories: []string{"narrator", "guide", "character", "mystical", "nature"},
	}}
}

// IsAvailable always reports true.
func (c *ChimeBackend) IsAvailable() bool { return true }

// Shutdown is a no-op.
func (c *ChimeBackend) Shutdown() error { return nil }
