package fx

import (
	"github.com/charmbracelet/log"
)

// Processor renders a buffer through a level's acoustic profile: a dry path,
// an optional convolution-reverb wet path, and a fixed compressor on the
// summed output.
type Processor struct {
	sampleRate int
	impulse    *impulseResponse // nil when kernel construction failed
}

// NewProcessor builds the shared reverb kernel once. If kernel construction
// fails the processor still works: the wet path is skipped and everything
// plays dry, which is a degradation rather than an error.
func NewProcessor(sampleRate int) *Processor {
	p := &Processor{sampleRate: sampleRate}

	ir, err := newImpulseResponse(sampleRate)
	if err != nil {
		log.Warn("reverb kernel unavailable, playback continues dry", "error", err)
		return p
	}
	p.impulse = ir
	return p
}

// HasReverb reports whether the wet path is available.
func (p *Processor) HasReverb() bool { return p.impulse != nil }

// Process shapes a mono buffer with the given environment and returns a
// stereo pair. The dry path always reaches the compressor, so a skipped
// reverb never produces silence.
func (p *Processor) Process(samples []float32, env Environment) (left, right []float32) {
	left = make([]float32, len(samples))
	right = make([]float32, len(samples))

	dryGain := float32(1 - env.ReverbLevel)
	for i, v := range samples {
		left[i] = v * dryGain
		right[i] = v * dryGain
	}

	if env.ReverbLevel > 0 && p.impulse != nil {
		wetGain := float32(env.ReverbLevel)
		wetL := convolve(samples, p.impulse.left)
		wetR := convolve(samples, p.impulse.right)
		damp(wetL, env.Dampening)
		damp(wetR, env.Dampening)
		for i := range left {
			left[i] += wetL[i] * wetGain
			right[i] += wetR[i] * wetGain
		}
	}

	newCompressor(p.sampleRate).process(left, right)
	return left, right
}

// damp applies a one-pole lowpass to the wet path. Higher dampening absorbs
// more high frequencies, like soft surfaces do.
func damp(samples []float32, amount float64) {
	if amount <= 0 {
		return
	}
	coef := float32(amount * 0.9)
	var prev float32
	for i, v := range samples {
		prev = prev*coef + v*(1-coef)
		samples[i] = prev
	}
}
