package fx

import "math"

// Fixed output compressor. Every processed buffer runs through the same
// curve regardless of level, which keeps quiet ambience and loud effects in
// a predictable loudness window for headphone players.
const (
	compThresholdDB = -24.0
	compKneeDB      = 30.0
	compRatio       = 12.0
	compAttack      = 3e-3   // seconds
	compRelease     = 250e-3 // seconds
)

// compressor is a feed-forward soft-knee dynamics compressor with a shared
// (linked) envelope for both stereo channels.
type compressor struct {
	attackCoef  float64
	releaseCoef float64
	envelope    float64
}

func newCompressor(sampleRate int) *compressor {
	sr := float64(sampleRate)
	return &compressor{
		attackCoef:  math.Exp(-1.0 / (compAttack * sr)),
		releaseCoef: math.Exp(-1.0 / (compRelease * sr)),
	}
}

// gainFor computes the compressor output level in dB for an input level.
func gainFor(levelDB float64) float64 {
	over := levelDB - compThresholdDB
	switch {
	case 2*over < -compKneeDB:
		return levelDB
	case 2*math.Abs(over) <= compKneeDB:
		d := over + compKneeDB/2
		return levelDB + (1/compRatio-1)*d*d/(2*compKneeDB)
	default:
		return compThresholdDB + over/compRatio
	}
}

// process applies compression in place to a linked stereo pair.
func (c *compressor) process(left, right []float32) {
	for i := range left {
		peak := math.Max(math.Abs(float64(left[i])), math.Abs(float64(right[i])))

		if peak > c.envelope {
			c.envelope = c.attackCoef*c.envelope + (1-c.attackCoef)*peak
		} else {
			c.envelope = c.releaseCoef*c.envelope + (1-c.releaseCoef)*peak
		}

		levelDB := 20 * math.Log10(c.envelope+1e-9)
		gain := math.Pow(10, (gainFor(levelDB)-levelDB)/20)

		left[i] = float32(float64(left[i]) * gain)
		right[i] = float32(float64(right[i]) * gain)
	}
}
