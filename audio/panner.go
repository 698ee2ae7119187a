package audio

import "math"

// Positional gain model. One-shot sounds use inverse-distance attenuation
// with the listener's tile as the reference; beyond maxDistance a sound
// neither fades further nor disappears, it just stays at its floor. An
// audible floor is kept on everything because an accessibility cue that
// attenuates to zero is a cue the player never learns exists.
const (
	refDistance   = 1.0
	maxDistance   = 10.0
	rolloffFactor = 1.0
	gainFloor     = 0.1

	// Lateral offset at which a sound is fully panned to one ear.
	panFullScale = 6.0
)

// Narration uses gentler linear attenuation so distant speech stays
// intelligible, plus a small pitch shift keyed to lateral offset as a
// mono-friendly direction cue.
const (
	narrationGainFloor = 0.1
	pitchPerUnit       = 0.05
)

// stereoGain is a per-channel gain pair.
type stereoGain struct {
	left, right float64
}

func (g stereoGain) scale(f float64) stereoGain {
	return stereoGain{left: g.left * f, right: g.right * f}
}

// distance is the flat euclidean distance between listener and source.
func distance(l, s worldPos) float64 {
	dx := s.X - l.X
	dz := s.Z - l.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// attenuate implements the inverse-distance rolloff curve.
func attenuate(dist float64) float64 {
	if dist <= refDistance {
		return 1
	}
	if dist > maxDistance {
		dist = maxDistance
	}
	g := refDistance / (refDistance + rolloffFactor*(dist-refDistance))
	return math.Max(g, gainFloor)
}

// pan maps a lateral offset to an equal-power stereo gain pair. Offset zero
// is center (both channels at ~0.707 so perceived loudness holds steady as
// a source sweeps across the field).
func pan(lateral float64) stereoGain {
	p := lateral / panFullScale
	if p < -1 {
		p = -1
	}
	if p > 1 {
		p = 1
	}
	angle := (p + 1) * math.Pi / 4
	return stereoGain{left: math.Cos(angle), right: math.Sin(angle)}
}

// positionalGain combines attenuation and panning for a source at s heard
// from l.
func positionalGain(l, s worldPos) stereoGain {
	return pan(s.X - l.X).scale(attenuate(distance(l, s)))
}

// narrationVolume is the linear speech attenuation curve.
func narrationVolume(dist float64) float64 {
	g := 1 - dist/maxDistance
	return math.Max(g, narrationGainFloor)
}

// narrationPitch maps lateral offset to a pitch multiplier, clamped to the
// range speech backends accept. Sources to the right speak slightly higher.
func narrationPitch(lateral float64) float64 {
	p := 1 + lateral*pitchPerUnit
	return math.Min(2.0, math.Max(0.5, p))
}
