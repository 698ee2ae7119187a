package synth

import (
	"math"
	"time"
)

// ---- Signal helpers ------------------------------------------------------

// lcg advances a linear congruential seed and returns a noise sample in [-1,1].
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1 << 30)
}

// adsr returns an envelope value at normalized progress [0,1].
// attack/decay/release are fractions of the total duration.
func adsr(progress, attack, decay, sustain, release float64) float64 {
	switch {
	case progress < attack:
		return progress / attack
	case progress < attack+decay:
		return 1.0 - (progress-attack)/decay*(1.0-sustain)
	case progress < 1.0-release:
		return sustain
	default:
		return sustain * (1.0 - (progress-(1.0-release))/release)
	}
}

// fm returns an FM-synthesized sample.
// carrier: base frequency, modRatio: modulator/carrier ratio, modIdx: depth.
func fm(t, carrier, modRatio, modIdx float64) float64 {
	mod := math.Sin(2 * math.Pi * carrier * modRatio * t)
	return math.Sin(2*math.Pi*carrier*t + modIdx*mod)
}

// softSat applies gentle saturation so stacked partials don't clip hard.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/x
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

func (s *Synthesizer) frames(d time.Duration) int {
	return int(d.Seconds() * float64(s.cfg.SampleRate))
}

func (s *Synthesizer) seed() uint64 {
	return uint64(time.Now().UnixNano())
}

// ---- UI ------------------------------------------------------------------

// genMenuMove: short clean blip.
func (s *Synthesizer) genMenuMove() []float32 {
	n := s.frames(s.cfg.ToneDuration / 4)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		env := adsr(p, 0.05, 0.4, 0.2, 0.3)
		out[i] = float32(math.Sin(2*math.Pi*880*t) * env * 0.45)
	}
	return out
}

// genMenuSelect: ascending two-note confirmation.
func (s *Synthesizer) genMenuSelect() []float32 {
	n := s.frames(s.cfg.ToneDuration)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		freq := 659.25 // E5
		if p >= 0.5 {
			freq = 987.77 // B5
		}
		env := adsr(p, 0.02, 0.3, 0.4, 0.25)
		out[i] = float32(softSat(fm(t, freq, 2.0, 1.2*env) * env * 0.5))
	}
	return out
}

// genToggle: rising blip for on, falling for off.
func (s *Synthesizer) genToggle(on bool) []float32 {
	n := s.frames(s.cfg.ToneDuration / 2)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		var freq float64
		if on {
			freq = 440 + 440*p
		} else {
			freq = 880 - 440*p
		}
		env := adsr(p, 0.03, 0.3, 0.3, 0.3)
		out[i] = float32(math.Sin(2*math.Pi*freq*t) * env * 0.4)
	}
	return out
}

// genErrorBump: low descending buzz, unmistakably negative.
func (s *Synthesizer) genErrorBump() []float32 {
	n := s.frames(s.cfg.ToneDuration)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		freq := 220 - 90*p
		env := math.Exp(-p * 4)
		sq := math.Sin(2*math.Pi*freq*t) + 0.3*math.Sin(2*math.Pi*freq*3*t)
		out[i] = float32(softSat(sq * env * 0.5))
	}
	return out
}

// ---- Actions -------------------------------------------------------------

// genFootstepSoft: filtered noise thud, grass-like.
func (s *Synthesizer) genFootstepSoft() []float32 {
	n := s.frames(s.cfg.NoiseDuration / 3)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		lp = lp*0.85 + lcg(&seed)*0.15
		env := math.Exp(-p * 12)
		out[i] = float32(softSat(lp * env * 0.9))
	}
	return out
}

// genFootstepHard: sharper transient with a stony click.
func (s *Synthesizer) genFootstepHard() []float32 {
	n := s.frames(s.cfg.NoiseDuration / 3)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		lp = lp*0.55 + lcg(&seed)*0.45
		click := math.Sin(2*math.Pi*1800*t) * math.Exp(-p*60) * 0.5
		env := math.Exp(-p * 18)
		out[i] = float32(softSat(lp*env*0.7 + click))
	}
	return out
}

// genFootstepSand: longer, hissier scrape.
func (s *Synthesizer) genFootstepSand() []float32 {
	n := s.frames(s.cfg.NoiseDuration / 2)
	out := make([]float32, n)
	seed := s.seed()
	lp, hp := 0.0, 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		raw := lcg(&seed)
		lp = lp*0.7 + raw*0.3
		hp = raw - lp // crude highpass keeps the hiss
		env := adsr(p, 0.15, 0.2, 0.5, 0.4)
		out[i] = float32(softSat((lp*0.3 + hp*0.45) * env))
	}
	return out
}

// genItemPickup: bright ascending FM arpeggio.
func (s *Synthesizer) genItemPickup() []float32 {
	freqs := []float64{523.25, 659.25, 783.99, 1046.5} // C5 E5 G5 C6
	n := s.frames(s.cfg.ToneDuration * 2)
	out := make([]float32, n)
	noteLen := n / len(freqs)
	for fi, freq := range freqs {
		start := fi * noteLen
		for i := start; i < n; i++ {
			t := float64(i-start) / float64(s.cfg.SampleRate)
			p := float64(i-start) / float64(n-start)
			env := math.Exp(-p * 6)
			out[i] += float32(fm(t, freq, 2.0, 1.5) * env * 0.22)
		}
	}
	for i := range out {
		out[i] = float32(softSat(float64(out[i])))
	}
	return out
}

// genDoorOpen: low creak sweep with wood resonance.
func (s *Synthesizer) genDoorOpen() []float32 {
	n := s.frames(s.cfg.NoiseDuration * 2)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		creak := fm(t, 90+60*p, 0.5, 2.5+3*p) * 0.35
		lp = lp*0.92 + lcg(&seed)*0.08
		env := adsr(p, 0.1, 0.1, 0.8, 0.25)
		out[i] = float32(softSat((creak + lp*0.25) * env))
	}
	return out
}

// genChestOpen: creak into a rewarding chime tail.
func (s *Synthesizer) genChestOpen() []float32 {
	n := s.frames(s.cfg.NoiseDuration * 2)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		env := adsr(p, 0.08, 0.2, 0.6, 0.3)
		lp = lp*0.9 + lcg(&seed)*0.1
		v := lp * 0.3 * env
		if p > 0.45 {
			cp := (p - 0.45) / 0.55
			v += fm(t, 1318.5, 3.0, 1.0) * math.Exp(-cp*5) * 0.35
		}
		out[i] = float32(softSat(v))
	}
	return out
}

// genBumpWall: dull thump, no high content.
func (s *Synthesizer) genBumpWall() []float32 {
	n := s.frames(s.cfg.NoiseDuration / 3)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		env := math.Exp(-p * 14)
		out[i] = float32(softSat(fm(t, 70, 0.5, 1.0) * env * 0.8))
	}
	return out
}

// ---- Nature --------------------------------------------------------------

// genBirdChirp: two rapid upward FM sweeps.
func (s *Synthesizer) genBirdChirp() []float32 {
	n := s.frames(s.cfg.ToneDuration)
	out := make([]float32, n)
	half := n / 2
	for _, start := range []int{0, half} {
		for i := start; i < start+half && i < n; i++ {
			t := float64(i-start) / float64(s.cfg.SampleRate)
			p := float64(i-start) / float64(half)
			freq := 2200 + 1400*p
			env := adsr(p, 0.1, 0.2, 0.4, 0.4)
			out[i] += float32(fm(t, freq, 1.5, 0.8) * env * 0.3)
		}
	}
	return out
}

// genWaterDrop: descending sine ping with a tiny splash.
func (s *Synthesizer) genWaterDrop() []float32 {
	n := s.frames(s.cfg.ToneDuration)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		freq := 1200 * math.Pow(0.35, p)
		ping := math.Sin(2*math.Pi*freq*t) * math.Exp(-p*8) * 0.5
		lp = lp*0.6 + lcg(&seed)*0.4
		splash := lp * math.Exp(-p*25) * 0.15
		out[i] = float32(softSat(ping + splash))
	}
	return out
}

// genWindGust: slow noise swell.
func (s *Synthesizer) genWindGust() []float32 {
	n := s.frames(s.cfg.NoiseDuration * 3)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		lp = lp*0.97 + lcg(&seed)*0.03
		env := math.Sin(p * math.Pi) // swell in, swell out
		out[i] = float32(lp * env * 0.8)
	}
	return out
}

// genLeavesRustle: bursty highpassed noise.
func (s *Synthesizer) genLeavesRustle() []float32 {
	n := s.frames(s.cfg.NoiseDuration)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		raw := lcg(&seed)
		lp = lp*0.5 + raw*0.5
		hp := raw - lp
		flutter := 0.6 + 0.4*math.Sin(p*math.Pi*14)
		env := adsr(p, 0.1, 0.2, 0.6, 0.3)
		out[i] = float32(hp * flutter * env * 0.55)
	}
	return out
}

// genOwlCall: two soft low hoots.
func (s *Synthesizer) genOwlCall() []float32 {
	n := s.frames(s.cfg.ToneDuration * 3)
	out := make([]float32, n)
	hoot := func(start, length int, freq float64) {
		for i := start; i < start+length && i < n; i++ {
			t := float64(i-start) / float64(s.cfg.SampleRate)
			p := float64(i-start) / float64(length)
			env := math.Sin(p * math.Pi)
			out[i] += float32(fm(t, freq, 1.0, 0.3) * env * 0.45)
		}
	}
	hoot(0, n*35/100, 340)
	hoot(n*45/100, n*45/100, 310)
	return out
}

// ---- Magical -------------------------------------------------------------

// genMagicChime: inharmonic bell partials with long decay.
func (s *Synthesizer) genMagicChime() []float32 {
	n := s.frames(s.cfg.ToneDuration * 3)
	out := make([]float32, n)
	partials := []struct{ ratio, amp float64 }{
		{1.0, 0.5}, {2.76, 0.25}, {5.40, 0.12}, {8.93, 0.06},
	}
	base := 880.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		v := 0.0
		for pi, part := range partials {
			decay := math.Exp(-p * (3.0 + float64(pi)*2.0))
			v += math.Sin(2*math.Pi*base*part.ratio*t) * part.amp * decay
		}
		out[i] = float32(softSat(v))
	}
	return out
}

// genSpellCast: rising shimmer sweep over a noise bed.
func (s *Synthesizer) genSpellCast() []float32 {
	n := s.frames(s.cfg.NoiseDuration * 2)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		freq := 300 + 1900*p*p
		sweep := fm(t, freq, 1.41, 2.0) * 0.4
		lp = lp*0.8 + lcg(&seed)*0.2
		env := adsr(p, 0.2, 0.1, 0.7, 0.25)
		out[i] = float32(softSat((sweep + lp*0.2) * env))
	}
	return out
}

// genPortalHum: slow beating drone between two detuned lows.
func (s *Synthesizer) genPortalHum() []float32 {
	n := s.frames(s.cfg.ToneDuration * 4)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(s.cfg.SampleRate)
		p := float64(i) / float64(n)
		v := math.Sin(2*math.Pi*110*t)*0.3 + math.Sin(2*math.Pi*113*t)*0.3
		v += math.Sin(2*math.Pi*220*t) * 0.1
		env := adsr(p, 0.2, 0.1, 0.8, 0.3)
		out[i] = float32(softSat(v * env))
	}
	return out
}

// ---- Ambience loops ------------------------------------------------------

// loopFade crossfades the tail into the head so the buffer loops seamlessly.
func loopFade(out []float32, sampleRate int) {
	fade := sampleRate / 10 // 100ms
	if fade*2 > len(out) {
		fade = len(out) / 4
	}
	for i := 0; i < fade; i++ {
		w := float32(i) / float32(fade)
		out[i] = out[i]*w + out[len(out)-fade+i]*(1-w)
	}
	for i := len(out) - fade; i < len(out); i++ {
		out[i] *= float32(len(out)-i) / float32(fade)
	}
}

// genOceanWaves: slow swelling lowpassed noise with two overlapping waves.
func (s *Synthesizer) genOceanWaves() []float32 {
	n := s.frames(s.cfg.LoopDuration)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		lp = lp*0.96 + lcg(&seed)*0.04
		swell := 0.45 + 0.4*math.Sin(p*2*math.Pi) + 0.2*math.Sin(p*4*math.Pi+1.3)
		if swell < 0.1 {
			swell = 0.1
		}
		out[i] = float32(lp * swell * 0.8)
	}
	loopFade(out, s.cfg.SampleRate)
	return out
}

// genForestAmbience: soft noise floor with sparse chirp accents.
func (s *Synthesizer) genForestAmbience() []float32 {
	n := s.frames(s.cfg.LoopDuration)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		lp = lp*0.93 + lcg(&seed)*0.07
		out[i] = float32(lp * 0.18)
	}
	// A few quiet distant chirps at fixed offsets within the loop.
	for _, at := range []float64{0.22, 0.58, 0.81} {
		start := int(at * float64(n))
		length := s.frames(s.cfg.ToneDuration / 2)
		for i := 0; i < length && start+i < n; i++ {
			t := float64(i) / float64(s.cfg.SampleRate)
			p := float64(i) / float64(length)
			env := math.Sin(p * math.Pi)
			out[start+i] += float32(math.Sin(2*math.Pi*(2600+900*p)*t) * env * 0.08)
		}
	}
	loopFade(out, s.cfg.SampleRate)
	return out
}

// genCaveDrips: near-silent floor with echoing drips.
func (s *Synthesizer) genCaveDrips() []float32 {
	n := s.frames(s.cfg.LoopDuration)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		lp = lp*0.985 + lcg(&seed)*0.015
		out[i] = float32(lp * 0.1)
	}
	for _, at := range []float64{0.1, 0.37, 0.66, 0.9} {
		start := int(at * float64(n))
		length := s.frames(s.cfg.ToneDuration)
		for i := 0; i < length && start+i < n; i++ {
			t := float64(i) / float64(s.cfg.SampleRate)
			p := float64(i) / float64(length)
			freq := 900 * math.Pow(0.4, p)
			out[start+i] += float32(math.Sin(2*math.Pi*freq*t) * math.Exp(-p*6) * 0.2)
		}
	}
	loopFade(out, s.cfg.SampleRate)
	return out
}

// genWindLoop: steady dark wind bed.
func (s *Synthesizer) genWindLoop() []float32 {
	n := s.frames(s.cfg.LoopDuration)
	out := make([]float32, n)
	seed := s.seed()
	lp := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		lp = lp*0.975 + lcg(&seed)*0.025
		mod := 0.6 + 0.3*math.Sin(p*2*math.Pi) + 0.1*math.Sin(p*6*math.Pi+0.7)
		out[i] = float32(lp * mod * 0.5)
	}
	loopFade(out, s.cfg.SampleRate)
	return out
}
