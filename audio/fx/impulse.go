package fx

import (
	"fmt"
	"math"
	"time"
)

// impulseLength is the fixed reverb tail length. One kernel is built at
// construction and shared by every level for the whole session.
const impulseLength = 2 * time.Second

// impulseResponse is the shared stereo reverb kernel: filtered random noise
// shaped by a (1 - t/length)^2 decay envelope.
type impulseResponse struct {
	left  []float32
	right []float32
}

func newImpulseResponse(sampleRate int) (*impulseResponse, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("impulse response needs a positive sample rate, got %d", sampleRate)
	}

	n := int(impulseLength.Seconds() * float64(sampleRate))
	ir := &impulseResponse{
		left:  make([]float32, n),
		right: make([]float32, n),
	}

	seed := uint64(0x9e3779b97f4a7c15) // fixed seed keeps the kernel stable within a session
	lpL, lpR := 0.0, 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		decay := (1 - t) * (1 - t)
		lpL = lpL*0.7 + irNoise(&seed)*0.3
		lpR = lpR*0.7 + irNoise(&seed)*0.3
		ir.left[i] = float32(lpL * decay)
		ir.right[i] = float32(lpR * decay)
	}

	// Normalize so convolution keeps roughly unity energy.
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(float64(ir.left[i]))
	}
	if sum > 0 {
		scale := float32(1.0 / sum * 8.0)
		for i := 0; i < n; i++ {
			ir.left[i] *= scale
			ir.right[i] *= scale
		}
	}

	return ir, nil
}

func irNoise(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1 << 30)
}
