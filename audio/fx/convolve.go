package fx

import "math"

// convolve computes the circular-safe convolution of signal with kernel via
// a single FFT pass, truncated to the signal length so looping buffers keep
// their loop point. Run once per level entry, so the big transform is fine.
func convolve(signal, kernel []float32) []float32 {
	if len(signal) == 0 || len(kernel) == 0 {
		return signal
	}

	size := 1
	for size < len(signal)+len(kernel)-1 {
		size <<= 1
	}

	a := make([]complex128, size)
	b := make([]complex128, size)
	for i, v := range signal {
		a[i] = complex(float64(v), 0)
	}
	for i, v := range kernel {
		b[i] = complex(float64(v), 0)
	}

	fft(a, false)
	fft(b, false)
	for i := range a {
		a[i] *= b[i]
	}
	fft(a, true)

	out := make([]float32, len(signal))
	for i := range out {
		out[i] = float32(real(a[i]))
	}
	return out
}

// fft is an in-place iterative radix-2 transform. len(x) must be a power of
// two. inverse applies conjugation and 1/N scaling.
func fft(x []complex128, inverse bool) {
	n := len(x)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := 2 * math.Pi / float64(length)
		if !inverse {
			angle = -angle
		}
		wl := complex(math.Cos(angle), math.Sin(angle))
		for i := 0; i < n; i += length {
			w := complex(1, 0)
			for j := 0; j < length/2; j++ {
				u := x[i+j]
				v := x[i+j+length/2] * w
				x[i+j] = u + v
				x[i+j+length/2] = u - v
				w *= wl
			}
		}
	}

	if inverse {
		for i := range x {
			x[i] /= complex(float64(n), 0)
		}
	}
}
