package cache

import (
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/zstd"
)

// compressThreshold is the smallest clip worth running through zstd. Short
// prompts stay raw; the win is on long narration with leading and trailing
// silence.
const compressThreshold = 64 << 10

// packSamples serializes samples as little-endian float32 and compresses
// them. It returns nil when compression would not shrink the clip.
func packSamples(enc *zstd.Encoder, samples []float32) []byte {
	raw := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}
	packed := enc.EncodeAll(raw, nil)
	if len(packed) >= len(raw) {
		return nil
	}
	return packed
}

func unpackSamples(dec *zstd.Decoder, packed []byte, frames int) ([]float32, error) {
	raw, err := dec.DecodeAll(packed, make([]byte, 0, frames*4))
	if err != nil {
		return nil, err
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples, nil
}
