package fx

import (
	"math"
	"testing"
)

// TestEnvironmentForLevel tests the per-level profile lookup.
func TestEnvironmentForLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  Environment
	}{
		{
			name:  "ocean shore",
			level: "Ocean Shore",
			want:  Environment{ReverbLevel: 0.5, Dampening: 0.3, RoomSize: RoomLarge, Material: MaterialHard},
		},
		{
			name:  "crystal caverns",
			level: "Crystal Caverns",
			want:  Environment{ReverbLevel: 0.7, Dampening: 0.2, RoomSize: RoomLarge, Material: MaterialHard},
		},
		{
			name:  "unknown level gets default",
			level: "Unknown Place",
			want:  DefaultEnvironment,
		},
		{
			name:  "empty name gets default",
			level: "",
			want:  DefaultEnvironment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnvironmentForLevel(tt.level)
			if got != tt.want {
				t.Errorf("EnvironmentForLevel(%q) = %+v, want %+v", tt.level, got, tt.want)
			}
		})
	}
}

// TestProcessDryOnly tests that zero reverb still produces signal.
func TestProcessDryOnly(t *testing.T) {
	p := NewProcessor(44100)

	in := make([]float32, 4410)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 44100 * 0.5))
	}

	env := Environment{ReverbLevel: 0, Dampening: 0.5, RoomSize: RoomMedium, Material: MaterialMixed}
	left, right := p.Process(in, env)

	if len(left) != len(in) || len(right) != len(in) {
		t.Fatalf("output length = %d/%d, want %d", len(left), len(right), len(in))
	}

	var energy float64
	for _, v := range left {
		energy += float64(v) * float64(v)
	}
	if energy == 0 {
		t.Error("dry-only processing produced silence")
	}
}

// TestProcessWetAddsTail tests that reverb spreads energy later in time.
func TestProcessWetAddsTail(t *testing.T) {
	p := NewProcessor(44100)
	if !p.HasReverb() {
		t.Fatal("reverb kernel should be available")
	}

	// An impulse followed by silence: any late energy comes from the kernel.
	in := make([]float32, 44100)
	in[0] = 1.0

	left, _ := p.Process(in, EnvironmentForLevel("Crystal Caverns"))

	var tail float64
	for _, v := range left[22050:] {
		tail += math.Abs(float64(v))
	}
	if tail == 0 {
		t.Error("reverb produced no tail energy after the impulse")
	}
}

// TestProcessOutputBounded tests that the compressor keeps output sane.
func TestProcessOutputBounded(t *testing.T) {
	p := NewProcessor(44100)

	in := make([]float32, 8820)
	for i := range in {
		in[i] = 0.95
	}

	left, right := p.Process(in, EnvironmentForLevel("Ocean Shore"))
	for i := range left {
		if math.IsNaN(float64(left[i])) || math.IsNaN(float64(right[i])) {
			t.Fatalf("NaN in output at %d", i)
		}
		if math.Abs(float64(left[i])) > 4 || math.Abs(float64(right[i])) > 4 {
			t.Fatalf("unbounded output at %d: %f/%f", i, left[i], right[i])
		}
	}
}

// TestCompressorCurve tests the static gain curve regions.
func TestCompressorCurve(t *testing.T) {
	tests := []struct {
		name    string
		levelDB float64
		check   func(outDB float64) bool
	}{
		{
			name:    "well below threshold is untouched",
			levelDB: -60,
			check:   func(out float64) bool { return out == -60 },
		},
		{
			name:    "above knee is compressed at ratio",
			levelDB: 0,
			check: func(out float64) bool {
				want := compThresholdDB + (0-compThresholdDB)/compRatio
				return math.Abs(out-want) < 1e-9
			},
		},
		{
			name:    "inside knee reduces gain mildly",
			levelDB: -24,
			check:   func(out float64) bool { return out < -24 && out > -34 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := gainFor(tt.levelDB); !tt.check(out) {
				t.Errorf("gainFor(%v) = %v", tt.levelDB, out)
			}
		})
	}
}

// TestConvolveIdentity tests that a unit impulse kernel passes signal through.
func TestConvolveIdentity(t *testing.T) {
	signal := []float32{1, 0.5, -0.25, 0.125}
	kernel := []float32{1}

	out := convolve(signal, kernel)
	if len(out) != len(signal) {
		t.Fatalf("length = %d, want %d", len(out), len(signal))
	}
	for i := range signal {
		if math.Abs(float64(out[i]-signal[i])) > 1e-6 {
			t.Errorf("out[%d] = %f, want %f", i, out[i], signal[i])
		}
	}
}

// TestConvolveDelay tests that a delayed impulse kernel shifts the signal.
func TestConvolveDelay(t *testing.T) {
	signal := []float32{1, 0, 0, 0, 0, 0}
	kernel := []float32{0, 0, 1} // 2-sample delay

	out := convolve(signal, kernel)
	if math.Abs(float64(out[2]-1)) > 1e-6 {
		t.Errorf("out[2] = %f, want 1", out[2])
	}
	if math.Abs(float64(out[0])) > 1e-6 {
		t.Errorf("out[0] = %f, want 0", out[0])
	}
}
