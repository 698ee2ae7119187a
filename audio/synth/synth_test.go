package synth

import (
	"errors"
	"math"
	"testing"
	"time"
)

// TestNewValidation tests that invalid parameters fail construction.
func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default config is valid", func(*Config) {}, false},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"negative sample rate", func(c *Config) { c.SampleRate = -44100 }, true},
		{"zero tone duration", func(c *Config) { c.ToneDuration = 0 }, true},
		{"negative noise duration", func(c *Config) { c.NoiseDuration = -time.Second }, true},
		{"zero loop duration", func(c *Config) { c.LoopDuration = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("New() error = %v, want ErrInvalidParameter", err)
				}
				return
			}
			if err != nil {
				t.Errorf("New() unexpected error: %v", err)
			}
		})
	}
}

// TestRegistryContents tests that core sound ids are generated.
func TestRegistryContents(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	wantIDs := []string{
		"menu_move", "menu_select", "toggle_on", "toggle_off", "error_bump",
		"footstep_grass", "footstep_stone", "footstep_sand", "item_pickup",
		"door_open", "chest_open", "bump_wall",
		"bird_chirp", "water_drop", "wind_gust", "leaves_rustle", "owl_call",
		"magic_chime", "spell_cast", "portal_hum",
		"ocean_waves", "forest_ambience", "cave_drips", "wind_loop",
	}
	for _, id := range wantIDs {
		if !s.Has(id) {
			t.Errorf("registry missing sound %q", id)
		}
	}

	if _, ok := s.Buffer("no_such_sound"); ok {
		t.Error("registry returned a buffer for an unknown id")
	}
}

// TestAliasesShareBuffers tests that aliased ids reuse the target buffer.
func TestAliasesShareBuffers(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	aliases := map[string]string{
		"menu_back":       "menu_move",
		"footstep_dirt":   "footstep_grass",
		"crystal_ring":    "magic_chime",
		"meadow_ambience": "forest_ambience",
	}
	for alias, target := range aliases {
		a, ok := s.Buffer(alias)
		if !ok {
			t.Errorf("alias %q not registered", alias)
			continue
		}
		b, _ := s.Buffer(target)
		if a != b {
			t.Errorf("alias %q does not share the %q buffer", alias, target)
		}
	}
}

// TestBufferProperties tests sample range, duration, and categories.
func TestBufferProperties(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for _, id := range s.IDs() {
		buf, _ := s.Buffer(id)

		if len(buf.Samples()) == 0 {
			t.Errorf("%s: empty buffer", id)
			continue
		}
		if buf.SampleRate() != cfg.SampleRate {
			t.Errorf("%s: sample rate = %d, want %d", id, buf.SampleRate(), cfg.SampleRate)
		}
		if buf.Category() == "" {
			t.Errorf("%s: missing category", id)
		}
		for i, v := range buf.Samples() {
			if math.IsNaN(float64(v)) || v < -1.0 || v > 1.0 {
				t.Errorf("%s: sample %d out of range: %f", id, i, v)
				break
			}
		}
	}
}

// TestLoopBuffersUseLoopDuration tests that ambience beds span the loop length.
func TestLoopBuffersUseLoopDuration(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for _, id := range []string{"ocean_waves", "forest_ambience", "cave_drips", "wind_loop"} {
		buf, _ := s.Buffer(id)
		if buf.Category() != CategoryEnvironmental {
			t.Errorf("%s: category = %s, want environmental", id, buf.Category())
		}
		got := buf.Duration()
		if got < cfg.LoopDuration-50*time.Millisecond || got > cfg.LoopDuration+50*time.Millisecond {
			t.Errorf("%s: duration = %v, want ~%v", id, got, cfg.LoopDuration)
		}
	}
}

// TestTonalBuffersAreDeterministic tests that pure-tone generators reproduce
// exactly. Noise-based generators are intentionally non-reproducible, so only
// tonal ids are checked.
func TestTonalBuffersAreDeterministic(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	b, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for _, id := range []string{"menu_move", "menu_select", "toggle_on", "portal_hum", "magic_chime", "bump_wall", "owl_call", "bird_chirp"} {
		ba, _ := a.Buffer(id)
		bb, _ := b.Buffer(id)
		if len(ba.Samples()) != len(bb.Samples()) {
			t.Errorf("%s: lengths differ across runs", id)
			continue
		}
		for i := range ba.Samples() {
			if ba.Samples()[i] != bb.Samples()[i] {
				t.Errorf("%s: sample %d differs across runs", id, i)
				break
			}
		}
	}
}
