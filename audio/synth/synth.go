// Package synth procedurally generates every sound effect in the game as a
// PCM buffer. There are no audio assets: each named effect is computed from a
// closed-form signal formula at startup and stored in a read-only registry.
package synth

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// Category groups sound ids by the kind of event they describe.
type Category string

const (
	// CategoryNature covers wildlife and weather one-shots.
	CategoryNature Category = "nature"
	// CategoryMagical covers spell and enchantment effects.
	CategoryMagical Category = "magical"
	// CategoryEnvironmental covers looping ambience beds.
	CategoryEnvironmental Category = "environmental"
	// CategoryAction covers player-triggered effects.
	CategoryAction Category = "action"
	// CategoryUI covers menu and settings feedback.
	CategoryUI Category = "ui"
)

// Config holds the synthesis parameters. Durations are per sound family:
// individual generators scale within their family duration.
type Config struct {
	SampleRate    int           // Output sample rate in Hz
	ToneDuration  time.Duration // Base length for tonal one-shots
	NoiseDuration time.Duration // Base length for noise-based one-shots
	LoopDuration  time.Duration // Length of ambience loop beds
}

// DefaultConfig returns the synthesis parameters used by the game.
func DefaultConfig() Config {
	return Config{
		SampleRate:    44100,
		ToneDuration:  300 * time.Millisecond,
		NoiseDuration: 450 * time.Millisecond,
		LoopDuration:  4 * time.Second,
	}
}

// Validate checks the config for startup-time programming errors.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParameter, c.SampleRate)
	}
	if c.ToneDuration <= 0 {
		return fmt.Errorf("%w: tone duration must be positive, got %v", ErrInvalidParameter, c.ToneDuration)
	}
	if c.NoiseDuration <= 0 {
		return fmt.Errorf("%w: noise duration must be positive, got %v", ErrInvalidParameter, c.NoiseDuration)
	}
	if c.LoopDuration <= 0 {
		return fmt.Errorf("%w: loop duration must be positive, got %v", ErrInvalidParameter, c.LoopDuration)
	}
	return nil
}

// Buffer is an immutable mono waveform keyed by sound id. Buffers are built
// once at startup and never mutated; callers must not write to Samples.
type Buffer struct {
	samples    []float32
	sampleRate int
	category   Category
}

// Samples returns the mono waveform in [-1, 1].
func (b *Buffer) Samples() []float32 { return b.samples }

// SampleRate returns the rate the buffer was rendered at.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Category returns the sound family the buffer belongs to.
func (b *Buffer) Category() Category { return b.category }

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(len(b.samples)) / float64(b.sampleRate) * float64(time.Second))
}

// Synthesizer owns the id -> buffer registry. The registry is populated in
// New and read-only afterwards, so lookups need no locking.
type Synthesizer struct {
	cfg     Config
	buffers map[string]*Buffer
}

// New validates cfg and generates every sound buffer. Noise-based generators
// draw random samples, so their exact waveform differs between runs; this
// only affects timbre texture, never structure or duration.
func New(cfg Config) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Synthesizer{
		cfg:     cfg,
		buffers: make(map[string]*Buffer),
	}
	s.generateAll()

	log.Debug("sound registry generated", "sounds", len(s.buffers), "sample_rate", cfg.SampleRate)
	return s, nil
}

// Buffer looks up a sound by id.
func (s *Synthesizer) Buffer(id string) (*Buffer, bool) {
	b, ok := s.buffers[id]
	return b, ok
}

// Has reports whether id is a known sound.
func (s *Synthesizer) Has(id string) bool {
	_, ok := s.buffers[id]
	return ok
}

// IDs returns all registered sound ids in sorted order.
func (s *Synthesizer) IDs() []string {
	ids := make([]string, 0, len(s.buffers))
	for id := range s.buffers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SampleRate returns the rate all buffers were rendered at.
func (s *Synthesizer) SampleRate() int { return s.cfg.SampleRate }

func (s *Synthesizer) put(id string, cat Category, samples []float32) {
	s.buffers[id] = &Buffer{samples: samples, sampleRate: s.cfg.SampleRate, category: cat}
}

// alias registers id as a second name for an existing buffer. Several ids
// deliberately share one waveform; the shared *Buffer is the point.
func (s *Synthesizer) alias(id, target string) {
	b, ok := s.buffers[target]
	if !ok {
		// Programming error in the generator table; loud but not fatal.
		log.Warn("sound alias target missing", "id", id, "target", target)
		return
	}
	s.buffers[id] = b
}

func (s *Synthesizer) generateAll() {
	// UI feedback.
	s.put("menu_move", CategoryUI, s.genMenuMove())
	s.put("menu_select", CategoryUI, s.genMenuSelect())
	s.put("toggle_on", CategoryUI, s.genToggle(true))
	s.put("toggle_off", CategoryUI, s.genToggle(false))
	s.put("error_bump", CategoryUI, s.genErrorBump())
	s.alias("menu_back", "menu_move")

	// Player actions.
	s.put("footstep_grass", CategoryAction, s.genFootstepSoft())
	s.put("footstep_stone", CategoryAction, s.genFootstepHard())
	s.put("footstep_sand", CategoryAction, s.genFootstepSand())
	s.put("item_pickup", CategoryAction, s.genItemPickup())
	s.put("door_open", CategoryAction, s.genDoorOpen())
	s.put("chest_open", CategoryAction, s.genChestOpen())
	s.put("bump_wall", CategoryAction, s.genBumpWall())
	s.alias("footstep_dirt", "footstep_grass")

	// Nature one-shots.
	s.put("bird_chirp", CategoryNature, s.genBirdChirp())
	s.put("water_drop", CategoryNature, s.genWaterDrop())
	s.put("wind_gust", CategoryNature, s.genWindGust())
	s.put("leaves_rustle", CategoryNature, s.genLeavesRustle())
	s.put("owl_call", CategoryNature, s.genOwlCall())

	// Magical effects.
	s.put("magic_chime", CategoryMagical, s.genMagicChime())
	s.put("spell_cast", CategoryMagical, s.genSpellCast())
	s.put("portal_hum", CategoryMagical, s.genPortalHum())
	s.alias("crystal_ring", "magic_chime")

	// Ambience loops.
	s.put("ocean_waves", CategoryEnvironmental, s.genOceanWaves())
	s.put("forest_ambience", CategoryEnvironmental, s.genForestAmbience())
	s.put("cave_drips", CategoryEnvironmental, s.genCaveDrips())
	s.put("wind_loop", CategoryEnvironmental, s.genWindLoop())
	s.alias("meadow_ambience", "forest_ambience")
}
