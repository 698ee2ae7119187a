// Package audio is the game's sound stack: procedurally synthesized effects
// placed in a stereo field around the listener, an environmental ambience
// bed shaped by per-level acoustics, and serialized voice narration. The
// engine degrades instead of failing: without an output device or a speech
// backend the game stays playable, just quieter.
package audio

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/fernweh-games/whisperwood/audio/fx"
	"github.com/fernweh-games/whisperwood/audio/playback"
	"github.com/fernweh-games/whisperwood/audio/speech"
	"github.com/fernweh-games/whisperwood/audio/synth"
	"github.com/fernweh-games/whisperwood/internal/cache"
)

// ambienceVolume is the pre-master gain of ambience beds, kept under
// effects and narration so loops read as background.
const ambienceVolume = 0.6

// Config configures a new Engine. The zero value is usable.
type Config struct {
	// SampleRate for synthesis and output. Defaults to 44100.
	SampleRate int

	// Settings are the initial player preferences. Zero means defaults.
	Settings *Settings

	// Context selects the output device. ContextAuto tries real hardware
	// and silently degrades to a mock when none exists.
	Context playback.ContextType

	// Backend overrides the speech backend. Nil builds the standard chain:
	// espeak-ng with the chime voice as fallback.
	Backend speech.Backend

	// CacheBytes bounds the utterance cache. Zero means the default.
	CacheBytes int64
}

// Engine is the top-level audio service. All methods are safe for
// concurrent use.
type Engine struct {
	synth    *synth.Synthesizer
	out      playback.Context
	fx       *fx.Processor
	settings *settingsStore
	listener *listener
	spatial  *spatialEngine
	narrator *narrator
	backend  speech.Backend
	cache    *cache.UtteranceCache

	mu            sync.Mutex
	ambience      playback.Source
	ambienceID    string
	ambienceLevel string
	closed        bool
}

// New builds and starts an engine.
func New(cfg Config) (*Engine, error) {
	synthCfg := synth.DefaultConfig()
	if cfg.SampleRate > 0 {
		synthCfg.SampleRate = cfg.SampleRate
	}
	sy, err := synth.New(synthCfg)
	if err != nil {
		return nil, fmt.Errorf("building synthesizer: %w", err)
	}

	out, err := playback.NewContext(cfg.Context, synthCfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("opening audio output: %w", err)
	}

	backend := cfg.Backend
	if backend == nil {
		backend = defaultBackend()
	}

	settings := DefaultSettings()
	if cfg.Settings != nil {
		settings = *cfg.Settings
	}

	st := newSettingsStore(settings)
	l := newListener()
	uc := cache.New(cfg.CacheBytes)

	e := &Engine{
		synth:    sy,
		out:      out,
		fx:       fx.NewProcessor(synthCfg.SampleRate),
		settings: st,
		listener: l,
		spatial:  newSpatialEngine(out, sy, st, l),
		narrator: newNarrator(backend, out, st, uc),
		backend:  backend,
		cache:    uc,
	}

	log.Info("audio engine ready",
		"sampleRate", synthCfg.SampleRate,
		"device", out.IsReady(),
		"sounds", len(sy.IDs()),
		"speech", backend.IsAvailable())
	return e, nil
}

func defaultBackend() speech.Backend {
	chime := speech.NewChimeBackend()
	espeak, err := speech.NewEspeakBackend()
	if err != nil {
		log.Warn("espeak-ng unavailable, narration uses chime voice", "error", err)
		return chime
	}
	return speech.NewFallbackBackend(espeak, chime, 3)
}

// UpdateListenerPosition moves the player's ears. Running positional
// sources retune immediately.
func (e *Engine) UpdateListenerPosition(p GridPos) {
	e.listener.set(p)
	e.spatial.retune()
}

// PlaySound starts a one-shot (or looped) sound at a grid position. One
// source per id: restarting an id replaces the running instance. Unknown
// ids and disabled spatial audio are silent no-ops.
func (e *Engine) PlaySound(id string, pos GridPos, opts ...PlayOption) {
	e.spatial.play(id, pos, opts...)
}

// StopSound halts one sound by id; unknown or idle ids are no-ops.
func (e *Engine) StopSound(id string) {
	e.spatial.stop(id)
}

// StopAllSounds halts every positional sound. Ambience and narration are
// unaffected.
func (e *Engine) StopAllSounds() {
	e.spatial.stopAll()
}

// Speak enqueues narration. See Utterance for knobs.
func (e *Engine) Speak(u Utterance) *Handle {
	return e.narrator.speak(u)
}

// SpeakText narrates plain text in the narrator voice.
func (e *Engine) SpeakText(text string) *Handle {
	return e.narrator.speak(Utterance{Text: text})
}

// SpeakAs narrates text in a named archetype's voice.
func (e *Engine) SpeakAs(archetype, text string) *Handle {
	return e.narrator.speak(Utterance{Text: text, Voice: CharacterVoice(archetype)})
}

// QueueSequence schedules timed narration against a single clock.
func (e *Engine) QueueSequence(items []SequenceItem) *Handle {
	return e.narrator.queueSequence(items)
}

// StopNarration cancels current and pending narration.
func (e *Engine) StopNarration() {
	e.narrator.stop()
}

// IsNarrating reports whether an utterance is playing.
func (e *Engine) IsNarrating() bool {
	return e.narrator.speaking()
}

// Settings returns the current preferences snapshot.
func (e *Engine) Settings() Settings {
	return e.settings.get()
}

// UpdateSettings applies new preferences and propagates them to everything
// already playing.
func (e *Engine) UpdateSettings(s Settings) {
	e.settings.set(s)
	e.spatial.retune()
	e.narrator.retune()
	e.retuneAmbience()
}

// EnterLevel switches the acoustic environment and ambience bed for a
// level. The previous bed stops; passing an empty ambience id just stops.
// An unknown ambience id is logged and the level plays without a bed.
func (e *Engine) EnterLevel(level, ambienceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopAmbienceLocked()
	e.ambienceLevel = level
	e.ambienceID = ambienceID
	if ambienceID == "" {
		return
	}
	e.startAmbienceLocked()
}

// Environment returns the acoustics of the current level.
func (e *Engine) Environment() fx.Environment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fx.EnvironmentForLevel(e.ambienceLevel)
}

func (e *Engine) startAmbienceLocked() {
	s := e.settings.get()
	if !s.EnvironmentalSounds {
		return
	}
	if e.out == nil || !e.out.IsReady() {
		return
	}

	buf, ok := e.synth.Buffer(e.ambienceID)
	if !ok {
		log.Debug("unknown ambience requested", "id", e.ambienceID)
		return
	}

	env := fx.EnvironmentForLevel(e.ambienceLevel)
	left, right := e.fx.Process(buf.Samples(), env)
	src, err := e.out.NewSource(playback.Clip{
		Left:       left,
		Right:      right,
		SampleRate: buf.SampleRate(),
	}, true)
	if err != nil {
		log.Warn("failed to start ambience", "id", e.ambienceID, "error", err)
		return
	}

	g := ambienceVolume * s.MasterVolume
	src.SetGain(g, g)
	src.Play()
	e.ambience = src

	log.Debug("ambience started", "level", e.ambienceLevel, "id", e.ambienceID, "reverb", env.ReverbLevel)
}

func (e *Engine) stopAmbienceLocked() {
	if e.ambience != nil {
		e.ambience.Stop()
		e.ambience = nil
	}
}

// retuneAmbience reconciles the ambience bed with current settings: gain
// tracks master volume, and the environmental toggle starts or stops the
// bed outright.
func (e *Engine) retuneAmbience() {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.settings.get()
	switch {
	case !s.EnvironmentalSounds:
		e.stopAmbienceLocked()
	case e.ambience == nil && e.ambienceID != "":
		e.startAmbienceLocked()
	case e.ambience != nil:
		g := ambienceVolume * s.MasterVolume
		e.ambience.SetGain(g, g)
	}
}

// Stats is a debug snapshot for the UI's status line.
type Stats struct {
	ActiveSources int
	Narrating     bool
	DeviceReady   bool
	Cache         cache.Stats
}

// DebugStats reports engine internals.
func (e *Engine) DebugStats() Stats {
	return Stats{
		ActiveSources: e.spatial.active(),
		Narrating:     e.narrator.speaking(),
		DeviceReady:   e.out != nil && e.out.IsReady(),
		Cache:         e.cache.Stats(),
	}
}

// Sounds lists every available sound id.
func (e *Engine) Sounds() []string {
	return e.synth.IDs()
}

// Close tears the engine down: narration, sources, ambience, speech
// backend, output device, in that order. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.stopAmbienceLocked()
	e.mu.Unlock()

	e.narrator.shutdown()
	e.spatial.stopAll()

	var first error
	if err := e.backend.Shutdown(); err != nil {
		first = err
	}
	if e.out != nil {
		if err := e.out.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
