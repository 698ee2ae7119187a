package audio

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/fernweh-games/whisperwood/audio/playback"
	"github.com/fernweh-games/whisperwood/audio/synth"
)

// PlayOption adjusts a single PlaySound call.
type PlayOption func(*playOpts)

type playOpts struct {
	loop   bool
	volume float64
}

// WithLoop makes the sound repeat until stopped.
func WithLoop() PlayOption {
	return func(o *playOpts) { o.loop = true }
}

// WithVolume scales the sound before spatial and master gains, 0.0 to 1.0.
func WithVolume(v float64) PlayOption {
	return func(o *playOpts) {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		o.volume = v
	}
}

// spatialEngine places one-shot sounds in the stereo field around the
// listener. It owns at most one live source per sound id; restarting an id
// stops the previous instance first, so a spammed footstep key can never
// pile up overlapping copies.
type spatialEngine struct {
	out      playback.Context
	synth    *synth.Synthesizer
	settings *settingsStore
	listener *listener

	mu      sync.Mutex
	sources map[string]*activeSound
}

type activeSound struct {
	src    playback.Source
	pos    worldPos
	volume float64
	loop   bool
}

func newSpatialEngine(out playback.Context, sy *synth.Synthesizer, st *settingsStore, l *listener) *spatialEngine {
	return &spatialEngine{
		out:      out,
		synth:    sy,
		settings: st,
		listener: l,
		sources:  make(map[string]*activeSound),
	}
}

// play starts a sound at a grid position. Disabled spatial audio, a missing
// output device, and an unknown id are all silent no-ops; unknown ids are
// logged for diagnostics but never bubble into gameplay.
func (e *spatialEngine) play(id string, pos GridPos, opts ...PlayOption) {
	o := playOpts{volume: 1}
	for _, opt := range opts {
		opt(&o)
	}

	buf, ok := e.synth.Buffer(id)
	if !ok {
		log.Debug("unknown sound requested", "id", id)
		return
	}

	s := e.settings.get()
	if !s.SpatialAudio {
		return
	}
	if e.out == nil || !e.out.IsReady() {
		return
	}

	world := toWorld(pos)
	gain := positionalGain(e.listener.world(), world).scale(o.volume * s.MasterVolume)

	clip := playback.MonoClip(buf.Samples(), buf.SampleRate())
	src, err := e.out.NewSource(clip, o.loop)
	if err != nil {
		log.Warn("failed to create source", "id", id, "error", err)
		return
	}
	src.SetGain(gain.left, gain.right)

	entry := &activeSound{src: src, pos: world, volume: o.volume, loop: o.loop}

	e.mu.Lock()
	if prev, ok := e.sources[id]; ok {
		prev.src.Stop()
	}
	e.sources[id] = entry
	e.mu.Unlock()

	// Self-release when playback finishes. The identity check keeps a
	// finished old instance from deleting its replacement.
	go func() {
		<-src.Done()
		e.mu.Lock()
		if e.sources[id] == entry {
			delete(e.sources, id)
		}
		e.mu.Unlock()
	}()

	src.Play()
}

// stop halts one sound by id. Stopping an idle id is a no-op.
func (e *spatialEngine) stop(id string) {
	e.mu.Lock()
	entry, ok := e.sources[id]
	if ok {
		delete(e.sources, id)
	}
	e.mu.Unlock()

	if ok {
		entry.src.Stop()
	}
}

// stopAll halts everything this engine started.
func (e *spatialEngine) stopAll() {
	e.mu.Lock()
	entries := make([]*activeSound, 0, len(e.sources))
	for _, entry := range e.sources {
		entries = append(entries, entry)
	}
	e.sources = make(map[string]*activeSound)
	e.mu.Unlock()

	for _, entry := range entries {
		entry.src.Stop()
	}
}

// retune recomputes the gain of every live source against the current
// listener position and settings. Called on listener moves and settings
// updates so running loops track the player instead of playing stale gains.
func (e *spatialEngine) retune() {
	s := e.settings.get()
	lpos := e.listener.world()

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, entry := range e.sources {
		if !s.SpatialAudio {
			entry.src.SetGain(0, 0)
			continue
		}
		g := positionalGain(lpos, entry.pos).scale(entry.volume * s.MasterVolume)
		entry.src.SetGain(g.left, g.right)
	}
}

// active reports how many sources are currently tracked.
func (e *spatialEngine) active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sources)
}
