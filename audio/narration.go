package audio

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fernweh-games/whisperwood/audio/playback"
	"github.com/fernweh-games/whisperwood/audio/speech"
	"github.com/fernweh-games/whisperwood/internal/cache"
)

const (
	// utterancePause separates back-to-back queued utterances so narration
	// reads as sentences, not a run-on stream.
	utterancePause = 150 * time.Millisecond

	// synthesisTimeout bounds one backend render.
	synthesisTimeout = 10 * time.Second

	// queueCapacity bounds pending narration. Past this the oldest intent is
	// stale anyway; new requests drop with a warning rather than block the
	// game loop.
	queueCapacity = 64
)

// Utterance is one narration request.
type Utterance struct {
	Text  string
	Voice VoiceProfile

	// Position spatializes the speech when set: quieter with distance,
	// slightly pitch-shifted by lateral offset.
	Position *GridPos

	// PreDelay holds the utterance back before it starts speaking.
	PreDelay time.Duration

	// Auto marks unprompted narration, which the AutoNarration setting can
	// suppress.
	Auto bool

	// OnDone runs after the utterance finishes, is skipped, or fails.
	OnDone func()
}

// Handle lets callers wait for an utterance to complete. Skipped and failed
// utterances complete immediately; Done never hangs.
type Handle struct {
	done chan struct{}
	once sync.Once
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Done is closed once the utterance has finished or been discarded.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) finish(onDone func()) {
	h.once.Do(func() {
		close(h.done)
		if onDone != nil {
			onDone()
		}
	})
}

// narrator serializes speech: a single worker goroutine renders and plays
// utterances in FIFO order.
type narrator struct {
	backend  speech.Backend
	out      playback.Context
	settings *settingsStore
	cache    *cache.UtteranceCache
	state    stateTracker

	baseCtx    context.Context
	baseCancel context.CancelFunc

	requests chan *pendingUtterance

	mu        sync.Mutex
	current   *liveUtterance
	sequences map[*sequenceRun]struct{}
}

type pendingUtterance struct {
	u      Utterance
	handle *Handle
}

type liveUtterance struct {
	cancel     context.CancelFunc
	src        playback.Source
	baseVolume float64
}

func newNarrator(backend speech.Backend, out playback.Context, st *settingsStore, uc *cache.UtteranceCache) *narrator {
	ctx, cancel := context.WithCancel(context.Background())
	n := &narrator{
		backend:    backend,
		out:        out,
		settings:   st,
		cache:      uc,
		baseCtx:    ctx,
		baseCancel: cancel,
		requests:   make(chan *pendingUtterance, queueCapacity),
	}
	go n.loop()
	return n
}

// speak enqueues an utterance. It never blocks: a disabled narration toggle,
// empty text, or a full queue all resolve the handle immediately.
func (n *narrator) speak(u Utterance) *Handle {
	h := newHandle()

	if u.Text == "" {
		h.finish(u.OnDone)
		return h
	}
	s := n.settings.get()
	if !s.VoiceNarration || (u.Auto && !s.AutoNarration) {
		h.finish(u.OnDone)
		return h
	}

	select {
	case n.requests <- &pendingUtterance{u: u, handle: h}:
	default:
		log.Warn("narration queue full, dropping utterance", "text", u.Text)
		h.finish(u.OnDone)
	}
	return h
}

// stop cancels in-flight sequences and the current utterance, then flushes
// the queue. Handles of discarded utterances complete.
func (n *narrator) stop() {
	n.cancelSequences()
	for {
		select {
		case p := <-n.requests:
			p.handle.finish(p.u.OnDone)
		default:
			n.mu.Lock()
			cur := n.current
			n.mu.Unlock()
			if cur != nil {
				cur.cancel()
			}
			return
		}
	}
}

// speaking reports whether an utterance is active right now.
func (n *narrator) speaking() bool {
	return n.state.get() == narrationSpeaking
}

// retune reapplies volume to the in-flight utterance after a settings change.
func (n *narrator) retune() {
	s := n.settings.get()
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil || n.current.src == nil {
		return
	}
	if !s.VoiceNarration {
		n.current.src.SetGain(0, 0)
		return
	}
	g := n.current.baseVolume * s.MasterVolume
	n.current.src.SetGain(g, g)
}

// shutdown stops the worker and abandons anything in flight.
func (n *narrator) shutdown() {
	n.stop()
	n.baseCancel()
}

func (n *narrator) loop() {
	for {
		select {
		case <-n.baseCtx.Done():
			return
		case p := <-n.requests:
			n.state.set(narrationSpeaking)
			n.process(p)
			n.state.set(narrationIdle)

			if len(n.requests) > 0 {
				select {
				case <-time.After(utterancePause):
				case <-n.baseCtx.Done():
					return
				}
			}
		}
	}
}

// process renders and plays one utterance start to finish.
func (n *narrator) process(p *pendingUtterance) {
	defer p.handle.finish(p.u.OnDone)

	ctx, cancel := context.WithCancel(n.baseCtx)
	defer cancel()

	live := &liveUtterance{cancel: cancel}
	n.mu.Lock()
	n.current = live
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		if n.current == live {
			n.current = nil
		}
		n.mu.Unlock()
	}()

	if p.u.PreDelay > 0 {
		select {
		case <-time.After(p.u.PreDelay):
		case <-ctx.Done():
			return
		}
	}

	// Settings may have flipped while this sat in the queue.
	s := n.settings.get()
	if !s.VoiceNarration || (p.u.Auto && !s.AutoNarration) {
		return
	}

	params, baseVolume := n.renderParams(p.u, s)
	audio, err := n.render(ctx, p.u.Text, params)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("narration synthesis failed", "text", p.u.Text, "error", err)
		}
		return
	}

	if n.out == nil || !n.out.IsReady() {
		return
	}

	audio = audio.Resample(n.out.SampleRate())
	src, err := n.out.NewSource(playback.MonoClip(audio.Samples, audio.SampleRate), false)
	if err != nil {
		log.Warn("narration playback failed", "error", err)
		return
	}

	g := baseVolume * s.MasterVolume
	src.SetGain(g, g)

	n.mu.Lock()
	live.src = src
	live.baseVolume = baseVolume
	n.mu.Unlock()

	src.Play()
	select {
	case <-src.Done():
	case <-ctx.Done():
		src.Stop()
	}
}

// renderParams turns the voice profile and optional position into concrete
// synthesis parameters plus the pre-master playback volume. Positional
// shaping is measured from the grid center, not the listener, and only
// applies while spatial audio is on.
func (n *narrator) renderParams(u Utterance, s Settings) (speech.Params, float64) {
	profile := u.Voice
	if profile.Archetype == "" {
		profile = CharacterVoice(VoiceNarrator)
	}

	pitch := profile.Pitch
	volume := profile.Volume
	if u.Position != nil && s.SpatialAudio {
		spos := toWorld(*u.Position)
		volume *= narrationVolume(distance(worldPos{}, spos))
		pitch *= narrationPitch(spos.X)
		if pitch < speech.PitchMin {
			pitch = speech.PitchMin
		}
		if pitch > speech.PitchMax {
			pitch = speech.PitchMax
		}
	}

	return speech.Params{
		Voice:  resolveVoice(n.backend.Voices(), profile.Archetype),
		Pitch:  pitch,
		Rate:   profile.Rate,
		Volume: 1.0, // Loudness is applied at playback so master volume stays live
	}, volume
}

// render synthesizes text, consulting the utterance cache first.
func (n *narrator) render(ctx context.Context, text string, p speech.Params) (*speech.Audio, error) {
	key := cache.Key(text, p.Voice, p.Pitch, p.Rate)
	if entry, ok := n.cache.Get(key); ok {
		return &speech.Audio{Samples: entry.Samples, SampleRate: entry.SampleRate}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	audio, err := n.backend.Synthesize(ctx, text, p)
	if err != nil {
		return nil, err
	}
	if err := n.cache.Put(key, cache.Entry{Samples: audio.Samples, SampleRate: audio.SampleRate}); err != nil {
		log.Debug("utterance not cached", "error", err)
	}
	return audio, nil
}
