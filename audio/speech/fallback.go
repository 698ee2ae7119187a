package speech

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// FallbackBackend wraps a primary backend with automatic failover to a
// secondary one after repeated synthesis failures. Once switched it stays on
// the fallback; per-utterance flapping between backends sounds worse than a
// consistent substitute voice.
type FallbackBackend struct {
	primary     Backend
	fallback    Backend
	maxFailures int

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

// NewFallbackBackend chains primary and fallback. If the primary is already
// unavailable at construction time the chain starts on the fallback.
func NewFallbackBackend(primary, fallback Backend, maxFailures int) *FallbackBackend {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	f := &FallbackBackend{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
	}
	if primary == nil || !primary.IsAvailable() {
		f.usingFallback = true
		log.Warn("primary speech backend unavailable, starting on fallback")
	}
	return f
}

// Synthesize uses the active backend, counting primary failures and
// switching permanently once the threshold is hit.
func (f *FallbackBackend) Synthesize(ctx context.Context, text string, p Params) (*Audio, error) {
	f.mu.Lock()
	usingFallback := f.usingFallback
	f.mu.Unlock()

	if usingFallback {
		return f.synthesizeFallback(ctx, text, p)
	}

	audio, err := f.primary.Synthesize(ctx, text, p)
	if err == nil {
		f.mu.Lock()
		if f.failures > 0 {
			log.Info("primary speech backend recovered", "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return audio, nil
	}

	f.mu.Lock()
	f.failures++
	n := f.failures
	if n >= f.maxFailures {
		f.usingFallback = true
	}
	switched := f.usingFallback
	f.mu.Unlock()

	log.Warn("primary speech backend failed", "attempt", n, "max", f.maxFailures, "error", err)
	if switched {
		log.Warn("switching to fallback speech backend", "failures", n)
	}
	// Below the threshold the fallback still covers this one utterance.
	return f.synthesizeFallback(ctx, text, p)
}

func (f *FallbackBackend) synthesizeFallback(ctx context.Context, text string, p Params) (*Audio, error) {
	// The fallback voice id is unlikely to match the primary's; let the
	// fallback pick its own default.
	fp := p
	fp.Voice = f.fallbackVoiceID()
	audio, err := f.fallback.Synthesize(ctx, text, fp)
	if err != nil {
		return nil, fmt.Errorf("fallback speech backend failed: %w", err)
	}
	return audio, nil
}

func (f *FallbackBackend) fallbackVoiceID() string {
	voices := f.fallback.Voices()
	if len(voices) == 0 {
		return ""
	}
	return voices[0].ID
}

// Voices returns the active backend's voices.
func (f *FallbackBackend) Voices() []Voice {
	f.mu.Lock()
	usingFallback := f.usingFallback
	f.mu.Unlock()
	if usingFallback {
		return f.fallback.Voices()
	}
	return f.primary.Voices()
}

// UsingFallback reports whether the chain has switched off the primary.
func (f *FallbackBackend) UsingFallback() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usingFallback
}

// IsAvailable reports whether either backend can synthesize.
func (f *FallbackBackend) IsAvailable() bool {
	if f.primary != nil && f.primary.IsAvailable() {
		return true
	}
	return f.fallback.IsAvailable()
}

// Shutdown shuts down both backends, returning the first error.
func (f *FallbackBackend) Shutdown() error {
	var first error
	if f.primary != nil {
		if err := f.primary.Shutdown(); err != nil {
			first = err
		}
	}
	if err := f.fallback.Shutdown(); err != nil && first == nil {
		first = err
	}
	return first
}
