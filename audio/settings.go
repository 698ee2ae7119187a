package audio

import "sync"

// Settings are the player-facing audio preferences. Toggles gate whole
// feature families; flipping one off silences future requests in that family
// without erroring, so game code never branches on audio preferences.
type Settings struct {
	// MasterVolume scales everything, 0.0 to 1.0.
	MasterVolume float64

	// SpatialAudio gates positional one-shot sounds.
	SpatialAudio bool

	// EnvironmentalSounds gates ambience loops and reverb processing.
	EnvironmentalSounds bool

	// VoiceNarration gates all spoken output.
	VoiceNarration bool

	// AutoNarration gates unprompted descriptions (room entry, item
	// proximity). Explicitly requested narration ignores this.
	AutoNarration bool
}

// DefaultSettings is everything on at 70% volume.
func DefaultSettings() Settings {
	return Settings{
		MasterVolume:        0.7,
		SpatialAudio:        true,
		EnvironmentalSounds: true,
		VoiceNarration:      true,
		AutoNarration:       true,
	}
}

// clamped returns a copy with MasterVolume forced into [0, 1].
func (s Settings) clamped() Settings {
	if s.MasterVolume < 0 {
		s.MasterVolume = 0
	}
	if s.MasterVolume > 1 {
		s.MasterVolume = 1
	}
	return s
}

// settingsStore is the single source of truth for current settings. Readers
// take a snapshot per operation so a concurrent update never tears a struct.
type settingsStore struct {
	mu sync.RWMutex
	s  Settings
}

func newSettingsStore(s Settings) *settingsStore {
	return &settingsStore{s: s.clamped()}
}

func (st *settingsStore) get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

func (st *settingsStore) set(s Settings) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = s.clamped()
}
