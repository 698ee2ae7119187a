package audio

import "sync"

// narrationState tracks whether the narrator is mid-utterance. Exactly one
// utterance plays at a time; everything else waits in the queue.
type narrationState int

const (
	narrationIdle narrationState = iota
	narrationSpeaking
)

func (s narrationState) String() string {
	switch s {
	case narrationIdle:
		return "idle"
	case narrationSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

type stateTracker struct {
	mu    sync.RWMutex
	state narrationState
}

func (t *stateTracker) set(s narrationState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

func (t *stateTracker) get() narrationState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}
