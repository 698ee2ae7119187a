package speech

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockBackend is an in-memory backend for tests. It records every request
// and returns silence sized from an estimated speaking duration, with
// optional error injection.
type MockBackend struct {
	mu        sync.Mutex
	requests  []MockRequest
	failWith  error
	failCount int
	available bool
	shutdown  bool
	voices    []Voice
	delay     time.Duration
}

// MockRequest is one recorded Synthesize call.
type MockRequest struct {
	Text   string
	Params Params
}

// NewMockBackend returns an available mock with a single all-category voice.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		available: true,
		voices: []Voice{{
			ID:         "mock",
			Name:       "Mock",
			Gender:     "neutral",
			Categories: []string{"narrator", "guide", "character", "mystical", "nature"},
		}},
	}
}

// SetVoices overrides the advertised voice list.
func (m *MockBackend) SetVoices(voices []Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = voices
}

// FailNext makes the next n Synthesize calls return err.
func (m *MockBackend) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCount = n
	m.failWith = err
}

// SetAvailable controls IsAvailable.
func (m *MockBackend) SetAvailable(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = ok
}

// SetDelay adds synthetic latency to Synthesize, honoring ctx cancellation.
func (m *MockBackend) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Requests returns a copy of all recorded calls.
func (m *MockBackend) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Synthesize records the call and returns silence whose length matches an
// estimate of roughly 150 words per minute, scaled by the rate param.
func (m *MockBackend) Synthesize(ctx context.Context, text string, p Params) (*Audio, error) {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil, fmt.Errorf("backend is shut down")
	}
	m.requests = append(m.requests, MockRequest{Text: text, Params: p})
	delay := m.delay
	if m.failCount > 0 {
		m.failCount--
		err := m.failWith
		m.mu.Unlock()
		return nil, err
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	const rate = 22050
	frames := estimateFrames(text, p.Rate, rate)
	return &Audio{Samples: make([]float32, frames), SampleRate: rate}, nil
}

func estimateFrames(text string, rateMul float64, sampleRate int) int {
	words := 1
	for _, r := range text {
		if r == ' ' {
			words++
		}
	}
	if rateMul <= 0 {
		rateMul = 1
	}
	seconds := float64(words) / (150.0 / 60.0) / rateMul
	frames := int(seconds * float64(sampleRate))
	if frames < sampleRate/100 {
		frames = sampleRate / 100
	}
	return frames
}

// Voices returns the configured voice list.
func (m *MockBackend) Voices() []Voice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voices
}

// IsAvailable reports the configured availability.
func (m *MockBackend) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available && !m.shutdown
}

// Shutdown marks the backend unusable.
func (m *MockBackend) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = true
	return nil
}
