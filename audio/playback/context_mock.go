package playback

import (
	"fmt"
	"sync"
	"time"
)

// MockContext implements Context without touching audio hardware. Playback
// timing is simulated, which makes it usable both in tests (with a speed
// multiplier) and as the silent fallback when no device exists.
type MockContext struct {
	sampleRate int

	mu      sync.Mutex
	ready   bool
	sources map[*MockSource]struct{}

	// Test controls.
	speedMultiplier float64
	newSourceErr    error
}

// NewMockContext creates a simulated audio context.
func NewMockContext(sampleRate int) *MockContext {
	return &MockContext{
		sampleRate:      sampleRate,
		ready:           true,
		sources:         make(map[*MockSource]struct{}),
		speedMultiplier: 1.0,
	}
}

// SetSpeedMultiplier scales simulated playback time. Tests use large values
// so clip-length waits finish quickly.
func (c *MockContext) SetSpeedMultiplier(m float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m > 0 {
		c.speedMultiplier = m
	}
}

// FailNextSource makes the next NewSource call return err.
func (c *MockContext) FailNextSource(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.newSourceErr = err
}

// ActiveSources returns the number of sources that have not completed.
func (c *MockContext) ActiveSources() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sources)
}

// NewSource creates a simulated source for the clip.
func (c *MockContext) NewSource(clip Clip, loop bool) (Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil, fmt.Errorf("audio context is closed")
	}
	if err := c.newSourceErr; err != nil {
		c.newSourceErr = nil
		return nil, err
	}
	if clip.Frames() == 0 {
		return nil, fmt.Errorf("empty clip")
	}

	src := &MockSource{
		clip:  clip,
		loop:  loop,
		speed: c.speedMultiplier,
		gainL: 1,
		gainR: 1,
		done:  make(chan struct{}),
		ctx:   c,
	}
	c.sources[src] = struct{}{}
	return src, nil
}

func (c *MockContext) SampleRate() int { return c.sampleRate }

func (c *MockContext) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *MockContext) Close() error {
	c.mu.Lock()
	c.ready = false
	live := make([]*MockSource, 0, len(c.sources))
	for s := range c.sources {
		live = append(live, s)
	}
	c.sources = make(map[*MockSource]struct{})
	c.mu.Unlock()

	for _, s := range live {
		s.Stop()
	}
	return nil
}

func (c *MockContext) release(s *MockSource) {
	c.mu.Lock()
	delete(c.sources, s)
	c.mu.Unlock()
}

// MockSource simulates one playback instance. Non-looping sources complete
// after the clip duration (divided by the speed multiplier); looping sources
// run until stopped.
type MockSource struct {
	clip  Clip
	loop  bool
	speed float64
	ctx   *MockContext

	mu      sync.Mutex
	playing bool
	stopped bool
	gainL   float64
	gainR   float64
	timer   *time.Timer

	done chan struct{}
}

func (s *MockSource) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing || s.stopped {
		return
	}
	s.playing = true

	if !s.loop {
		d := time.Duration(float64(s.clip.Duration()) / s.speed)
		s.timer = time.AfterFunc(d, s.Stop)
	}
}

func (s *MockSource) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.playing = false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	close(s.done)
	s.ctx.release(s)
}

func (s *MockSource) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *MockSource) SetGain(left, right float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gainL = left
	s.gainR = right
}

// Gain returns the last gains set, for test assertions.
func (s *MockSource) Gain() (left, right float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gainL, s.gainR
}

func (s *MockSource) Done() <-chan struct{} { return s.done }
