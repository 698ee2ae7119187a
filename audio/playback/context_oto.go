//go:build !nocgo
// +build !nocgo

package playback

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

const readyTimeout = 5 * time.Second

// otoContext implements Context on a real audio device.
type otoContext struct {
	ctx        *oto.Context
	sampleRate int
	mu         sync.Mutex
	ready      bool
	sources    map[*otoSource]struct{}
}

func newProductionContext(sampleRate int) (Context, error) {
	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-readyChan:
	case <-time.After(readyTimeout):
		return nil, fmt.Errorf("audio context initialization timeout after %v", readyTimeout)
	}

	log.Debug("audio context initialized", "sample_rate", sampleRate, "channels", 2)
	return &otoContext{
		ctx:        ctx,
		sampleRate: sampleRate,
		ready:      true,
		sources:    make(map[*otoSource]struct{}),
	}, nil
}

func (c *otoContext) NewSource(clip Clip, loop bool) (Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil, fmt.Errorf("audio context is closed")
	}
	if clip.Frames() == 0 {
		return nil, fmt.Errorf("empty clip")
	}

	src := &otoSource{
		clip: clip,
		loop: loop,
		done: make(chan struct{}),
		ctx:  c,
	}
	src.gainL.Store(math.Float64bits(1))
	src.gainR.Store(math.Float64bits(1))
	src.player = c.ctx.NewPlayer(src)
	c.sources[src] = struct{}{}
	return src, nil
}

func (c *otoContext) SampleRate() int { return c.sampleRate }

func (c *otoContext) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Close stops every live source. oto v3 contexts have no Close of their own;
// the device handle is dropped and collected.
func (c *otoContext) Close() error {
	c.mu.Lock()
	c.ready = false
	live := make([]*otoSource, 0, len(c.sources))
	for s := range c.sources {
		live = append(live, s)
	}
	c.sources = make(map[*otoSource]struct{})
	c.ctx = nil
	c.mu.Unlock()

	for _, s := range live {
		s.Stop()
	}
	return nil
}

func (c *otoContext) release(s *otoSource) {
	c.mu.Lock()
	delete(c.sources, s)
	c.mu.Unlock()
}

// otoSource streams clip frames into an oto player, applying the current
// per-channel gains on every read so volume changes land mid-playback.
type otoSource struct {
	clip   Clip
	loop   bool
	player *oto.Player
	ctx    *otoContext

	pos   int // frame cursor, only touched on oto's reader goroutine
	gainL atomic.Uint64
	gainR atomic.Uint64

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// Read renders interleaved float32 LE stereo frames.
func (s *otoSource) Read(p []byte) (int, error) {
	gl := float32(math.Float64frombits(s.gainL.Load()))
	gr := float32(math.Float64frombits(s.gainR.Load()))

	frames := len(p) / 8
	written := 0
	for i := 0; i < frames; i++ {
		if s.pos >= s.clip.Frames() {
			if !s.loop {
				if written == 0 {
					return 0, io.EOF
				}
				return written * 8, nil
			}
			s.pos = 0
		}
		putFrame(p[i*8:], s.clip.Left[s.pos]*gl, s.clip.Right[s.pos]*gr)
		s.pos++
		written++
	}
	return written * 8, nil
}

func putFrame(buf []byte, left, right float32) {
	lv := math.Float32bits(left)
	rv := math.Float32bits(right)
	buf[0] = byte(lv)
	buf[1] = byte(lv >> 8)
	buf[2] = byte(lv >> 16)
	buf[3] = byte(lv >> 24)
	buf[4] = byte(rv)
	buf[5] = byte(rv >> 8)
	buf[6] = byte(rv >> 16)
	buf[7] = byte(rv >> 24)
}

func (s *otoSource) Play() {
	s.startOnce.Do(func() {
		s.player.Play()
		go s.watch()
	})
}

// watch waits for natural completion, then releases the player.
func (s *otoSource) watch() {
	for s.player.IsPlaying() {
		select {
		case <-s.done:
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
	s.Stop()
}

func (s *otoSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		// Close errors after natural completion are expected and dropped.
		_ = s.player.Close()
		s.ctx.release(s)
	})
}

func (s *otoSource) IsPlaying() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.player.IsPlaying()
	}
}

func (s *otoSource) SetGain(left, right float64) {
	s.gainL.Store(math.Float64bits(left))
	s.gainR.Store(math.Float64bits(right))
}

func (s *otoSource) Done() <-chan struct{} { return s.done }
