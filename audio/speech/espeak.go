package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	espeakBinary  = "espeak-ng"
	espeakTimeout = 5 * time.Second
)

// EspeakBackend synthesizes speech with the espeak-ng binary. Each utterance
// is one short-lived subprocess; stdin is attached before the process starts
// so text delivery cannot race with startup.
type EspeakBackend struct {
	binaryPath string
	timeout    time.Duration

	// mu serializes subprocess execution.
	mu sync.Mutex
}

// NewEspeakBackend locates espeak-ng on PATH. An error here means the
// backend is unavailable, not that construction misbehaved; callers chain
// a fallback instead of aborting.
func NewEspeakBackend() (*EspeakBackend, error) {
	path, err := exec.LookPath(espeakBinary)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", espeakBinary, err)
	}
	return &EspeakBackend{binaryPath: path, timeout: espeakTimeout}, nil
}

// Synthesize runs espeak-ng with --stdout and parses the WAV result.
func (e *EspeakBackend) Synthesize(ctx context.Context, text string, p Params) (*Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := espeakArgs(p)
	cmd := exec.CommandContext(ctx, e.binaryPath, args...)

	// Stdin must be wired before Start or short texts can be lost.
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", espeakBinary, err)
	}
	err := cmd.Wait()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s timed out after %v", espeakBinary, e.timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", espeakBinary, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", espeakBinary, err)
	}

	audio, err := parseWAV(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("bad %s output: %w", espeakBinary, err)
	}

	log.Debug("synthesized utterance",
		"backend", espeakBinary,
		"voice", p.Voice,
		"chars", len(text),
		"duration", time.Since(start))
	return audio, nil
}

// espeakArgs maps normalized params onto espeak-ng's CLI ranges: pitch
// 0-99 around a default of 50, speed in words per minute, amplitude 0-200.
func espeakArgs(p Params) []string {
	pitch := int(math.Round(50 * clampf(p.Pitch, PitchMin, PitchMax)))
	if pitch > 99 {
		pitch = 99
	}
	speed := int(math.Round(175 * clampf(p.Rate, 0.5, 3.0)))
	amp := int(math.Round(100 * clampf(p.Volume, 0, 1)))

	args := []string{
		"--stdout",
		"-p", fmt.Sprintf("%d", pitch),
		"-s", fmt.Sprintf("%d", speed),
		"-a", fmt.Sprintf("%d", amp),
	}
	if p.Voice != "" {
		args = append(args, "-v", p.Voice)
	}
	return args
}

func clampf(v, lo, hi float64) float64 {
	if v <= 0 {
		v = 1
	}
	return math.Min(hi, math.Max(lo, v))
}

// Voices returns the espeak voices the engine draws from, tagged with the
// abstract categories each can serve.
func (e *EspeakBackend) Voices() []Voice {
	return []Voice{
		{ID: "en-gb", Name: "English (Great Britain)", Gender: "male", Categories: []string{"narrator", "guide"}},
		{ID: "en-us", Name: "English (America)", Gender: "male", Categories: []string{"narrator", "character"}},
		{ID: "en-gb-scotland", Name: "English (Scotland)", Gender: "male", Categories: []string{"character", "guide"}},
		{ID: "en+f3", Name: "English female 3", Gender: "female", Categories: []string{"mystical", "nature", "guide"}},
		{ID: "en+m3", Name: "English male 3", Gender: "male", Categories: []string{"character"}},
		{ID: "en+whisper", Name: "English whisper", Gender: "neutral", Categories: []string{"mystical"}},
		{ID: "en+croak", Name: "English croak", Gender: "male", Categories: []string{"nature"}},
	}
}

// IsAvailable probes the binary with a version check.
func (e *EspeakBackend) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, e.binaryPath, "--version").Run() == nil
}

// Shutdown is a no-op; subprocesses are per-utterance.
func (e *EspeakBackend) Shutdown() error { return nil }

// parseWAV decodes a PCM WAV file into mono float32 samples. Stereo input
// is downmixed. espeak-ng writes 16-bit little-endian PCM.
func parseWAV(data []byte) (*Audio, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("truncated header (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a WAV file")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcm           []byte
	)

	// Walk chunks; espeak streams to stdout so RIFF sizes can be bogus.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if size < 0 || body > len(data) {
			break
		}
		end := body + size
		if end > len(data) {
			end = len(data)
		}
		switch id {
		case "fmt ":
			if end-body < 16 {
				return nil, fmt.Errorf("short fmt chunk")
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body:end]
		}
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitsPerSample)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("no audio data")
	}

	frames := len(pcm) / (2 * channels)
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			raw := int16(binary.LittleEndian.Uint16(pcm[(i*channels+c)*2:]))
			sum += float32(raw) / 32768.0
		}
		samples[i] = sum / float32(channels)
	}
	return &Audio{Samples: samples, SampleRate: sampleRate}, nil
}
