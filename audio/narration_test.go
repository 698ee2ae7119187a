package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/fernweh-games/whisperwood/audio/playback"
	"github.com/fernweh-games/whisperwood/audio/speech"
	"github.com/fernweh-games/whisperwood/internal/cache"
)

func newTestNarrator(t *testing.T) (*narrator, *speech.MockBackend, *settingsStore) {
	t.Helper()
	out := playback.NewMockContext(22050)
	out.SetSpeedMultiplier(1000)
	backend := speech.NewMockBackend()
	st := newSettingsStore(Settings{
		MasterVolume:        1.0,
		SpatialAudio:        true,
		EnvironmentalSounds: true,
		VoiceNarration:      true,
		AutoNarration:       true,
	})
	n := newNarrator(backend, out, st, cache.New(0))
	t.Cleanup(n.shutdown)
	return n, backend, st
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("utterance never completed")
	}
}

func TestSpeakCompletes(t *testing.T) {
	n, backend, _ := newTestNarrator(t)

	h := n.speak(Utterance{Text: "A narrow path winds north."})
	waitDone(t, h)

	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("backend requests = %d, want 1", len(reqs))
	}
	if reqs[0].Text != "A narrow path winds north." {
		t.Errorf("unexpected text: %q", reqs[0].Text)
	}
}

func TestSpeakFIFO(t *testing.T) {
	n, backend, _ := newTestNarrator(t)

	var last *Handle
	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		last = n.speak(Utterance{Text: text})
	}
	waitDone(t, last)

	reqs := backend.Requests()
	if len(reqs) != 3 {
		t.Fatalf("backend requests = %d, want 3", len(reqs))
	}
	for i, want := range texts {
		if reqs[i].Text != want {
			t.Errorf("request %d = %q, want %q", i, reqs[i].Text, want)
		}
	}
}

func TestSpeakDisabled(t *testing.T) {
	n, backend, st := newTestNarrator(t)

	s := st.get()
	s.VoiceNarration = false
	st.set(s)

	called := false
	h := n.speak(Utterance{Text: "unheard", OnDone: func() { called = true }})
	waitDone(t, h)

	if len(backend.Requests()) != 0 {
		t.Error("disabled narration should never reach the backend")
	}
	if !called {
		t.Error("OnDone should fire even when skipped")
	}
}

func TestAutoNarrationSuppressed(t *testing.T) {
	n, backend, st := newTestNarrator(t)

	s := st.get()
	s.AutoNarration = false
	st.set(s)

	waitDone(t, n.speak(Utterance{Text: "auto description", Auto: true}))
	if len(backend.Requests()) != 0 {
		t.Error("auto narration should be suppressed")
	}

	// Explicit narration ignores the auto toggle.
	waitDone(t, n.speak(Utterance{Text: "requested description"}))
	if len(backend.Requests()) != 1 {
		t.Error("explicit narration should still play")
	}
}

func TestEmptyTextSkipped(t *testing.T) {
	n, backend, _ := newTestNarrator(t)
	waitDone(t, n.speak(Utterance{Text: ""}))
	if len(backend.Requests()) != 0 {
		t.Error("empty text should not be synthesized")
	}
}

func TestStopFlushesQueue(t *testing.T) {
	n, backend, _ := newTestNarrator(t)
	backend.SetDelay(50 * time.Millisecond)

	h1 := n.speak(Utterance{Text: "one"})
	h2 := n.speak(Utterance{Text: "two"})
	h3 := n.speak(Utterance{Text: "three"})

	// Let the first utterance enter synthesis, then cut everything off.
	time.Sleep(10 * time.Millisecond)
	n.stop()

	for _, h := range []*Handle{h1, h2, h3} {
		waitDone(t, h)
	}
	if got := len(backend.Requests()); got > 1 {
		t.Errorf("queued utterances reached the backend after stop: %d", got)
	}
}

func TestSynthesisFailureCompletesHandle(t *testing.T) {
	n, backend, _ := newTestNarrator(t)
	backend.FailNext(1, errors.New("engine exploded"))

	waitDone(t, n.speak(Utterance{Text: "doomed"}))

	// The narrator recovers for the next utterance.
	waitDone(t, n.speak(Utterance{Text: "fine"}))
	if len(backend.Requests()) != 2 {
		t.Errorf("requests = %d, want 2", len(backend.Requests()))
	}
}

func TestPositionalNarrationParams(t *testing.T) {
	n, backend, _ := newTestNarrator(t)

	// Speaker far to the east: pitch shifts up.
	pos := GridPos{X: 6, Y: 2}
	waitDone(t, n.speak(Utterance{Text: "over here", Position: &pos}))

	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if reqs[0].Params.Pitch <= 1.0 {
		t.Errorf("east speaker pitch = %v, want > 1", reqs[0].Params.Pitch)
	}
	if reqs[0].Params.Pitch > speech.PitchMax {
		t.Errorf("pitch exceeds clamp: %v", reqs[0].Params.Pitch)
	}
}

func TestVoiceProfileShapesParams(t *testing.T) {
	n, backend, _ := newTestNarrator(t)

	waitDone(t, n.speak(Utterance{Text: "whispers of old", Voice: CharacterVoice(VoiceMystical)}))

	reqs := backend.Requests()
	want := CharacterVoice(VoiceMystical)
	if reqs[0].Params.Pitch != want.Pitch || reqs[0].Params.Rate != want.Rate {
		t.Errorf("params = %+v, want pitch %v rate %v", reqs[0].Params, want.Pitch, want.Rate)
	}
}

func TestUtteranceCacheSkipsResynthesis(t *testing.T) {
	n, backend, _ := newTestNarrator(t)

	waitDone(t, n.speak(Utterance{Text: "you cannot go that way"}))
	waitDone(t, n.speak(Utterance{Text: "you cannot go that way"}))

	if got := len(backend.Requests()); got != 1 {
		t.Errorf("backend requests = %d, want 1 (second should hit cache)", got)
	}
}

func TestQueueSequenceOrderAndCompletion(t *testing.T) {
	n, backend, _ := newTestNarrator(t)

	h := n.queueSequence([]SequenceItem{
		{Text: "the door creaks"},
		{Text: "footsteps approach", Delay: 20 * time.Millisecond},
		{Text: "silence falls", Delay: 20 * time.Millisecond},
	})
	waitDone(t, h)

	reqs := backend.Requests()
	if len(reqs) != 3 {
		t.Fatalf("requests = %d, want 3", len(reqs))
	}
	wantOrder := []string{"the door creaks", "footsteps approach", "silence falls"}
	for i, want := range wantOrder {
		if reqs[i].Text != want {
			t.Errorf("sequence item %d = %q, want %q", i, reqs[i].Text, want)
		}
	}
}

func TestEmptySequence(t *testing.T) {
	n, _, _ := newTestNarrator(t)
	waitDone(t, n.queueSequence(nil))
}

func TestStopCancelsSequence(t *testing.T) {
	n, backend, _ := newTestNarrator(t)

	h := n.queueSequence([]SequenceItem{
		{Text: "now"},
		{Text: "much later", Delay: 5 * time.Second},
	})

	time.Sleep(20 * time.Millisecond)
	n.stop()
	waitDone(t, h)

	for _, r := range backend.Requests() {
		if r.Text == "much later" {
			t.Error("canceled sequence item should never be spoken")
		}
	}
}
