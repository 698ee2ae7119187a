package audio

import (
	"testing"
	"time"

	"github.com/fernweh-games/whisperwood/audio/playback"
	"github.com/fernweh-games/whisperwood/audio/synth"
)

// testSynthConfig keeps buffers tiny so tests stay fast.
func testSynthConfig() synth.Config {
	return synth.Config{
		SampleRate:    8000,
		ToneDuration:  50 * time.Millisecond,
		NoiseDuration: 50 * time.Millisecond,
		LoopDuration:  200 * time.Millisecond,
	}
}

func newTestSpatial(t *testing.T) (*spatialEngine, *playback.MockContext, *settingsStore) {
	t.Helper()
	out := playback.NewMockContext(8000)
	out.SetSpeedMultiplier(1000)
	sy, err := synth.New(testSynthConfig())
	if err != nil {
		t.Fatalf("synth.New: %v", err)
	}
	st := newSettingsStore(Settings{
		MasterVolume:        1.0,
		SpatialAudio:        true,
		EnvironmentalSounds: true,
		VoiceNarration:      true,
		AutoNarration:       true,
	})
	l := newListener()
	return newSpatialEngine(out, sy, st, l), out, st
}

func sourceGain(t *testing.T, e *spatialEngine, id string) (left, right float64) {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.sources[id]
	if !ok {
		t.Fatalf("no active source for %q", id)
	}
	return entry.src.(*playback.MockSource).Gain()
}

func TestPlayUnknownSound(t *testing.T) {
	e, out, _ := newTestSpatial(t)
	e.play("kraken_roar", GridPos{2, 2})
	if e.active() != 0 || out.ActiveSources() != 0 {
		t.Error("unknown id should leave no active source")
	}
}

func TestPlayWithSpatialDisabled(t *testing.T) {
	e, out, st := newTestSpatial(t)
	s := st.get()
	s.SpatialAudio = false
	st.set(s)

	e.play("footstep_grass", GridPos{2, 2})
	if out.ActiveSources() != 0 {
		t.Error("no source should have been created")
	}
}

func TestLastStartWins(t *testing.T) {
	e, out, _ := newTestSpatial(t)

	e.play("portal_hum", GridPos{2, 2}, WithLoop())
	e.play("portal_hum", GridPos{3, 2}, WithLoop())

	if got := e.active(); got != 1 {
		t.Errorf("tracked sources = %d, want 1", got)
	}
	if got := out.ActiveSources(); got != 1 {
		t.Errorf("live device sources = %d, want 1", got)
	}
}

func TestStopSound(t *testing.T) {
	e, out, _ := newTestSpatial(t)

	e.play("forest_ambience", GridPos{2, 2}, WithLoop())
	e.stop("forest_ambience")

	if e.active() != 0 || out.ActiveSources() != 0 {
		t.Error("stop should release the source")
	}

	// Idle and unknown ids are no-ops.
	e.stop("forest_ambience")
	e.stop("never_played")
}

func TestStopAll(t *testing.T) {
	e, out, _ := newTestSpatial(t)

	e.play("portal_hum", GridPos{1, 1}, WithLoop())
	e.play("ocean_waves", GridPos{3, 3}, WithLoop())
	e.stopAll()

	if e.active() != 0 || out.ActiveSources() != 0 {
		t.Error("stopAll should release everything")
	}
}

func TestOneShotSelfReleases(t *testing.T) {
	e, _, _ := newTestSpatial(t)

	e.play("menu_select", GridPos{2, 2})

	deadline := time.After(2 * time.Second)
	for e.active() != 0 {
		select {
		case <-deadline:
			t.Fatal("one-shot source never released itself")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPanningFollowsPosition(t *testing.T) {
	e, _, _ := newTestSpatial(t)

	// Source east of the listener should favor the right channel.
	e.play("bird_chirp", GridPos{4, 2}, WithLoop())
	left, right := sourceGain(t, e, "bird_chirp")
	if right <= left {
		t.Errorf("east source gains (%v, %v), want right louder", left, right)
	}

	// Walking onto the source centers and boosts it.
	e.listener.set(GridPos{4, 2})
	e.retune()
	l2, r2 := sourceGain(t, e, "bird_chirp")
	if l2 != r2 {
		t.Errorf("co-located source gains (%v, %v), want balanced", l2, r2)
	}
	if r2 <= right {
		t.Errorf("approaching should raise gain: %v -> %v", right, r2)
	}
}

func TestSettingsPropagateToRunningSources(t *testing.T) {
	e, _, st := newTestSpatial(t)

	e.play("cave_drips", GridPos{2, 2}, WithLoop())
	left1, _ := sourceGain(t, e, "cave_drips")

	s := st.get()
	s.MasterVolume = 0.25
	st.set(s)
	e.retune()

	left2, _ := sourceGain(t, e, "cave_drips")
	if left2 >= left1 {
		t.Errorf("lower master volume should lower gain: %v -> %v", left1, left2)
	}

	s.SpatialAudio = false
	st.set(s)
	e.retune()

	left3, right3 := sourceGain(t, e, "cave_drips")
	if left3 != 0 || right3 != 0 {
		t.Errorf("disabling spatial audio should mute running sources, got (%v, %v)", left3, right3)
	}
}

func TestVolumeOption(t *testing.T) {
	e, _, _ := newTestSpatial(t)

	e.play("wind_loop", GridPos{2, 2}, WithLoop(), WithVolume(0.5))
	half, _ := sourceGain(t, e, "wind_loop")

	e.play("portal_hum", GridPos{2, 2}, WithLoop())
	full, _ := sourceGain(t, e, "portal_hum")

	if half >= full {
		t.Errorf("half volume %v should be below full %v", half, full)
	}
}
