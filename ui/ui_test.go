package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fernweh-games/whisperwood/audio"
	"github.com/fernweh-games/whisperwood/audio/playback"
	"github.com/fernweh-games/whisperwood/audio/speech"
	"github.com/fernweh-games/whisperwood/game"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	engine, err := audio.New(audio.Config{
		SampleRate: 8000,
		Context:    playback.ContextMock,
		Backend:    speech.NewMockBackend(),
	})
	if err != nil {
		t.Fatalf("audio.New: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	events := make(chan game.Event, 64)
	session, err := game.NewSession(engine, func(e game.Event) {
		select {
		case events <- e:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	return model{
		cfg:      Config{ShowCaptions: true},
		engine:   engine,
		session:  session,
		keys:     defaultKeyMap(),
		captions: &captionPanel{},
		events:   events,
		width:    80,
		height:   24,
	}
}

func pressKey(m model, k string) model {
	var msg tea.KeyMsg
	switch k {
	case "up", "down", "left", "right", "tab", "enter", "esc":
		types := map[string]tea.KeyType{
			"up": tea.KeyUp, "down": tea.KeyDown,
			"left": tea.KeyLeft, "right": tea.KeyRight,
			"tab": tea.KeyTab, "enter": tea.KeyEnter, "esc": tea.KeyEsc,
		}
		msg = tea.KeyMsg{Type: types[k]}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(model)
}

func TestMovementKeys(t *testing.T) {
	m := newTestModel(t)

	before := m.session.Player()
	m = pressKey(m, "right")
	after := m.session.Player()
	if after.X != before.X+1 {
		t.Errorf("right arrow should move east: %v -> %v", before, after)
	}

	m = pressKey(m, "a")
	if got := m.session.Player(); got != before {
		t.Errorf("a should move back west: %v, want %v", got, before)
	}
}

func TestSettingsOverlayToggle(t *testing.T) {
	m := newTestModel(t)

	m = pressKey(m, "tab")
	if !m.showSettings {
		t.Fatal("tab should open settings")
	}

	// Movement keys must not move the player while settings are open.
	before := m.session.Player()
	m = pressKey(m, "right")
	if m.session.Player() != before {
		t.Error("player moved while settings panel was open")
	}

	m = pressKey(m, "tab")
	if m.showSettings {
		t.Error("tab should close settings")
	}
}

func TestSettingsToggleAppliesToEngine(t *testing.T) {
	m := newTestModel(t)
	m = pressKey(m, "tab")

	// Move to the spatial audio row and flip it.
	m = pressKey(m, "down")
	if m.settings.cursor != rowSpatial {
		t.Fatalf("cursor = %d, want %d", m.settings.cursor, rowSpatial)
	}
	m = pressKey(m, "enter")

	if m.engine.Settings().SpatialAudio {
		t.Error("toggling should switch spatial audio off in the engine")
	}

	m = pressKey(m, "enter")
	if !m.engine.Settings().SpatialAudio {
		t.Error("toggling again should switch it back on")
	}
}

func TestVolumeKeys(t *testing.T) {
	m := newTestModel(t)
	m = pressKey(m, "tab")

	start := m.engine.Settings().MasterVolume
	m = pressKey(m, "-")
	if got := m.engine.Settings().MasterVolume; got >= start {
		t.Errorf("volume = %v, want below %v", got, start)
	}

	// Clamp at zero.
	for i := 0; i < 20; i++ {
		m = pressKey(m, "-")
	}
	if got := m.engine.Settings().MasterVolume; got != 0 {
		t.Errorf("volume = %v, want 0", got)
	}
}

func TestEventCaptioning(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(eventMsg{Text: "You found a brass key."})
	m = next.(model)
	if cmd == nil {
		t.Error("caption handling should re-arm the event listener")
	}
	if !strings.Contains(m.View(), "brass key") {
		t.Error("caption should appear in the view")
	}
}

func TestViewShowsLevelAndPlayer(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	if !strings.Contains(view, "Whisperwood") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, m.session.Level().Name) {
		t.Error("view missing level name")
	}
	if !strings.Contains(view, "@") {
		t.Error("view missing player marker")
	}
}

func TestCaptionPanelWrapsAndTrims(t *testing.T) {
	p := &captionPanel{}
	p.add("a very long narration line that certainly will not fit in a narrow panel without wrapping")
	out := p.render(20, 3)

	for _, line := range strings.Split(out, "\n") {
		if len([]rune(stripANSI(line))) > 20 {
			t.Errorf("line exceeds panel width: %q", line)
		}
	}
	if got := len(strings.Split(out, "\n")); got > 3 {
		t.Errorf("rendered %d lines, want at most 3", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestVolumeBar(t *testing.T) {
	if got := volumeBar(1.0); strings.Contains(got, "░") {
		t.Errorf("full volume bar should be solid: %q", got)
	}
	if got := volumeBar(0); strings.Contains(got, "█") {
		t.Errorf("zero volume bar should be empty: %q", got)
	}
}
