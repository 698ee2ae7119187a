package game

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fernweh-games/whisperwood/audio"
	"github.com/fernweh-games/whisperwood/audio/playback"
	"github.com/fernweh-games/whisperwood/audio/speech"
)

type captionLog struct {
	mu    sync.Mutex
	lines []string
}

func (c *captionLog) add(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, e.Text)
}

func (c *captionLog) contains(sub string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

func (c *captionLog) count(sub string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, line := range c.lines {
		if strings.Contains(line, sub) {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T) (*Session, *captionLog) {
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

	captions := &captionLog{}
	s, err := NewSession(engine, captions.add)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, captions
}

func TestSessionStartsAtFirstLevel(t *testing.T) {
	s, captions := newTestSession(t)

	if got := s.Level().Name; got != FirstLevel {
		t.Errorf("level = %q, want %q", got, FirstLevel)
	}
	if got, want := s.Player(), s.Level().Start(); got != want {
		t.Errorf("player = %v, want start %v", got, want)
	}
	if !captions.contains(FirstLevel) {
		t.Error("entering a level should caption its name")
	}
}

func TestMoveIntoWall(t *testing.T) {
	s, captions := newTestSession(t)

	before := s.Player()
	s.Move(-1, 0) // west of spawn is a wall on every map

	if s.Player() != before {
		t.Error("walking into a wall should not move the player")
	}
	if !captions.contains("can't go that way") {
		t.Error("first bump should narrate")
	}
}

func TestBumpNarrationRateLimited(t *testing.T) {
	s, captions := newTestSession(t)

	for i := 0; i < 5; i++ {
		s.Move(-1, 0)
	}
	if got := captions.count("can't go that way"); got != 1 {
		t.Errorf("bump captions = %d, want 1 (rate limited)", got)
	}
}

func TestMoveAcrossFloor(t *testing.T) {
	s, _ := newTestSession(t)

	start := s.Player()
	s.Move(1, 0)
	if got := s.Player(); got.X != start.X+1 || got.Y != start.Y {
		t.Errorf("player = %v, want one tile east of %v", got, start)
	}
}

func TestItemPickup(t *testing.T) {
	s, captions := newTestSession(t)

	// Meadow Path: key sits one tile north-east-east of spawn.
	s.Move(1, 0)
	s.Move(1, 0)
	s.Move(0, -1)

	inv := s.Inventory()
	if len(inv) != 1 || inv[0] != "a brass key" {
		t.Fatalf("inventory = %v, want the brass key", inv)
	}
	if !captions.contains("You found a brass key") {
		t.Error("pickup should narrate")
	}

	// Walking over the same tile again collects nothing.
	s.Move(0, 1)
	s.Move(0, -1)
	if got := len(s.Inventory()); got != 1 {
		t.Errorf("inventory size = %d, want 1", got)
	}
}

func TestExitAdvancesLevel(t *testing.T) {
	s, captions := newTestSession(t)

	// Spawn row leads straight east to the exit.
	s.Move(1, 0)
	s.Move(1, 0)
	s.Move(1, 0)

	if got := s.Level().Name; got != "Whispering Forest" {
		t.Errorf("level = %q, want Whispering Forest", got)
	}
	if got, want := s.Player(), s.Level().Start(); got != want {
		t.Errorf("player = %v, want new level start %v", got, want)
	}
	if !captions.contains("Whispering Forest") {
		t.Error("new level should be captioned")
	}
}

func TestLookMentionsItems(t *testing.T) {
	s, captions := newTestSession(t)

	s.Look()
	if !captions.contains("brass key") {
		t.Error("look should mention the uncollected key")
	}
}

func TestDirectionOf(t *testing.T) {
	a := audio.GridPos{X: 2, Y: 2}
	tests := []struct {
		b    audio.GridPos
		want string
	}{
		{audio.GridPos{X: 4, Y: 2}, "east"},
		{audio.GridPos{X: 0, Y: 2}, "west"},
		{audio.GridPos{X: 2, Y: 0}, "north"},
		{audio.GridPos{X: 2, Y: 4}, "south"},
		{audio.GridPos{X: 4, Y: 3}, "east"}, // dominant axis wins
		{audio.GridPos{X: 2, Y: 2}, ""},
	}
	for _, tt := range tests {
		if got := directionOf(a, tt.b); got != tt.want {
			t.Errorf("directionOf(%v, %v) = %q, want %q", a, tt.b, got, tt.want)
		}
	}
}

func TestLevelIntegrity(t *testing.T) {
	for name, lvl := range levels {
		t.Run(name, func(t *testing.T) {
			if lvl.Name != name {
				t.Errorf("map key %q != level name %q", name, lvl.Name)
			}
			if lvl.Description == "" {
				t.Error("missing description")
			}

			hasExit := false
			for y := 0; y < lvl.Height(); y++ {
				for x := 0; x < lvl.Width(); x++ {
					if lvl.Tile(audio.GridPos{X: x, Y: y}) == TileExit {
						hasExit = true
					}
				}
			}
			if lvl.Next != "" && !hasExit {
				t.Error("level has a successor but no exit tile")
			}
			if lvl.Next != "" {
				if _, ok := LevelByName(lvl.Next); !ok {
					t.Errorf("next level %q does not exist", lvl.Next)
				}
			}

			for pos, item := range lvl.Items {
				if lvl.Tile(pos) != TileItem {
					t.Errorf("item %q at %v is not on an item tile", item.Name, pos)
				}
				if item.Sound == "" {
					t.Errorf("item %q has no pickup sound", item.Name)
				}
			}
		})
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whisperwood.yaml")
	content := "audio:\n  master_volume: 0.4\n  narration: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.MasterVolume != 0.4 {
		t.Errorf("master volume = %v, want 0.4", s.MasterVolume)
	}
	if s.VoiceNarration {
		t.Error("narration should be off")
	}
	// Unspecified keys keep their defaults.
	if !s.SpatialAudio || !s.EnvironmentalSounds {
		t.Error("missing keys should default on")
	}
}
