// Package game holds the adventure logic that drives the audio engine:
// levels, movement, pickups, and the narration that accompanies them. The
// session is deliberately UI-free; the terminal frontend renders whatever
// the session reports.
package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/fernweh-games/whisperwood/audio"
)

// bumpLimit throttles the "can't go that way" narration so holding a key
// against a wall thumps but does not chant.
var bumpLimit = rate.Every(2 * time.Second)

// Event is something the session wants shown as a caption. Every narrated
// line is mirrored here so the game is fully playable with sound off.
type Event struct {
	Text string
}

// Session is one playthrough.
type Session struct {
	engine *audio.Engine

	mu        sync.Mutex
	level     *Level
	player    audio.GridPos
	collected map[string]map[audio.GridPos]bool
	inventory []string
	finished  bool

	bumpLimiter *rate.Limiter
	events      func(Event)
}

// NewSession starts a playthrough at the first level. The events callback
// receives captions; nil means no captions.
func NewSession(engine *audio.Engine, events func(Event)) (*Session, error) {
	s := &Session{
		engine:      engine,
		collected:   make(map[string]map[audio.GridPos]bool),
		bumpLimiter: rate.NewLimiter(bumpLimit, 1),
		events:      events,
	}
	if err := s.enter(FirstLevel); err != nil {
		return nil, err
	}
	return s, nil
}

// Level returns the current level.
func (s *Session) Level() *Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Player returns the player's tile.
func (s *Session) Player() audio.GridPos {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// Inventory lists collected item names in pickup order.
func (s *Session) Inventory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.inventory))
	copy(out, s.inventory)
	return out
}

// Finished reports whether the final item has been collected.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Collected reports whether the item at p in the current level is gone.
func (s *Session) Collected(p audio.GridPos) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collected[s.level.Name][p]
}

// Move attempts a one-tile step. Walls thump, floors footstep, items chime
// and narrate, exits advance to the next level.
func (s *Session) Move(dx, dy int) {
	s.mu.Lock()
	lvl := s.level
	next := audio.GridPos{X: s.player.X + dx, Y: s.player.Y + dy}
	tile := lvl.Tile(next)
	s.mu.Unlock()

	switch tile {
	case TileWall:
		s.bump(next)
	case TileExit:
		s.stepTo(lvl, next)
		s.advance(lvl)
	default:
		s.stepTo(lvl, next)
		s.pickupAt(lvl, next)
	}
}

func (s *Session) stepTo(lvl *Level, p audio.GridPos) {
	s.mu.Lock()
	s.player = p
	s.mu.Unlock()

	s.engine.UpdateListenerPosition(p)
	s.engine.PlaySound(lvl.footstepSound(), p)
}

func (s *Session) bump(at audio.GridPos) {
	s.engine.PlaySound("bump_wall", at)
	if s.bumpLimiter.Allow() {
		s.narrateAuto("You can't go that way.")
	}
}

func (s *Session) pickupAt(lvl *Level, p audio.GridPos) {
	item, ok := lvl.Items[p]
	if !ok {
		return
	}

	s.mu.Lock()
	if s.collected[lvl.Name] == nil {
		s.collected[lvl.Name] = make(map[audio.GridPos]bool)
	}
	if s.collected[lvl.Name][p] {
		s.mu.Unlock()
		return
	}
	s.collected[lvl.Name][p] = true
	s.inventory = append(s.inventory, item.Name)
	last := lvl.Next == ""
	if last {
		s.finished = true
	}
	s.mu.Unlock()

	s.engine.PlaySound(item.Sound, p)
	s.narrateAuto(fmt.Sprintf("You found %s.", item.Name))
	if last {
		s.engine.QueueSequence([]audio.SequenceItem{
			{Text: "The crown hums with old magic.", Voice: audio.CharacterVoice(audio.VoiceMystical)},
			{Text: "Whisperwood is whole again.", Voice: audio.CharacterVoice(audio.VoiceNarrator), Delay: 2500 * time.Millisecond},
		})
	}
}

func (s *Session) advance(from *Level) {
	if from.Next == "" {
		return
	}
	s.engine.PlaySound("door_open", s.Player())
	if err := s.enter(from.Next); err != nil {
		log.Warn("failed to enter level", "level", from.Next, "error", err)
	}
}

// enter loads a level, repositions the listener, restarts the ambience bed,
// and narrates the arrival.
func (s *Session) enter(name string) error {
	lvl, ok := LevelByName(name)
	if !ok {
		return fmt.Errorf("unknown level %q", name)
	}

	s.mu.Lock()
	s.level = lvl
	s.player = lvl.Start()
	s.mu.Unlock()

	s.engine.UpdateListenerPosition(lvl.Start())
	s.engine.EnterLevel(lvl.Name, lvl.Ambience)

	s.emit(lvl.Name)
	s.engine.Speak(audio.Utterance{
		Text:  fmt.Sprintf("%s. %s", lvl.Name, lvl.Description),
		Auto:  true,
		Voice: audio.CharacterVoice(audio.VoiceNarrator),
	})
	return nil
}

// Look narrates the player's surroundings: nearby items by direction, plus
// the exit when adjacent.
func (s *Session) Look() {
	s.mu.Lock()
	lvl := s.level
	p := s.player
	s.mu.Unlock()

	desc := lvl.Description
	for pos, item := range lvl.Items {
		if s.Collected(pos) {
			continue
		}
		if dir := directionOf(p, pos); dir != "" {
			desc += fmt.Sprintf(" You sense %s to the %s.", item.Name, dir)
			s.engine.PlaySound("magic_chime", pos, audio.WithVolume(0.4))
		}
	}
	s.narrate(desc)
}

// directionOf names the compass direction from a to b, dominant axis first.
func directionOf(a, b audio.GridPos) string {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return ""
	}
	if abs(dx) >= abs(dy) {
		if dx > 0 {
			return "east"
		}
		return "west"
	}
	if dy > 0 {
		return "south"
	}
	return "north"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// narrate speaks explicitly requested text and mirrors it as a caption.
func (s *Session) narrate(text string) {
	s.emit(text)
	s.engine.SpeakText(text)
}

// narrateAuto speaks unprompted text, subject to the auto narration setting.
func (s *Session) narrateAuto(text string) {
	s.emit(text)
	s.engine.Speak(audio.Utterance{Text: text, Auto: true})
}

func (s *Session) emit(text string) {
	if s.events != nil {
		s.events(Event{Text: text})
	}
}
