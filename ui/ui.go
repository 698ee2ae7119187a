// Package ui is the terminal frontend: a small tile view, a caption
// transcript, and an audio settings overlay. All interaction is keyboard
// driven and every visual element has an audible twin, so the game works
// equally with a screen reader, with sound alone, or with both.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/fernweh-games/whisperwood/audio"
	"github.com/fernweh-games/whisperwood/game"
)

// NewProgram builds the Bubble Tea program around a running session.
func NewProgram(cfg Config, engine *audio.Engine) (*tea.Program, error) {
	events := make(chan game.Event, 64)
	session, err := game.NewSession(engine, func(e game.Event) {
		select {
		case events <- e:
		default:
			// A stalled UI should never block the game.
		}
	})
	if err != nil {
		return nil, err
	}

	log.Debug("starting ui", "captions", cfg.ShowCaptions, "debug", cfg.ShowDebugBar)

	m := model{
		cfg:      cfg,
		engine:   engine,
		session:  session,
		keys:     defaultKeyMap(),
		captions: &captionPanel{},
		events:   events,
	}
	return tea.NewProgram(m, tea.WithAltScreen()), nil
}

type eventMsg game.Event

type model struct {
	cfg      Config
	engine   *audio.Engine
	session  *game.Session
	keys     keyMap
	captions *captionPanel
	settings settingsPanel
	events   chan game.Event

	showSettings bool
	showHelp     bool
	width        int
	height       int
}

func (m model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.events)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.cfg.MaxWidth > 0 && m.width > int(m.cfg.MaxWidth) {
			m.width = int(m.cfg.MaxWidth)
		}
		return m, nil

	case eventMsg:
		if m.cfg.ShowCaptions {
			m.captions.add(msg.Text)
		}
		return m, m.waitForEvent()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Settings):
		m.showSettings = !m.showSettings
		m.playToggleCue(m.showSettings)
		if m.showSettings {
			m.engine.SpeakText("Audio settings.")
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	if m.showSettings {
		return m.handleSettingsKey(msg)
	}
	return m.handleGameKey(msg)
}

func (m model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.settings.up()
		m.announceRow()
	case key.Matches(msg, m.keys.Down):
		m.settings.down()
		m.announceRow()
	case key.Matches(msg, m.keys.Select):
		s, confirmation, ok := m.settings.toggle(m.engine.Settings())
		if ok {
			m.engine.UpdateSettings(s)
			m.playToggleCue(settingOn(s, m.settings.cursor))
			m.engine.SpeakText(confirmation)
		}
	case key.Matches(msg, m.keys.VolUp):
		m.applyVolume(1)
	case key.Matches(msg, m.keys.VolDown):
		m.applyVolume(-1)
	case key.Matches(msg, m.keys.Right):
		if m.settings.cursor == rowMasterVolume {
			m.applyVolume(1)
		}
	case key.Matches(msg, m.keys.Left):
		if m.settings.cursor == rowMasterVolume {
			m.applyVolume(-1)
		}
	}
	return m, nil
}

func (m model) handleGameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.session.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.session.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.session.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.session.Move(1, 0)
	case key.Matches(msg, m.keys.Look):
		m.session.Look()
	case key.Matches(msg, m.keys.Silence):
		m.engine.StopNarration()
	}
	return m, nil
}

func (m model) applyVolume(delta int) {
	s, confirmation := m.settings.adjustVolume(m.engine.Settings(), delta)
	m.engine.UpdateSettings(s)
	m.engine.PlaySound("menu_move", m.session.Player())
	m.engine.SpeakText(confirmation)
}

func (m model) announceRow() {
	m.engine.PlaySound("menu_move", m.session.Player())
	m.engine.SpeakText(rowLabels[m.settings.cursor] + ".")
}

func (m model) playToggleCue(on bool) {
	id := "toggle_off"
	if on {
		id = "toggle_on"
	}
	m.engine.PlaySound(id, m.session.Player())
}

func settingOn(s audio.Settings, row int) bool {
	switch row {
	case rowSpatial:
		return s.SpatialAudio
	case rowEnvironmental:
		return s.EnvironmentalSounds
	case rowNarration:
		return s.VoiceNarration
	case rowAutoNarration:
		return s.AutoNarration
	}
	return true
}

func (m model) View() string {
	if m.width == 0 {
		return "loading…"
	}

	header := titleStyle.Render("Whisperwood") + "  " +
		levelStyle.Render(m.session.Level().Name)

	var center string
	switch {
	case m.showSettings:
		center = m.settings.render(m.engine.Settings())
	case m.showHelp:
		center = m.renderHelp()
	default:
		center = gridStyle.Render(m.renderGrid())
	}

	captionHeight := 6
	captions := ""
	if m.cfg.ShowCaptions {
		captions = m.captions.render(m.width-2, captionHeight)
	}

	status := statusLine(m.engine.DebugStats(), m.engine.Settings(), m.cfg.ShowDebugBar, m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		center,
		captions,
		status,
	)
}

// renderGrid draws the current level with the player overlaid.
func (m model) renderGrid() string {
	lvl := m.session.Level()
	player := m.session.Player()

	var b strings.Builder
	for y := 0; y < lvl.Height(); y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < lvl.Width(); x++ {
			pos := audio.GridPos{X: x, Y: y}
			if pos == player {
				b.WriteString(playerStyle.Render("@"))
				continue
			}
			switch tile := lvl.Tile(pos); tile {
			case game.TileWall:
				b.WriteString(wallStyle.Render("#"))
			case game.TileItem:
				if m.session.Collected(pos) {
					b.WriteString(" ")
				} else {
					b.WriteString(itemStyle.Render("*"))
				}
			case game.TileExit:
				b.WriteString(exitStyle.Render(">"))
			default:
				b.WriteString(wallStyle.Render("·"))
			}
		}
	}
	return b.String()
}

func (m model) renderHelp() string {
	rows := []string{
		"↑↓←→ / wasd   move",
		"x             look around",
		".             stop narration",
		"tab           audio settings",
		"?             close help",
		"q             quit",
	}
	return panelStyle.Render(titleStyle.Render("Help") + "\n\n" + strings.Join(rows, "\n"))
}
