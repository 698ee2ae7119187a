package ui

import (
	"fmt"
	"strings"

	"github.com/fernweh-games/whisperwood/audio"
)

// Settings panel rows, in display order.
const (
	rowMasterVolume = iota
	rowSpatial
	rowEnvironmental
	rowNarration
	rowAutoNarration
	rowCount
)

var rowLabels = [rowCount]string{
	"Master volume",
	"Spatial audio",
	"Environmental sounds",
	"Voice narration",
	"Auto narration",
}

const volumeStep = 0.1

// settingsPanel is the audio preferences overlay. Every change applies to
// the engine immediately and is confirmed with a spoken announcement, so
// the panel is operable entirely by ear.
type settingsPanel struct {
	cursor int
}

func (p *settingsPanel) up() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *settingsPanel) down() {
	if p.cursor < rowCount-1 {
		p.cursor++
	}
}

// toggle flips the selected row and returns the new settings plus a spoken
// confirmation. Volume rows do not toggle; they return ok false.
func (p *settingsPanel) toggle(s audio.Settings) (audio.Settings, string, bool) {
	var on *bool
	switch p.cursor {
	case rowSpatial:
		on = &s.SpatialAudio
	case rowEnvironmental:
		on = &s.EnvironmentalSounds
	case rowNarration:
		on = &s.VoiceNarration
	case rowAutoNarration:
		on = &s.AutoNarration
	default:
		return s, "", false
	}
	*on = !*on

	state := "off"
	if *on {
		state = "on"
	}
	return s, fmt.Sprintf("%s %s.", rowLabels[p.cursor], state), true
}

// adjustVolume nudges master volume by delta steps.
func (p *settingsPanel) adjustVolume(s audio.Settings, delta int) (audio.Settings, string) {
	s.MasterVolume += float64(delta) * volumeStep
	if s.MasterVolume < 0 {
		s.MasterVolume = 0
	}
	if s.MasterVolume > 1 {
		s.MasterVolume = 1
	}
	return s, fmt.Sprintf("Volume %d percent.", int(s.MasterVolume*100+0.5))
}

func (p *settingsPanel) render(s audio.Settings) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Audio Settings"))
	b.WriteByte('\n')

	for i := 0; i < rowCount; i++ {
		b.WriteByte('\n')

		var value string
		switch i {
		case rowMasterVolume:
			value = volumeBar(s.MasterVolume)
		case rowSpatial:
			value = onOff(s.SpatialAudio)
		case rowEnvironmental:
			value = onOff(s.EnvironmentalSounds)
		case rowNarration:
			value = onOff(s.VoiceNarration)
		case rowAutoNarration:
			value = onOff(s.AutoNarration)
		}

		line := fmt.Sprintf("%-22s %s", rowLabels[i], value)
		if i == p.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓ select · enter toggle · +/- volume · tab close"))
	return panelStyle.Render(b.String())
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func volumeBar(v float64) string {
	const width = 10
	filled := int(v*width + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
