package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/fernweh-games/whisperwood/audio"
)

// statusLine renders the bottom bar: narration state, device state, and
// optionally engine internals for debugging.
func statusLine(stats audio.Stats, settings audio.Settings, debug bool, width int) string {
	parts := []string{
		fmt.Sprintf("vol %d%%", int(settings.MasterVolume*100)),
	}
	if !stats.DeviceReady {
		parts = append(parts, "silent (no audio device)")
	}
	if stats.Narrating {
		parts = append(parts, "speaking…")
	}
	if !settings.VoiceNarration {
		parts = append(parts, "narration off")
	}
	if debug {
		parts = append(parts,
			fmt.Sprintf("src %d", stats.ActiveSources),
			fmt.Sprintf("cache %s (%d%% hit)",
				humanize.Bytes(uint64(stats.Cache.Size)),
				int(stats.Cache.HitRate*100)),
		)
	}

	line := strings.Join(parts, "  ·  ")
	if runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}
	return statusStyle.Render(line)
}
