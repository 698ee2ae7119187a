package ui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// maxCaptions bounds the scrollback; old lines fall off the top.
const maxCaptions = 50

// captionPanel keeps the rolling transcript of everything narrated. It is
// the visual twin of the voice channel: same lines, same order.
type captionPanel struct {
	lines []string
}

func (c *captionPanel) add(text string) {
	c.lines = append(c.lines, text)
	if len(c.lines) > maxCaptions {
		c.lines = c.lines[len(c.lines)-maxCaptions:]
	}
}

// render wraps the newest lines into a panel of the given size. The latest
// line is emphasized; history dims.
func (c *captionPanel) render(width, height int) string {
	if width < 4 || height < 1 {
		return ""
	}

	var wrapped []string
	for _, line := range c.lines {
		wrapped = append(wrapped, strings.Split(wordwrap.String(line, width), "\n")...)
	}
	if len(wrapped) > height {
		wrapped = wrapped[len(wrapped)-height:]
	}

	// Figure out where the final logical line starts so only it is bright.
	lastStart := len(wrapped)
	if len(c.lines) > 0 {
		lastLogical := strings.Split(wordwrap.String(c.lines[len(c.lines)-1], width), "\n")
		lastStart = len(wrapped) - len(lastLogical)
		if lastStart < 0 {
			lastStart = 0
		}
	}

	var b strings.Builder
	for i, line := range wrapped {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= lastStart {
			b.WriteString(captionStyle.Render(line))
		} else {
			b.WriteString(captionDimStyle.Render(line))
		}
	}
	return b.String()
}
