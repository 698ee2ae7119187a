package main

import "github.com/charmbracelet/lipgloss"

var (
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#2B5329", Dark: "#A8CC8C"}).
			Bold(true)

	paragraphStyle = lipgloss.NewStyle().
			Width(78).
			Padding(0, 0, 1, 2)
)

func keyword(s string) string {
	return keywordStyle.Render(s)
}

func paragraph(s string) string {
	return paragraphStyle.Render(s)
}
