package ui

import (
	"charm.land/glamour/v2"
	"github.com/charmbracelet/lipgloss"
)

// maxReadableWidth caps the word wrap of rendered documents.
const maxReadableWidth = 100

// RenderMarkdown renders a task document for the terminal.
// Returns the original text if colors are disabled or rendering fails.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}

	wrapWidth := terminalWidth(80)
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return rendered
}
