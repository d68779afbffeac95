package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word-wrap width used when the caller passes 0.
const DefaultWidth = 80

// Terminal renders markdown for an ANSI terminal.
func Terminal(md string, width int) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
