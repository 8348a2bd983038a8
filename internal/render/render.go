// Package render handles terminal output: markdown rendering for proposer
// prose and colorization for diff text.
package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer is an interface for rendering markdown content
type Renderer interface {
	Render(in string) (string, error)
}

// PlainTextRenderer is a renderer that returns content as-is without
// formatting. Used for non-TTY output and as a fallback when glamour
// rendering fails.
type PlainTextRenderer struct{}

// Render returns the input unchanged
func (p *PlainTextRenderer) Render(in string) (string, error) {
	return in, nil
}

// IsTTY returns true if stdout is connected to a terminal
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// getBaseStyle returns the appropriate glamour style based on terminal background.
func getBaseStyle() ansi.StyleConfig {
	style := styles.LightStyleConfig
	if termenv.HasDarkBackground() {
		style = styles.DarkStyleConfig
	}
	style.Document.BlockPrefix = ""
	return style
}

func newGlamourRenderer() (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStyles(getBaseStyle()),
		glamour.WithWordWrap(120),
	)
}

// NewRenderer creates a renderer appropriate for the current context:
// glamour for TTY output, plain text otherwise.
func NewRenderer() Renderer {
	return newRendererForTTY(IsTTY())
}

func newRendererForTTY(isTTY bool) Renderer {
	if !isTTY {
		return &PlainTextRenderer{}
	}
	renderer, err := newGlamourRenderer()
	if err != nil {
		return &PlainTextRenderer{}
	}
	return renderer
}

// ColorizeDiff decorates unified diff text for the terminal: additions
// green, removals red, headers faint. The input passes through unchanged
// when color is off or stdout is not a terminal.
func ColorizeDiff(diff string, noColor bool) string {
	if diff == "" {
		return diff
	}
	if noColor || termenv.EnvNoColor() || !IsTTY() {
		return diff
	}
	profile := termenv.ColorProfile()
	if profile == termenv.Ascii {
		return diff
	}

	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
			lines[i] = termenv.String(line).Faint().String()
		case strings.HasPrefix(line, "+"):
			lines[i] = termenv.String(line).Foreground(profile.Color("2")).String()
		case strings.HasPrefix(line, "-"):
			lines[i] = termenv.String(line).Foreground(profile.Color("1")).String()
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
