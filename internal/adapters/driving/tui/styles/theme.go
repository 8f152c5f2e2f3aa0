// Package styles holds the lipgloss styles of the chat TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette assigns a colour to each role in the chat screen. Every colour
// has a light and a dark variant; lipgloss picks one from the terminal
// background.
type Palette struct {
	You       lipgloss.AdaptiveColor
	Assistant lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Dim       lipgloss.AdaptiveColor
	Grounded  lipgloss.AdaptiveColor
	Failure   lipgloss.AdaptiveColor
	Frame     lipgloss.AdaptiveColor
	Bar       lipgloss.AdaptiveColor
}

// DefaultPalette is the palette used unless another is supplied.
func DefaultPalette() Palette {
	return Palette{
		You:       lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"},
		Assistant: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"},
		Text:      lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Dim:       lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Grounded:  lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
		Failure:   lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Frame:     lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
		Bar:       lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"},
	}
}

// Styles are the rendered styles built from a Palette.
type Styles struct {
	Palette Palette

	Title          lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Message        lipgloss.Style
	Muted          lipgloss.Style
	Error          lipgloss.Style
	Success        lipgloss.Style
	Spinner        lipgloss.Style
	InputField     lipgloss.Style
	StatusBar      lipgloss.Style
}

// New builds styles from p.
func New(p Palette) *Styles {
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		Palette:        p,
		Title:          fg(p.You).Bold(true).Underline(true),
		UserLabel:      fg(p.You).Bold(true),
		AssistantLabel: fg(p.Assistant).Bold(true),
		Message:        fg(p.Text).PaddingLeft(2),
		Muted:          fg(p.Dim),
		Error:          fg(p.Failure),
		Success:        fg(p.Grounded),
		Spinner:        fg(p.Assistant),
		InputField:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Frame).Padding(0, 1),
		StatusBar:      fg(p.Dim).Background(p.Bar).Padding(0, 1),
	}
}

// DefaultStyles returns New(DefaultPalette()).
func DefaultStyles() *Styles {
	return New(DefaultPalette())
}
