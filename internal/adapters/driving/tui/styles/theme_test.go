package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPalette_HasBothVariants(t *testing.T) {
	p := DefaultPalette()

	for name, c := range map[string]lipgloss.AdaptiveColor{
		"You": p.You, "Assistant": p.Assistant, "Text": p.Text, "Dim": p.Dim,
		"Grounded": p.Grounded, "Failure": p.Failure, "Frame": p.Frame, "Bar": p.Bar,
	} {
		assert.NotEmpty(t, c.Light, name)
		assert.NotEmpty(t, c.Dark, name)
	}
}

func TestDefaultPalette_SpeakersDiffer(t *testing.T) {
	p := DefaultPalette()

	assert.NotEqual(t, p.You, p.Assistant)
	assert.NotEqual(t, p.Grounded, p.Failure)
}

func TestNew_UsesPalette(t *testing.T) {
	p := DefaultPalette()
	p.You = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	s := New(p)

	assert.Equal(t, p, s.Palette)
	assert.Equal(t, p.You, s.UserLabel.GetForeground())
	assert.Equal(t, p.Assistant, s.AssistantLabel.GetForeground())
	assert.Equal(t, p.Frame, s.InputField.GetBorderTopForeground())
	assert.Equal(t, p.Bar, s.StatusBar.GetBackground())
}

func TestDefaultStyles_RenderKeepsText(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":          s.Title,
		"UserLabel":      s.UserLabel,
		"AssistantLabel": s.AssistantLabel,
		"Message":        s.Message,
		"Error":          s.Error,
		"StatusBar":      s.StatusBar,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, style.Render("hello"), "hello")
		})
	}
}

func TestDefaultStyles_MessageIsIndented(t *testing.T) {
	assert.Equal(t, 2, DefaultStyles().Message.GetPaddingLeft())
}
