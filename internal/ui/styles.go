package ui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha (dark theme)
var mocha = struct {
	Red, Peach, Green, Teal, Blue, Mauve, Pink lipgloss.Color
	Text, Subtext1, Surface1, Base             lipgloss.Color
}{
	Red: "#f38ba8", Peach: "#fab387", Green: "#a6e3a1", Teal: "#94e2d5",
	Blue: "#89b4fa", Mauve: "#cba6f7", Pink: "#f5c2e7",
	Text: "#cdd6f4", Subtext1: "#bac2de", Surface1: "#45475a", Base: "#1e1e2e",
}

// Catppuccin Latte (light theme)
var latte = struct {
	Red, Peach, Green, Teal, Blue, Mauve, Pink lipgloss.Color
	Text, Subtext1, Surface1, Base             lipgloss.Color
}{
	Red: "#d20f39", Peach: "#fe640b", Green: "#40a02b", Teal: "#179299",
	Blue: "#1e66f5", Mauve: "#8839ef", Pink: "#ea76cb",
	Text: "#4c4f69", Subtext1: "#5c5f77", Surface1: "#bcc0cc", Base: "#eff1f5",
}

// ThemePalette holds the current color scheme.
type ThemePalette struct {
	Red, Green, Blue, Magenta, Peach, Teal lipgloss.Color
	Text, Subtext, Surface, Base           lipgloss.Color
}

var currentTheme ThemePalette

func init() {
	if DetectTheme() == ThemeDark {
		SetDarkTheme()
	} else {
		SetLightTheme()
	}
}

// SetDarkTheme switches to Catppuccin Mocha.
func SetDarkTheme() {
	currentTheme = ThemePalette{
		Red: mocha.Red, Green: mocha.Green, Blue: mocha.Blue, Magenta: mocha.Pink,
		Peach: mocha.Peach, Teal: mocha.Teal,
		Text: mocha.Text, Subtext: mocha.Subtext1, Surface: mocha.Surface1, Base: mocha.Base,
	}
	refreshStyles()
}

// SetLightTheme switches to Catppuccin Latte.
func SetLightTheme() {
	currentTheme = ThemePalette{
		Red: latte.Red, Green: latte.Green, Blue: latte.Blue, Magenta: latte.Pink,
		Peach: latte.Peach, Teal: latte.Teal,
		Text: latte.Text, Subtext: latte.Subtext1, Surface: latte.Surface1, Base: latte.Base,
	}
	refreshStyles()
}

// Semantic styles for the shell.
var (
	ErrorStyle      lipgloss.Style
	WarningStyle    lipgloss.Style
	PromptUserStyle lipgloss.Style
	PromptPathStyle lipgloss.Style
	DragonStyle     lipgloss.Style
)

func refreshStyles() {
	ErrorStyle = lipgloss.NewStyle().Foreground(currentTheme.Red).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(currentTheme.Peach)
	PromptUserStyle = lipgloss.NewStyle().Foreground(currentTheme.Teal)
	PromptPathStyle = lipgloss.NewStyle().Foreground(currentTheme.Blue).Bold(true)
	DragonStyle = lipgloss.NewStyle().Foreground(currentTheme.Magenta)
}
