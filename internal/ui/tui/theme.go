package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colours used by the terminal UI.
type Theme struct {
	Name    string
	Accent  string
	Text    string
	Muted   string
	Success string
	Warning string
	Danger  string
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Doc      lipgloss.Style
	Title    lipgloss.Style
	Status   lipgloss.Style
	Button   lipgloss.Style
	Disabled lipgloss.Style
	Failure  lipgloss.Style
	Pending  lipgloss.Style
	Help     lipgloss.Style
	Spinner  lipgloss.Style
}

var themes = map[string]Theme{
	"default": {
		Name:    "Default",
		Accent:  "#ff4f00",
		Text:    "#fafafa",
		Muted:   "241",
		Success: "46",
		Warning: "220",
		Danger:  "196",
	},
	"mono": {
		Name:    "Mono",
		Accent:  "250",
		Text:    "255",
		Muted:   "240",
		Success: "250",
		Warning: "250",
		Danger:  "255",
	},
}

// ThemeByName returns the named theme, or the default one when it is unknown.
func ThemeByName(name string) Theme {
	if theme, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return theme
	}

	return themes["default"]
}

// Styles returns lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Doc: lipgloss.NewStyle().Margin(1, 2), //nolint:mnd // Outer margin.
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Text)).
			Background(lipgloss.Color(t.Accent)).
			Padding(0, 1),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		Button: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Success)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(0, 2), //nolint:mnd // Button padding.
		Disabled: lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color(t.Muted)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Muted)).
			Padding(0, 2), //nolint:mnd // Button padding.
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)),
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		Help:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Spinner: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
	}
}
