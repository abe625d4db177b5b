package presentation

import "github.com/charmbracelet/lipgloss"

// Colors used for human-readable CLI output.
var (
	AccentColor  = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}
	AddedColor   = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	DeletedColor = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
)

// Styles groups the lipgloss styles a Formatter paints with.
type Styles struct {
	Header  lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Active  lipgloss.Style
	Added   lipgloss.Style
	Deleted lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns the CLI palette.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(AccentColor),
		Key:     lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(MutedColor),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(AddedColor),
		Added:   lipgloss.NewStyle().Foreground(AddedColor),
		Deleted: lipgloss.NewStyle().Foreground(DeletedColor),
		Warning: lipgloss.NewStyle().Foreground(WarningColor),
	}
}
