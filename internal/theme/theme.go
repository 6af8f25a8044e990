// Package theme provides the color themes for the worksetview UI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used by the sidebar and the demo host.
type Theme struct {
	Accent    lipgloss.Color // selection background, key hints
	AccentFg  lipgloss.Color // text on Accent background
	Border    lipgloss.Color
	BorderDim lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color // dirty indicator
	ErrorFg   lipgloss.Color
	LinkFg    lipgloss.Color // related-file links
}

// Theme names.
const (
	DraculaName    = "dracula"
	NordName       = "nord"
	CleanLightName = "clean-light"
)

// Dracula returns the Dracula theme (dark background, vibrant colors).
func Dracula() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#BD93F9"),
		AccentFg:  lipgloss.Color("#282A36"),
		Border:    lipgloss.Color("#6272A4"),
		BorderDim: lipgloss.Color("#44475A"),
		MutedFg:   lipgloss.Color("#6272A4"),
		TextFg:    lipgloss.Color("#F8F8F2"),
		SuccessFg: lipgloss.Color("#50FA7B"),
		WarnFg:    lipgloss.Color("#FFB86C"),
		ErrorFg:   lipgloss.Color("#FF5555"),
		LinkFg:    lipgloss.Color("#8BE9FD"),
	}
}

// Nord returns the Nord theme (arctic, bluish palette).
func Nord() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#88C0D0"),
		AccentFg:  lipgloss.Color("#2E3440"),
		Border:    lipgloss.Color("#4C566A"),
		BorderDim: lipgloss.Color("#3B4252"),
		MutedFg:   lipgloss.Color("#616E88"),
		TextFg:    lipgloss.Color("#ECEFF4"),
		SuccessFg: lipgloss.Color("#A3BE8C"),
		WarnFg:    lipgloss.Color("#EBCB8B"),
		ErrorFg:   lipgloss.Color("#BF616A"),
		LinkFg:    lipgloss.Color("#81A1C1"),
	}
}

// CleanLight returns a minimal light-background theme.
func CleanLight() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#5B21B6"),
		AccentFg:  lipgloss.Color("#FFFFFF"),
		Border:    lipgloss.Color("#9CA3AF"),
		BorderDim: lipgloss.Color("#D1D5DB"),
		MutedFg:   lipgloss.Color("#6B7280"),
		TextFg:    lipgloss.Color("#111827"),
		SuccessFg: lipgloss.Color("#047857"),
		WarnFg:    lipgloss.Color("#B45309"),
		ErrorFg:   lipgloss.Color("#B91C1C"),
		LinkFg:    lipgloss.Color("#1D4ED8"),
	}
}

// AvailableThemes lists the selectable theme names.
func AvailableThemes() []string {
	return []string{DraculaName, NordName, CleanLightName}
}

// ByName returns the theme for name, falling back to Dracula for unknown
// or empty names.
func ByName(name string) *Theme {
	switch name {
	case NordName:
		return Nord()
	case CleanLightName:
		return CleanLight()
	default:
		return Dracula()
	}
}
