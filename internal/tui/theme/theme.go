// Package theme defines color themes for the goalplan TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps the roles a plan screen needs onto concrete colors.
type Theme struct {
	Name string

	TextPrimary lipgloss.Color
	TextMuted   lipgloss.Color // labels, metadata
	TextDim     lipgloss.Color // hints, axes, empty bar cells

	Border       lipgloss.Color
	BorderFocus  lipgloss.Color // active tab, focused card
	Accent       lipgloss.Color
	AccentBright lipgloss.Color // logo, headline figures

	OnTrack   lipgloss.Color // goal reached, high confidence, looks_solid
	Caution   lipgloss.Color // usable but uncertain forecast
	Warning   lipgloss.Color // advisor warnings, flat-rate fallback
	Shortfall lipgloss.Color // projection below goal, very low confidence
	Error     lipgloss.Color
	Forecast  lipgloss.Color // FX forecast sparkline
	Building  lipgloss.Color // balance still far from the goal
}

// palette is the raw swatch a theme is derived from.
type palette struct {
	text, muted, dim, border string
	accent, accentHi         string
	green, yellow, orange    string
	red, blue, cyan          string
}

func newTheme(name string, p palette) Theme {
	return Theme{
		Name:         name,
		TextPrimary:  lipgloss.Color(p.text),
		TextMuted:    lipgloss.Color(p.muted),
		TextDim:      lipgloss.Color(p.dim),
		Border:       lipgloss.Color(p.border),
		BorderFocus:  lipgloss.Color(p.accent),
		Accent:       lipgloss.Color(p.accent),
		AccentBright: lipgloss.Color(p.accentHi),
		OnTrack:      lipgloss.Color(p.green),
		Caution:      lipgloss.Color(p.yellow),
		Warning:      lipgloss.Color(p.orange),
		Shortfall:    lipgloss.Color(p.red),
		Error:        lipgloss.Color(p.red),
		Forecast:     lipgloss.Color(p.blue),
		Building:     lipgloss.Color(p.cyan),
	}
}

var (
	// FlexokiDark is the default: warm, paper-like dark tones.
	FlexokiDark = newTheme("flexoki-dark", palette{
		text: "#FFFCF0", muted: "#878580", dim: "#575653", border: "#403E3C",
		accent: "#3AA99F", accentHi: "#5BC8BE",
		green: "#879A39", yellow: "#D0A215", orange: "#DA702C",
		red: "#D14D41", blue: "#4385BE", cyan: "#24837B",
	})

	CatppuccinMocha = newTheme("catppuccin-mocha", palette{
		text: "#CDD6F4", muted: "#A6ADC8", dim: "#6C7086", border: "#585B70",
		accent: "#89B4FA", accentHi: "#B4D0FB",
		green: "#A6E3A1", yellow: "#F9E2AF", orange: "#FAB387",
		red: "#F38BA8", blue: "#89B4FA", cyan: "#94E2D5",
	})

	TokyoNight = newTheme("tokyo-night", palette{
		text: "#C0CAF5", muted: "#A9B1D6", dim: "#565F89", border: "#565F89",
		accent: "#7AA2F7", accentHi: "#A9C1FF",
		green: "#9ECE6A", yellow: "#E0AF68", orange: "#FF9E64",
		red: "#F7768E", blue: "#7AA2F7", cyan: "#7DCFFF",
	})

	// Terminal sticks to the ANSI 16 colors.
	Terminal = newTheme("terminal", palette{
		text: "15", muted: "7", dim: "8", border: "8",
		accent: "6", accentHi: "14",
		green: "2", yellow: "3", orange: "3",
		red: "1", blue: "4", cyan: "6",
	})
)

// All lists the themes offered by setup, default first.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Active is the currently selected theme.
var Active = FlexokiDark

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names returns the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ForConfidence maps a forecast confidence in [0, 1] to a status color.
func (t Theme) ForConfidence(c float64) lipgloss.Color {
	switch {
	case c >= 0.8:
		return t.OnTrack
	case c >= 0.6:
		return t.Caution
	case c >= 0.3:
		return t.Warning
	default:
		return t.Shortfall
	}
}

// ForSuggestion returns the color for an advisor hint.
func (t Theme) ForSuggestion(warning bool) lipgloss.Color {
	if warning {
		return t.Warning
	}
	return t.OnTrack
}

// ForProjection colors a projected balance against its goal.
func (t Theme) ForProjection(projected, goal float64) lipgloss.Color {
	if projected < goal {
		return t.Shortfall
	}
	return t.OnTrack
}
