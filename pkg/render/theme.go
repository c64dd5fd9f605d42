package render

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	// Kinds colors resource kind tags; a kind picks a stable entry by hash.
	Kinds []lipgloss.Style
	Icons ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Used   string // test touched at least one resource
	Idle   string // test touched nothing
	Warn   string
	Info   string
	Bullet string
}

// KindStyle returns the style for a resource kind tag.
func (t Theme) KindStyle(kind string) lipgloss.Style {
	if len(t.Kinds) == 0 {
		return t.Primary
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(kind))
	return t.Kinds[h.Sum32()%uint32(len(t.Kinds))]
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Primary: fg("39"),  // blue
		Success: fg("34"),  // green
		Warning: fg("214"), // orange
		Error:   fg("196"), // red
		Muted:   fg("242"), // gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Kinds:   []lipgloss.Style{fg("81"), fg("170"), fg("149"), fg("222"), fg("111")},
		Icons: ThemeIcons{
			Used:   "●",
			Idle:   "○",
			Warn:   "⚠",
			Info:   "●",
			Bullet: "·",
		},
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	return Theme{
		Name:    "orca",
		Primary: fg("75"),  // pale blue
		Success: fg("108"), // sage green
		Warning: fg("179"), // muted gold
		Error:   fg("167"), // muted red
		Muted:   fg("245"), // lighter gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Kinds:   []lipgloss.Style{fg("110"), fg("139"), fg("144"), fg("180")},
		Icons: ThemeIcons{
			Used:   "▪",
			Idle:   "▫",
			Warn:   "!",
			Info:   "·",
			Bullet: "·",
		},
	}
}

// MonoTheme returns a monochrome theme (no colors).
func MonoTheme() Theme {
	return Theme{
		Name:    "mono",
		Primary: lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Used:   "*",
			Idle:   "-",
			Warn:   "!",
			Info:   "*",
			Bullet: "-",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}
