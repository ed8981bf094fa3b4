package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/eringen/blogfront/theme"
)

// styles holds every lipgloss style the browser renders with.
type styles struct {
	Title     lipgloss.Style
	Meta      lipgloss.Style
	Excerpt   lipgloss.Style
	Tag       lipgloss.Style
	ActiveTag lipgloss.Style
	Cursor    lipgloss.Style
	Selected  lipgloss.Style
	Fallback  lipgloss.Style
	Divider   lipgloss.Style
	Help      lipgloss.Style
	Status    lipgloss.Style
}

type palette struct {
	fg, dim, accent, selectedBg, tagBg, warn lipgloss.Color
}

var palettes = map[theme.Theme]palette{
	theme.Light: {fg: "235", dim: "244", accent: "25", selectedBg: "254", tagBg: "253", warn: "160"},
	theme.Dark:  {fg: "252", dim: "243", accent: "111", selectedBg: "236", tagBg: "238", warn: "203"},
}

func newStyles(t theme.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[theme.Light]
	}
	return styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(p.fg),
		Meta:      lipgloss.NewStyle().Foreground(p.dim),
		Excerpt:   lipgloss.NewStyle().Foreground(p.fg),
		Tag:       lipgloss.NewStyle().Foreground(p.dim).Background(p.tagBg).Padding(0, 1),
		ActiveTag: lipgloss.NewStyle().Bold(true).Foreground(p.accent).Background(p.tagBg).Padding(0, 1),
		Cursor:    lipgloss.NewStyle().Foreground(p.accent),
		Selected:  lipgloss.NewStyle().Background(p.selectedBg),
		Fallback:  lipgloss.NewStyle().Italic(true).Foreground(p.dim),
		Divider:   lipgloss.NewStyle().Foreground(p.dim),
		Help:      lipgloss.NewStyle().Foreground(p.dim),
		Status:    lipgloss.NewStyle().Foreground(p.warn),
	}
}
