package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = lipgloss.Color("#bd93f9")
	colorText   = lipgloss.Color("#f8f8f2")
	colorMuted  = lipgloss.Color("#6272a4")
	colorDanger = lipgloss.Color("#ff5555")
	colorOK     = lipgloss.Color("#50fa7b")
	colorPanel  = lipgloss.Color("#282a36")
)

type styles struct {
	Header     lipgloss.Style
	Footer     lipgloss.Style
	Toast      lipgloss.Style
	Tile       lipgloss.Style
	TileCursor lipgloss.Style
	TileBroken lipgloss.Style
	TileName   lipgloss.Style
	Muted      lipgloss.Style
	Danger     lipgloss.Style
	Ready      lipgloss.Style
	Modal      lipgloss.Style
	ModalTitle lipgloss.Style
	Error      lipgloss.Style
}

func defaultStyles() styles {
	tile := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1)

	return styles{
		Header: lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(colorMuted),
		Toast: lipgloss.NewStyle().
			Foreground(colorPanel).
			Background(colorAccent).
			Padding(0, 1),
		Tile:       tile,
		TileCursor: tile.BorderForeground(colorAccent),
		TileBroken: tile.BorderForeground(colorDanger),
		TileName: lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),
		Danger: lipgloss.NewStyle().
			Foreground(colorDanger),
		Ready: lipgloss.NewStyle().
			Foreground(colorOK),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent).
			Background(colorPanel).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true),
		Error: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(1, 3),
	}
}
