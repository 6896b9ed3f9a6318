// Package views renders session snapshots as terminal text. Every function is
// a pure function of its arguments.
package views

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#4F46E5")
	colorAccent  = lipgloss.Color("#10B981")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#D1D5DB")
	colorDanger  = lipgloss.Color("#DC2626")
	colorWarning = lipgloss.Color("#F59E0B")

	quadrantColors = map[string]lipgloss.Color{
		"Manage":  lipgloss.Color("#DC2626"),
		"Satisfy": lipgloss.Color("#F59E0B"),
		"Inform":  lipgloss.Color("#2563EB"),
		"Monitor": lipgloss.Color("#6B7280"),
	}
)

// Styles groups the lipgloss styles shared by all views.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Section   lipgloss.Style
	Muted     lipgloss.Style
	User      lipgloss.Style
	Advisor   lipgloss.Style
	Active    lipgloss.Style
	Disabled  lipgloss.Style
	Card      lipgloss.Style
	Notice    lipgloss.Style
	Busy      lipgloss.Style
	Sidebar   lipgloss.Style
	Action    lipgloss.Style
	TableHead lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Subtitle:  lipgloss.NewStyle().Italic(true).Foreground(colorMuted),
		Section:   lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		User:      lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Advisor:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Active:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Disabled:  lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		Notice:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorDanger).Foreground(colorDanger).Padding(0, 1),
		Busy:      lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(colorWarning).Padding(1, 4).Bold(true),
		Sidebar:   lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(colorBorder).PaddingRight(1),
		Action:    lipgloss.NewStyle().Foreground(colorAccent),
		TableHead: lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1),
	}
}

func quadrantStyle(q string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(quadrantColors[q])
}
