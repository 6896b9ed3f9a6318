package views

import (
	"errors"

	"github.com/charmbracelet/lipgloss"

	"pm-launchpad/internal/session"
)

var errRenderPanic = errors.New("views: markdown renderer panicked")

// NoticeBanner renders the current notice, or "" when there is none.
func NoticeBanner(st Styles, n *session.Notice, width int) string {
	if n == nil {
		return ""
	}
	text := "! " + n.Message + "  (esc to dismiss)"
	if width > 4 {
		return st.Notice.Width(width - 2).Render(text)
	}
	return st.Notice.Render(text)
}

// BusyOverlay renders the processing indicator shown over deliverable views.
func BusyOverlay(st Styles, spinnerFrame string, width, height int) string {
	box := st.Busy.Render(spinnerFrame + " " + LabelAnalyzingContext)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
