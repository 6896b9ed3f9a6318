package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pm-launchpad/internal/session"
)

// Charter renders the current charter as a sectioned document.
func Charter(st Styles, snap session.Snapshot, width int) string {
	c := snap.State.CurrentCharter
	if c == nil {
		return st.Muted.Render("No charter yet. Use " + LabelFinalizeCharter + " from the Project Initiation chat.")
	}
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	var b strings.Builder
	b.WriteString(st.Title.Render(c.ProjectName))
	b.WriteString("  ")
	b.WriteString(st.Action.Render("[ctrl+g] " + LabelRefreshCharter))
	b.WriteString("\n")
	b.WriteString(st.Subtitle.Render("Project Charter"))
	b.WriteString("\n")

	b.WriteString(st.Section.Render("Business Need"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(c.BusinessNeed))
	b.WriteString("\n")

	writeList(&b, st, wrap, "Scope", c.Scope, true)
	writeList(&b, st, wrap, "Objectives", c.Objectives, false)
	writeList(&b, st, wrap, "Success Criteria", c.SuccessCriteria, false)
	writeList(&b, st, wrap, "Risks", c.Risks, false)
	writeList(&b, st, wrap, "Assumptions", c.Assumptions, false)
	writeList(&b, st, wrap, "Constraints", c.Constraints, false)
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, st Styles, wrap lipgloss.Style, title string, items []string, numbered bool) {
	b.WriteString(st.Section.Render(title))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(st.Muted.Render("None recorded."))
		b.WriteString("\n")
		return
	}
	for i, item := range items {
		marker := "•"
		if numbered {
			marker = fmt.Sprintf("%d.", i+1)
		}
		b.WriteString(wrap.Render(marker + " " + item))
		b.WriteString("\n")
	}
}
