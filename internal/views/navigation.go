package views

import (
	"strings"

	"pm-launchpad/internal/domain"
	"pm-launchpad/internal/session"
)

const SidebarTitle = "PM Launchpad Pro"

// OpenDeliverable switches to a deliverable view only once it exists, and
// reports whether it did.
func OpenDeliverable(a NavigationActions, snap session.Snapshot, v domain.View) bool {
	if !snap.CanView(v) {
		return false
	}
	a.SelectView(v)
	return true
}

// Navigation renders the sidebar: modules, then deliverables.
func Navigation(st Styles, snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString(st.Title.Render(SidebarTitle))
	b.WriteString("\n\n")
	b.WriteString(st.Muted.Render("MODULES"))
	b.WriteString("\n")
	for i, m := range []domain.Module{domain.ModuleInitiation, domain.ModuleStakeholderAnalysis} {
		active := snap.View == domain.ViewChat && snap.Module == m
		b.WriteString(navItem(st, fkey(i+1), m.Title(), active, true))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(st.Muted.Render("DELIVERABLES"))
	b.WriteString("\n")
	for i, d := range []struct {
		view  domain.View
		title string
	}{
		{domain.ViewCharter, "Project Charter"},
		{domain.ViewStakeholders, "Stakeholder Register"},
	} {
		b.WriteString(navItem(st, fkey(i+3), d.title, snap.View == d.view, snap.CanView(d.view)))
		b.WriteString("\n")
	}
	return st.Sidebar.Render(strings.TrimRight(b.String(), "\n"))
}

func fkey(n int) string {
	return "F" + string(rune('0'+n))
}

func navItem(st Styles, key, title string, active, enabled bool) string {
	line := key + " " + title
	switch {
	case !enabled:
		return "  " + st.Disabled.Render(line)
	case active:
		return st.Active.Render("> " + line)
	default:
		return "  " + line
	}
}
