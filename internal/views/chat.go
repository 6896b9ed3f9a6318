package views

import (
	"strings"

	"pm-launchpad/internal/domain"
	"pm-launchpad/internal/session"
)

const ChatSubtitle = "Expert Consultation Session"

// Markdown renders advisor replies. *glamour.TermRenderer satisfies it.
type Markdown interface {
	Render(in string) (string, error)
}

// ChatHeader renders the module heading and the primary action hint.
func ChatHeader(st Styles, snap session.Snapshot) string {
	return st.Title.Render(snap.Module.Heading()) + "\n" +
		st.Subtitle.Render(ChatSubtitle) + "  " +
		st.Action.Render("[ctrl+g] "+ChatPrimaryLabel(snap.Module))
}

// ChatLog renders the conversation oldest first. Advisor replies go through
// md when it is non-nil; the raw text is used if rendering fails.
func ChatLog(st Styles, snap session.Snapshot, md Markdown, spinnerFrame string) string {
	var b strings.Builder
	for _, m := range snap.State.Messages {
		b.WriteString(messageHeader(st, m))
		b.WriteString("\n")
		b.WriteString(messageBody(m, md))
		b.WriteString("\n\n")
	}
	if snap.Processing && snap.View == domain.ViewChat {
		b.WriteString(st.Muted.Render(strings.TrimSpace(spinnerFrame + " Advisor is typing...")))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func messageHeader(st Styles, m domain.ChatMessage) string {
	stamp := st.Muted.Render(m.Timestamp.Format("15:04"))
	if m.Role == domain.RoleUser {
		return st.User.Render("You") + " " + stamp
	}
	return st.Advisor.Render("Advisor") + " " + stamp
}

func messageBody(m domain.ChatMessage, md Markdown) string {
	if m.Role != domain.RoleModel || md == nil {
		return m.Content
	}
	out, err := safeRender(md, m.Content)
	if err != nil {
		return m.Content
	}
	return strings.Trim(out, "\n")
}

// safeRender guards against renderer panics on unusual input.
func safeRender(md Markdown, in string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", errRenderPanic
		}
	}()
	return md.Render(in)
}
