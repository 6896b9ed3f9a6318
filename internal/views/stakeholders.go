package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"pm-launchpad/internal/domain"
	"pm-launchpad/internal/session"
)

// RegisterHeaders are the columns of the stakeholder register table.
var RegisterHeaders = []string{"#", "Name", "Role", "Category", "Influence", "Interest", "Quadrant"}

// Stakeholders renders the engagement grid, the engagement cards and the
// register table.
func Stakeholders(st Styles, snap session.Snapshot, width int) string {
	list := snap.State.Stakeholders
	if len(list) == 0 {
		return st.Muted.Render("No stakeholders yet. Use " + LabelMapStakeholders + " from the Stakeholder Analysis chat.")
	}
	var b strings.Builder
	b.WriteString(st.Title.Render("Stakeholder Register"))
	b.WriteString("  ")
	b.WriteString(st.Action.Render("[ctrl+g] " + LabelRefineRegister))
	b.WriteString("\n")

	b.WriteString(st.Section.Render("Engagement Grid"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, EngagementGrid(list), "   ", quadrantLegend()))
	b.WriteString("\n")

	b.WriteString(st.Section.Render("Strategic Engagement"))
	b.WriteString("\n")
	b.WriteString(engagementCards(st, list, width))
	b.WriteString("\n")

	b.WriteString(st.Section.Render("Register"))
	b.WriteString("\n")
	b.WriteString(RegisterTable(st, list, width))
	return b.String()
}

// EngagementGrid plots stakeholders by their 1-based position in list on a
// 10x10 grid, influence on the vertical axis and interest on the horizontal.
// Cells holding more than one stakeholder show "+".
func EngagementGrid(list []domain.Stakeholder) string {
	var cells [domain.MaxScore][domain.MaxScore]string
	for i, s := range list {
		if s.Validate() != nil {
			continue
		}
		row, col := domain.MaxScore-s.Influence, s.Interest-1
		if cells[row][col] == "" {
			cells[row][col] = strconv.Itoa(i + 1)
		} else {
			cells[row][col] = "+"
		}
	}

	var b strings.Builder
	for r := 0; r < domain.MaxScore; r++ {
		influence := domain.MaxScore - r
		b.WriteString(padLeft(strconv.Itoa(influence), 2))
		b.WriteString(" |")
		for c := 0; c < domain.MaxScore; c++ {
			mark := cells[r][c]
			if mark == "" {
				q := domain.Stakeholder{Interest: c + 1, Influence: influence}.Quadrant()
				mark = quadrantStyle(string(q)).Render("·")
			}
			b.WriteString(padLeft(mark, 2))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	b.WriteString("   └" + strings.Repeat("───", domain.MaxScore) + "\n")
	b.WriteString("    ")
	for c := 1; c <= domain.MaxScore; c++ {
		b.WriteString(padLeft(strconv.Itoa(c), 2) + " ")
	}
	b.WriteString("\n    influence ↑  interest →")
	return b.String()
}

func quadrantLegend() string {
	var b strings.Builder
	for _, q := range []domain.Quadrant{domain.QuadrantManage, domain.QuadrantSatisfy, domain.QuadrantInform, domain.QuadrantMonitor} {
		b.WriteString(quadrantStyle(string(q)).Render("■ " + q.Label()))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func engagementCards(st Styles, list []domain.Stakeholder, width int) string {
	cardWidth := 36
	perRow := 1
	if width > cardWidth {
		perRow = width / (cardWidth + 3)
	}
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	var row []string
	for i, s := range list {
		q := s.Quadrant()
		body := strings.Join([]string{
			st.Advisor.Render(strconv.Itoa(i+1)+". "+s.Name) + " " + st.Muted.Render(string(s.Category)),
			st.Muted.Render(s.Role),
			quadrantStyle(string(q)).Render(q.Label()),
			"Expects: " + s.Expectations,
			"Strategy: " + s.Strategy,
		}, "\n")
		row = append(row, st.Card.Width(cardWidth).Render(body))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RegisterRows returns the table rows in register order with exact scores.
func RegisterRows(list []domain.Stakeholder) [][]string {
	rows := make([][]string, 0, len(list))
	for i, s := range list {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Name,
			s.Role,
			string(s.Category),
			scoreCell(s.Influence),
			scoreCell(s.Interest),
			s.Quadrant().Label(),
		})
	}
	return rows
}

// RegisterTable renders RegisterRows with lipgloss/table.
func RegisterTable(st Styles, list []domain.Stakeholder, width int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(RegisterHeaders...).
		Rows(RegisterRows(list)...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.TableHead
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

// scoreCell shows the exact score followed by a bar.
func scoreCell(v int) string {
	n := v
	if n < 0 {
		n = 0
	}
	if n > domain.MaxScore {
		n = domain.MaxScore
	}
	return strconv.Itoa(v) + " " + strings.Repeat("█", n) + strings.Repeat("░", domain.MaxScore-n)
}

func padLeft(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}
