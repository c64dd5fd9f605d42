package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/resusage/pkg/pattern"
)

const (
	maxNameWidth = 50
	maxTestWidth = 60
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
	title cases.Caser
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, title: cases.Title(language.English)}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.UsageTable:
		return t.renderUsageTable(v)
	default:
		return ""
	}
}

// KindLabel turns DB_TABLE into "Db Table".
func (t *Terminal) KindLabel(kind string) string {
	return t.title.String(strings.ReplaceAll(kind, "_", " "))
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		label := m.Label
		if m.Kind == "success" {
			label = t.KindLabel(label)
		}
		sb.WriteString(style.Render(icon + " " + label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (top %d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Bold.Render(header))
		sb.WriteString("\n")
	}

	maxName, maxKind, maxMetric := 0, 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxKind = max(maxKind, runewidth.StringWidth(item.Context))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, maxNameWidth)

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		sb.WriteString(t.theme.KindStyle(item.Context).Render(padRight(item.Context, maxKind)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Primary.Render(padRight(truncate(item.Name, maxName), maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warning.Render(padLeft(item.Metric, maxMetric)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderUsageTable(u *pattern.UsageTable) string {
	if len(u.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	if u.Label != "" {
		sb.WriteString(t.theme.Bold.Render(u.Label))
		sb.WriteString("\n")
	}

	maxTest := 0
	for _, row := range u.Rows {
		maxTest = max(maxTest, runewidth.StringWidth(row.Test))
	}
	maxTest = min(maxTest, maxTestWidth)

	indent := strings.Repeat(" ", 6)
	for _, row := range u.Rows {
		sb.WriteString("  ")
		if len(row.Resources) == 0 {
			sb.WriteString(t.theme.Muted.Render(t.theme.Icons.Idle + " "))
			sb.WriteString(padRight(truncate(row.Test, maxTest), maxTest))
			sb.WriteString(t.theme.Muted.Render("  no resources"))
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(t.theme.Success.Render(t.theme.Icons.Used + " "))
		sb.WriteString(truncate(row.Test, maxTest))
		sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("  %d", len(row.Resources))))
		sb.WriteString("\n")

		avail := t.width - runewidth.StringWidth(indent) - 2
		for _, r := range row.Resources {
			tag := t.theme.KindStyle(r.Kind).Render(r.Kind)
			nameWidth := avail - runewidth.StringWidth(r.Kind) - 1
			line := lipgloss.JoinHorizontal(lipgloss.Top,
				t.theme.Muted.Render(t.theme.Icons.Bullet+" "), tag, " ", truncate(r.Name, nameWidth))
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Used, t.theme.Success
	case "error":
		return t.theme.Icons.Warn, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

// truncate shortens s to width display columns, marking the cut with "...".
func truncate(s string, width int) string {
	if width <= 3 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
