package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/resusage/pkg/pattern"
)

// LLM renders patterns as terse plain text optimized for AI consumption.
// Zero ANSI codes, one line per record, no decoration.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.renderSummary(&sb, v)
		case *pattern.Leaderboard:
			l.renderLeaderboard(&sb, v)
		case *pattern.UsageTable:
			l.renderUsageTable(&sb, v)
		}
	}
	return sb.String()
}

func (l *LLM) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	sb.WriteString(s.Label + "\n")
	for _, m := range s.Metrics {
		fmt.Fprintf(sb, "  %s: %s\n", m.Label, m.Value)
	}
}

func (l *LLM) renderLeaderboard(sb *strings.Builder, lb *pattern.Leaderboard) {
	if len(lb.Items) == 0 {
		return
	}
	sb.WriteString("\n## " + lb.Label + "\n")
	for _, item := range lb.Items {
		fmt.Fprintf(sb, "  %s:%s %s\n", item.Context, item.Name, item.Metric)
	}
}

func (l *LLM) renderUsageTable(sb *strings.Builder, u *pattern.UsageTable) {
	if len(u.Rows) == 0 {
		return
	}
	sb.WriteString("\n## " + u.Label + "\n")
	for _, row := range u.Rows {
		if len(row.Resources) == 0 {
			fmt.Fprintf(sb, "%s: none\n", row.Test)
			continue
		}
		fmt.Fprintf(sb, "%s:\n", row.Test)
		for _, r := range row.Resources {
			fmt.Fprintf(sb, "  %s:%s\n", r.Kind, r.Name)
		}
	}
}
