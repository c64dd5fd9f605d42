// Package mapper converts collected resource usage into report patterns.
package mapper

import (
	"fmt"
	"sort"

	"github.com/dkoosis/resusage/pkg/pattern"
	"github.com/dkoosis/resusage/pkg/resource"
	"github.com/dkoosis/resusage/pkg/tracker"
)

// DefaultTop is the leaderboard length used by the CLI.
const DefaultTop = 10

// FromUsage converts a usage map into patterns.
// Returns: Summary + Leaderboard of the most shared resources + UsageTable.
func FromUsage(u *tracker.UsageMap, top int) []pattern.Pattern {
	patterns := []pattern.Pattern{usageSummary(u)}
	if lb := sharedResources(u, top); lb != nil {
		patterns = append(patterns, lb)
	}
	if u.Len() > 0 {
		patterns = append(patterns, usageTable(u))
	}
	return patterns
}

func usageSummary(u *tracker.UsageMap) *pattern.Summary {
	kindCounts := make(map[resource.Kind]int)
	distinct := make(map[resource.Record]bool)
	var idle int
	for _, test := range u.Tests() {
		recs := u.Records(test)
		if len(recs) == 0 {
			idle++
		}
		for _, rec := range recs {
			kindCounts[rec.Kind]++
			distinct[rec] = true
		}
	}

	metrics := []pattern.SummaryItem{
		{Label: "Tests", Value: fmt.Sprintf("%d", u.Len()), Kind: "info"},
	}
	kinds := make([]string, 0, len(kindCounts))
	for k := range kindCounts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		metrics = append(metrics, pattern.SummaryItem{
			Label: k, Value: fmt.Sprintf("%d", kindCounts[resource.Kind(k)]), Kind: "success",
		})
	}
	if idle > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Without resources", Value: fmt.Sprintf("%d", idle), Kind: "warning",
		})
	}

	return &pattern.Summary{
		Label: fmt.Sprintf("RESOURCES: %d tests, %d records, %d distinct",
			u.Len(), u.RecordCount(), len(distinct)),
		Metrics: metrics,
	}
}

// sharedResources ranks resources by how many tests touched them.
// Returns nil when no resource is used by more than one test.
func sharedResources(u *tracker.UsageMap, top int) *pattern.Leaderboard {
	users := make(map[resource.Record]int)
	for _, test := range u.Tests() {
		seen := make(map[resource.Record]bool)
		for _, rec := range u.Records(test) {
			if !seen[rec] {
				seen[rec] = true
				users[rec]++
			}
		}
	}

	type entry struct {
		rec   resource.Record
		tests int
	}
	var entries []entry
	for rec, n := range users {
		if n > 1 {
			entries = append(entries, entry{rec, n})
		}
	}
	if len(entries) == 0 {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].tests != entries[j].tests {
			return entries[i].tests > entries[j].tests
		}
		if entries[i].rec.Kind != entries[j].rec.Kind {
			return entries[i].rec.Kind < entries[j].rec.Kind
		}
		return entries[i].rec.Name < entries[j].rec.Name
	})

	total := len(entries)
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	lb := &pattern.Leaderboard{
		Label:      "Shared resources",
		MetricName: "tests",
		TotalCount: total,
		ShowRank:   true,
	}
	for i, e := range entries {
		lb.Items = append(lb.Items, pattern.LeaderboardItem{
			Name:    e.rec.Name,
			Metric:  fmt.Sprintf("%d tests", e.tests),
			Value:   float64(e.tests),
			Rank:    i + 1,
			Context: string(e.rec.Kind),
		})
	}
	return lb
}

func usageTable(u *tracker.UsageMap) *pattern.UsageTable {
	table := &pattern.UsageTable{Label: "Resources by test"}
	for _, test := range u.Tests() {
		row := pattern.UsageRow{Test: test}
		for _, rec := range u.Records(test) {
			row.Resources = append(row.Resources, pattern.UsageResource{Kind: string(rec.Kind), Name: rec.Name})
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
