package render

import (
	"encoding/json"

	"github.com/dkoosis/resusage/pkg/pattern"
)

// JSON renders a usage report as structured JSON for automation.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// jsonReport is the top-level JSON structure. Tests is never null so a
// consumer can iterate it without a nil check.
type jsonReport struct {
	Summary *jsonSummary  `json:"summary,omitempty"`
	Shared  []jsonShared  `json:"shared,omitempty"`
	Tests   []jsonTestRow `json:"tests"`
}

type jsonSummary struct {
	Label   string       `json:"label"`
	Metrics []jsonMetric `json:"metrics"`
}

type jsonMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type jsonShared struct {
	Rank  int    `json:"rank"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	Tests int    `json:"tests"`
}

type jsonTestRow struct {
	Test      string         `json:"test"`
	Resources []jsonResource `json:"resources"`
}

type jsonResource struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Render formats the report patterns as one JSON document.
func (j *JSON) Render(patterns []pattern.Pattern) string {
	out := jsonReport{Tests: []jsonTestRow{}}

	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			s := &jsonSummary{Label: v.Label, Metrics: make([]jsonMetric, 0, len(v.Metrics))}
			for _, m := range v.Metrics {
				s.Metrics = append(s.Metrics, jsonMetric{Label: m.Label, Value: m.Value})
			}
			out.Summary = s
		case *pattern.Leaderboard:
			for _, item := range v.Items {
				out.Shared = append(out.Shared, jsonShared{
					Rank:  item.Rank,
					Type:  item.Context,
					Name:  item.Name,
					Tests: int(item.Value),
				})
			}
		case *pattern.UsageTable:
			for _, row := range v.Rows {
				r := jsonTestRow{Test: row.Test, Resources: make([]jsonResource, 0, len(row.Resources))}
				for _, res := range row.Resources {
					r.Resources = append(r.Resources, jsonResource{Type: res.Kind, Name: res.Name})
				}
				out.Tests = append(out.Tests, r)
			}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}
