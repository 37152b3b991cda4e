package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// SampleCompany returns a small company with one section, one category and
// two metrics over two periods. The second metric lacks the 2024Q2 value.
func SampleCompany(ticker, name string) *core.Company {
	bold := &core.Styling{TextBold: true, Border: "top: thin"}
	return &core.Company{
		Company:   name,
		Ticker:    ticker,
		UpdatedAt: "2024-05-01T12:00:00",
		LastUpdatedWith: &core.UpdateSource{
			Source:   "10-Q Filing",
			FileLink: "https://example.com/10q",
		},
		Metrics: []core.Metric{
			{
				Section:  core.HierarchyNode{Name: "Income Statement", Order: 5},
				Category: core.HierarchyNode{Name: "Revenue", Order: 6, Styling: bold},
				Name:     core.NameNode{Name: "Total Revenue", Order: 7},
				Unit:     "Dollar",
				Source:   core.Source{Value: "10-Q", Link: "https://example.com/10q#rev"},
				TagID:    "REV",
				Values: []core.PeriodValue{
					{Period: "2024Q1", Fiscal: "1Q24", FiscalDate: "2024-03-31T00:00:00", Value: 2500000.0, Comment: core.StrPtr("restated")},
					{Period: "2024Q2", Fiscal: "2Q24", FiscalDate: "2024-06-30T00:00:00", Value: 2.5},
				},
			},
			{
				Section:  core.HierarchyNode{Name: "Income Statement", Order: 5},
				Category: core.HierarchyNode{Name: "Revenue", Order: 6, Styling: bold},
				Name:     core.NameNode{Name: "Margin", Order: 8},
				Unit:     "Percent",
				TagID:    "MGN",
				Values: []core.PeriodValue{
					{Period: "2024Q1", Fiscal: "1Q24", FiscalDate: "2024-03-31T00:00:00", Value: "-45,000"},
				},
			},
		},
	}
}

// WriteJSON marshals v into a file under t.TempDir and returns its path.
func WriteJSON(t testing.TB, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", name, err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
