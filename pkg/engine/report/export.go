package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/DrSkyle/costscope/pkg/billing"
)

// ExportItem is one flattened recommendation row shared by the CSV and
// JSON exporters.
type ExportItem struct {
	Type             string  `json:"type"`
	Priority         string  `json:"priority"`
	Scope            string  `json:"scope"`
	Description      string  `json:"description"`
	Action           string  `json:"action"`
	PotentialSavings float64 `json:"potential_savings"`
	BaselineCost     float64 `json:"baseline_cost"`
	Confidence       float64 `json:"confidence"`
}

// MarshalCSV renders every recommendation in the report as CSV,
// highest savings first.
func MarshalCSV(r billing.OptimizationReport) ([]byte, error) {
	items := flatten(r)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Type",
		"Priority",
		"Scope",
		"Description",
		"Action",
		"PotentialSavings",
		"BaselineCost",
		"Confidence",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, item := range items {
		record := []string{
			item.Type,
			item.Priority,
			item.Scope,
			item.Description,
			item.Action,
			fmt.Sprintf("%.2f", item.PotentialSavings),
			fmt.Sprintf("%.2f", item.BaselineCost),
			fmt.Sprintf("%.2f", item.Confidence),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// WriteCSV writes the recommendation CSV to a file.
func WriteCSV(r billing.OptimizationReport, path string) error {
	data, err := MarshalCSV(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MarshalJSON renders the full report, including aggregates and trend.
func MarshalJSON(r billing.OptimizationReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteJSON writes the full report to a JSON file.
func WriteJSON(r billing.OptimizationReport, path string) error {
	data, err := MarshalJSON(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func flatten(r billing.OptimizationReport) []ExportItem {
	var items []ExportItem

	add := func(recs []billing.Recommendation) {
		for _, rec := range recs {
			items = append(items, ExportItem{
				Type:             rec.Type,
				Priority:         string(rec.Priority),
				Scope:            rec.Scope,
				Description:      rec.Description,
				Action:           rec.Action,
				PotentialSavings: rec.PotentialSavings,
				BaselineCost:     rec.BaselineCost,
				Confidence:       rec.Confidence,
			})
		}
	}

	for _, svc := range sortedServiceNames(r.ServiceRecommendations) {
		add(r.ServiceRecommendations[svc].Recommendations)
	}
	add(r.ResourceRecommendations)
	add(r.GeneralRecommendations)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PotentialSavings > items[j].PotentialSavings
	})
	return items
}

func sortedServiceNames(m map[string]billing.ServiceRecommendations) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
