package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/sebdah/goldie/v2"
)

func fixtureReport() billing.OptimizationReport {
	return billing.OptimizationReport{
		ReportID:              "11111111-2222-3333-4444-555555555555",
		GeneratedAt:           time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		TotalCost:             1000,
		TotalPotentialSavings: 270,
		ServiceRecommendations: map[string]billing.ServiceRecommendations{
			"Amazon Elastic Compute Cloud - Compute": {
				CurrentCost:      600,
				PotentialSavings: 270,
				Recommendations: []billing.Recommendation{
					{
						Type:             "right_sizing",
						Priority:         billing.PriorityHigh,
						Scope:            "Amazon Elastic Compute Cloud - Compute",
						Description:      "High average cost per record",
						Action:           "Right-size overprovisioned instances",
						PotentialSavings: 180,
						BaselineCost:     600,
						Confidence:       0.5,
					},
					{
						Type:             "spot_instances",
						Priority:         billing.PriorityMedium,
						Scope:            "Amazon Elastic Compute Cloud - Compute",
						Description:      "Consistently billed workload",
						Action:           "Move flexible workloads to spot capacity",
						PotentialSavings: 90,
						BaselineCost:     600,
						Confidence:       0.4,
					},
				},
			},
		},
		ResourceRecommendations: []billing.Recommendation{
			{
				Type:         "possibly_idle",
				Priority:     billing.PriorityLow,
				Scope:        "i-0abc123",
				Description:  "Bottom-quintile resource spend",
				Action:       "Verify the resource is still needed",
				BaselineCost: 4,
				Confidence:   0.4,
			},
		},
		GeneralRecommendations: []billing.Recommendation{
			{
				Type:        "monitoring_enhancement",
				Priority:    billing.PriorityMedium,
				Description: "Continuous cost visibility",
				Action:      "Enable detailed billing alerts",
				Confidence:  0.6,
			},
		},
		PriorityActions: []billing.PriorityAction{
			{Ordinal: 0, Category: "cost_spike_investigation", Scope: "portfolio", Action: "Investigate the recent cost spike"},
			{Ordinal: 1, Category: "right_sizing", Scope: "Amazon Elastic Compute Cloud - Compute", Action: "Right-size overprovisioned instances", PotentialSavings: 180},
		},
		Trend: billing.TrendInsight{
			Direction:     billing.TrendIncreasing,
			ChangeRate:    25,
			RecentAvgCost: 150,
		},
		ServiceCosts: []billing.CostSummary{
			{Key: "Amazon Elastic Compute Cloud - Compute", TotalCost: 600, MeanCost: 60, RecordCount: 10},
			{Key: "Amazon Simple Storage Service", TotalCost: 400, MeanCost: 40, RecordCount: 10},
		},
		DailyCosts: []billing.DailyCost{
			{Date: time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC), TotalCost: 120},
			{Date: time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), TotalCost: 150},
		},
	}
}

func TestWriteCSVGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := WriteCSV(fixtureReport(), path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	g := goldie.New(t)
	g.Assert(t, "csv_export", data)
}

func TestRenderText(t *testing.T) {
	out := RenderText(fixtureReport())

	for _, want := range []string{
		"CostScope Analysis",
		"$1000.00",
		"$270.00",
		"increasing +25.0% week over week",
		"Investigate the recent cost spike",
		"Amazon Elastic Compute Cloud - Compute",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
}

func TestRenderTextEmpty(t *testing.T) {
	out := RenderText(billing.OptimizationReport{
		ReportID:    "empty",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Empty:       true,
	})

	if !strings.Contains(out, "No billing records") {
		t.Errorf("expected empty-dataset notice, got:\n%s", out)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSON(fixtureReport(), path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"report_id": "11111111-2222-3333-4444-555555555555"`) {
		t.Errorf("serialized report missing report_id")
	}
}

func TestDashboardEscapesScriptPayload(t *testing.T) {
	r := fixtureReport()
	r.PriorityActions = append(r.PriorityActions, billing.PriorityAction{
		Ordinal: 2,
		Scope:   `svc<script>alert(1)</script>`,
		Action:  `do"; alert('XSS'); "`,
	})
	r.DailyCosts = nil

	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteDashboard(r, path); err != nil {
		t.Fatalf("WriteDashboard failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if strings.Contains(content, "<script>alert(1)</script>") {
		t.Error("table cell was not HTML-escaped")
	}
	if !strings.Contains(content, "CostScope Report") {
		t.Error("expected rendered page title")
	}
}
