// Package billing defines the immutable data model shared by the analysis
// pipeline: raw cost records, aggregated summaries, anomalies, and the
// optimization report handed to renderers and notifiers.
package billing

import "time"

// CostRecord is one atomic billed amount tied to a date, service, and region.
// Records are immutable once ingested.
type CostRecord struct {
	Date       time.Time `json:"date"`
	Service    string    `json:"service"`
	Region     string    `json:"region"`
	ResourceID string    `json:"resource_id,omitempty"`
	Cost       float64   `json:"cost"`
	Currency   string    `json:"currency"`
	Provider   string    `json:"provider,omitempty"`

	// NonAuthoritative marks fallback data substituted when a live provider
	// API was unreachable. Such figures are placeholders, not billing truth.
	NonAuthoritative bool `json:"non_authoritative,omitempty"`
}

// Day returns the record's date truncated to a calendar day in UTC.
func (r CostRecord) Day() time.Time {
	return time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
}

// CostSummary aggregates records that share a grouping key (service, region,
// or resource ID).
type CostSummary struct {
	Key         string  `json:"key"`
	TotalCost   float64 `json:"total_cost"`
	MeanCost    float64 `json:"mean_cost"`
	RecordCount int     `json:"record_count"`
}

// DailyCost is one point of the daily cost series.
type DailyCost struct {
	Date      time.Time `json:"date"`
	TotalCost float64   `json:"total_cost"`
}

// AnomalyType classifies a flagged day relative to the series mean.
type AnomalyType string

const (
	AnomalyHigh AnomalyType = "high"
	AnomalyLow  AnomalyType = "low"
)

// Anomaly is a day whose cost deviates statistically from its series.
// Deviation is measured in standard-deviation units of the same series the
// anomaly was detected in.
type Anomaly struct {
	Date      time.Time   `json:"date"`
	Cost      float64     `json:"cost"`
	Type      AnomalyType `json:"type"`
	Deviation float64     `json:"deviation"`
}

// Priority tags a recommendation's urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is a structured, quantified cost-reduction suggestion.
// Produced by the rule engine; immutable afterwards.
type Recommendation struct {
	// Type is the rule family tag, e.g. "right_sizing" or "reserved_capacity".
	Type     string   `json:"type"`
	Priority Priority `json:"priority"`
	// Scope names what the recommendation attaches to: a service name, a
	// resource ID, or "" for portfolio-level advice.
	Scope            string  `json:"scope,omitempty"`
	Description      string  `json:"description"`
	Action           string  `json:"action"`
	PotentialSavings float64 `json:"potential_savings"`
	// BaselineCost is the spend the savings estimate was derived from.
	// Zero for qualitative recommendations.
	BaselineCost float64 `json:"baseline_cost,omitempty"`
	// Confidence is a 0-1 score; rule-table estimates carry 0.5 unless the
	// rule states otherwise.
	Confidence float64 `json:"confidence"`
}

// PriorityAction is a planner-ranked entry of the final action list.
type PriorityAction struct {
	// Ordinal ranks urgency: 0 urgent trend-driven, 1 high, 2 medium, 3 low.
	Ordinal          int     `json:"ordinal"`
	Category         string  `json:"category"`
	Scope            string  `json:"scope,omitempty"`
	Description      string  `json:"description"`
	Action           string  `json:"action"`
	PotentialSavings float64 `json:"potential_savings"`
}

// ServiceRecommendations groups a service's recommendations with its subtotal.
type ServiceRecommendations struct {
	CurrentCost      float64          `json:"current_cost"`
	PotentialSavings float64          `json:"potential_savings"`
	Recommendations  []Recommendation `json:"recommendations"`
}

// TrendDirection is the coarse daily-series slope classification.
type TrendDirection string

const (
	TrendIncreasing       TrendDirection = "increasing"
	TrendDecreasing       TrendDirection = "decreasing"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// TrendInsight summarizes the daily series direction and anomalies.
type TrendInsight struct {
	Direction     TrendDirection `json:"direction"`
	ChangeRate    float64        `json:"change_rate"`
	RecentAvgCost float64        `json:"recent_avg_cost"`
	Anomalies     []Anomaly      `json:"anomalies,omitempty"`
}

// OptimizationReport is the single output contract of an analysis run.
// Built once and handed to report renderers and notifiers read-only.
type OptimizationReport struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalCost              float64 `json:"total_cost"`
	TotalPotentialSavings  float64 `json:"total_potential_savings"`

	ServiceRecommendations  map[string]ServiceRecommendations `json:"service_recommendations"`
	ResourceRecommendations []Recommendation                  `json:"resource_recommendations"`
	GeneralRecommendations  []Recommendation                  `json:"general_recommendations"`
	PriorityActions         []PriorityAction                  `json:"priority_actions"`

	Trend TrendInsight `json:"trend"`

	ServiceCosts  []CostSummary `json:"service_costs"`
	RegionCosts   []CostSummary `json:"region_costs"`
	ResourceCosts []CostSummary `json:"resource_costs"`
	DailyCosts    []DailyCost   `json:"daily_costs"`

	// Empty is set when the input dataset had no analyzable records.
	Empty bool `json:"empty,omitempty"`
	// DroppedRecords counts malformed rows discarded during ingestion.
	DroppedRecords int `json:"dropped_records,omitempty"`
	// ProviderErrors lists providers whose fetch failed, keyed by name.
	ProviderErrors map[string]string `json:"provider_errors,omitempty"`
}
