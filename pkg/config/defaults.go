// Package config defines default analysis parameters and rule tuning knobs.
package config

// AnalysisConfig controls aggregation, trend, and anomaly detection.
type AnalysisConfig struct {
	// CostThreshold is the minimum aggregated cost (in currency units) a
	// service or region summary must reach to appear in the results.
	CostThreshold float64 `mapstructure:"cost_threshold"`
	// AnomalyStdDevThreshold is the deviation multiple for flagging a day.
	AnomalyStdDevThreshold float64 `mapstructure:"anomaly_stddev_threshold"`
	// TrendWindowDays is the window compared at each end of the daily series.
	TrendWindowDays int `mapstructure:"trend_window_days"`
	// TopActionsCap bounds the priority action list.
	TopActionsCap int `mapstructure:"top_actions_cap"`
}

// DefaultAnalysisConfig returns default analysis values.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		CostThreshold:          0.01,
		AnomalyStdDevThreshold: 2.0,
		TrendWindowDays:        7,
		TopActionsCap:          10,
	}
}

// RuleParams holds the tunable savings fractions and thresholds used by the
// recommendation rules. These are hand-tuned heuristics, not measured truths;
// they are surfaced here so deployments can calibrate them against real bills.
type RuleParams struct {
	Compute      ComputeParams      `mapstructure:"compute"`
	Database     DatabaseParams     `mapstructure:"database"`
	Storage      StorageParams      `mapstructure:"storage"`
	LoadBalancer LoadBalancerParams `mapstructure:"load_balancer"`
	Generic      GenericParams      `mapstructure:"generic"`
	Resource     ResourceParams     `mapstructure:"resource"`
	Portfolio    PortfolioParams    `mapstructure:"portfolio"`
}

type ComputeParams struct {
	// RightSizeMeanCeiling flags fleets of cheap records as right-sizing candidates.
	RightSizeMeanCeiling float64 `mapstructure:"rightsize_mean_ceiling"`
	RightSizeMinRecords  int     `mapstructure:"rightsize_min_records"`
	RightSizeFraction    float64 `mapstructure:"rightsize_fraction"`

	ReservedTotalFloor float64 `mapstructure:"reserved_total_floor"`
	ReservedFraction   float64 `mapstructure:"reserved_fraction"`

	SpotMinRecords int     `mapstructure:"spot_min_records"`
	SpotFraction   float64 `mapstructure:"spot_fraction"`
}

type DatabaseParams struct {
	RightSizeMeanCeiling float64 `mapstructure:"rightsize_mean_ceiling"`
	RightSizeMinRecords  int     `mapstructure:"rightsize_min_records"`
	RightSizeFraction    float64 `mapstructure:"rightsize_fraction"`

	ReservedTotalFloor float64 `mapstructure:"reserved_total_floor"`
	ReservedFraction   float64 `mapstructure:"reserved_fraction"`
}

type StorageParams struct {
	TieringFraction float64 `mapstructure:"tiering_fraction"`

	LifecycleTotalFloor float64 `mapstructure:"lifecycle_total_floor"`
	LifecycleFraction   float64 `mapstructure:"lifecycle_fraction"`
}

type LoadBalancerParams struct {
	ConsolidateMeanCeiling float64 `mapstructure:"consolidate_mean_ceiling"`
	ConsolidateFraction    float64 `mapstructure:"consolidate_fraction"`
}

type GenericParams struct {
	MonitorTotalFloor float64 `mapstructure:"monitor_total_floor"`
	MonitorFraction   float64 `mapstructure:"monitor_fraction"`
}

type ResourceParams struct {
	// HighCostPercentile selects resources for the "investigate" recommendation.
	HighCostPercentile float64 `mapstructure:"high_cost_percentile"`
	// HighPriorityFloor promotes a flagged resource to high priority.
	HighPriorityFloor float64 `mapstructure:"high_priority_floor"`
	// IdlePercentile selects the cheapest resources as possibly idle.
	IdlePercentile float64 `mapstructure:"idle_percentile"`
	// IdleMaxResults bounds the possibly-idle list.
	IdleMaxResults int `mapstructure:"idle_max_results"`
	// HighSavingsFraction / MediumSavingsFraction quantify resource savings
	// at planning time.
	HighSavingsFraction   float64 `mapstructure:"high_savings_fraction"`
	MediumSavingsFraction float64 `mapstructure:"medium_savings_fraction"`
}

type PortfolioParams struct {
	GovernanceTotalFloor   float64 `mapstructure:"governance_total_floor"`
	ConsolidationMinCount  int     `mapstructure:"consolidation_min_count"`
	SpikeChangeRateFloor   float64 `mapstructure:"spike_change_rate_floor"`
	TrendChangeRateFloor   float64 `mapstructure:"trend_change_rate_floor"`
}

// DefaultRuleParams returns the default rule tuning.
func DefaultRuleParams() RuleParams {
	return RuleParams{
		Compute: ComputeParams{
			RightSizeMeanCeiling: 50.0,
			RightSizeMinRecords:  10,
			RightSizeFraction:    0.30,
			ReservedTotalFloor:   500.0,
			ReservedFraction:     0.25,
			SpotMinRecords:       5,
			SpotFraction:         0.15,
		},
		Database: DatabaseParams{
			RightSizeMeanCeiling: 100.0,
			RightSizeMinRecords:  5,
			RightSizeFraction:    0.20,
			ReservedTotalFloor:   200.0,
			ReservedFraction:     0.40,
		},
		Storage: StorageParams{
			TieringFraction:     0.30,
			LifecycleTotalFloor: 100.0,
			LifecycleFraction:   0.25,
		},
		LoadBalancer: LoadBalancerParams{
			ConsolidateMeanCeiling: 20.0,
			ConsolidateFraction:    0.40,
		},
		Generic: GenericParams{
			MonitorTotalFloor: 100.0,
			MonitorFraction:   0.10,
		},
		Resource: ResourceParams{
			HighCostPercentile:    0.80,
			HighPriorityFloor:     1000.0,
			IdlePercentile:        0.20,
			IdleMaxResults:        5,
			HighSavingsFraction:   0.20,
			MediumSavingsFraction: 0.10,
		},
		Portfolio: PortfolioParams{
			GovernanceTotalFloor:  1000.0,
			ConsolidationMinCount: 10,
			SpikeChangeRateFloor:  20.0,
			TrendChangeRateFloor:  10.0,
		},
	}
}
