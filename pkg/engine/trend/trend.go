// Package trend computes the daily-series direction and flags statistical
// cost anomalies.
package trend

import (
	"math"

	"github.com/DrSkyle/costscope/pkg/billing"
)

// Analyze computes the trend insight for an ascending daily cost series.
//
// Direction compares the mean of the most recent windowDays points against
// the mean of the earliest windowDays points. A series shorter than twice the
// window cannot support that comparison and reports insufficient_data rather
// than a false trend. Change rate is (recent-earlier)/earlier*100 with a zero
// earlier mean short-circuiting to 0.
//
// Anomalies are days whose deviation from the series mean exceeds
// stdDevThreshold standard deviations. An all-identical series has zero
// spread, so no anomalies are possible. Fewer than 3 points never yield
// anomalies.
func Analyze(series []billing.DailyCost, windowDays int, stdDevThreshold float64) billing.TrendInsight {
	if windowDays <= 0 {
		windowDays = 7
	}

	if len(series) < 2 {
		return billing.TrendInsight{Direction: billing.TrendInsufficientData}
	}

	insight := billing.TrendInsight{
		Anomalies: detectAnomalies(series, stdDevThreshold),
	}

	if len(series) < 2*windowDays {
		insight.Direction = billing.TrendInsufficientData
		return insight
	}

	earlier := mean(costs(series[:windowDays]))
	recent := mean(costs(series[len(series)-windowDays:]))

	var changeRate float64
	if earlier != 0 {
		changeRate = (recent - earlier) / earlier * 100
	}

	insight.ChangeRate = changeRate
	insight.RecentAvgCost = recent

	switch {
	case changeRate > 5:
		insight.Direction = billing.TrendIncreasing
	case changeRate < -5:
		insight.Direction = billing.TrendDecreasing
	default:
		insight.Direction = billing.TrendStable
	}
	return insight
}

// detectAnomalies flags days more than threshold standard deviations from the
// series mean. Deviations are always computed against this series' own
// statistics, never mixed across runs.
func detectAnomalies(series []billing.DailyCost, threshold float64) []billing.Anomaly {
	if len(series) < 3 || threshold <= 0 {
		return nil
	}

	values := costs(series)
	m := mean(values)
	sd := stdDev(values, m)
	if sd == 0 {
		// Identical costs: no day can deviate.
		return nil
	}

	var anomalies []billing.Anomaly
	for _, d := range series {
		deviation := (d.TotalCost - m) / sd
		if math.Abs(deviation) > threshold {
			a := billing.Anomaly{
				Date:      d.Date,
				Cost:      d.TotalCost,
				Type:      billing.AnomalyLow,
				Deviation: deviation,
			}
			if d.TotalCost > m {
				a.Type = billing.AnomalyHigh
			}
			anomalies = append(anomalies, a)
		}
	}
	return anomalies
}

func costs(series []billing.DailyCost) []float64 {
	out := make([]float64, len(series))
	for i, d := range series {
		out[i] = d.TotalCost
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
