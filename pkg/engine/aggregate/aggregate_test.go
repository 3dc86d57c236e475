package aggregate

import (
	"testing"
	"time"

	"github.com/DrSkyle/costscope/pkg/billing"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(date, service, region, resource string, cost float64) billing.CostRecord {
	return billing.CostRecord{
		Date:       day(date),
		Service:    service,
		Region:     region,
		ResourceID: resource,
		Cost:       cost,
		Currency:   "USD",
	}
}

func TestAggregateByService(t *testing.T) {
	records := []billing.CostRecord{
		rec("2024-01-01", "Compute", "us-east-1", "", 10),
		rec("2024-01-01", "Compute", "us-east-1", "", 5),
	}

	res := Aggregate(records, 0.01)

	if res.Empty {
		t.Fatal("Expected non-empty result")
	}
	if len(res.ServiceCosts) != 1 {
		t.Fatalf("Expected 1 service summary, got %d", len(res.ServiceCosts))
	}
	s := res.ServiceCosts[0]
	if s.Key != "Compute" || s.TotalCost != 15 || s.MeanCost != 7.5 || s.RecordCount != 2 {
		t.Errorf("Unexpected summary: %+v", s)
	}
}

func TestAggregateConservesTotal(t *testing.T) {
	records := []billing.CostRecord{
		rec("2024-01-01", "A", "us-east-1", "", 1.5),
		rec("2024-01-02", "B", "eu-west-1", "", 2.5),
		rec("2024-01-03", "C", "us-east-1", "", 4.0),
	}

	res := Aggregate(records, 0)

	var serviceSum float64
	for _, s := range res.ServiceCosts {
		serviceSum += s.TotalCost
	}
	if serviceSum != res.TotalCost || serviceSum != 8.0 {
		t.Errorf("Aggregation must conserve total cost: services=%f total=%f", serviceSum, res.TotalCost)
	}
}

func TestThresholdAppliesToAggregatedSum(t *testing.T) {
	// 100 records of 0.005 each: individually below threshold, sum 0.5 above it.
	var records []billing.CostRecord
	for i := 0; i < 100; i++ {
		records = append(records, rec("2024-01-01", "Micro", "us-east-1", "", 0.005))
	}
	// A service whose sum stays below threshold.
	records = append(records, rec("2024-01-01", "Dust", "us-east-1", "", 0.004))

	res := Aggregate(records, 0.01)

	if len(res.ServiceCosts) != 1 {
		t.Fatalf("Expected 1 surviving service, got %d", len(res.ServiceCosts))
	}
	if res.ServiceCosts[0].Key != "Micro" {
		t.Errorf("Expected Micro to survive the filter, got %s", res.ServiceCosts[0].Key)
	}
	for _, s := range res.ServiceCosts {
		if s.TotalCost < 0.01 {
			t.Errorf("Filtered summary below threshold: %+v", s)
		}
	}
}

func TestSortOrderDeterministic(t *testing.T) {
	records := []billing.CostRecord{
		rec("2024-01-01", "Bravo", "r", "", 10),
		rec("2024-01-01", "Alpha", "r", "", 10),
		rec("2024-01-01", "Zulu", "r", "", 50),
	}

	res := Aggregate(records, 0)

	got := []string{res.ServiceCosts[0].Key, res.ServiceCosts[1].Key, res.ServiceCosts[2].Key}
	want := []string{"Zulu", "Alpha", "Bravo"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestRegionFiltering(t *testing.T) {
	records := []billing.CostRecord{
		rec("2024-01-01", "A", "NoRegion", "", 10),
		rec("2024-01-01", "A", "us-east-1", "", 5),
		rec("2024-01-01", "A", "", "", 3),
	}

	res := Aggregate(records, 0)

	if len(res.RegionCosts) != 1 || res.RegionCosts[0].Key != "us-east-1" {
		t.Errorf("Expected only us-east-1 in region summary, got %+v", res.RegionCosts)
	}
	// Unattributed rows still count toward the service view.
	if res.ServiceCosts[0].TotalCost != 18 {
		t.Errorf("Expected service total 18, got %f", res.ServiceCosts[0].TotalCost)
	}
}

func TestResourceSummaryOnlyForTaggedRecords(t *testing.T) {
	records := []billing.CostRecord{
		rec("2024-01-01", "A", "r", "i-1", 10),
		rec("2024-01-01", "A", "r", "i-1", 2),
		rec("2024-01-01", "A", "r", "", 5),
	}

	res := Aggregate(records, 0)

	if len(res.ResourceCosts) != 1 {
		t.Fatalf("Expected 1 resource summary, got %d", len(res.ResourceCosts))
	}
	if res.ResourceCosts[0].Key != "i-1" || res.ResourceCosts[0].TotalCost != 12 {
		t.Errorf("Unexpected resource summary: %+v", res.ResourceCosts[0])
	}
}

func TestDailySeriesSortedAscending(t *testing.T) {
	records := []billing.CostRecord{
		rec("2024-01-03", "A", "r", "", 3),
		rec("2024-01-01", "A", "r", "", 1),
		rec("2024-01-02", "A", "r", "", 2),
		rec("2024-01-01", "B", "r", "", 4),
	}

	res := Aggregate(records, 0)

	if len(res.DailyCosts) != 3 {
		t.Fatalf("Expected 3 daily points, got %d", len(res.DailyCosts))
	}
	if !res.DailyCosts[0].Date.Before(res.DailyCosts[1].Date) || !res.DailyCosts[1].Date.Before(res.DailyCosts[2].Date) {
		t.Error("Daily series must be sorted ascending by date")
	}
	if res.DailyCosts[0].TotalCost != 5 {
		t.Errorf("Expected Jan 1 total 5, got %f", res.DailyCosts[0].TotalCost)
	}
}

func TestEmptyInput(t *testing.T) {
	res := Aggregate(nil, 0.01)

	if !res.Empty {
		t.Fatal("Expected explicit empty result for no records")
	}
	if len(res.ServiceCosts) != 0 || len(res.DailyCosts) != 0 {
		t.Error("Empty result must carry no summaries")
	}
}
