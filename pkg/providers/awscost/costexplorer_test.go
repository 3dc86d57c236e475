package awscost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

type fakeExplorer struct {
	// pages keyed by page index for the service/region query; the
	// resource query fails unless resourcePages is set.
	pages         []*ce.GetCostAndUsageOutput
	resourcePages []*ce.GetCostAndUsageOutput
	err           error

	servicePageIdx  int
	resourcePageIdx int
}

func (f *fakeExplorer) GetCostAndUsage(ctx context.Context, params *ce.GetCostAndUsageInput, optFns ...func(*ce.Options)) (*ce.GetCostAndUsageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	isResourceQuery := len(params.GroupBy) == 2 && aws.ToString(params.GroupBy[1].Key) == "RESOURCE_ID"
	if isResourceQuery {
		if f.resourcePageIdx >= len(f.resourcePages) {
			return nil, errors.New("resource data not enabled")
		}
		out := f.resourcePages[f.resourcePageIdx]
		f.resourcePageIdx++
		return out, nil
	}

	if f.servicePageIdx >= len(f.pages) {
		return nil, errors.New("no more pages")
	}
	out := f.pages[f.servicePageIdx]
	f.servicePageIdx++
	return out, nil
}

func group(keys []string, amount string) cetypes.Group {
	return cetypes.Group{
		Keys: keys,
		Metrics: map[string]cetypes.MetricValue{
			"UnblendedCost": {Amount: aws.String(amount)},
		},
	}
}

func page(day string, groups []cetypes.Group, nextToken string) *ce.GetCostAndUsageOutput {
	out := &ce.GetCostAndUsageOutput{
		ResultsByTime: []cetypes.ResultByTime{
			{
				TimePeriod: &cetypes.DateInterval{Start: aws.String(day), End: aws.String(day)},
				Groups:     groups,
			},
		},
	}
	if nextToken != "" {
		out.NextPageToken = aws.String(nextToken)
	}
	return out
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC) }
}

func TestFetchServiceRecords(t *testing.T) {
	fake := &fakeExplorer{
		pages: []*ce.GetCostAndUsageOutput{
			page("2026-08-01", []cetypes.Group{
				group([]string{"Amazon Elastic Compute Cloud - Compute", "us-east-1"}, "12.50"),
				group([]string{"Amazon Simple Storage Service", "us-west-2"}, "3.25"),
			}, ""),
		},
	}

	p := New(fake, nil, WithWindowDays(7), withClock(fixedClock()))
	records, dropped, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if dropped != 0 {
		t.Fatalf("expected no drops, got %d", dropped)
	}
	first := records[0]
	if first.Service != "Amazon Elastic Compute Cloud - Compute" || first.Region != "us-east-1" || first.Cost != 12.50 {
		t.Fatalf("unexpected record: %+v", first)
	}
	if first.Provider != "aws" || first.Currency != "USD" {
		t.Fatalf("record missing provider metadata: %+v", first)
	}
	if !first.Date.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", first.Date)
	}
}

func TestFetchPaginates(t *testing.T) {
	fake := &fakeExplorer{
		pages: []*ce.GetCostAndUsageOutput{
			page("2026-08-01", []cetypes.Group{group([]string{"EC2", "us-east-1"}, "1.00")}, "token-1"),
			page("2026-08-02", []cetypes.Group{group([]string{"EC2", "us-east-1"}, "2.00")}, ""),
		},
	}

	p := New(fake, nil, withClock(fixedClock()))
	records, _, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected records from both pages, got %d", len(records))
	}
}

func TestFetchDropsMalformedGroups(t *testing.T) {
	fake := &fakeExplorer{
		pages: []*ce.GetCostAndUsageOutput{
			page("2026-08-01", []cetypes.Group{
				group([]string{"EC2", "us-east-1"}, "1.00"),
				group([]string{"only-one-key"}, "2.00"),
				group([]string{"EC2", "us-east-1"}, "not-a-number"),
			}, ""),
		},
	}

	p := New(fake, nil, withClock(fixedClock()))
	records, dropped, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 valid record, got %d", len(records))
	}
	if dropped != 2 {
		t.Fatalf("expected 2 dropped rows, got %d", dropped)
	}
}

func TestFetchResourceFailureIsNonFatal(t *testing.T) {
	fake := &fakeExplorer{
		pages: []*ce.GetCostAndUsageOutput{
			page("2026-08-01", []cetypes.Group{group([]string{"EC2", "us-east-1"}, "1.00")}, ""),
		},
		// no resourcePages: resource query errors
	}

	p := New(fake, nil, withClock(fixedClock()))
	records, _, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("expected resource failure to be tolerated, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected service records to survive, got %d", len(records))
	}
}

func TestFetchResourceRecords(t *testing.T) {
	fake := &fakeExplorer{
		pages: []*ce.GetCostAndUsageOutput{
			page("2026-08-01", nil, ""),
		},
		resourcePages: []*ce.GetCostAndUsageOutput{
			page("2026-08-10", []cetypes.Group{
				group([]string{"EC2", "i-0abc"}, "5.00"),
				group([]string{"EC2", ""}, "9.99"),
			}, ""),
		},
	}

	p := New(fake, nil, withClock(fixedClock()))
	records, dropped, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 resource record, got %d", len(records))
	}
	if records[0].ResourceID != "i-0abc" {
		t.Fatalf("unexpected resource record: %+v", records[0])
	}
	if dropped != 1 {
		t.Fatalf("expected empty resource id dropped, got %d", dropped)
	}
}

func TestFetchServiceQueryFails(t *testing.T) {
	fake := &fakeExplorer{err: errors.New("access denied")}

	p := New(fake, nil, withClock(fixedClock()))
	if _, _, err := p.Fetch(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}
