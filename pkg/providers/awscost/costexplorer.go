package awscost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/DrSkyle/costscope/pkg/billing"
)

// CostExplorerAPI is the slice of the Cost Explorer client the
// provider needs, narrowed for testing.
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *ce.GetCostAndUsageInput, optFns ...func(*ce.Options)) (*ce.GetCostAndUsageOutput, error)
}

// Provider pulls daily cost records from AWS Cost Explorer.
type Provider struct {
	client     CostExplorerAPI
	logger     *slog.Logger
	windowDays int
	now        func() time.Time
}

type Option func(*Provider)

func WithWindowDays(days int) Option {
	return func(p *Provider) { p.windowDays = days }
}

func withClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func New(client CostExplorerAPI, logger *slog.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Provider{
		client:     client,
		logger:     logger,
		windowDays: 30,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return "aws" }

// Fetch pulls service/region daily costs plus resource-level costs for
// the configured window. Groups Cost Explorer returns with missing
// keys or unparseable amounts are dropped and counted, not fatal.
func (p *Provider) Fetch(ctx context.Context) ([]billing.CostRecord, int, error) {
	end := p.now().UTC()
	start := end.AddDate(0, 0, -p.windowDays)

	records, dropped, err := p.fetchServiceRegion(ctx, start, end)
	if err != nil {
		return nil, 0, err
	}

	resourceRecords, resourceDropped, err := p.fetchResources(ctx, start, end)
	if err != nil {
		// Resource-level data requires opt-in on the account. Service
		// records alone still support the full service analysis.
		p.logger.Warn("resource-level cost query failed, continuing with service data", "error", err)
	} else {
		records = append(records, resourceRecords...)
		dropped += resourceDropped
	}

	p.logger.Info("fetched aws cost records",
		"records", len(records),
		"dropped", dropped,
		"window_days", p.windowDays,
	)
	return records, dropped, nil
}

func (p *Provider) fetchServiceRegion(ctx context.Context, start, end time.Time) ([]billing.CostRecord, int, error) {
	var (
		records   []billing.CostRecord
		dropped   int
		nextToken *string
	)

	for {
		out, err := p.client.GetCostAndUsage(ctx, &ce.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(start.Format("2006-01-02")),
				End:   aws.String(end.Format("2006-01-02")),
			},
			Granularity: cetypes.GranularityDaily,
			Metrics:     []string{"UnblendedCost"},
			GroupBy: []cetypes.GroupDefinition{
				{Key: aws.String("SERVICE"), Type: cetypes.GroupDefinitionTypeDimension},
				{Key: aws.String("REGION"), Type: cetypes.GroupDefinitionTypeDimension},
			},
			NextPageToken: nextToken,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("GetCostAndUsage: %w", err)
		}

		for _, byTime := range out.ResultsByTime {
			day, ok := parsePeriodStart(byTime.TimePeriod)
			if !ok {
				dropped += len(byTime.Groups)
				continue
			}
			for _, group := range byTime.Groups {
				if len(group.Keys) < 2 {
					dropped++
					continue
				}
				cost, ok := parseMetric(group.Metrics, "UnblendedCost")
				if !ok {
					dropped++
					continue
				}
				records = append(records, billing.CostRecord{
					Date:     day,
					Service:  group.Keys[0],
					Region:   group.Keys[1],
					Cost:     cost,
					Currency: "USD",
					Provider: p.Name(),
				})
			}
		}

		if out.NextPageToken == nil {
			break
		}
		nextToken = out.NextPageToken
	}
	return records, dropped, nil
}

func (p *Provider) fetchResources(ctx context.Context, start, end time.Time) ([]billing.CostRecord, int, error) {
	// RESOURCE_ID granularity is limited to the trailing 14 days.
	resourceStart := end.AddDate(0, 0, -14)
	if start.After(resourceStart) {
		resourceStart = start
	}

	var (
		records   []billing.CostRecord
		dropped   int
		nextToken *string
	)

	for {
		out, err := p.client.GetCostAndUsage(ctx, &ce.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(resourceStart.Format("2006-01-02")),
				End:   aws.String(end.Format("2006-01-02")),
			},
			Granularity: cetypes.GranularityDaily,
			Metrics:     []string{"UnblendedCost"},
			GroupBy: []cetypes.GroupDefinition{
				{Key: aws.String("SERVICE"), Type: cetypes.GroupDefinitionTypeDimension},
				{Key: aws.String("RESOURCE_ID"), Type: cetypes.GroupDefinitionTypeDimension},
			},
			NextPageToken: nextToken,
		})
		if err != nil {
			return nil, 0, err
		}

		for _, byTime := range out.ResultsByTime {
			day, ok := parsePeriodStart(byTime.TimePeriod)
			if !ok {
				dropped += len(byTime.Groups)
				continue
			}
			for _, group := range byTime.Groups {
				if len(group.Keys) < 2 || group.Keys[1] == "" {
					dropped++
					continue
				}
				cost, ok := parseMetric(group.Metrics, "UnblendedCost")
				if !ok {
					dropped++
					continue
				}
				records = append(records, billing.CostRecord{
					Date:       day,
					Service:    group.Keys[0],
					ResourceID: group.Keys[1],
					Cost:       cost,
					Currency:   "USD",
					Provider:   p.Name(),
				})
			}
		}

		if out.NextPageToken == nil {
			break
		}
		nextToken = out.NextPageToken
	}
	return records, dropped, nil
}

func parsePeriodStart(period *cetypes.DateInterval) (time.Time, bool) {
	if period == nil || period.Start == nil {
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", *period.Start)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func parseMetric(metrics map[string]cetypes.MetricValue, name string) (float64, bool) {
	metric, ok := metrics[name]
	if !ok || metric.Amount == nil {
		return 0, false
	}
	cost, err := strconv.ParseFloat(*metric.Amount, 64)
	if err != nil {
		return 0, false
	}
	return cost, true
}
