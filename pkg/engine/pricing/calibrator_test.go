package pricing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

type fakeCostExplorer struct {
	amortized string
	unblended string
	err       error
	calls     int
}

func (f *fakeCostExplorer) GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []types.ResultByTime{
			{
				Total: map[string]types.MetricValue{
					"AmortizedCost": {Amount: aws.String(f.amortized)},
					"UnblendedCost": {Amount: aws.String(f.unblended)},
				},
			},
		},
	}, nil
}

func TestDiscountFactorFromExplorer(t *testing.T) {
	fake := &fakeCostExplorer{amortized: "70.0", unblended: "100.0"}
	c := NewCalibrator(nil, t.TempDir(), WithClient(fake))

	factor := c.DiscountFactor(context.Background())
	if factor != 0.7 {
		t.Fatalf("expected factor 0.7, got %v", factor)
	}
}

func TestDiscountFactorFailsOpen(t *testing.T) {
	fake := &fakeCostExplorer{err: errors.New("throttled")}
	c := NewCalibrator(nil, t.TempDir(), WithClient(fake))

	if factor := c.DiscountFactor(context.Background()); factor != 1.0 {
		t.Fatalf("expected fail-open 1.0, got %v", factor)
	}
}

func TestManualOverrideOnFailure(t *testing.T) {
	fake := &fakeCostExplorer{err: errors.New("no credentials")}
	c := NewCalibrator(nil, t.TempDir(), WithClient(fake), WithManualFactor(0.85))

	if factor := c.DiscountFactor(context.Background()); factor != 0.85 {
		t.Fatalf("expected manual override 0.85, got %v", factor)
	}
}

func TestSuspiciousRatioIgnored(t *testing.T) {
	fake := &fakeCostExplorer{amortized: "500.0", unblended: "100.0"}
	c := NewCalibrator(nil, t.TempDir(), WithClient(fake))

	if factor := c.DiscountFactor(context.Background()); factor != 1.0 {
		t.Fatalf("expected suspicious ratio to fall back to 1.0, got %v", factor)
	}
}

func TestZeroUnblendedGuard(t *testing.T) {
	fake := &fakeCostExplorer{amortized: "0", unblended: "0"}
	c := NewCalibrator(nil, t.TempDir(), WithClient(fake))

	if factor := c.DiscountFactor(context.Background()); factor != 1.0 {
		t.Fatalf("expected 1.0 when unblended is zero, got %v", factor)
	}
}

func TestCacheHitSkipsExplorer(t *testing.T) {
	fake := &fakeCostExplorer{amortized: "70.0", unblended: "100.0"}
	dir := t.TempDir()
	c := NewCalibrator(nil, dir, WithClient(fake))

	c.DiscountFactor(context.Background())
	c.DiscountFactor(context.Background())

	if fake.calls != 1 {
		t.Fatalf("expected 1 explorer call, got %d", fake.calls)
	}
	if _, err := os.Stat(filepath.Join(dir, cacheFileName)); err != nil {
		t.Fatalf("expected cache file to exist: %v", err)
	}
}

func TestCacheExpires(t *testing.T) {
	fake := &fakeCostExplorer{amortized: "70.0", unblended: "100.0"}
	dir := t.TempDir()

	now := time.Now()
	c := NewCalibrator(nil, dir, WithClient(fake), withClock(func() time.Time { return now }))
	c.DiscountFactor(context.Background())

	later := NewCalibrator(nil, dir, WithClient(fake), withClock(func() time.Time { return now.Add(25 * time.Hour) }))
	later.DiscountFactor(context.Background())

	if fake.calls != 2 {
		t.Fatalf("expected expired cache to trigger refetch, got %d calls", fake.calls)
	}
}
