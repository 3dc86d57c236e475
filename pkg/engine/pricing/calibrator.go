package pricing

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

const (
	cacheFileName = "discounts.json"
	cacheTTL      = 24 * time.Hour

	// Savings estimates derived from list prices are scaled by the
	// amortized/unblended ratio so reservations and savings plans the
	// account already holds do not get double-counted.
	calibrationService = "Amazon Elastic Compute Cloud - Compute"
)

// CostAndUsageAPI is the slice of the Cost Explorer client the
// calibrator needs.
type CostAndUsageAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

type discountCache struct {
	Factor    float64 `json:"factor"`
	Timestamp int64   `json:"timestamp"`
}

// Calibrator tunes savings estimates against the account's effective
// discount rate. All failure paths fall open to factor 1.0.
type Calibrator struct {
	logger         *slog.Logger
	client         CostAndUsageAPI
	cachePath      string
	manualOverride float64
	now            func() time.Time
}

type CalibratorOption func(*Calibrator)

// WithClient supplies a pre-built Cost Explorer client instead of
// loading the default AWS config on first use.
func WithClient(client CostAndUsageAPI) CalibratorOption {
	return func(c *Calibrator) { c.client = client }
}

// WithManualFactor sets a factor used when calibration fails.
func WithManualFactor(factor float64) CalibratorOption {
	return func(c *Calibrator) { c.manualOverride = factor }
}

func withClock(now func() time.Time) CalibratorOption {
	return func(c *Calibrator) { c.now = now }
}

func NewCalibrator(logger *slog.Logger, cacheDir string, opts ...CalibratorOption) *Calibrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cacheDir == "" {
		cacheDir = os.TempDir()
	}
	c := &Calibrator{
		logger:    logger,
		cachePath: filepath.Join(cacheDir, cacheFileName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DiscountFactor returns the multiplier applied to list-price savings
// estimates. The factor is cached for 24h.
func (c *Calibrator) DiscountFactor(ctx context.Context) float64 {
	if factor, ok := c.loadCache(); ok {
		return factor
	}

	factor, err := c.fetch(ctx)
	if err != nil {
		if c.manualOverride > 0 {
			c.logger.Warn("calibration failed, using manual override", "error", err, "override", c.manualOverride)
			return c.manualOverride
		}
		c.logger.Warn("calibration failed, using list prices", "error", err)
		return 1.0
	}

	c.saveCache(factor)
	return factor
}

func (c *Calibrator) loadCache() (float64, bool) {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return 1.0, false
	}

	var cache discountCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return 1.0, false
	}

	if c.now().Sub(time.Unix(cache.Timestamp, 0)) > cacheTTL {
		return 1.0, false
	}
	return cache.Factor, true
}

func (c *Calibrator) saveCache(factor float64) {
	cache := discountCache{
		Factor:    factor,
		Timestamp: c.now().Unix(),
	}
	data, _ := json.MarshalIndent(cache, "", "  ")
	os.MkdirAll(filepath.Dir(c.cachePath), 0755)
	if err := os.WriteFile(c.cachePath, data, 0644); err != nil {
		c.logger.Warn("failed to persist discount cache", "path", c.cachePath, "error", err)
	}
}

func (c *Calibrator) fetch(ctx context.Context) (float64, error) {
	client := c.client
	if client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return 1.0, err
		}
		client = costexplorer.NewFromConfig(cfg)
	}

	end := c.now().Format("2006-01-02")
	start := c.now().AddDate(0, 0, -7).Format("2006-01-02")

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(start),
			End:   aws.String(end),
		},
		Granularity: types.GranularityDaily,
		Metrics:     []string{"AmortizedCost", "UnblendedCost"},
		Filter: &types.Expression{
			Dimensions: &types.DimensionValues{
				Key:    types.DimensionService,
				Values: []string{calibrationService},
			},
		},
	}

	result, err := client.GetCostAndUsage(ctx, input)
	if err != nil {
		return 1.0, err
	}

	var amortized, unblended float64
	for _, byTime := range result.ResultsByTime {
		if amt, ok := byTime.Total["AmortizedCost"]; ok {
			amortized += parseAmount(amt.Amount)
		}
		if amt, ok := byTime.Total["UnblendedCost"]; ok {
			unblended += parseAmount(amt.Amount)
		}
	}

	if unblended == 0 {
		return 1.0, nil
	}

	factor := amortized / unblended
	if factor > 1.5 || factor < 0.1 {
		// Suspicious ratio, ignore it.
		return 1.0, nil
	}

	c.logger.Info("calibrated discount factor", "factor", factor, "source", "aws_cost_explorer")
	return factor, nil
}

func parseAmount(s *string) float64 {
	if s == nil {
		return 0
	}
	f, _ := strconv.ParseFloat(*s, 64)
	return f
}
