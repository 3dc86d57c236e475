package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"go.opentelemetry.io/otel/attribute"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/engine/aggregate"
	"github.com/DrSkyle/costscope/pkg/engine/heuristics"
	"github.com/DrSkyle/costscope/pkg/engine/history"
	"github.com/DrSkyle/costscope/pkg/engine/planner"
	"github.com/DrSkyle/costscope/pkg/engine/trend"
	"github.com/DrSkyle/costscope/pkg/providers"
	"github.com/DrSkyle/costscope/pkg/providers/awscost"
	fileprovider "github.com/DrSkyle/costscope/pkg/providers/file"
)

// ErrPartialResult indicates the analysis completed but at least one
// provider failed to deliver data.
var ErrPartialResult = fmt.Errorf("analysis completed with partial results")

// Run executes one full analysis: fetch, aggregate, trend, rules,
// overrides, and planning. Artifact writing and notification happen
// here too; their failures are logged, not fatal.
func (e *Engine) Run(ctx context.Context) (billing.OptimizationReport, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Run")
	defer span.End()
	defer e.recoverPanic(ctx)

	provs, initErrors := e.buildProviders(ctx)

	e.Logger.Info("starting analysis", "providers", len(provs))
	result := providers.FetchAll(ctx, provs)
	for name, err := range initErrors {
		result.Errors[name] = err
	}

	if len(result.Records) == 0 && e.config.Fallback {
		e.Logger.Warn("no records from configured providers, substituting placeholder data")
		records, _, err := e.fallbackProvider().Fetch(ctx)
		if err == nil {
			result.Records = records
		}
	}

	for name, err := range result.Errors {
		e.Logger.Warn("provider failed", "provider", name, "error", err)
	}

	rep := e.analyze(ctx, result)

	span.SetAttributes(
		attribute.Int("records", len(result.Records)),
		attribute.Int("dropped_records", result.Dropped),
		attribute.Int("provider_errors", len(result.Errors)),
		attribute.Float64("total_cost", rep.TotalCost),
		attribute.Float64("potential_savings", rep.TotalPotentialSavings),
	)

	e.persistRun(ctx, rep, len(result.Records))
	e.writeArtifacts(ctx, rep)

	if err := e.Notifier.SendReport(ctx, rep); err != nil {
		e.Logger.Warn("failed to send report notification", "error", err)
	}

	if len(result.Errors) > 0 && e.config.StrictMode {
		return rep, ErrPartialResult
	}
	return rep, nil
}

// analyze runs the synchronous core pipeline over fetched records.
func (e *Engine) analyze(ctx context.Context, result providers.FetchResult) billing.OptimizationReport {
	agg := aggregate.Aggregate(result.Records, e.config.Analysis.CostThreshold)

	if agg.Empty {
		rep := planner.Build(heuristics.Findings{}, e.config.Rules, e.config.Analysis.TopActionsCap)
		rep.Empty = true
		rep.Trend = billing.TrendInsight{Direction: billing.TrendInsufficientData}
		rep.DroppedRecords = result.Dropped
		rep.ProviderErrors = errorStrings(result.Errors)
		return rep
	}

	insight := trend.Analyze(agg.DailyCosts, e.config.Analysis.TrendWindowDays, e.config.Analysis.AnomalyStdDevThreshold)

	findings := e.rules.Run(ctx, agg.ServiceCosts, agg.ResourceCosts, agg.TotalCost, insight)

	e.applyDiscount(ctx, &findings)
	e.applyOverrides(&findings)

	rep := planner.Build(findings, e.config.Rules, e.config.Analysis.TopActionsCap)
	rep.TotalCost = roundCents(agg.TotalCost)
	rep.Trend = insight
	rep.ServiceCosts = agg.ServiceCosts
	rep.RegionCosts = agg.RegionCosts
	rep.ResourceCosts = agg.ResourceCosts
	rep.DailyCosts = agg.DailyCosts
	rep.DroppedRecords = result.Dropped
	rep.ProviderErrors = errorStrings(result.Errors)
	return rep
}

// buildProviders constructs data sources from config. Sources that
// fail to initialize land in the returned error map so they surface in
// the report like fetch failures.
func (e *Engine) buildProviders(ctx context.Context) ([]providers.Provider, map[string]error) {
	if len(e.providers) > 0 {
		return e.providers, map[string]error{}
	}

	initErrors := make(map[string]error)
	var provs []providers.Provider

	for _, path := range e.config.InputFiles {
		provs = append(provs, fileprovider.New(path, e.Logger))
	}

	if e.config.UseAWS {
		cfg, identity, err := loadAWSConfig(ctx, e.config.Region)
		if err != nil {
			initErrors["aws"] = err
		} else {
			e.Logger.Info("aws session ready", "arn", identity.ARN)
			var opts []awscost.Option
			if e.config.WindowDays > 0 {
				opts = append(opts, awscost.WithWindowDays(e.config.WindowDays))
			}
			provs = append(provs, awscost.New(ce.NewFromConfig(cfg), e.Logger, opts...))
		}
	}

	return provs, initErrors
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, awscost.Identity, error) {
	return awscost.LoadSession(ctx, region)
}

// applyDiscount scales rule-table savings estimates by the account's
// effective discount factor.
func (e *Engine) applyDiscount(ctx context.Context, f *heuristics.Findings) {
	factor := 1.0
	switch {
	case e.config.UseAWS:
		factor = e.Calibrator.DiscountFactor(ctx)
	case e.config.DiscountRate > 0:
		factor = e.config.DiscountRate
	}
	if factor == 1.0 {
		return
	}

	scale := func(recs []billing.Recommendation) {
		for i := range recs {
			recs[i].PotentialSavings *= factor
		}
	}

	for name, svc := range f.Service {
		scale(svc.Recommendations)
		svc.PotentialSavings *= factor
		f.Service[name] = svc
	}
	scale(f.General)
	scale(f.Urgent)

	e.Logger.Info("applied discount factor to savings estimates", "factor", factor)
}

// applyOverrides filters and re-prioritizes findings through the
// user-supplied CEL rules.
func (e *Engine) applyOverrides(f *heuristics.Findings) {
	if e.overrides == nil {
		return
	}

	suppressed := 0

	for name, svc := range f.Service {
		recs, n := e.overrides.Apply(svc.Recommendations)
		suppressed += n
		if len(recs) == 0 {
			delete(f.Service, name)
			continue
		}
		var subtotal float64
		for _, r := range recs {
			subtotal += r.PotentialSavings
		}
		svc.Recommendations = recs
		svc.PotentialSavings = subtotal
		f.Service[name] = svc
	}

	var n int
	f.Resource, n = e.overrides.Apply(f.Resource)
	suppressed += n
	f.General, n = e.overrides.Apply(f.General)
	suppressed += n
	f.Urgent, n = e.overrides.Apply(f.Urgent)
	suppressed += n

	if suppressed > 0 {
		e.Logger.Info("override rules suppressed findings", "suppressed", suppressed)
	}
}

// persistRun appends the run snapshot to the history ledger and fires
// the velocity alert when spend is climbing too fast between runs.
func (e *Engine) persistRun(ctx context.Context, rep billing.OptimizationReport, recordCount int) {
	snap := history.Snapshot{
		Timestamp:        time.Now().Unix(),
		TotalCost:        rep.TotalCost,
		RecordCount:      recordCount,
		AnomalyCount:     len(rep.Trend.Anomalies),
		ProjectedSavings: rep.TotalPotentialSavings,
	}
	if err := e.History.Append(ctx, snap); err != nil {
		e.Logger.Warn("failed to append run history", "error", err)
		return
	}

	if e.config.VelocityAlertPerHour <= 0 {
		return
	}
	window, err := e.History.LoadWindow(ctx, 2)
	if err != nil {
		e.Logger.Warn("failed to load run history", "error", err)
		return
	}
	if velocity, ok := history.Velocity(window); ok && velocity > e.config.VelocityAlertPerHour {
		e.Logger.Warn("spend velocity above threshold", "velocity_per_hour", velocity)
		if err := e.Notifier.SendVelocityAlert(ctx, velocity); err != nil {
			e.Logger.Warn("failed to send velocity alert", "error", err)
		}
	}
}

func errorStrings(errs map[string]error) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for name, err := range errs {
		out[name] = err.Error()
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
