// Package engine wires providers, the analysis pipeline, and output
// surfaces into one run loop.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"runtime/debug"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appconfig "github.com/DrSkyle/costscope/pkg/config"
	"github.com/DrSkyle/costscope/pkg/engine/heuristics"
	"github.com/DrSkyle/costscope/pkg/engine/history"
	"github.com/DrSkyle/costscope/pkg/engine/notifier"
	"github.com/DrSkyle/costscope/pkg/engine/policy"
	"github.com/DrSkyle/costscope/pkg/engine/pricing"
	"github.com/DrSkyle/costscope/pkg/providers"
	"github.com/DrSkyle/costscope/pkg/providers/fallback"
	"github.com/DrSkyle/costscope/pkg/storage"
	"github.com/DrSkyle/costscope/pkg/telemetry"
	"github.com/DrSkyle/costscope/pkg/version"
)

// Config holds engine settings, usually bound from the CLI layer.
type Config struct {
	// Data sources.
	Region     string
	WindowDays int
	InputFiles []string // billing export files (csv/json)
	UseAWS     bool
	Fallback   bool // substitute placeholder data when no source yields records

	// Analysis tuning.
	Analysis appconfig.AnalysisConfig
	Rules    appconfig.RuleParams

	// Override rules file (CEL).
	RulesFile string

	// Integrations.
	SlackWebhook string
	SlackChannel string

	// Artifacts and history. Either local directories or "s3://bucket/prefix".
	OutputDir  string
	HistoryURL string

	// VelocityAlertPerHour triggers a webhook alert when spend between
	// runs climbs faster than this many dollars per hour. Zero disables.
	VelocityAlertPerHour float64

	// Pricing overrides.
	DiscountRate float64 // manual discount factor when calibration fails

	// Telemetry.
	OtelEndpoint  string
	SkipTelemetry bool

	// StrictMode forces an error return when any provider fails.
	StrictMode bool

	// Logging. JsonLogs selects the JSON handler over text; Verbose
	// lowers the level to debug.
	JsonLogs bool
	Verbose  bool

	// Dependencies.
	Logger   *slog.Logger
	CacheDir string
}

// Engine is the runtime core.
type Engine struct {
	Logger *slog.Logger
	Tracer trace.Tracer

	config    Config
	rules     *heuristics.Engine
	overrides *policy.CELEngine
	providers []providers.Provider

	History        *history.Ledger
	Notifier       *notifier.SlackClient
	Calibrator     *pricing.Calibrator
	Artifacts      storage.BlobStore
	artifactPrefix string

	telemetryShutdown func(context.Context) error
}

// newLogger builds the slog logger the config asks for: JSON or text
// handler, debug level when Verbose.
func newLogger(cfg Config) *slog.Logger {
	hopts := &slog.HandlerOptions{
		ReplaceAttr: redactSensitiveData,
	}
	if cfg.Verbose {
		hopts.Level = slog.LevelDebug
	}
	if cfg.JsonLogs {
		return slog.New(slog.NewJSONHandler(os.Stdout, hopts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, hopts))
}

// Close flushes buffered telemetry. Safe to call when telemetry was
// skipped or failed to initialize.
func (e *Engine) Close(ctx context.Context) error {
	if e.telemetryShutdown == nil {
		return nil
	}
	return e.telemetryShutdown(ctx)
}

// Option is a functional configuration override.
type Option func(*Engine)

// New initializes the engine. Providers not injected via WithProviders
// are constructed from the config.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		Tracer: otel.Tracer("costscope/engine"),
		config: Config{
			Analysis: appconfig.DefaultAnalysisConfig(),
			Rules:    appconfig.DefaultRuleParams(),
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	// The default logger honors the config, so it is built after the
	// options apply. An injected logger wins over both knobs.
	if e.Logger == nil {
		e.Logger = newLogger(e.config)
	}

	slog.SetDefault(e.Logger)

	if !e.config.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, e.config.OtelEndpoint)
		if err != nil {
			e.Logger.Warn("telemetry init failed", "error", err)
		} else {
			e.telemetryShutdown = shutdown
		}
	}

	e.rules = heuristics.NewEngine(e.config.Rules)

	if e.overrides == nil && e.config.RulesFile != "" {
		celEngine, err := policy.NewCELEngine()
		if err != nil {
			return nil, fmt.Errorf("failed to build override engine: %w", err)
		}
		rules, err := policy.LoadRules(e.config.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load override rules: %w", err)
		}
		if err := celEngine.Compile(rules); err != nil {
			return nil, fmt.Errorf("failed to compile override rules: %w", err)
		}
		e.overrides = celEngine
	}

	if e.History == nil {
		store, prefix, err := e.blobStore(ctx, e.config.HistoryURL, ".costscope")
		if err != nil {
			return nil, err
		}
		if prefix != "" {
			e.History = history.NewLedgerAt(store, path.Join(prefix, "history/runs.jsonl"))
		} else {
			e.History = history.NewLedger(store)
		}
	}

	if e.Notifier == nil {
		e.Notifier = notifier.NewSlackClient(e.config.SlackWebhook, e.config.SlackChannel)
	}

	if e.Calibrator == nil {
		var copts []pricing.CalibratorOption
		if e.config.DiscountRate > 0 {
			copts = append(copts, pricing.WithManualFactor(e.config.DiscountRate))
		}
		e.Calibrator = pricing.NewCalibrator(e.Logger, e.config.CacheDir, copts...)
	}

	if e.Artifacts == nil {
		outputDir := e.config.OutputDir
		if outputDir == "" {
			outputDir = "costscope-out"
		}
		store, prefix, err := e.blobStore(ctx, outputDir, outputDir)
		if err != nil {
			return nil, err
		}
		e.Artifacts = store
		e.artifactPrefix = prefix
	}

	return e, nil
}

// blobStore resolves a target to local or S3 storage. localDefault is
// used when target is empty or not an s3:// URL. The returned prefix
// is non-empty only for s3 targets with a key prefix.
func (e *Engine) blobStore(ctx context.Context, target, localDefault string) (storage.BlobStore, string, error) {
	if !strings.HasPrefix(target, "s3://") {
		if target == "" {
			target = localDefault
		}
		return storage.NewLocalStore(target), "", nil
	}

	bucket, prefix, err := splitS3URL(target)
	if err != nil {
		return nil, "", err
	}
	cfg, _, err := loadAWSConfig(ctx, e.config.Region)
	if err != nil {
		return nil, "", fmt.Errorf("failed to init s3 storage: %w", err)
	}
	return storage.NewS3Store(cfg, bucket), prefix, nil
}

func splitS3URL(url string) (bucket, prefix string, err error) {
	trimmed := strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid s3 url: %s", url)
	}
	if len(parts) > 1 {
		prefix = parts[1]
	}
	return parts[0], prefix, nil
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.Logger = l }
}

// WithConfig sets raw config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		if cfg.Analysis == (appconfig.AnalysisConfig{}) {
			cfg.Analysis = appconfig.DefaultAnalysisConfig()
		}
		if cfg.Rules == (appconfig.RuleParams{}) {
			cfg.Rules = appconfig.DefaultRuleParams()
		}
		e.config = cfg
		if cfg.Logger != nil {
			e.Logger = cfg.Logger
		}
	}
}

// WithProviders injects data sources directly, bypassing config-driven
// construction.
func WithProviders(provs ...providers.Provider) Option {
	return func(e *Engine) { e.providers = provs }
}

// WithOverrides injects a pre-compiled override engine.
func WithOverrides(o *policy.CELEngine) Option {
	return func(e *Engine) { e.overrides = o }
}

// WithHistory injects a run-history ledger.
func WithHistory(l *history.Ledger) Option {
	return func(e *Engine) { e.History = l }
}

// WithNotifier injects the webhook client.
func WithNotifier(n *notifier.SlackClient) Option {
	return func(e *Engine) { e.Notifier = n }
}

// WithCalibrator injects the discount calibrator.
func WithCalibrator(c *pricing.Calibrator) Option {
	return func(e *Engine) { e.Calibrator = c }
}

// WithArtifactStore injects the artifact destination.
func WithArtifactStore(s storage.BlobStore) Option {
	return func(e *Engine) { e.Artifacts = s }
}

// recoverPanic converts a pipeline panic into telemetry and a log line
// instead of taking down a host application.
func (e *Engine) recoverPanic(ctx context.Context) {
	if r := recover(); r != nil {
		_, span := e.Tracer.Start(ctx, "CriticalPanic")
		stack := debug.Stack()

		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "critical failure")
		span.SetAttributes(
			attribute.String("crash.stack", string(stack)),
			attribute.String("crash.reason", fmt.Sprintf("%v", r)),
		)
		span.End()

		e.Logger.Error("critical failure", "error", r, "stack", string(stack))
	}
}

// redactSensitiveData scrubs sensitive keys from logs.
func redactSensitiveData(groups []string, a slog.Attr) slog.Attr {
	sensitiveKeys := map[string]bool{
		"account": true, "password": true, "access_key": true, "token": true,
		"secret": true, "api_key": true, "private_key": true, "auth_token": true,
		"refresh_token": true, "certificate": true, "signature": true,
		"credential": true, "ssh_key": true, "connection_string": true,
	}

	if sensitiveKeys[a.Key] {
		return slog.Attr{
			Key:   a.Key,
			Value: slog.StringValue("[REDACTED]"),
		}
	}
	return a
}

// fallbackProvider builds the placeholder data source used when no
// live provider produced records.
func (e *Engine) fallbackProvider() providers.Provider {
	days := e.config.WindowDays
	if days <= 0 {
		days = 30
	}
	return fallback.New(days, 1)
}
