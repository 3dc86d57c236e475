package engine

import (
	"context"
	"path"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/engine/report"
)

// writeArtifacts renders the report in every output format and stores
// them through the artifact blob store. Individual failures are logged
// and skipped so one broken surface doesn't cost the others.
func (e *Engine) writeArtifacts(ctx context.Context, rep billing.OptimizationReport) {
	put := func(key string, data []byte) {
		if e.artifactPrefix != "" {
			key = path.Join(e.artifactPrefix, key)
		}
		if err := e.Artifacts.Put(ctx, key, data); err != nil {
			e.Logger.Warn("failed to write artifact", "key", key, "error", err)
		}
	}

	if data, err := report.MarshalJSON(rep); err != nil {
		e.Logger.Warn("failed to render json report", "error", err)
	} else {
		put("report.json", data)
	}

	if data, err := report.MarshalCSV(rep); err != nil {
		e.Logger.Warn("failed to render csv report", "error", err)
	} else {
		put("report.csv", data)
	}

	if data, err := report.RenderDashboard(rep); err != nil {
		e.Logger.Warn("failed to render html dashboard", "error", err)
	} else {
		put("report.html", data)
	}
}
