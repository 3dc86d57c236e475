package report

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/version"
)

// dashboardTemplate renders the standalone HTML report. Table cells go
// through html/template escaping; chart arrays are marshaled with
// encoding/json, which escapes <, >, and & for embedding in script
// blocks.
var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>CostScope Report</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        :root {
            --bg: #050505;
            --surface: rgba(255, 255, 255, 0.03);
            --border: rgba(255, 255, 255, 0.1);
            --primary: #00FF99;
            --secondary: #874BFD;
            --danger: #FF3366;
            --text: #F8FAFC;
            --text-dim: #94A3B8;
        }
        * { box-sizing: border-box; }
        body {
            background: var(--bg);
            color: var(--text);
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
            margin: 0;
            padding: 40px;
            font-size: 14px;
        }
        .header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 40px;
            border-bottom: 1px solid var(--border);
            padding-bottom: 20px;
        }
        .logo { font-size: 1.5rem; font-weight: 700; letter-spacing: -1px; }
        .logo span { color: var(--primary); }
        .meta { color: var(--text-dim); }
        .kpi-grid {
            display: grid;
            grid-template-columns: repeat(3, 1fr);
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: var(--surface);
            border: 1px solid var(--border);
            border-radius: 16px;
            padding: 24px;
        }
        .card h3 { margin: 0 0 10px 0; font-size: 0.75rem; color: var(--text-dim); text-transform: uppercase; letter-spacing: 1.2px; }
        .card .value { font-size: 2.5rem; font-weight: 700; }
        .card .value.cost { color: var(--danger); }
        .card .value.safe { color: var(--primary); }
        .chart-container {
            background: var(--surface);
            border: 1px solid var(--border);
            border-radius: 16px;
            padding: 24px;
            margin-bottom: 40px;
        }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 12px 16px; border-bottom: 1px solid var(--border); }
        th { color: var(--text-dim); font-size: 0.75rem; text-transform: uppercase; letter-spacing: 1.2px; }
        tr.urgent td { color: var(--danger); font-weight: 600; }
        .savings { color: var(--primary); }
    </style>
</head>
<body>
    <div class="header">
        <div class="logo">Cost<span>Scope</span></div>
        <div class="meta">report {{.ReportID}} · {{.GeneratedAt}} · v{{.Version}}</div>
    </div>

    <div class="kpi-grid">
        <div class="card">
            <h3>Total Spend</h3>
            <div class="value cost">${{printf "%.2f" .TotalCost}}</div>
        </div>
        <div class="card">
            <h3>Potential Savings</h3>
            <div class="value safe">${{printf "%.2f" .TotalSavings}}</div>
        </div>
        <div class="card">
            <h3>Trend</h3>
            <div class="value">{{.TrendLabel}}</div>
        </div>
    </div>

    <div class="chart-container">
        <h3>Daily Spend</h3>
        <canvas id="dailyChart" height="80"></canvas>
    </div>

    <div class="chart-container">
        <h3>Priority Actions</h3>
        <table>
            <tr><th>#</th><th>Scope</th><th>Action</th><th>Est. Savings</th></tr>
            {{range $i, $a := .Actions}}
            <tr{{if eq $a.Ordinal 0}} class="urgent"{{end}}>
                <td>{{$a.Rank}}</td>
                <td>{{$a.Scope}}</td>
                <td>{{$a.Action}}</td>
                <td class="savings">{{if gt $a.PotentialSavings 0.0}}${{printf "%.2f" $a.PotentialSavings}}{{else}}&mdash;{{end}}</td>
            </tr>
            {{end}}
        </table>
    </div>

    <script>
        const labels = {{.ChartLabelsJSON}};
        const values = {{.ChartValuesJSON}};
        new Chart(document.getElementById('dailyChart'), {
            type: 'line',
            data: {
                labels: labels,
                datasets: [{
                    label: 'Daily cost ($)',
                    data: values,
                    borderColor: '#00FF99',
                    backgroundColor: 'rgba(0, 255, 153, 0.1)',
                    fill: true,
                    tension: 0.3
                }]
            },
            options: {
                plugins: { legend: { display: false } },
                scales: {
                    x: { grid: { color: 'rgba(255,255,255,0.05)' } },
                    y: { grid: { color: 'rgba(255,255,255,0.05)' } }
                }
            }
        });
    </script>
</body>
</html>
`))

type dashboardAction struct {
	Rank             int
	Ordinal          int
	Scope            string
	Action           string
	PotentialSavings float64
}

type dashboardData struct {
	ReportID        string
	GeneratedAt     string
	Version         string
	TotalCost       float64
	TotalSavings    float64
	TrendLabel      string
	Actions         []dashboardAction
	ChartLabelsJSON template.JS
	ChartValuesJSON template.JS
}

// RenderDashboard renders the report as a standalone HTML page.
func RenderDashboard(r billing.OptimizationReport) ([]byte, error) {
	labels := make([]string, 0, len(r.DailyCosts))
	values := make([]float64, 0, len(r.DailyCosts))
	for _, d := range r.DailyCosts {
		labels = append(labels, d.Date.Format("2006-01-02"))
		values = append(values, d.TotalCost)
	}

	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}

	actions := make([]dashboardAction, 0, len(r.PriorityActions))
	for i, a := range r.PriorityActions {
		actions = append(actions, dashboardAction{
			Rank:             i + 1,
			Ordinal:          a.Ordinal,
			Scope:            a.Scope,
			Action:           a.Action,
			PotentialSavings: a.PotentialSavings,
		})
	}

	data := dashboardData{
		ReportID:        r.ReportID,
		GeneratedAt:     r.GeneratedAt.Format("2006-01-02 15:04 MST"),
		Version:         version.Current,
		TotalCost:       r.TotalCost,
		TotalSavings:    r.TotalPotentialSavings,
		TrendLabel:      string(r.Trend.Direction),
		Actions:         actions,
		ChartLabelsJSON: template.JS(labelsJSON),
		ChartValuesJSON: template.JS(valuesJSON),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDashboard writes the HTML dashboard to a file.
func WriteDashboard(r billing.OptimizationReport, path string) error {
	data, err := RenderDashboard(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
