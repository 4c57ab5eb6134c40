// internal/report/html.go
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/mwiater/metron/internal/metrics"
	"github.com/mwiater/metron/internal/util"
)

type reportData struct {
	Title       string
	ResultsJSON template.JS
}

// GenerateHTML renders a standalone dashboard with the full result payload
// embedded, so the file works without a server.
func GenerateHTML(results []metrics.Result) (string, error) {
	payload, err := json.Marshal(results)
	if err != nil {
		return "", err
	}

	viewModel := reportData{
		Title:       "metron: Benchmark Report",
		ResultsJSON: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, viewModel); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML writes the dashboard into dir.
func WriteHTML(dir string, results []metrics.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	html, err := GenerateHTML(results)
	if err != nil {
		return "", fmt.Errorf("error rendering HTML report: %w", err)
	}
	path := filepath.Join(dir, "report.html")
	if err := util.WriteFile(path, []byte(html)); err != nil {
		return "", fmt.Errorf("error writing HTML report: %w", err)
	}
	return path, nil
}

var reportTemplate = template.Must(template.New("benchmark-report").Parse(reportTemplateHTML))

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.3/dist/chart.umd.min.js"></script>
  <style>
    body { background-color: #F1F5F9; color: #0F172A; }
    .card { border: 1px solid #E2E8F0; margin-bottom: 1.5rem; }
    .metric-value { font-variant-numeric: tabular-nums; }
    .errors-bad { color: #DC2626; font-weight: 600; }
  </style>
</head>
<body>
  <nav class="navbar navbar-dark bg-dark mb-4">
    <div class="container-fluid">
      <span class="navbar-brand">{{ .Title }}</span>
    </div>
  </nav>
  <div class="container">
    <div class="card">
      <div class="card-body">
        <h5 class="card-title">Results</h5>
        <div class="table-responsive">
          <table class="table table-sm table-striped" id="results-table">
            <thead>
              <tr>
                <th>Benchmark</th><th>Size</th><th>Iterations</th><th>Threads</th>
                <th>GOPS</th><th>Mean ms</th><th>P95 ms</th><th>P99 ms</th>
                <th>GB/s</th><th>W</th><th>GOPS/W</th><th>Errors</th>
              </tr>
            </thead>
            <tbody></tbody>
          </table>
        </div>
      </div>
    </div>
    <div class="card">
      <div class="card-body">
        <h5 class="card-title">Throughput (GOPS)</h5>
        <canvas id="throughput-chart"></canvas>
      </div>
    </div>
    <div class="card">
      <div class="card-body">
        <h5 class="card-title">Latency (ms)</h5>
        <canvas id="latency-chart"></canvas>
      </div>
    </div>
  </div>
  <script>
    const results = {{ .ResultsJSON }};

    const fmt = (v, digits) => (v === undefined || v === null) ? "–" : Number(v).toFixed(digits);
    const tbody = document.querySelector("#results-table tbody");
    for (const r of results) {
      const m = r.metrics;
      const row = document.createElement("tr");
      row.innerHTML =
        "<td>" + r.benchmark_name + "</td>" +
        "<td>" + r.configuration.size + "</td>" +
        "<td class='metric-value'>" + r.configuration.iterations + "</td>" +
        "<td class='metric-value'>" + r.configuration.threads + "</td>" +
        "<td class='metric-value'>" + fmt(m.throughput_gops, 3) + "</td>" +
        "<td class='metric-value'>" + fmt(m.latency_mean_ms, 3) + "</td>" +
        "<td class='metric-value'>" + fmt(r.statistics.p95_latency_ms, 3) + "</td>" +
        "<td class='metric-value'>" + fmt(r.statistics.p99_latency_ms, 3) + "</td>" +
        "<td class='metric-value'>" + fmt(m.bandwidth_gbps, 3) + "</td>" +
        "<td class='metric-value'>" + fmt(m.avg_power_w, 2) + "</td>" +
        "<td class='metric-value'>" + fmt(m.efficiency_gops_w, 3) + "</td>" +
        "<td class='metric-value" + (m.errors > 0 ? " errors-bad" : "") + "'>" + m.errors + "</td>";
      tbody.appendChild(row);
    }

    const labels = results.map(r => r.benchmark_name);
    new Chart(document.getElementById("throughput-chart"), {
      type: "bar",
      data: {
        labels,
        datasets: [{
          label: "GOPS",
          data: results.map(r => r.metrics.throughput_gops),
          backgroundColor: "#3B82F6"
        }]
      },
      options: { scales: { y: { beginAtZero: true } } }
    });

    new Chart(document.getElementById("latency-chart"), {
      type: "bar",
      data: {
        labels,
        datasets: [
          { label: "mean", data: results.map(r => r.metrics.latency_mean_ms), backgroundColor: "#10B981" },
          { label: "p95", data: results.map(r => r.statistics.p95_latency_ms), backgroundColor: "#F59E0B" },
          { label: "p99", data: results.map(r => r.statistics.p99_latency_ms), backgroundColor: "#DC2626" }
        ]
      },
      options: { scales: { y: { beginAtZero: true } } }
    });
  </script>
</body>
</html>
`
