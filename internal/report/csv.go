// internal/report/csv.go
// Package report renders suite results as CSV and JSON files, a standalone
// HTML dashboard, and a colored terminal summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwiater/metron/internal/metrics"
	"github.com/mwiater/metron/internal/util"
)

// csvHeader is the fixed column contract; order matters to downstream
// tooling.
const csvHeader = "name,size,iterations,throughput_gops,latency_ms,bandwidth_gbps,power_w,efficiency_gops_w,temperature_c,errors"

// FormatCSV renders one row per result under the fixed header.
func FormatCSV(results []metrics.Result) string {
	var b strings.Builder
	b.WriteString(csvHeader + "\n")
	for _, r := range results {
		m := r.Metrics
		b.WriteString(fmt.Sprintf("%s,%s,%d,%.6f,%.6f,%.6f,%.3f,%.6f,%.2f,%d\n",
			r.BenchmarkName,
			r.Configuration.Size,
			r.Configuration.Iterations,
			m.ThroughputGOPS,
			m.LatencyMeanMs,
			m.BandwidthGBps,
			m.AvgPowerW,
			m.EfficiencyGOPSW,
			m.PeakTemperatureC,
			m.Errors,
		))
	}
	return b.String()
}

// WriteCSV writes the CSV report into dir, creating it if needed.
func WriteCSV(dir string, results []metrics.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	path := filepath.Join(dir, "results.csv")
	if err := util.WriteFile(path, []byte(FormatCSV(results))); err != nil {
		return "", fmt.Errorf("error writing CSV report: %w", err)
	}
	return path, nil
}
