// internal/report/summary.go
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/mwiater/metron/internal/suite"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))

// PrintSummary renders the suite outcome as a colored terminal table: passed
// green, failed red, skipped yellow.
func PrintSummary(out io.Writer, sum suite.Summary) {
	fmt.Fprintln(out, headerStyle.Render("Benchmark Suite Results"))
	fmt.Fprintln(out)

	passMark := color.New(color.FgGreen).SprintFunc()
	failMark := color.New(color.FgRed).SprintFunc()
	skipMark := color.New(color.FgYellow).SprintFunc()

	for _, o := range sum.Outcomes {
		m := o.Result.Metrics
		switch o.Status {
		case suite.StatusPassed:
			fmt.Fprintf(out, "  %s  %-22s %10.3f GOPS  %8.3f ms mean  %3d errors",
				passMark("PASS"), o.Result.BenchmarkName, m.ThroughputGOPS, m.LatencyMeanMs, m.Errors)
			if m.AvgPowerW > 0 {
				fmt.Fprintf(out, "  %6.2f W  %.3f GOPS/W", m.AvgPowerW, m.EfficiencyGOPSW)
			}
			fmt.Fprintln(out)
		case suite.StatusFailed:
			fmt.Fprintf(out, "  %s  %-22s %s\n", failMark("FAIL"), o.Result.BenchmarkName, o.Reason)
		case suite.StatusSkipped:
			fmt.Fprintf(out, "  %s  %-22s %s\n", skipMark("SKIP"), o.Result.BenchmarkName, o.Reason)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %d passed, %d failed, %d skipped\n", sum.Passed, sum.Failed, sum.Skipped)
}
