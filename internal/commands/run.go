// internal/commands/run.go
package metron

import (
	"fmt"
	"os"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/catalog"
	"github.com/mwiater/metron/internal/metrics"
	"github.com/mwiater/metron/internal/report"
	"github.com/mwiater/metron/internal/suite"
	"github.com/mwiater/metron/internal/tui"
)

var (
	runAll         bool
	runThroughput  bool
	runLatency     bool
	runScalability bool
	runPower       bool
	runBenchmark   string

	runSize       string
	runIterations int
	runWarmup     int
	runThreads    int

	runEnablePower   bool
	runEnableThermal bool

	runOutputDir string
	runCSV       bool
	runJSON      bool
	runHTML      bool
	runTUI       bool
)

// runCmd executes the selected benchmark suite and writes the requested
// reports. The command fails when any executed benchmark fails; skipped
// benchmarks never affect the exit status.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the selected benchmarks against the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := buildCriteria()
		if err != nil {
			return err
		}
		selected, err := catalog.Select(criteria)
		if err != nil {
			return err
		}

		cfg := GetConfig()
		overrides, err := buildOverrides(cmd)
		if err != nil {
			return err
		}
		if VerboseEnabled() {
			pp.Println(overrides)
		}

		dev, err := openDevice(cfg)
		if err != nil {
			return err
		}
		defer dev.Close()

		var sum suite.Summary
		if runTUI {
			sum, err = tui.RunSuite(dev, selected, overrides)
			if err != nil {
				return err
			}
		} else {
			sum = suite.Run(dev, selected, overrides)
		}

		report.PrintSummary(os.Stdout, sum)

		results := make([]metrics.Result, 0, len(sum.Outcomes))
		for _, o := range sum.Outcomes {
			if o.Status != suite.StatusSkipped {
				results = append(results, o.Result)
			}
		}

		outDir := runOutputDir
		if !cmd.Flags().Changed("output") {
			outDir = cfg.OutputDirPath()
		}
		if runCSV {
			path, err := report.WriteCSV(outDir, results)
			if err != nil {
				return err
			}
			fmt.Printf("CSV report written to %s\n", path)
		}
		if runJSON {
			path, err := report.WriteJSON(outDir, results)
			if err != nil {
				return err
			}
			fmt.Printf("JSON report written to %s\n", path)
		}
		if runHTML {
			path, err := report.WriteHTML(outDir, results)
			if err != nil {
				return err
			}
			fmt.Printf("HTML report written to %s\n", path)
		}

		if !sum.OK() {
			return fmt.Errorf("%d of %d executed benchmarks failed", sum.Failed, sum.Passed+sum.Failed)
		}
		return nil
	},
}

// buildCriteria maps the selection flags onto a catalog filter. The kind
// flags are mutually exclusive; --benchmark wins over any category.
func buildCriteria() (catalog.Criteria, error) {
	var criteria catalog.Criteria
	kinds := 0
	if runThroughput {
		criteria.Kind = bench.KindThroughput
		kinds++
	}
	if runLatency {
		criteria.Kind = bench.KindLatency
		kinds++
	}
	if runScalability {
		criteria.Kind = bench.KindScalability
		kinds++
	}
	if runPower {
		criteria.Kind = bench.KindPower
		kinds++
	}
	if kinds > 1 {
		flags := make([]string, 0, len(bench.Kinds()))
		for _, k := range bench.Kinds() {
			flags = append(flags, "--"+string(k))
		}
		return criteria, fmt.Errorf("select at most one of %s", strings.Join(flags, ", "))
	}
	criteria.All = runAll || (kinds == 0 && runBenchmark == "")
	criteria.Name = runBenchmark
	return criteria, nil
}

// sizeFlagHelp enumerates the known size classes for the --size flag text.
func sizeFlagHelp() string {
	names := make([]string, 0, len(bench.Sizes()))
	for _, s := range bench.Sizes() {
		names = append(names, string(s))
	}
	return "problem size class (" + strings.Join(names, "|") + ")"
}

// buildOverrides merges config-file defaults with explicit run flags; a flag
// the user set always wins.
func buildOverrides(cmd *cobra.Command) (suite.Overrides, error) {
	cfg := GetConfig()
	ov := suite.Overrides{
		Iterations:    cfg.DefaultIterations,
		Warmup:        cfg.DefaultWarmup,
		Threads:       cfg.DefaultThreads,
		EnablePower:   cfg.EnablePower || runEnablePower,
		EnableThermal: cfg.EnableThermal || runEnableThermal,
		PowerInterval: cfg.PowerInterval(),
		PowerCapacity: cfg.PowerCapacity(),
	}

	size := cfg.DefaultSize
	if cmd.Flags().Changed("size") {
		size = runSize
	}
	if size != "" {
		parsed, err := bench.ParseSize(size)
		if err != nil {
			return ov, err
		}
		ov.Size = parsed
	}

	if cmd.Flags().Changed("iterations") {
		ov.Iterations = runIterations
	}
	if cmd.Flags().Changed("warmup") {
		ov.Warmup = runWarmup
	}
	if cmd.Flags().Changed("threads") {
		ov.Threads = runThreads
	}
	return ov, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runAll, "all", false, "run every benchmark in the catalog")
	runCmd.Flags().BoolVar(&runThroughput, "throughput", false, "run throughput benchmarks")
	runCmd.Flags().BoolVar(&runLatency, "latency", false, "run latency benchmarks")
	runCmd.Flags().BoolVar(&runScalability, "scalability", false, "run scalability benchmarks")
	runCmd.Flags().BoolVar(&runPower, "power", false, "run power benchmarks")
	runCmd.Flags().StringVar(&runBenchmark, "benchmark", "", "run a single benchmark by name")

	runCmd.Flags().StringVar(&runSize, "size", "", sizeFlagHelp())
	runCmd.Flags().IntVar(&runIterations, "iterations", 0, "measured iterations per benchmark")
	runCmd.Flags().IntVar(&runWarmup, "warmup", 0, "warmup iterations per benchmark")
	runCmd.Flags().IntVar(&runThreads, "threads", 0, "worker threads for the concurrency harness")

	runCmd.Flags().BoolVar(&runEnablePower, "enable-power", false, "enable power monitoring")
	runCmd.Flags().BoolVar(&runEnableThermal, "enable-thermal", false, "enable thermal monitoring")

	runCmd.Flags().StringVar(&runOutputDir, "output", "", "report output directory")
	runCmd.Flags().BoolVar(&runCSV, "csv", false, "write a CSV report")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "write a JSON report")
	runCmd.Flags().BoolVar(&runHTML, "html", false, "write an HTML report")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "show the live run view")
}
