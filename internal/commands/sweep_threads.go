// internal/commands/sweep_threads.go
package metron

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/catalog"
	"github.com/mwiater/metron/internal/suite"
	"github.com/mwiater/metron/internal/sweep"
)

var (
	sweepThreadsBenchmark  string
	sweepThreadsIterations int
	sweepThreadsCandidates []int
)

// sweepThreadsCmd runs one benchmark across a list of worker counts and
// reports throughput plus scaling efficiency per count.
var sweepThreadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Find the worker count with the best throughput",
	RunE: func(cmd *cobra.Command, args []string) error {
		def, ok := catalog.Lookup(sweepThreadsBenchmark)
		if !ok {
			return fmt.Errorf("unknown benchmark %q", sweepThreadsBenchmark)
		}

		cfg := GetConfig()
		dev, err := openDevice(cfg)
		if err != nil {
			return err
		}
		defer dev.Close()

		base := suite.BuildConfig(def, suite.Overrides{Iterations: sweepThreadsIterations})
		base.Kind = bench.KindScalability

		candidates := sweepThreadsCandidates
		if len(candidates) == 0 {
			candidates = cfg.SweepThreadCounts
		}

		res := sweep.Threads(dev, base, def.Workload, candidates)

		fmt.Printf("\nThread sweep: %s (size=%s, iterations=%d)\n\n", def.Name, base.Size, base.Iterations)
		fmt.Printf("%8s %16s %12s\n", "THREADS", "THROUGHPUT", "EFFICIENCY")
		for _, p := range res.Points {
			if !p.OK {
				fmt.Printf("%8d %16s %12s  (%s)\n", p.Threads, "-", "-", p.Err)
				continue
			}
			fmt.Printf("%8d %13.3e ops/s %11.2f%%\n", p.Threads, p.ThroughputOpsSec, p.ScalingEfficiency*100)
		}
		fmt.Println()

		if !res.OK {
			return fmt.Errorf("thread sweep inconclusive: every candidate failed")
		}
		fmt.Printf("Optimal thread count: %d\n", res.BestThreads)
		return nil
	},
}

func init() {
	sweepCmd.AddCommand(sweepThreadsCmd)
	sweepThreadsCmd.Flags().StringVar(&sweepThreadsBenchmark, "benchmark", "matmul_scaling", "benchmark to sweep")
	sweepThreadsCmd.Flags().IntVar(&sweepThreadsIterations, "iterations", 0, "iterations per candidate (0 = catalog default)")
	sweepThreadsCmd.Flags().IntSliceVar(&sweepThreadsCandidates, "threads", nil, "candidate thread counts (default 1,2,4,8,16)")
}
