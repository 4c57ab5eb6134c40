// internal/commands/sweep_dvfs.go
package metron

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/catalog"
	"github.com/mwiater/metron/internal/device"
	"github.com/mwiater/metron/internal/suite"
	"github.com/mwiater/metron/internal/sweep"
)

var (
	sweepDVFSBenchmark  string
	sweepDVFSIterations int
	sweepDVFSStabilize  time.Duration
)

// sweepDVFSCmd measures power efficiency at each of the device profile's
// operating points and reports the most efficient setting.
var sweepDVFSCmd = &cobra.Command{
	Use:   "dvfs",
	Short: "Find the DVFS operating point with the best power efficiency",
	RunE: func(cmd *cobra.Command, args []string) error {
		def, ok := catalog.Lookup(sweepDVFSBenchmark)
		if !ok {
			return fmt.Errorf("unknown benchmark %q", sweepDVFSBenchmark)
		}

		cfg := GetConfig()
		dev, err := openDevice(cfg)
		if err != nil {
			return err
		}
		defer dev.Close()

		profile := device.DefaultProfile()
		if cfg.DeviceProfile != "" {
			if profile, err = device.LoadProfile(cfg.DeviceProfile); err != nil {
				return err
			}
		}
		candidates := profile.OperatingPoints
		if len(candidates) == 0 {
			return fmt.Errorf("device profile %q declares no operating points to sweep", profile.Name)
		}

		base := suite.BuildConfig(def, suite.Overrides{Iterations: sweepDVFSIterations})
		base.Kind = bench.KindPower

		res := sweep.DVFS(dev, base, def.Workload, candidates, sweepDVFSStabilize)

		fmt.Printf("\nDVFS sweep: %s (size=%s, iterations=%d)\n\n", def.Name, base.Size, base.Iterations)
		fmt.Printf("%10s %10s %10s %10s %14s\n", "FREQ MHz", "VOLT mV", "GOPS", "POWER W", "GOPS/W")
		for _, p := range res.Points {
			if !p.OK {
				fmt.Printf("%10d %10d %10s %10s %14s  (%s)\n",
					p.Config.FrequencyMHz, p.Config.VoltageMV, "-", "-", "-", p.Err)
				continue
			}
			fmt.Printf("%10d %10d %10.3f %10.2f %14.4f\n",
				p.Config.FrequencyMHz, p.Config.VoltageMV,
				p.ThroughputGOPS, p.AvgPowerW, p.EfficiencyGOPSW)
		}
		fmt.Println()

		if !res.OK {
			return fmt.Errorf("dvfs sweep inconclusive: no operating point could be measured")
		}
		fmt.Printf("Most efficient setting: %d MHz / %d mV (%.4f GOPS/W)\n",
			res.Best.Config.FrequencyMHz, res.Best.Config.VoltageMV, res.Best.EfficiencyGOPSW)
		return nil
	},
}

func init() {
	sweepCmd.AddCommand(sweepDVFSCmd)
	sweepDVFSCmd.Flags().StringVar(&sweepDVFSBenchmark, "benchmark", "power_matmul", "benchmark to sweep")
	sweepDVFSCmd.Flags().IntVar(&sweepDVFSIterations, "iterations", 0, "iterations per candidate (0 = catalog default)")
	sweepDVFSCmd.Flags().DurationVar(&sweepDVFSStabilize, "stabilize", sweep.DefaultStabilization, "settle time after applying each operating point")
}
