// internal/commands/sweep.go
package metron

import "github.com/spf13/cobra"

// sweepCmd groups the parameter-sweep optimizers.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Search configuration spaces for throughput or efficiency optima",
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
