// internal/commands/list.go
package metron

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mwiater/metron/internal/catalog"
	"github.com/mwiater/metron/internal/util"
)

// listCmd prints the benchmark catalog with each entry's defaults.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all benchmarks in the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
		powerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

		fmt.Printf("%-22s %-12s %-8s %10s %7s  %s\n",
			"NAME", "CATEGORY", "SIZE", "ITERATIONS", "WARMUP", "DESCRIPTION")
		for _, def := range catalog.All() {
			name := nameStyle.Render(fmt.Sprintf("%-22s", def.Name))
			desc := util.TruncateRunes(def.Description, 60)
			if def.NeedsPower {
				desc += " " + powerStyle.Render("[requires --enable-power]")
			}
			fmt.Printf("%s %-12s %-8s %10d %7d  %s\n",
				name, def.Kind, def.DefaultSize, def.DefaultIterations, def.DefaultWarmup, desc)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
