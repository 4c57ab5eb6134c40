// internal/commands/show_config.go
package metron

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mwiater/metron/internal/appconfig"
)

// configCmd groups configuration inspection commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Group commands for inspecting configuration",
}

// showConfigCmd prints the merged configuration the engine would run with.
var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		appconfig.ShowConfig(os.Stdout, GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
}
