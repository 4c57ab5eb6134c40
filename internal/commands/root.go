// internal/commands/root.go
package metron

import (
	"errors"
	"fmt"
	"os"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/metron/internal/appconfig"
	"github.com/mwiater/metron/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "metron",
	Short: "metron — concurrent benchmarking engine for accelerator devices",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ensureConfigLoaded()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("verbose") || viper.GetBool("verbose") {
			cfg.Verbose = true
		}
		if lf := viper.GetString("logFile"); lf != "" && !cmd.Flags().Changed("logFile") {
			cfg.LogFile = lf
		} else if cmd.Flags().Changed("logFile") {
			cfg.LogFile, _ = cmd.Flags().GetString("logFile")
		}
		currentConfig = cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if currentConfig.Verbose {
			pp.Println(currentConfig)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
}

// ensureConfigLoaded reads and validates the config file. A missing file at
// the default path is not an error; the defaults apply.
func ensureConfigLoaded() (*appconfig.Config, error) {
	cfg, err := appconfig.Load(cfgFile)
	if err != nil {
		if cfgFile == appconfig.DefaultConfigPath && errors.Is(err, os.ErrNotExist) {
			return &appconfig.Config{}, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	if currentConfig == nil {
		return &appconfig.Config{}
	}
	return currentConfig
}

// VerboseEnabled returns true if verbose mode is enabled.
func VerboseEnabled() bool { return GetConfig().Verbose }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
