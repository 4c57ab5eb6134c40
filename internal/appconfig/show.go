// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, cfg *Config) {
	if cfg == nil || cfg.ConfigPath == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
		if cfg == nil {
			cfg = &Config{}
		}
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", cfg.ConfigPath)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Device Profile:     %s\n", orDefault(cfg.DeviceProfile, "(built-in)"))
	fmt.Fprintf(out, "  Output Directory:   %s\n", cfg.OutputDirPath())
	fmt.Fprintf(out, "  Log File:           %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Verbose:            %v\n", cfg.Verbose)
	fmt.Fprintf(out, "  Default Size:       %s\n", orDefault(cfg.DefaultSize, "(catalog default)"))
	fmt.Fprintf(out, "  Default Iterations: %s\n", orDefaultInt(cfg.DefaultIterations, "(catalog default)"))
	fmt.Fprintf(out, "  Default Warmup:     %s\n", orDefaultInt(cfg.DefaultWarmup, "(catalog default)"))
	fmt.Fprintf(out, "  Default Threads:    %s\n", orDefaultInt(cfg.DefaultThreads, "1"))
	fmt.Fprintf(out, "  Power Monitoring:   %v\n", cfg.EnablePower)
	fmt.Fprintf(out, "  Thermal Monitoring: %v\n", cfg.EnableThermal)
	fmt.Fprintf(out, "  Power Interval:     %s\n", cfg.PowerInterval())
	fmt.Fprintf(out, "  Power Capacity:     %d samples\n", cfg.PowerCapacity())
	if len(cfg.SweepThreadCounts) > 0 {
		fmt.Fprintf(out, "  Sweep Threads:      %v\n", cfg.SweepThreadCounts)
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orDefaultInt(v int, fallback string) string {
	if v <= 0 {
		return fallback
	}
	return fmt.Sprintf("%d", v)
}
