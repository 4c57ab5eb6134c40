// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultPowerIntervalMs is the power-sampling period used when the config omits one.
	defaultPowerIntervalMs = 10
	// defaultPowerCapacity bounds the power monitor's sample buffer.
	defaultPowerCapacity = 10000
	// defaultOutputDir receives CSV/JSON/HTML reports when no directory is configured.
	defaultOutputDir = "metronData/reports"
)

// Config represents the top-level application configuration.
type Config struct {
	// DeviceProfile is an optional YAML device-profile path; empty selects
	// the built-in simulated device model.
	DeviceProfile string `json:"deviceProfile,omitempty"`
	OutputDir     string `json:"outputDir,omitempty"`
	LogFile       string `json:"logFile,omitempty"`
	Verbose       bool   `json:"verbose"`

	DefaultSize       string `json:"defaultSize,omitempty"`
	DefaultIterations int    `json:"defaultIterations,omitempty"`
	DefaultWarmup     int    `json:"defaultWarmup,omitempty"`
	DefaultThreads    int    `json:"defaultThreads,omitempty"`

	EnablePower   bool `json:"enablePower"`
	EnableThermal bool `json:"enableThermal"`

	PowerIntervalMs     int `json:"powerIntervalMs,omitempty"`
	PowerSampleCapacity int `json:"powerSampleCapacity,omitempty"`

	// SweepThreadCounts overrides the thread-sweep candidate list.
	SweepThreadCounts []int `json:"sweepThreadCounts,omitempty"`

	ConfigPath string `json:"-"`
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "metron.log"
}

// OutputDirPath returns the report output directory, applying a default if not set.
func (c Config) OutputDirPath() string {
	if dir := strings.TrimSpace(c.OutputDir); dir != "" {
		return dir
	}
	return defaultOutputDir
}

// PowerInterval returns the power-sampling period.
func (c Config) PowerInterval() time.Duration {
	ms := c.PowerIntervalMs
	if ms <= 0 {
		ms = defaultPowerIntervalMs
	}
	return time.Duration(ms) * time.Millisecond
}

// PowerCapacity returns the power monitor's sample-buffer bound.
func (c Config) PowerCapacity() int {
	if c.PowerSampleCapacity <= 0 {
		return defaultPowerCapacity
	}
	return c.PowerSampleCapacity
}

// Load reads the application configuration from the specified path and
// validates it against the embedded schema.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q: %w", path, err)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	if err := ValidateBytes(data); err != nil {
		return Config{}, fmt.Errorf("config file %q: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}
