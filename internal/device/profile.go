// internal/device/profile.go
package device

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Profile describes the simulated accelerator: its compute and memory
// envelope, its power/thermal model, and the DVFS operating points it
// accepts. Profiles load from YAML so different device models can be swapped
// without recompiling.
type Profile struct {
	Name                string  `yaml:"name"`
	ComputeGFLOPS       float64 `yaml:"compute_gflops"`
	MemoryBandwidthGBps float64 `yaml:"memory_bandwidth_gbps"`
	// BaseLatencyUs is a fixed per-call overhead added to every compute
	// operation, scaled up when the device runs below nominal frequency.
	BaseLatencyUs float64 `yaml:"base_latency_us"`

	IdlePowerW    float64 `yaml:"idle_power_w"`
	LoadPowerW    float64 `yaml:"load_power_w"`
	AmbientTempC  float64 `yaml:"ambient_temp_c"`
	MaxTempC      float64 `yaml:"max_temp_c"`
	ThrottleTempC float64 `yaml:"throttle_temp_c"`

	NominalFrequencyMHz int `yaml:"nominal_frequency_mhz"`
	NominalVoltageMV    int `yaml:"nominal_voltage_mv"`
	// OperatingPoints lists the DVFS configs SetDVFS accepts. An empty list
	// accepts any positive frequency/voltage pair.
	OperatingPoints []DVFSConfig `yaml:"operating_points"`
}

// DefaultProfile returns the built-in device model used when no profile file
// is configured.
func DefaultProfile() Profile {
	return Profile{
		Name:                "metron-sim",
		ComputeGFLOPS:       512,
		MemoryBandwidthGBps: 64,
		IdlePowerW:          8,
		LoadPowerW:          45,
		AmbientTempC:        35,
		MaxTempC:            95,
		ThrottleTempC:       88,
		NominalFrequencyMHz: 1200,
		NominalVoltageMV:    850,
		OperatingPoints: []DVFSConfig{
			{FrequencyMHz: 600, VoltageMV: 700},
			{FrequencyMHz: 800, VoltageMV: 750},
			{FrequencyMHz: 1000, VoltageMV: 800},
			{FrequencyMHz: 1200, VoltageMV: 850},
			{FrequencyMHz: 1400, VoltageMV: 950},
		},
	}
}

// LoadProfile reads a device profile from a YAML file. Fields omitted by the
// file fall back to the default profile's values.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read device profile %q: %w", path, err)
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse device profile %q: %w", path, err)
	}
	if err := profile.validate(); err != nil {
		return Profile{}, fmt.Errorf("device profile %q: %w", path, err)
	}
	return profile, nil
}

func (p Profile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.NominalFrequencyMHz <= 0 {
		return fmt.Errorf("nominal_frequency_mhz must be positive, got %d", p.NominalFrequencyMHz)
	}
	if p.NominalVoltageMV <= 0 {
		return fmt.Errorf("nominal_voltage_mv must be positive, got %d", p.NominalVoltageMV)
	}
	if p.LoadPowerW < p.IdlePowerW {
		return fmt.Errorf("load_power_w (%v) below idle_power_w (%v)", p.LoadPowerW, p.IdlePowerW)
	}
	if p.MaxTempC <= p.AmbientTempC {
		return fmt.Errorf("max_temp_c (%v) must exceed ambient_temp_c (%v)", p.MaxTempC, p.AmbientTempC)
	}
	for _, pt := range p.OperatingPoints {
		if pt.FrequencyMHz <= 0 || pt.VoltageMV <= 0 {
			return fmt.Errorf("operating point %+v has non-positive values", pt)
		}
	}
	return nil
}

// Nominal returns the profile's nominal DVFS operating point.
func (p Profile) Nominal() DVFSConfig {
	return DVFSConfig{FrequencyMHz: p.NominalFrequencyMHz, VoltageMV: p.NominalVoltageMV}
}

// Supports reports whether the profile accepts the given operating point.
func (p Profile) Supports(cfg DVFSConfig) bool {
	if cfg.FrequencyMHz <= 0 || cfg.VoltageMV <= 0 {
		return false
	}
	if len(p.OperatingPoints) == 0 {
		return true
	}
	for _, pt := range p.OperatingPoints {
		if pt == cfg {
			return true
		}
	}
	return false
}
