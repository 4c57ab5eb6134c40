// internal/device/profile_test.go
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProfileIsValid(t *testing.T) {
	if err := DefaultProfile().validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "device.yaml")
	doc := `name: test-npu
compute_gflops: 256
idle_power_w: 5
load_power_w: 30
nominal_frequency_mhz: 900
nominal_voltage_mv: 800
operating_points:
  - frequency_mhz: 600
    voltage_mv: 700
  - frequency_mhz: 900
    voltage_mv: 800
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.Name != "test-npu" {
		t.Fatalf("name = %q, want test-npu", profile.Name)
	}
	if profile.NominalFrequencyMHz != 900 {
		t.Fatalf("nominal frequency = %d, want 900", profile.NominalFrequencyMHz)
	}
	if len(profile.OperatingPoints) != 2 {
		t.Fatalf("operating points = %d, want 2", len(profile.OperatingPoints))
	}
	// Omitted fields keep defaults.
	if profile.MaxTempC != DefaultProfile().MaxTempC {
		t.Fatalf("max temp = %v, want default %v", profile.MaxTempC, DefaultProfile().MaxTempC)
	}
}

func TestLoadProfileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"zero frequency": "name: bad\nnominal_frequency_mhz: 0\n",
		"inverted power": "name: bad\nidle_power_w: 50\nload_power_w: 10\n",
		"bad yaml":       "name: [unclosed\n",
		"bad point":      "name: bad\noperating_points:\n  - frequency_mhz: -1\n    voltage_mv: 700\n",
	}
	i := 0
	for label, doc := range cases {
		path := filepath.Join(dir, fmt.Sprintf("bad%d.yaml", i))
		i++
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write profile: %v", err)
		}
		if _, err := LoadProfile(path); err == nil {
			t.Fatalf("%s: expected error, got nil", label)
		}
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProfileSupports(t *testing.T) {
	p := DefaultProfile()
	if !p.Supports(DVFSConfig{FrequencyMHz: 800, VoltageMV: 750}) {
		t.Fatal("listed operating point must be supported")
	}
	if p.Supports(DVFSConfig{FrequencyMHz: 123, VoltageMV: 456}) {
		t.Fatal("unlisted operating point must be rejected")
	}
	if p.Supports(DVFSConfig{}) {
		t.Fatal("zero point must be rejected")
	}

	open := Profile{NominalFrequencyMHz: 1000, NominalVoltageMV: 800}
	if !open.Supports(DVFSConfig{FrequencyMHz: 1, VoltageMV: 1}) {
		t.Fatal("empty table must accept any positive point")
	}
}
