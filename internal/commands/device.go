// internal/commands/device.go
package metron

import (
	"github.com/mwiater/metron/internal/appconfig"
	"github.com/mwiater/metron/internal/device"
)

// openDevice initializes the accelerator handle for one command invocation:
// the configured YAML profile when set, otherwise the built-in model.
func openDevice(cfg *appconfig.Config) (device.Device, error) {
	profile := device.DefaultProfile()
	if cfg.DeviceProfile != "" {
		loaded, err := device.LoadProfile(cfg.DeviceProfile)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}
	return device.NewSim(profile), nil
}
