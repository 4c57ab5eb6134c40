// internal/sweep/dvfs.go
package sweep

import (
	"time"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/device"
	"github.com/mwiater/metron/internal/logging"
)

// DefaultStabilization is how long the sweep waits after applying an
// operating point before measuring, so power readings reflect the new
// setting rather than the transition.
const DefaultStabilization = 100 * time.Millisecond

// DVFSPoint is one operating point's outcome. Apply failures leave OK=false
// with the reason recorded; the candidate is skipped, not fatal.
type DVFSPoint struct {
	Config           device.DVFSConfig `json:"config"`
	ThroughputGOPS   float64           `json:"throughput_gops"`
	AvgPowerW        float64           `json:"avg_power_w"`
	EfficiencyGOPSW  float64           `json:"efficiency_gops_w"`
	PeakTemperatureC float64           `json:"peak_temperature_c"`
	Errors           int               `json:"errors"`
	OK               bool              `json:"ok"`
	Err              string            `json:"error,omitempty"`
}

// DVFSSweepResult reports every candidate plus the best-efficiency setting.
// When every candidate fails, OK is false and Best is not meaningful: the
// sweep is inconclusive, never a zero-initialized answer passed off as
// genuine.
type DVFSSweepResult struct {
	Points []DVFSPoint `json:"points"`
	Best   DVFSPoint   `json:"best"`
	OK     bool        `json:"ok"`
}

// DVFS measures power efficiency at each candidate operating point: apply
// the setting, wait for stabilization, run a power-monitored pass, and score
// efficiency as throughput over mean power. The device is left at the last
// successfully applied setting.
func DVFS(dev device.Device, base bench.Config, workload bench.Workload, candidates []device.DVFSConfig, stabilize time.Duration) DVFSSweepResult {
	if stabilize <= 0 {
		stabilize = DefaultStabilization
	}

	res := DVFSSweepResult{Points: make([]DVFSPoint, 0, len(candidates))}
	for _, cand := range candidates {
		point := DVFSPoint{Config: cand}

		if err := dev.SetDVFS(cand); err != nil {
			point.Err = err.Error()
			res.Points = append(res.Points, point)
			logging.LogEvent("dvfs sweep: %d MHz/%d mV apply failed: %v",
				cand.FrequencyMHz, cand.VoltageMV, err)
			continue
		}
		time.Sleep(stabilize)

		cfg := base
		cfg.Threads = 1
		cfg.EnablePower = true
		ctx, err := bench.NewContext(cfg, dev)
		if err != nil {
			point.Err = err.Error()
			res.Points = append(res.Points, point)
			continue
		}

		m, err := bench.Run(ctx, workload)
		closeErr := ctx.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			point.Err = err.Error()
			res.Points = append(res.Points, point)
			logging.LogEvent("dvfs sweep: %d MHz/%d mV run failed: %v",
				cand.FrequencyMHz, cand.VoltageMV, err)
			continue
		}

		point.OK = true
		point.ThroughputGOPS = m.ThroughputGOPS
		point.AvgPowerW = m.AvgPowerW
		point.EfficiencyGOPSW = m.EfficiencyGOPSW
		point.PeakTemperatureC = m.PeakTemperatureC
		point.Errors = m.Errors
		res.Points = append(res.Points, point)
		logging.LogEvent("dvfs sweep: %d MHz/%d mV -> %.3f GOPS, %.2f W, %.3f GOPS/W",
			cand.FrequencyMHz, cand.VoltageMV, m.ThroughputGOPS, m.AvgPowerW, m.EfficiencyGOPSW)

		if !res.OK || point.EfficiencyGOPSW > res.Best.EfficiencyGOPSW {
			res.Best = point
			res.OK = true
		}
	}
	return res
}
