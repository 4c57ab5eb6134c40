// servers/benchd/main.go
// benchd exposes the benchmark suite over HTTP so a fleet controller can
// drive runs against a device remotely. Runs are serialized: the device is
// a shared physical resource and concurrent suites would skew every number.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"
	"go.yaml.in/yaml/v3"

	"github.com/mwiater/metron/internal/bench"
	"github.com/mwiater/metron/internal/catalog"
	"github.com/mwiater/metron/internal/device"
	"github.com/mwiater/metron/internal/suite"
)

// RunRequest selects and configures one suite run. Benchmark wins over
// Category; with neither set the whole catalog runs.
type RunRequest struct {
	Benchmark string `json:"benchmark,omitempty"`
	Category  string `json:"category,omitempty"`

	Size        string `json:"size,omitempty"`
	Iterations  int    `json:"iterations,omitempty"`
	Warmup      int    `json:"warmup,omitempty"`
	Threads     int    `json:"threads,omitempty"`
	EnablePower bool   `json:"enable_power,omitempty"`
}

// runRequestSchema rejects malformed run requests before they touch the
// device.
const runRequestSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "benchmark":    { "type": "string" },
    "category":     { "type": "string", "enum": ["throughput", "latency", "scalability", "power"] },
    "size":         { "type": "string", "enum": ["small", "medium", "large", "xlarge"] },
    "iterations":   { "type": "integer", "minimum": 1 },
    "warmup":       { "type": "integer", "minimum": 0 },
    "threads":      { "type": "integer", "minimum": 1 },
    "enable_power": { "type": "boolean" }
  }
}`

type ErrResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// RunResp is the suite outcome returned to the caller.
type RunResp struct {
	OK        bool            `json:"ok"`
	Passed    int             `json:"passed"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	ElapsedMS int64           `json:"elapsed_ms"`
	Outcomes  []suite.Outcome `json:"outcomes"`
}

type Server struct {
	mu  sync.Mutex
	cfg *Config
	dev device.Device
}

var (
	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "benchd_runs_total",
		Help: "Suite runs handled, labeled by result (ok, failed, rejected)",
	}, []string{"result"})
	benchmarksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "benchd_benchmarks_total",
		Help: "Individual benchmark outcomes across all runs",
	}, []string{"status"})
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "benchd_run_duration_seconds",
		Help:    "Wall-clock duration of whole suite runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	lastThroughput = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "benchd_last_throughput_gops",
		Help: "Best GOPS figure observed in the most recent run",
	})
)

func init() {
	prometheus.MustRegister(runsTotal, benchmarksTotal, runDuration, lastThroughput)
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	dev, err := openDevice(cfg)
	if err != nil {
		log.Fatalf("device error: %v", err)
	}
	defer dev.Close()

	s := &Server{cfg: cfg, dev: dev}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /benchmarks", s.handleList)
	mux.HandleFunc("POST /run", s.handleRun)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// Bounds a whole suite run: the response cannot be written after this.
		WriteTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	log.Printf("benchd config: host=%s port=%d profile=%s timeout=%ds", cfg.Host, cfg.Port, cfg.DeviceProfile, cfg.TimeoutSeconds)
	log.Printf("listening on %s", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	var out []entry
	for _, def := range catalog.All() {
		out = append(out, entry{Name: def.Name, Category: string(def.Kind), Description: def.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	// One suite at a time; overlapping runs would contend for the device.
	log.Printf("run request from %s", r.RemoteAddr)
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := readBody(w, r, 1<<20 /* 1 MiB */)
	if err != nil {
		runsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, ErrResp{OK: false, Error: "invalid body: " + err.Error()})
		return
	}

	if err := validateRunRequest(body); err != nil {
		log.Printf("run validation error: %v", err)
		runsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, ErrResp{OK: false, Error: err.Error()})
		return
	}

	var req RunRequest
	if err := decodeJSON(body, &req); err != nil {
		log.Printf("run decode error: %v", err)
		runsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, ErrResp{OK: false, Error: "invalid JSON: " + err.Error()})
		return
	}

	selected, err := catalog.Select(catalog.Criteria{
		Name: req.Benchmark,
		Kind: bench.Kind(req.Category),
		All:  req.Benchmark == "" && req.Category == "",
	})
	if err != nil {
		log.Printf("run selection error: %v", err)
		runsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, ErrResp{OK: false, Error: err.Error()})
		return
	}

	ov := suite.Overrides{
		Size:        bench.Size(req.Size),
		Iterations:  req.Iterations,
		Warmup:      req.Warmup,
		Threads:     req.Threads,
		EnablePower: req.EnablePower,
	}

	start := time.Now()
	log.Printf("run start: benchmarks=%d size=%q threads=%d power=%v", len(selected), req.Size, req.Threads, req.EnablePower)
	sum := suite.Run(s.dev, selected, ov)
	elapsed := time.Since(start)

	runDuration.Observe(elapsed.Seconds())
	benchmarksTotal.WithLabelValues("passed").Add(float64(sum.Passed))
	benchmarksTotal.WithLabelValues("failed").Add(float64(sum.Failed))
	benchmarksTotal.WithLabelValues("skipped").Add(float64(sum.Skipped))

	best := 0.0
	for _, o := range sum.Outcomes {
		if o.Result.Metrics.ThroughputGOPS > best {
			best = o.Result.Metrics.ThroughputGOPS
		}
	}
	lastThroughput.Set(best)

	result := "ok"
	if !sum.OK() {
		result = "failed"
	}
	runsTotal.WithLabelValues(result).Inc()
	log.Printf("run complete: passed=%d failed=%d skipped=%d elapsed_ms=%d", sum.Passed, sum.Failed, sum.Skipped, elapsed.Milliseconds())

	writeJSON(w, http.StatusOK, RunResp{
		OK:        sum.OK(),
		Passed:    sum.Passed,
		Failed:    sum.Failed,
		Skipped:   sum.Skipped,
		ElapsedMS: elapsed.Milliseconds(),
		Outcomes:  sum.Outcomes,
	})
}

type Config struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	DeviceProfile  string `yaml:"device_profile"`
	TimeoutSeconds int    `yaml:"timeout"`
}

var (
	configOnce sync.Once
	configVal  *Config
	configErr  error
)

func loadConfig() (*Config, error) {
	configOnce.Do(func() {
		path := filepath.Join("servers", "benchd", "benchd.yml")
		data, err := os.ReadFile(path)
		if err != nil {
			configErr = err
			return
		}

		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			configErr = err
			return
		}

		if cfg.Port <= 0 {
			cfg.Port = 9310
		}
		if cfg.TimeoutSeconds <= 0 {
			cfg.TimeoutSeconds = 3600
		}

		configVal = &cfg
	})

	return configVal, configErr
}

func openDevice(cfg *Config) (device.Device, error) {
	if strings.TrimSpace(cfg.DeviceProfile) == "" {
		return device.NewSim(device.DefaultProfile()), nil
	}
	profile, err := device.LoadProfile(cfg.DeviceProfile)
	if err != nil {
		return nil, err
	}
	return device.NewSim(profile), nil
}

func validateRunRequest(body []byte) error {
	schema := gojsonschema.NewStringLoader(runRequestSchema)
	doc := gojsonschema.NewBytesLoader(body)
	result, err := gojsonschema.Validate(schema, doc)
	if err != nil {
		return fmt.Errorf("request validation: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return errors.New("invalid request: " + strings.Join(msgs, "; "))
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	if r.Body == nil {
		return nil, errors.New("empty body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
