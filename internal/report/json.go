// internal/report/json.go
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwiater/metron/internal/metrics"
)

// WriteJSON writes every result record into dir as an indented JSON array.
func WriteJSON(dir string, results []metrics.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	path := filepath.Join(dir, "results.json")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating result file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return "", fmt.Errorf("error writing results to file: %w", err)
	}
	return path, nil
}
