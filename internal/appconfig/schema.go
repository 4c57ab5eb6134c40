// internal/appconfig/schema.go
package appconfig

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema is the JSON schema every config file must satisfy before it
// is decoded.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "deviceProfile":       { "type": "string" },
    "outputDir":           { "type": "string" },
    "logFile":             { "type": "string" },
    "verbose":             { "type": "boolean" },
    "defaultSize":         { "type": "string", "enum": ["small", "medium", "large", "xlarge"] },
    "defaultIterations":   { "type": "integer", "minimum": 1 },
    "defaultWarmup":       { "type": "integer", "minimum": 0 },
    "defaultThreads":      { "type": "integer", "minimum": 1 },
    "enablePower":         { "type": "boolean" },
    "enableThermal":       { "type": "boolean" },
    "powerIntervalMs":     { "type": "integer", "minimum": 1 },
    "powerSampleCapacity": { "type": "integer", "minimum": 1 },
    "sweepThreadCounts": {
      "type": "array",
      "items": { "type": "integer", "minimum": 1 },
      "minItems": 1
    }
  }
}`

// ValidateBytes checks a raw config document against the embedded schema.
func ValidateBytes(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("config failed validation: %s", strings.Join(details, "; "))
}
