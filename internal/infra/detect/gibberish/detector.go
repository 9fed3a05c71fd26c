package gibberish

import (
	"encoding/json"
	"fmt"
	"os"
)

// Detector classifies strings as gibberish using a trained model and a
// surprise threshold.
type Detector struct {
	model *Model
	limit float64
}

// NewDetector creates a detector around a trained model. A non-positive
// limit falls back to DefaultLimit.
func NewDetector(model *Model, limit float64) *Detector {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Detector{model: model, limit: limit}
}

// Load reads a serialized model artifact from disk and wraps it in a
// detector.
func Load(path string, limit float64) (*Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gibberish model %s: %w", path, err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}
	return NewDetector(&model, limit), nil
}

// IsGibberish reports whether s reads as random characters rather than
// natural language.
func (d *Detector) IsGibberish(s string) bool {
	return d.model.Surprise(s) > d.limit
}
