package face

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// DescriptorLen is the vector length produced by the upstream feature
// extractor. Stored descriptors are validated against it at the storage
// boundary so the matcher only ever sees well-formed input.
const DescriptorLen = 128

// Descriptor is a fixed-length face embedding. A nil Descriptor means the
// user has not enrolled a face yet.
type Descriptor []float64

// Parse validates raw extractor output into a Descriptor.
func Parse(raw []float64) (Descriptor, error) {
	if len(raw) != DescriptorLen {
		return nil, fmt.Errorf("descriptor must have %d components, got %d", DescriptorLen, len(raw))
	}
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("descriptor component %d is not a finite number", i)
		}
	}
	d := make(Descriptor, DescriptorLen)
	copy(d, raw)
	return d, nil
}

// Value serializes the descriptor as JSON for a jsonb column.
func (d Descriptor) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal([]float64(d))
}

// Scan decodes a jsonb column into the descriptor. Anything malformed is an
// error here so downstream code never sees a partial vector.
func (d *Descriptor) Scan(src any) error {
	if src == nil {
		*d = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("descriptor: unsupported scan type %T", src)
	}
	var vals []float64
	if err := json.Unmarshal(raw, &vals); err != nil {
		return fmt.Errorf("descriptor: %w", err)
	}
	parsed, err := Parse(vals)
	if err != nil {
		return fmt.Errorf("descriptor: %w", err)
	}
	*d = parsed
	return nil
}
