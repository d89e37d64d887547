package table

import (
	"encoding/json"
	"math"
)

// Dimension is one named category axis of a CrossTab.
type Dimension struct {
	Name   string   `json:"name" yaml:"name"`
	Labels []string `json:"labels" yaml:"labels"`
}

// CrossTab is a matrix-shaped dataset with two category dimensions.
//
// Cells[r][c] holds the raw value for (Rows.Labels[r], Cols.Labels[c]).
// Raw values are whatever a decoder produced; Normalize classifies them as
// numeric, missing, or unsupported.
type CrossTab struct {
	Rows    Dimension `json:"rows" yaml:"rows"`
	Cols    Dimension `json:"cols" yaml:"cols"`
	Measure string    `json:"measure" yaml:"measure"`
	Cells   [][]any   `json:"cells" yaml:"cells"`
}

// missingCell is the type of the Missing sentinel.
type missingCell struct{}

// MarshalJSON encodes the sentinel as null.
func (missingCell) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (missingCell) String() string { return "NA" }

// Missing marks an absent cell. Decoded nulls and NaN are treated the same way.
var Missing any = missingCell{}

// IsMissing reports whether a raw cell value denotes an absent observation.
func IsMissing(v any) bool {
	switch val := v.(type) {
	case nil, missingCell:
		return true
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	}
	return false
}

// cellValue classifies a raw cell.
// Returns (value, missing=false, ok=true) for numerics, (0, true, true) for
// missing cells, and ok=false for anything else.
func cellValue(v any) (value float64, missing bool, ok bool) {
	if IsMissing(v) {
		return 0, true, true
	}
	switch val := v.(type) {
	case float64:
		return val, false, true
	case float32:
		return float64(val), false, true
	case int:
		return float64(val), false, true
	case int8:
		return float64(val), false, true
	case int16:
		return float64(val), false, true
	case int32:
		return float64(val), false, true
	case int64:
		return float64(val), false, true
	case uint:
		return float64(val), false, true
	case uint8:
		return float64(val), false, true
	case uint16:
		return float64(val), false, true
	case uint32:
		return float64(val), false, true
	case uint64:
		return float64(val), false, true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false, false
		}
		return f, false, true
	default:
		return 0, false, false
	}
}

// CellCount returns the number of non-missing numeric cells.
// Unsupported cells are not counted.
func (t CrossTab) CellCount() int {
	n := 0
	for _, row := range t.Cells {
		for _, cell := range row {
			if _, missing, ok := cellValue(cell); ok && !missing {
				n++
			}
		}
	}
	return n
}
