package table

import (
	"bytes"
	"encoding/json"
)

// Record is one flattened (primary, secondary, value) observation.
type Record struct {
	Primary   string
	Secondary string
	Value     float64
}

// Schema carries the role names a RecordSet's records are published under.
type Schema struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Value     string `json:"value"`
}

// RecordSet is an ordered, immutable sequence of records.
//
// A RecordSet produced by Normalize owns its backing slice. Filter returns a
// view holding indices into the same backing slice; nothing is ever written
// to it after construction.
type RecordSet struct {
	schema     Schema
	categories []string
	base       []Record
	indices    []int // nil means every record in base
}

// NewRecordSet builds a RecordSet from records, copying the input.
// categories is the secondary-category domain, in display order.
func NewRecordSet(schema Schema, categories []string, records []Record) RecordSet {
	base := make([]Record, len(records))
	copy(base, records)
	cats := make([]string, len(categories))
	copy(cats, categories)
	return RecordSet{schema: schema, categories: cats, base: base}
}

// Len returns the number of records in the set.
func (rs RecordSet) Len() int {
	if rs.indices != nil {
		return len(rs.indices)
	}
	return len(rs.base)
}

// At returns the i-th record. Panics if i is out of range.
func (rs RecordSet) At(i int) Record {
	if rs.indices != nil {
		return rs.base[rs.indices[i]]
	}
	return rs.base[i]
}

// Records returns a copy of the records in order.
func (rs RecordSet) Records() []Record {
	out := make([]Record, rs.Len())
	for i := range out {
		out[i] = rs.At(i)
	}
	return out
}

// Schema returns the role names of the set.
func (rs RecordSet) Schema() Schema {
	return rs.schema
}

// Categories returns the secondary-category domain (a copy).
func (rs RecordSet) Categories() []string {
	out := make([]string, len(rs.categories))
	copy(out, rs.categories)
	return out
}

// HasCategory reports whether c belongs to the secondary-category domain.
func (rs RecordSet) HasCategory(c string) bool {
	for _, cat := range rs.categories {
		if cat == c {
			return true
		}
	}
	return false
}

// Filter returns the records whose secondary category equals category.
// The result shares storage with rs and preserves order.
func (rs RecordSet) Filter(category string) RecordSet {
	n := rs.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		idx := i
		if rs.indices != nil {
			idx = rs.indices[i]
		}
		if rs.base[idx].Secondary == category {
			indices = append(indices, idx)
		}
	}
	return RecordSet{
		schema:     rs.schema,
		categories: rs.categories,
		base:       rs.base,
		indices:    indices,
	}
}

// Equal reports whether two sets hold the same records in the same order
// under the same schema and category domain.
func (rs RecordSet) Equal(other RecordSet) bool {
	if rs.schema != other.schema || rs.Len() != other.Len() {
		return false
	}
	if len(rs.categories) != len(other.categories) {
		return false
	}
	for i := range rs.categories {
		if rs.categories[i] != other.categories[i] {
			return false
		}
	}
	for i := 0; i < rs.Len(); i++ {
		if rs.At(i) != other.At(i) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as an array of objects keyed by the schema's
// role names, in primary, secondary, value order.
func (rs RecordSet) MarshalJSON() ([]byte, error) {
	keys := make([][]byte, 3)
	for i, name := range []string{rs.schema.Primary, rs.schema.Secondary, rs.schema.Value} {
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < rs.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		rec := rs.At(i)
		primary, err := json.Marshal(rec.Primary)
		if err != nil {
			return nil, err
		}
		secondary, err := json.Marshal(rec.Secondary)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(rec.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		buf.Write(keys[0])
		buf.WriteByte(':')
		buf.Write(primary)
		buf.WriteByte(',')
		buf.Write(keys[1])
		buf.WriteByte(':')
		buf.Write(secondary)
		buf.WriteByte(',')
		buf.Write(keys[2])
		buf.WriteByte(':')
		buf.Write(value)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
