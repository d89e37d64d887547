package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DomainRecordSet prefixes record set snapshot identity hashes.
const DomainRecordSet = "regionplot/recordset/v1"

// snapshot is the persisted form of a RecordSet. Records are stored as
// [primary, secondary, value] triples to keep the encoding independent of
// the schema's role names.
type snapshot struct {
	Schema     Schema            `json:"schema"`
	Categories []string          `json:"categories"`
	Records    []json.RawMessage `json:"records"`
}

// MarshalSnapshot encodes the set, its schema and its category domain.
// The encoding is deterministic, so equal sets produce equal bytes.
func (rs RecordSet) MarshalSnapshot() ([]byte, error) {
	s := snapshot{
		Schema:     rs.schema,
		Categories: rs.Categories(),
		Records:    make([]json.RawMessage, 0, rs.Len()),
	}
	for i := 0; i < rs.Len(); i++ {
		rec := rs.At(i)
		var buf bytes.Buffer
		buf.WriteByte('[')
		if err := writeString(&buf, rec.Primary); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		if err := writeString(&buf, rec.Secondary); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.WriteString(formatNumber(rec.Value))
		buf.WriteByte(']')
		s.Records = append(s.Records, buf.Bytes())
	}

	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return bytes.TrimSuffix(out.Bytes(), []byte{'\n'}), nil
}

// UnmarshalSnapshot decodes bytes produced by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (RecordSet, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return RecordSet{}, fmt.Errorf("decode snapshot: %w", err)
	}
	records := make([]Record, 0, len(s.Records))
	for i, raw := range s.Records {
		var triple [3]json.RawMessage
		if err := json.Unmarshal(raw, &triple); err != nil {
			return RecordSet{}, fmt.Errorf("decode snapshot record %d: %w", i, err)
		}
		var rec Record
		if err := json.Unmarshal(triple[0], &rec.Primary); err != nil {
			return RecordSet{}, fmt.Errorf("decode snapshot record %d: %w", i, err)
		}
		if err := json.Unmarshal(triple[1], &rec.Secondary); err != nil {
			return RecordSet{}, fmt.Errorf("decode snapshot record %d: %w", i, err)
		}
		if err := json.Unmarshal(triple[2], &rec.Value); err != nil {
			return RecordSet{}, fmt.Errorf("decode snapshot record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return NewRecordSet(s.Schema, s.Categories, records), nil
}

// SnapshotIdentity returns the content identity of snapshot bytes.
func SnapshotIdentity(data []byte) string {
	return hashWithDomain(DomainRecordSet, data)
}
