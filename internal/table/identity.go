package table

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// DomainCrossTab prefixes table identity hashes.
// The version suffix allows the encoding to change without collisions.
const DomainCrossTab = "regionplot/crosstab/v1"

// Identity computes a content-addressed identity for a CrossTab.
//
// Two tables with the same dimension names, labels, measure and cell values
// share an identity regardless of the Go types used for numeric cells (an
// int 5 and a float64 5 hash the same). Labels are NFC normalized first.
//
// Returns UnsupportedValueTypeError if a cell cannot be classified.
func Identity(t CrossTab) (string, error) {
	canonical, err := MarshalCanonical(t)
	if err != nil {
		return "", err
	}
	return hashWithDomain(DomainCrossTab, canonical), nil
}

// MarshalCanonical produces a deterministic JSON encoding of a CrossTab:
// keys in sorted order, no HTML escaping, NFC strings, shortest round-trip
// numbers, and null for missing cells.
func MarshalCanonical(t CrossTab) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"cells":[`)
	for r, row := range t.Cells {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for c, cell := range row {
			if c > 0 {
				buf.WriteByte(',')
			}
			v, missing, ok := cellValue(cell)
			if !ok {
				e := &UnsupportedValueTypeError{Row: r, Col: c, Value: cell}
				if r < len(t.Rows.Labels) {
					e.RowLabel = t.Rows.Labels[r]
				}
				if c < len(t.Cols.Labels) {
					e.ColLabel = t.Cols.Labels[c]
				}
				return nil, e
			}
			if missing {
				buf.WriteString("null")
				continue
			}
			buf.WriteString(formatNumber(v))
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`],"cols":`)
	if err := writeDimension(&buf, t.Cols); err != nil {
		return nil, err
	}
	buf.WriteString(`,"measure":`)
	if err := writeString(&buf, t.Measure); err != nil {
		return nil, err
	}
	buf.WriteString(`,"rows":`)
	if err := writeDimension(&buf, t.Rows); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeDimension(buf *bytes.Buffer, d Dimension) error {
	buf.WriteString(`{"labels":[`)
	for i, label := range d.Labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, label); err != nil {
			return err
		}
	}
	buf.WriteString(`],"name":`)
	if err := writeString(buf, d.Name); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

// writeString writes s as an NFC-normalized JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return fmt.Errorf("encode string: %w", err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// formatNumber renders integral values without a fraction and everything
// else in shortest round-trip form.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
