package table

import (
	"golang.org/x/text/unicode/norm"
)

// Roles names the record fields produced by Normalize.
//
// Primary and Secondary must each name one of the table's two dimensions, in
// either order. Value names the measure. Empty fields default to
// (Rows.Name, Cols.Name, Measure).
type Roles struct {
	Primary   string `json:"primary" yaml:"primary"`
	Secondary string `json:"secondary" yaml:"secondary"`
	Value     string `json:"value" yaml:"value"`
}

// Normalize flattens a CrossTab into a RecordSet.
//
// One record is produced per non-missing cell, in column-major storage order
// (every row of the first column, then every row of the second, ...). Roles
// decide which dimension lands in Record.Primary and which in
// Record.Secondary; they never change the order.
//
// Returns MalformedTableError if dimensions and grid disagree, and
// UnsupportedValueTypeError for the first cell (row-major) that is neither
// numeric nor missing.
func Normalize(t CrossTab, roles Roles) (RecordSet, error) {
	rows, cols, err := checkShape(t)
	if err != nil {
		return RecordSet{}, err
	}

	schema, secondaryIsRows, err := resolveRoles(t, roles)
	if err != nil {
		return RecordSet{}, err
	}

	// Validate every cell before producing output so the reported cell is
	// the first in reading order.
	values := make([][]float64, len(t.Cells))
	present := make([][]bool, len(t.Cells))
	for r, row := range t.Cells {
		values[r] = make([]float64, len(row))
		present[r] = make([]bool, len(row))
		for c, cell := range row {
			v, missing, ok := cellValue(cell)
			if !ok {
				return RecordSet{}, &UnsupportedValueTypeError{
					Row:      r,
					Col:      c,
					RowLabel: rows[r],
					ColLabel: cols[c],
					Value:    cell,
				}
			}
			values[r][c] = v
			present[r][c] = !missing
		}
	}

	records := make([]Record, 0, len(rows)*len(cols))
	for c := range cols {
		for r := range rows {
			if !present[r][c] {
				continue
			}
			rec := Record{Primary: rows[r], Secondary: cols[c], Value: values[r][c]}
			if secondaryIsRows {
				rec.Primary, rec.Secondary = cols[c], rows[r]
			}
			records = append(records, rec)
		}
	}

	categories := cols
	if secondaryIsRows {
		categories = rows
	}

	return RecordSet{schema: schema, categories: categories, base: records}, nil
}

// checkShape validates the dimensions against the value grid and returns
// NFC-normalized labels.
func checkShape(t CrossTab) (rows, cols []string, err error) {
	if t.Rows.Name == "" {
		return nil, nil, malformed("", "row dimension has no name")
	}
	if t.Cols.Name == "" {
		return nil, nil, malformed("", "column dimension has no name")
	}
	if norm.NFC.String(t.Rows.Name) == norm.NFC.String(t.Cols.Name) {
		return nil, nil, malformed(t.Rows.Name, "both dimensions share one name")
	}

	rows, err = normalizeLabels(t.Rows)
	if err != nil {
		return nil, nil, err
	}
	cols, err = normalizeLabels(t.Cols)
	if err != nil {
		return nil, nil, err
	}

	if len(t.Cells) != len(rows) {
		return nil, nil, malformed(t.Rows.Name, "grid has %d rows, dimension has %d labels", len(t.Cells), len(rows))
	}
	for r, row := range t.Cells {
		if len(row) != len(cols) {
			return nil, nil, malformed(t.Cols.Name, "grid row %d has %d cells, dimension has %d labels", r, len(row), len(cols))
		}
	}
	return rows, cols, nil
}

func normalizeLabels(d Dimension) ([]string, error) {
	out := make([]string, len(d.Labels))
	seen := make(map[string]bool, len(d.Labels))
	for i, label := range d.Labels {
		l := norm.NFC.String(label)
		if seen[l] {
			return nil, malformed(d.Name, "duplicate label %q", l)
		}
		seen[l] = true
		out[i] = l
	}
	return out, nil
}

// resolveRoles maps role names onto dimensions.
// secondaryIsRows reports that the row dimension supplies Record.Secondary.
func resolveRoles(t CrossTab, roles Roles) (schema Schema, secondaryIsRows bool, err error) {
	rowName := norm.NFC.String(t.Rows.Name)
	colName := norm.NFC.String(t.Cols.Name)

	primary := norm.NFC.String(roles.Primary)
	secondary := norm.NFC.String(roles.Secondary)
	switch {
	case primary == "" && secondary == "":
		primary, secondary = rowName, colName
	case primary == "":
		primary = otherDimension(secondary, rowName, colName)
	case secondary == "":
		secondary = otherDimension(primary, rowName, colName)
	}

	switch {
	case primary == rowName && secondary == colName:
		secondaryIsRows = false
	case primary == colName && secondary == rowName:
		secondaryIsRows = true
	default:
		return Schema{}, false, malformed("", "roles (%q, %q) do not name dimensions (%q, %q)",
			primary, secondary, rowName, colName)
	}

	value := roles.Value
	if value == "" {
		value = t.Measure
	}
	if value == "" {
		value = "value"
	}

	return Schema{Primary: primary, Secondary: secondary, Value: value}, secondaryIsRows, nil
}

func otherDimension(name, rowName, colName string) string {
	if name == rowName {
		return colName
	}
	return rowName
}
