package selection

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/regionplot/internal/table"
)

// discard is a logger for tests that do not inspect output.
var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// captureLogger returns a logger writing JSON lines at debug level to buf.
func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// countLines counts log lines containing msg.
func countLines(buf *bytes.Buffer, msg string) int {
	n := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, msg) {
			n++
		}
	}
	return n
}

// scenarioRecords is the Asia/Europe table normalized with region as the
// secondary category.
func scenarioRecords() table.RecordSet {
	tab := table.CrossTab{
		Rows:    table.Dimension{Name: "region", Labels: []string{"Asia", "Europe"}},
		Cols:    table.Dimension{Name: "year", Labels: []string{"1956", "1957"}},
		Measure: "phones",
		Cells:   [][]any{{5, 7}, {10, 12}},
	}
	rs, err := table.Normalize(tab, table.Roles{Primary: "year", Secondary: "region"})
	if err != nil {
		panic(err)
	}
	return rs
}

func recordsWith(categories ...string) table.RecordSet {
	recs := make([]table.Record, 0, len(categories))
	for i, c := range categories {
		recs = append(recs, table.Record{Primary: "1956", Secondary: c, Value: float64(i + 1)})
	}
	return table.NewRecordSet(table.Schema{Primary: "year", Secondary: "region", Value: "phones"}, categories, recs)
}

// recorder collects values passed to a listener.
type recorder struct {
	values []string
}

func (r *recorder) record(v string) {
	r.values = append(r.values, v)
}
