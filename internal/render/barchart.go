package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/roach88/regionplot/internal/table"
)

// Options controls chart presentation.
type Options struct {
	Title      string // Title prefix; the category is appended
	Caption    string // Subtitle under the title
	ValueLabel string // Y axis name; defaults to the schema's value role
	Width      string
	Height     string

	// ChartID fixes the DOM id of the chart. go-echarts picks a random one
	// when empty, which makes output differ between runs.
	ChartID string
}

// DefaultOptions returns the presentation used by the page.
func DefaultOptions() Options {
	return Options{
		Title:      "Telephones",
		Caption:    "Data from AT&T (1961) The World's Telephones",
		ValueLabel: "Number of telephones (K)",
		Width:      "900px",
		Height:     "500px",
		ChartID:    "regionplot",
	}
}

// WriteHTML renders visible as a bar chart of value by primary category and
// writes the page to w. An empty category produces an empty chart.
func WriteHTML(w io.Writer, visible table.RecordSet, category string, o Options) error {
	schema := visible.Schema()

	title := o.Title
	if category != "" {
		if title != "" {
			title = fmt.Sprintf("%s: %s", title, category)
		} else {
			title = category
		}
	}
	valueLabel := o.ValueLabel
	if valueLabel == "" {
		valueLabel = schema.Value
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			ChartID:   o.ChartID,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: o.Caption,
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: schema.Primary,
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: valueLabel,
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Opacity: opts.Float(0.2)},
			},
		}),
	)

	xAxis := make([]string, visible.Len())
	data := make([]opts.BarData, visible.Len())
	for i := 0; i < visible.Len(); i++ {
		rec := visible.At(i)
		xAxis[i] = rec.Primary
		data[i] = opts.BarData{Name: rec.Primary, Value: rec.Value}
	}

	bar.SetXAxis(xAxis)
	bar.AddSeries(category, data,
		charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "baseline", YAxis: 0}),
	)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// BarChart is a Renderer that keeps the most recent frame in memory.
//
// Render is called from the event loop; Latest may be called from any
// goroutine.
type BarChart struct {
	opts   Options
	logger *slog.Logger

	mu     sync.RWMutex
	latest Frame
	seq    int
}

// NewBarChart creates a renderer with the given options.
func NewBarChart(o Options, logger *slog.Logger) *BarChart {
	if logger == nil {
		logger = slog.Default()
	}
	return &BarChart{opts: o, logger: logger}
}

// Render draws visible and replaces the latest frame. On failure the
// previous frame is kept.
func (b *BarChart) Render(visible table.RecordSet, category string) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, visible, category, b.opts); err != nil {
		b.logger.Error("chart render failed", "category", category, "error", err)
		return
	}

	b.mu.Lock()
	b.seq++
	b.latest = Frame{
		Seq:      b.seq,
		Category: category,
		Records:  visible.Len(),
		HTML:     buf.Bytes(),
	}
	b.mu.Unlock()

	b.logger.Debug("chart rendered", "category", category, "records", visible.Len())
}

// Latest returns the most recent frame. The zero Frame means nothing has
// been rendered yet.
func (b *BarChart) Latest() Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}
