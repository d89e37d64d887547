package selection

import (
	"log/slog"

	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/table"
)

// Chart shows the records of one secondary category.
//
// Every render is followed by a self-assertion: listeners receive the
// chart's current value, whether the render was caused by a new value or
// by new records. The unset chart renders an empty view and asserts
// nothing.
type Chart struct {
	records   table.RecordSet
	current   string
	visible   table.RecordSet
	renderer  render.Renderer
	listeners []func(string)
	renders   int
	logger    *slog.Logger
}

// NewChart creates an unset chart with no records.
func NewChart(renderer render.Renderer, logger *slog.Logger) *Chart {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chart{renderer: renderer, logger: logger}
}

// OnChange registers fn to receive the chart's value after each render.
func (c *Chart) OnChange(fn func(value string)) {
	c.listeners = append(c.listeners, fn)
}

// Current returns the displayed category, or empty when unset.
func (c *Chart) Current() string {
	return c.current
}

// Records returns the full record set.
func (c *Chart) Records() table.RecordSet {
	return c.records
}

// Visible returns the records of the displayed category.
func (c *Chart) Visible() table.RecordSet {
	return c.visible
}

// Renders returns how many times the chart has rendered.
func (c *Chart) Renders() int {
	return c.renders
}

// SetRecords replaces the records and renders.
// If the displayed category is not among the new categories the chart
// becomes unset.
func (c *Chart) SetRecords(rs table.RecordSet) {
	c.records = rs
	if c.current != "" && !rs.HasCategory(c.current) {
		c.logger.Debug("chart category dropped by new records", "category", c.current)
		c.current = ""
	}
	c.render()
}

// SetCurrent displays category.
//
// Displaying the current category is a no-op. A category outside the
// records is rejected with UnknownCategoryError and logged once; the chart
// keeps showing what it showed. The empty string unsets the chart.
func (c *Chart) SetCurrent(category string) error {
	if category == c.current {
		return nil
	}
	if category != "" && !c.records.HasCategory(category) {
		err := &UnknownCategoryError{Category: category}
		c.logger.Warn("chart ignored selection", "category", category, "error", err)
		return err
	}
	c.current = category
	c.render()
	return nil
}

func (c *Chart) render() {
	if c.current == "" {
		c.visible = table.NewRecordSet(c.records.Schema(), c.records.Categories(), nil)
	} else {
		c.visible = c.records.Filter(c.current)
	}
	c.renders++
	if c.renderer != nil {
		c.renderer.Render(c.visible, c.current)
	}
	if c.current == "" {
		return
	}
	for _, fn := range c.listeners {
		fn(c.current)
	}
}
