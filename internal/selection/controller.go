package selection

import (
	"log/slog"

	"github.com/roach88/regionplot/internal/table"
)

// Origins used when the controller writes to the store.
const (
	OriginSelector = "selector"
	OriginChart    = "chart"
)

// Controller binds a selector and a chart to one store.
type Controller struct {
	store    *Store
	selector *Selector
	chart    *Chart
	logger   *slog.Logger

	unsubscribe []func()
}

// Snapshot is the observable state of a bound controller.
type Snapshot struct {
	Options   []string `json:"options"`
	Store     string   `json:"store"`
	Selector  string   `json:"selector"`
	Chart     string   `json:"chart"`
	Converged bool     `json:"converged"`
}

// Bind wires selector and chart through store:
//
//   - selector changes are written to the store as OriginSelector
//   - chart self-assertions are written to the store as OriginChart
//   - store notifications drive Selector.Sync and Chart.SetCurrent
func Bind(store *Store, selector *Selector, chart *Chart, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{store: store, selector: selector, chart: chart, logger: logger}

	selector.OnChange(func(v string) {
		store.Set(OriginSelector, v)
	})
	chart.OnChange(func(v string) {
		store.Set(OriginChart, v)
	})

	c.unsubscribe = append(c.unsubscribe,
		store.Subscribe(OriginSelector, func(n Notification) {
			selector.Sync(n.Value)
		}),
		store.Subscribe(OriginChart, func(n Notification) {
			// Unknown categories are logged by the chart and ignored.
			_ = chart.SetCurrent(n.Value)
		}),
	)
	return c
}

// UserSelect forwards a user choice to the selector.
func (c *Controller) UserSelect(value string) error {
	return c.selector.UserSelect(value)
}

// ReplaceRecords installs a new record set and reconciles all replicas.
//
// The chart receives the records first, then the selector receives the
// new categories as options. If the store still holds a valid category the
// chart is brought to it; if the store is empty the selector's value is
// published.
func (c *Controller) ReplaceRecords(rs table.RecordSet) error {
	c.chart.SetRecords(rs)

	if err := c.selector.SetOptions(rs.Categories()); err != nil {
		return err
	}

	if v := c.store.Get(); v != "" && v != c.chart.Current() && rs.HasCategory(v) {
		if err := c.chart.SetCurrent(v); err != nil {
			return err
		}
	}

	if c.store.Get() == "" && c.selector.Current() != "" {
		c.store.Set(OriginSelector, c.selector.Current())
	}

	c.logger.Debug("records replaced",
		"records", rs.Len(),
		"categories", len(rs.Categories()),
		"selection", c.store.Get())
	return nil
}

// Snapshot reports the current replicas.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Options:  c.selector.Options(),
		Store:    c.store.Get(),
		Selector: c.selector.Current(),
		Chart:    c.chart.Current(),
	}
	s.Converged = s.Store == s.Selector && s.Selector == s.Chart
	return s
}

// Store returns the bound store.
func (c *Controller) Store() *Store { return c.store }

// Selector returns the bound selector.
func (c *Controller) Selector() *Selector { return c.selector }

// Chart returns the bound chart.
func (c *Controller) Chart() *Chart { return c.chart }

// Close removes the controller's store subscriptions.
func (c *Controller) Close() {
	for _, fn := range c.unsubscribe {
		fn()
	}
	c.unsubscribe = nil
}
