// Package selection keeps a selector and a chart showing the same category.
//
// The selector and the chart each hold a replica of one selection value.
// Replicas never talk to each other directly: a Store mediates every
// change, and a Controller binds both components to it.
//
//	Selector --OnChange--> Store.Set("selector") --notify--> Chart.SetCurrent
//	Chart    --OnChange--> Store.Set("chart")    --notify--> Selector.Sync
//
// Convergence rests on idempotence at every hop. Store.Set ignores a value
// equal to the current one, Selector.UserSelect ignores the selected
// value, and Chart.SetCurrent ignores the displayed value. The chart
// re-broadcasts its value after every render; that broadcast ends at the
// store because the store already holds it.
//
// None of the types here are safe for concurrent use. They are driven from
// a single goroutine (see internal/engine).
package selection
