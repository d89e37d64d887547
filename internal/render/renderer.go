package render

import "github.com/roach88/regionplot/internal/table"

// Renderer draws the records visible for one category.
type Renderer interface {
	Render(visible table.RecordSet, category string)
}

// Frame is one rendered chart.
type Frame struct {
	Seq      int    // 1 for the first successful render
	Category string // Category the frame shows; empty for the unset view
	Records  int    // Number of bars
	HTML     []byte
}

// Func adapts a function to the Renderer interface.
type Func func(visible table.RecordSet, category string)

// Render calls f.
func (f Func) Render(visible table.RecordSet, category string) {
	f(visible, category)
}

// Multi fans one render out to several renderers in order.
func Multi(renderers ...Renderer) Renderer {
	return Func(func(visible table.RecordSet, category string) {
		for _, r := range renderers {
			r.Render(visible, category)
		}
	})
}
