// Package render turns a filtered record set into a bar chart.
//
// Renderer is the boundary the selection package draws through. Render is
// fire-and-forget: failures are logged by the implementation and the last
// good frame stays visible.
package render
