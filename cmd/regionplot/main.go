// Command regionplot serves a bar chart of one category of a
// cross-tabulated table, with a selector kept in sync with the chart.
package main

import (
	"os"

	"github.com/roach88/regionplot/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
