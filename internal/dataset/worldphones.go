package dataset

import (
	"context"
	_ "embed"

	"github.com/roach88/regionplot/internal/table"
)

//go:embed worldphones.yaml
var worldPhonesYAML []byte

// WorldPhonesName is the Name of the embedded source.
const WorldPhonesName = "embedded:WorldPhones"

// WorldPhones returns the embedded WorldPhones table: telephones in
// thousands by year (rows) and region (columns), from AT&T (1961)
// The World's Telephones.
func WorldPhones() Source {
	return embeddedSource{name: WorldPhonesName, data: worldPhonesYAML}
}

type embeddedSource struct {
	name string
	data []byte
}

func (s embeddedSource) Name() string { return s.name }

func (s embeddedSource) Load(ctx context.Context) (table.CrossTab, error) {
	if err := ctx.Err(); err != nil {
		return table.CrossTab{}, err
	}
	return decodeYAML(s.data)
}
