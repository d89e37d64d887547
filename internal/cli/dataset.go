package cli

import (
	"context"
	"errors"

	"github.com/roach88/regionplot/internal/config"
	"github.com/roach88/regionplot/internal/dataset"
	"github.com/roach88/regionplot/internal/table"
)

// Error codes for normalization failures, continuing the dataset codes.
const (
	ErrCodeMalformedTable   = "E007"
	ErrCodeUnsupportedValue = "E008"
	ErrCodeUnknownCategory  = "E009" // --category outside the dataset
)

// loadRecords loads and normalizes the configured dataset.
func loadRecords(ctx context.Context, cfg *config.Config) (dataset.Source, table.RecordSet, error) {
	src := datasetSource(cfg)
	t, err := src.Load(ctx)
	if err != nil {
		return src, table.RecordSet{}, err
	}
	rs, err := table.Normalize(t, cfg.Roles())
	return src, rs, err
}

// errorCode classifies a load or normalization error.
func errorCode(err error) string {
	var le *dataset.LoadError
	switch {
	case errors.As(err, &le):
		return le.Code
	case table.IsMalformed(err):
		return ErrCodeMalformedTable
	case table.IsUnsupportedValue(err):
		return ErrCodeUnsupportedValue
	default:
		return dataset.ErrCodeGeneric
	}
}

// datasetError reports err in the output format and returns the exit error.
func datasetError(f *OutputFormatter, src dataset.Source, err error) error {
	code := errorCode(err)
	_ = f.Error(code, err.Error(), map[string]string{"source": src.Name()})
	exit := ExitFailure
	if code == dataset.ErrCodeNotFound || code == dataset.ErrCodeUnsupportedFormat {
		exit = ExitCommandError
	}
	return WrapExitError(exit, "dataset "+src.Name(), err)
}
