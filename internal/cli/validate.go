package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/regionplot/internal/config"
	"github.com/roach88/regionplot/internal/table"
)

// ValidateResult summarizes a valid dataset.
type ValidateResult struct {
	Source     string       `json:"source"`
	Schema     table.Schema `json:"schema"`
	Records    int          `json:"records"`
	Categories []string     `json:"categories"`
	Identity   string       `json:"identity"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and normalize the dataset",
		Long: `Load the dataset, normalize it into records and report the result.

Exit codes:
  0 - Dataset is valid
  1 - Dataset is malformed or holds unsupported values
  2 - Command error (file not found, unknown format)

Examples:
  regionplot validate
  regionplot validate --dataset phones.cue
  regionplot validate --dataset phones.yaml --secondary year --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, rootOpts)
		},
	}
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions) error {
	ctx := cmd.Context()
	f := newFormatter(cmd, rootOpts)

	src, rs, err := loadRecords(ctx, config.FromContext(ctx))
	if err != nil {
		return datasetError(f, src, err)
	}

	snap, err := rs.MarshalSnapshot()
	if err != nil {
		return WrapExitError(ExitFailure, "snapshot", err)
	}

	result := ValidateResult{
		Source:     src.Name(),
		Schema:     rs.Schema(),
		Records:    rs.Len(),
		Categories: rs.Categories(),
		Identity:   table.SnapshotIdentity(snap),
	}
	f.VerboseLog("identity %s", result.Identity)

	return f.Report(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s: %d records, %d categories (%s by %s, %s)\n",
			result.Source, result.Records, len(result.Categories),
			result.Schema.Value, result.Schema.Primary, result.Schema.Secondary)
	})
}
