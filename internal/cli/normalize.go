package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/regionplot/internal/config"
	"github.com/roach88/regionplot/internal/table"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	Category string
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Print the dataset as records",
		Long: `Flatten the dataset into (primary, secondary, value) records and print
them, optionally restricted to one secondary category.

Examples:
  regionplot normalize
  regionplot normalize --category Asia
  regionplot normalize --dataset phones.cue --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "only records of this secondary category")
	return cmd
}

func runNormalize(cmd *cobra.Command, opts *NormalizeOptions) error {
	ctx := cmd.Context()
	f := newFormatter(cmd, opts.RootOptions)

	src, rs, err := loadRecords(ctx, config.FromContext(ctx))
	if err != nil {
		return datasetError(f, src, err)
	}

	if cmd.Flags().Changed("category") {
		if !rs.HasCategory(opts.Category) {
			_ = f.Error(ErrCodeUnknownCategory, fmt.Sprintf("unknown category %q", opts.Category), rs.Categories())
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown category %q", opts.Category))
		}
		rs = rs.Filter(opts.Category)
	}

	if f.JSON() {
		data, err := rs.MarshalJSON()
		if err != nil {
			return WrapExitError(ExitFailure, "encode records", err)
		}
		return f.Success(json.RawMessage(data))
	}
	writeRecordTable(f.Writer, rs)
	return nil
}

func writeRecordTable(w io.Writer, rs table.RecordSet) {
	s := rs.Schema()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Primary, s.Secondary, s.Value)
	for _, rec := range rs.Records() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.Primary, rec.Secondary, strconv.FormatFloat(rec.Value, 'f', -1, 64))
	}
	tw.Flush()
}
