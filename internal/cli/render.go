package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/regionplot/internal/config"
	"github.com/roach88/regionplot/internal/render"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Category string
	Out      string
}

// RenderResult describes a written chart.
type RenderResult struct {
	Category string `json:"category"`
	Records  int    `json:"records"`
	Out      string `json:"out"`
	Bytes    int    `json:"bytes"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the chart of one category as HTML",
		Long: `Render the bar chart of one secondary category to a standalone HTML
file. Without --category the first category is rendered. With --out -
the HTML is written to stdout.

Examples:
  regionplot render --category Asia --out asia.html
  regionplot render --dataset phones.cue --category Europe --out -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "category to chart (default: the first)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file, or - for stdout (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	f := newFormatter(cmd, opts.RootOptions)

	src, rs, err := loadRecords(ctx, cfg)
	if err != nil {
		return datasetError(f, src, err)
	}

	category := opts.Category
	if category == "" {
		if cats := rs.Categories(); len(cats) > 0 {
			category = cats[0]
		}
	}
	if category != "" && !rs.HasCategory(category) {
		_ = f.Error(ErrCodeUnknownCategory, fmt.Sprintf("unknown category %q", category), rs.Categories())
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown category %q", category))
	}

	visible := rs.Filter(category)
	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, visible, category, cfg.ChartOptions()); err != nil {
		return WrapExitError(ExitFailure, "render chart", err)
	}

	if opts.Out == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.Out, buf.Bytes(), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write chart", err)
	}

	result := RenderResult{Category: category, Records: visible.Len(), Out: opts.Out, Bytes: buf.Len()}
	return f.Report(result, func(w io.Writer) {
		fmt.Fprintf(w, "Wrote %s (%s, %d records)\n", result.Out, result.Category, result.Records)
	})
}
