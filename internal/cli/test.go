package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/regionplot/internal/harness"
)

// ErrCodeInvalidScenario reports an unreadable or invalid scenario file.
const ErrCodeInvalidScenario = "E010"

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Golden string
	Update bool
}

// TestResult represents the result of running scenarios.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// ScenarioResult represents the result of a single scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml|dir>...",
		Short: "Run conformance scenarios",
		Long: `Run scenario files against the selection engine. Directories are
searched for *.yaml and *.yml files.

With --golden, each scenario's trace is compared with
<dir>/<scenario>.golden; --update rewrites those files instead.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (unreadable or invalid scenario files)

Examples:
  regionplot test ./testdata/scenarios
  regionplot test worldphones.yaml --format json
  regionplot test ./scenarios --golden ./scenarios/golden --update`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Golden, "golden", "", "directory of golden trace files")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files instead of comparing")
	return cmd
}

func runTest(cmd *cobra.Command, opts *TestOptions, paths []string) error {
	ctx := cmd.Context()
	f := newFormatter(cmd, opts.RootOptions)

	if opts.Update && opts.Golden == "" {
		return NewExitError(ExitCommandError, "--update requires --golden")
	}

	scenarios, err := harness.LoadScenarios(paths)
	if err != nil {
		_ = f.Error(ErrCodeInvalidScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, s := range scenarios {
		f.VerboseLog("running %s", s.Name)

		sr := ScenarioResult{Name: s.Name}
		run, err := harness.Run(ctx, s)
		if err != nil {
			sr.Errors = []string{err.Error()}
		} else {
			sr.Pass = run.Pass
			sr.Errors = run.Errors
			if opts.Golden != "" {
				if msg := checkGolden(opts, s, run); msg != "" {
					sr.Pass = false
					sr.Errors = append(sr.Errors, msg)
				}
			}
		}

		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, sr)
	}
	result.Total = len(result.Scenarios)

	if f.JSON() {
		status := "ok"
		if result.Failed > 0 {
			status = "failed"
		}
		if err := f.Respond(status, result); err != nil {
			return err
		}
	} else {
		printTestResult(f.Writer, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// checkGolden compares or rewrites the golden file of one run and returns
// a failure message, or "" when it matched.
func checkGolden(opts *TestOptions, s *harness.Scenario, run *harness.Result) string {
	got, err := harness.MarshalSnapshot(s.Name, s.FlowToken, run)
	if err != nil {
		return fmt.Sprintf("golden: %v", err)
	}
	path := filepath.Join(opts.Golden, s.Name+".golden")

	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return fmt.Sprintf("golden: %v", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			return fmt.Sprintf("golden: %v", err)
		}
		return ""
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("golden: %s does not exist (run with --update)", path)
	}
	if err != nil {
		return fmt.Sprintf("golden: %v", err)
	}
	if !bytes.Equal(want, got) {
		return fmt.Sprintf("golden: trace differs from %s", path)
	}
	return ""
}

func printTestResult(w io.Writer, r TestResult) {
	for _, s := range r.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
}
