package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/regionplot/internal/app"
	"github.com/roach88/regionplot/internal/dataset"
	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/store"
	"github.com/roach88/regionplot/internal/testutil"
)

const abTable = `rows:
  name: year
  labels: ["2020", "2021"]
cols:
  name: group
  labels: [A, B]
measure: count
cells:
  - [1, 2]
  - [3, 4]
`

// runCLI executes the root command in an empty working directory so no
// config file is discovered.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// writeFile writes content under a fresh temp dir and returns its
// absolute path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// decodeResponse parses a JSON envelope.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// decodeData re-decodes the data of a JSON envelope into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// recordSession writes an event log of a WorldPhones session: startup,
// then the given selections.
func recordSession(t *testing.T, selections ...string) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	page, err := app.New(app.Config{
		Source:   dataset.WorldPhones(),
		Renderer: &render.Recorder{},
		EventLog: st,
		FlowGen:  testutil.NewSequentialFlowGenerator("flow"),
		Clock:    testutil.NewDeterministicClock(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- page.Run(ctx) }()

	require.NoError(t, page.Start(ctx))
	for _, v := range selections {
		require.NoError(t, page.Select(ctx, app.SourceHTTP, v))
	}
	page.Stop()
	require.NoError(t, <-done)
	return path
}
