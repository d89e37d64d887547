package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/store"
	"github.com/roach88/regionplot/internal/table"
	"github.com/roach88/regionplot/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// stubSource serves a table that tests can swap between loads.
type stubSource struct {
	mu  sync.Mutex
	tab table.CrossTab
	err error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Load(ctx context.Context) (table.CrossTab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab, s.err
}

func (s *stubSource) set(tab table.CrossTab, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
	s.err = err
}

// regions builds a one-year table whose column categories are regions.
func regions(names ...string) table.CrossTab {
	row := make([]any, len(names))
	for i := range names {
		row[i] = i + 1
	}
	return table.CrossTab{
		Rows:    table.Dimension{Name: "year", Labels: []string{"1956"}},
		Cols:    table.Dimension{Name: "region", Labels: names},
		Measure: "phones",
		Cells:   [][]any{row},
	}
}

type fixture struct {
	page   *Page
	source *stubSource
	chart  *render.Recorder
	log    *store.Store
}

// startPage builds a page over src, runs its engine until the test ends,
// and returns it without loading anything.
func startPage(t *testing.T, tab table.CrossTab, withLog bool) *fixture {
	t.Helper()

	f := &fixture{source: &stubSource{tab: tab}, chart: &render.Recorder{}}
	cfg := Config{
		Source:   f.source,
		Renderer: f.chart,
		FlowGen:  testutil.NewSequentialFlowGenerator("flow"),
		Clock:    testutil.NewDeterministicClock(),
		Logger:   discard,
	}
	if withLog {
		s, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		f.log = s
		cfg.EventLog = s
	}

	p, err := New(cfg)
	require.NoError(t, err)
	f.page = p

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return f
}
