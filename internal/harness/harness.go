package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/regionplot/internal/app"
	"github.com/roach88/regionplot/internal/dataset"
	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/selection"
	"github.com/roach88/regionplot/internal/store"
	"github.com/roach88/regionplot/internal/table"
	"github.com/roach88/regionplot/internal/testutil"
)

// DefaultFlowToken prefixes flow tokens when the scenario names none.
const DefaultFlowToken = "flow"

// Harness is one scenario execution.
type Harness struct {
	scenario *Scenario
	store    *store.Store
	page     *app.Page
	source   *scenarioSource
	recorder *render.Recorder
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory event log with a
// deterministic clock and sequential flow tokens. After the last step the
// log is replayed and must reproduce the recorded notifications.
//
// An error is returned only when the scenario could not be executed;
// failed expectations and assertions are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	prefix := scenario.FlowToken
	if prefix == "" {
		prefix = DefaultFlowToken
	}

	h := &Harness{
		scenario: scenario,
		store:    st,
		source:   &scenarioSource{path: scenario.resolve(scenario.Dataset)},
		recorder: &render.Recorder{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	h.page, err = app.New(app.Config{
		Source:   h.source,
		Renderer: h.recorder,
		Roles:    scenario.Roles.table(),
		EventLog: st,
		FlowGen:  testutil.NewSequentialFlowGenerator(prefix),
		Clock:    testutil.NewDeterministicClock(),
		MaxHops:  scenario.MaxHops,
		Logger:   h.logger,
	})
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.page.Run(runCtx) }()

	result := NewResult()
	h.startup(ctx, result)
	for i, step := range scenario.Steps {
		h.step(ctx, i, step, result)
	}

	h.page.Stop()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("engine: %w", err)
	}

	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	h.checkReplay(ctx, result)
	return result, nil
}

func (h *Harness) startup(ctx context.Context, result *Result) {
	err := h.page.Start(ctx)
	if msg := checkOutcome(err, h.scenario.Startup, ""); msg != "" {
		result.AddError("startup: " + msg)
	}
}

func (h *Harness) step(ctx context.Context, i int, step Step, result *Result) {
	var err error
	switch {
	case step.Select != "":
		err = h.page.Select(ctx, app.SourceHTTP, step.Select)
	case step.Load != "":
		h.source.set(h.scenario.resolve(step.Load))
		err = h.page.Reload(ctx)
	}

	h.logger.Debug("scenario step", "step", i, "select", step.Select, "load", step.Load, "error", err)
	if msg := checkOutcome(err, step.Expect, h.page.View().Selection.Store); msg != "" {
		result.AddError(fmt.Sprintf("step %d: %s", i, msg))
	}
}

// checkOutcome compares err and the store value with e. It returns an
// empty string when they match.
func checkOutcome(err error, e *Expect, current string) string {
	want := ""
	if e != nil {
		want = e.Error
	}
	if got := errorKind(err); got != want {
		if err != nil {
			return fmt.Sprintf("expected error %q, got %q (%v)", want, got, err)
		}
		return fmt.Sprintf("expected error %q, got success", want)
	}
	if e != nil && e.Selection != nil && *e.Selection != current {
		return fmt.Sprintf("expected selection %q, got %q", *e.Selection, current)
	}
	return ""
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case selection.IsUnknownOption(err):
		return ErrorUnknownOption
	case errors.Is(err, app.ErrNotReady):
		return ErrorNotReady
	default:
		return ErrorLoad
	}
}

// collect reads the event log and final state into result.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	events, err := h.store.ReadEvents(ctx)
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	notes, err := h.store.ReadNotifications(ctx)
	if err != nil {
		return fmt.Errorf("read notifications: %w", err)
	}

	for _, ev := range events {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:     ev.Seq,
			Flow:    ev.Flow,
			Type:    TraceTypeEvent,
			Kind:    ev.Type,
			Source:  ev.Source,
			Dataset: ev.Dataset,
			Records: ev.RecordCount,
			Error:   ev.Error,
			Value:   ev.Value,
		})
	}
	for _, n := range notes {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:    n.Seq,
			Flow:   n.Flow,
			Type:   TraceTypeNotification,
			Origin: n.Origin,
			Value:  n.Value,
		})
	}
	sort.SliceStable(result.Trace, func(i, j int) bool {
		return result.Trace[i].Seq < result.Trace[j].Seq
	})

	for _, c := range h.recorder.Calls() {
		result.Renders = append(result.Renders, RenderCall{Category: c.Category, Records: len(c.Records)})
	}

	v := h.page.View()
	result.Final = v.Selection
	result.Status = v.Status
	return nil
}

func (h *Harness) checkReplay(ctx context.Context, result *Result) {
	rr, err := app.Replay(ctx, h.store, h.logger)
	if err != nil {
		result.AddError(fmt.Sprintf("replay: %v", err))
		return
	}
	for _, d := range rr.Differences {
		result.AddError("replay: " + d)
	}
}

// scenarioSource loads the current dataset path, or WorldPhones when it
// is empty. Load steps switch the path.
type scenarioSource struct {
	mu   sync.Mutex
	path string
}

func (s *scenarioSource) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

func (s *scenarioSource) set(path string) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
}

func (s *scenarioSource) Name() string {
	if p := s.current(); p != "" {
		return p
	}
	return dataset.WorldPhonesName
}

func (s *scenarioSource) Load(ctx context.Context) (table.CrossTab, error) {
	if p := s.current(); p != "" {
		return dataset.File(p).Load(ctx)
	}
	return dataset.WorldPhones().Load(ctx)
}
