package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/regionplot/internal/dataset"
	"github.com/roach88/regionplot/internal/engine"
	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/selection"
	"github.com/roach88/regionplot/internal/store"
	"github.com/roach88/regionplot/internal/table"
)

// Event sources recorded in the event log.
const (
	SourceStartup = "startup"
	SourceReload  = "reload"
	SourceHTTP    = "http"
)

// EventLog persists processed events, notifications and record sets.
// *store.Store satisfies it.
type EventLog interface {
	WriteEvent(ctx context.Context, ev store.EventRecord) error
	WriteNotification(ctx context.Context, n store.NotificationRecord) error
	WriteDataset(ctx context.Context, d store.DatasetRecord) error
}

// Config configures a Page.
type Config struct {
	Source   dataset.Source  // Required
	Renderer render.Renderer // Required
	Roles    table.Roles

	EventLog EventLog                  // Optional
	FlowGen  engine.FlowTokenGenerator // Defaults to UUIDv7
	Clock    engine.Sequencer          // Defaults to engine.NewClock()
	MaxHops  int                       // Defaults to selection.DefaultMaxHops
	Logger   *slog.Logger
}

// View is a consistent copy of the page state for readers outside the
// event loop.
type View struct {
	Status    Status             `json:"status"`
	Selection selection.Snapshot `json:"selection"`
	Records   table.RecordSet    `json:"-"`
	Seq       int64              `json:"seq"` // Last processed event
}

// Page is the running application: one selector and one chart kept in sync
// through a selection store, driven by a single-writer engine.
type Page struct {
	source   dataset.Source
	roles    table.Roles
	log      EventLog
	logger   *slog.Logger
	memo     *table.Memo
	engine   *engine.Engine
	ctrl     *selection.Controller
	renderer render.Renderer

	// Engine goroutine only.
	flow string
	ctx  context.Context

	loadMu sync.Mutex // Serializes Start and Reload

	mu   sync.RWMutex
	view View
}

// New wires a page. Call Run to start its event loop, then Start to load
// the first dataset.
func New(cfg Config) (*Page, error) {
	if cfg.Source == nil {
		return nil, errors.New("app: source is required")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("app: renderer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.FlowGen == nil {
		cfg.FlowGen = engine.UUIDv7Generator{}
	}
	if cfg.Clock == nil {
		cfg.Clock = engine.NewClock()
	}
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = selection.DefaultMaxHops
	}

	p := &Page{
		source:   cfg.Source,
		roles:    cfg.Roles,
		log:      cfg.EventLog,
		logger:   cfg.Logger,
		memo:     table.NewMemo(),
		renderer: cfg.Renderer,
		ctx:      context.Background(),
	}

	st := selection.NewStore(
		selection.WithClock(cfg.Clock),
		selection.WithFlow(func() string { return p.flow }),
		selection.WithMaxHops(cfg.MaxHops),
		selection.WithLogger(cfg.Logger),
	)
	st.Tap(p.recordNotification)

	p.ctrl = selection.Bind(st,
		selection.NewSelector(cfg.Logger),
		selection.NewChart(cfg.Renderer, cfg.Logger),
		cfg.Logger,
	)
	p.engine = engine.New(handler{p}, cfg.FlowGen,
		engine.WithClock(cfg.Clock),
		engine.WithLogger(cfg.Logger),
	)
	p.view = View{
		Status:    loadingStatus(cfg.Source.Name()),
		Selection: p.ctrl.Snapshot(),
		Records:   table.NewRecordSet(table.Schema{}, nil, nil),
	}
	return p, nil
}

// Run processes events until ctx ends or Stop is called.
func (p *Page) Run(ctx context.Context) error {
	return p.engine.Run(ctx)
}

// Stop closes the event loop. Queued events are still processed.
func (p *Page) Stop() {
	p.engine.Stop()
}

// Start loads the configured source and installs its records.
// Run must be active. On failure the status shows the error and the page
// keeps serving it.
func (p *Page) Start(ctx context.Context) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.setStatus(loadingStatus(p.source.Name()))
	p.logger.Info("loading dataset", "source", p.source.Name())

	if err := p.install(ctx, p.source, SourceStartup); err != nil {
		p.setStatus(errorStatus(p.source.Name(), err))
		p.logger.Error("startup failed", "source", p.source.Name(), "error", err)
		return err
	}
	return nil
}

// Reload re-reads the configured source. If loading or normalization
// fails, the previous records stay installed and the error is reported in
// Status.LastError. A page whose startup failed becomes ready on the first
// successful reload.
func (p *Page) Reload(ctx context.Context) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.logger.Info("reloading dataset", "source", p.source.Name())
	if err := p.install(ctx, p.source, SourceReload); err != nil {
		p.logger.Error("reload failed", "source", p.source.Name(), "error", err)
		p.mu.Lock()
		if p.view.Status.Ready() {
			p.view.Status.LastError = err.Error()
		} else {
			p.view.Status = errorStatus(p.source.Name(), err)
		}
		p.mu.Unlock()
		return err
	}
	return nil
}

// install loads src, normalizes it and submits the record set.
func (p *Page) install(ctx context.Context, src dataset.Source, origin string) error {
	t, err := src.Load(ctx)
	if err != nil {
		return err
	}
	rs, err := p.memo.Normalize(t, p.roles)
	if err != nil {
		return err
	}
	snap, err := rs.MarshalSnapshot()
	if err != nil {
		return err
	}
	id := table.SnapshotIdentity(snap)

	err = p.engine.Submit(ctx, engine.Event{
		Type:    engine.EventTypeReplaceRecords,
		Source:  origin,
		Records: &rs,
		Dataset: id,
	})
	if err != nil {
		return err
	}

	p.setStatus(Status{
		State:   StateReady,
		Message: MessageReady,
		Source:  src.Name(),
		Dataset: id,
		Records: rs.Len(),
	})
	p.logger.Info("dataset installed",
		"source", src.Name(),
		"records", rs.Len(),
		"categories", len(rs.Categories()),
		"dataset", id)
	return nil
}

// Select submits a user choice and waits for it to be applied.
// Returns ErrNotReady before records are installed and a wrapped
// selection.UnknownOptionError for values outside the options.
func (p *Page) Select(ctx context.Context, source, value string) error {
	if !p.Status().Ready() {
		return ErrNotReady
	}
	return p.engine.Submit(ctx, engine.Event{
		Type:   engine.EventTypeSelect,
		Source: source,
		Value:  value,
	})
}

// Status returns the current status line.
func (p *Page) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view.Status
}

// View returns the state published after the last processed event.
func (p *Page) View() View {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v := p.view
	v.Selection.Options = make([]string, len(p.view.Selection.Options))
	copy(v.Selection.Options, p.view.Selection.Options)
	return v
}

// Renderer returns the renderer behind the page's chart.
func (p *Page) Renderer() render.Renderer {
	return p.renderer
}

func (p *Page) setStatus(s Status) {
	p.mu.Lock()
	p.view.Status = s
	p.mu.Unlock()
}

// handleSelect applies a user choice.
func (p *Page) handleSelect(ctx context.Context, ev engine.Event) error {
	p.begin(ctx, ev)
	err := p.ctrl.UserSelect(ev.Value)
	p.finish(ev, store.EventRecord{Value: ev.Value}, err)
	return err
}

// handleReplace installs ev.Records.
func (p *Page) handleReplace(ctx context.Context, ev engine.Event) error {
	p.begin(ctx, ev)
	p.recordDataset(ev)
	err := p.ctrl.ReplaceRecords(*ev.Records)
	p.finish(ev, store.EventRecord{Dataset: ev.Dataset, RecordCount: ev.Records.Len()}, err)
	return err
}

// begin makes ev's flow the flow of every notification it causes.
func (p *Page) begin(ctx context.Context, ev engine.Event) {
	p.flow = ev.Flow
	p.ctx = ctx
}

// finish logs ev and publishes the resulting state.
func (p *Page) finish(ev engine.Event, rec store.EventRecord, err error) {
	if p.log != nil {
		rec.Seq = ev.Seq
		rec.Flow = ev.Flow
		rec.Type = ev.Type.String()
		rec.Source = ev.Source
		if err != nil {
			rec.Error = err.Error()
		}
		if werr := p.log.WriteEvent(p.ctx, rec); werr != nil {
			p.logger.Warn("event log write failed", "seq", ev.Seq, "error", werr)
		}
	}

	snap := p.ctrl.Snapshot()
	records := p.ctrl.Chart().Records()

	p.mu.Lock()
	p.view.Selection = snap
	p.view.Records = records
	p.view.Seq = ev.Seq
	p.mu.Unlock()

	p.flow = ""
	p.ctx = context.Background()
}

func (p *Page) recordNotification(n selection.Notification) {
	p.logger.Debug("selection changed",
		"seq", n.Seq,
		"flow", n.Flow,
		"origin", n.Origin,
		"value", n.Value)
	if p.log == nil {
		return
	}
	err := p.log.WriteNotification(p.ctx, store.NotificationRecord{
		Seq:    n.Seq,
		Flow:   n.Flow,
		Origin: n.Origin,
		Value:  n.Value,
	})
	if err != nil {
		p.logger.Warn("event log write failed", "seq", n.Seq, "error", err)
	}
}

func (p *Page) recordDataset(ev engine.Event) {
	if p.log == nil || ev.Dataset == "" {
		return
	}
	snap, err := ev.Records.MarshalSnapshot()
	if err != nil {
		p.logger.Warn("dataset snapshot failed", "dataset", ev.Dataset, "error", err)
		return
	}
	err = p.log.WriteDataset(p.ctx, store.DatasetRecord{
		Identity: ev.Dataset,
		Source:   p.source.Name(),
		Snapshot: snap,
	})
	if err != nil {
		p.logger.Warn("event log write failed", "dataset", ev.Dataset, "error", err)
	}
}

// handler adapts Page to engine.Handler without exporting the methods.
type handler struct{ p *Page }

func (h handler) Select(ctx context.Context, ev engine.Event) error {
	return h.p.handleSelect(ctx, ev)
}

func (h handler) ReplaceRecords(ctx context.Context, ev engine.Event) error {
	return h.p.handleReplace(ctx, ev)
}

var _ engine.Handler = handler{}
