package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/regionplot/internal/app"
	"github.com/roach88/regionplot/internal/dataset"
	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/selection"
	"github.com/roach88/regionplot/internal/table"
	"github.com/roach88/regionplot/internal/testutil"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type failingSource struct{}

func (failingSource) Name() string { return "broken.yaml" }

func (failingSource) Load(context.Context) (table.CrossTab, error) {
	return table.CrossTab{}, errors.New("no such table")
}

type fixture struct {
	page  *app.Page
	chart *render.BarChart
	h     http.Handler
}

// newFixture serves src. When start is true the page is loaded first.
func newFixture(t *testing.T, src dataset.Source, start bool) *fixture {
	t.Helper()

	chart := render.NewBarChart(render.DefaultOptions(), quiet)
	page, err := app.New(app.Config{
		Source:   src,
		Renderer: chart,
		FlowGen:  testutil.NewSequentialFlowGenerator("http"),
		Clock:    testutil.NewDeterministicClock(),
		Logger:   quiet,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- page.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	if start {
		require.NoError(t, page.Start(context.Background()))
	}

	srv, err := New(Config{Page: page, Chart: chart, Logger: quiet})
	require.NoError(t, err)
	return &fixture{page: page, chart: chart, h: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), false)
	w := f.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIndex_Ready(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)

	w := f.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<p id="status" data-state="ready">Ready</p>`)
	assert.Contains(t, body, "Region:")
	assert.Contains(t, body, `<option value="N.Amer" selected>N.Amer</option>`)
	assert.Contains(t, body, `<option value="Asia">Asia</option>`)
	assert.Contains(t, body, `src="/chart"`)
}

func TestIndex_ShowsStartupError(t *testing.T) {
	f := newFixture(t, failingSource{}, false)
	require.Error(t, f.page.Start(context.Background()))

	w := f.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Error: no such table")
	assert.NotContains(t, w.Body.String(), "<iframe")
}

func TestChart_NotRenderedYet(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), false)

	w := f.do(t, http.MethodGet, "/chart", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Loading")
}

func TestChart_Latest(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)

	w := f.do(t, http.MethodGet, "/chart", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Telephones: N.Amer")
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Chart-Seq"))
}

func TestAPI_NotReady(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), false)

	for _, path := range []string{"/api/options", "/api/selection", "/api/records"} {
		w := f.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}

	w := f.do(t, http.MethodGet, "/api/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var st app.Status
	decode(t, w, &st)
	assert.Equal(t, app.StateLoading, st.State)
	assert.Equal(t, app.MessageLoading, st.Message)
}

func TestAPI_Status(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)

	w := f.do(t, http.MethodGet, "/api/status", nil, "")
	var st app.Status
	decode(t, w, &st)
	assert.Equal(t, app.StateReady, st.State)
	assert.Equal(t, 49, st.Records)
	assert.Equal(t, dataset.WorldPhonesName, st.Source)
}

func TestAPI_Options(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)

	w := f.do(t, http.MethodGet, "/api/options", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Options  []string `json:"options"`
		Selected string   `json:"selected"`
	}
	decode(t, w, &got)
	assert.Equal(t, []string{"N.Amer", "Europe", "Asia", "S.Amer", "Oceania", "Africa", "Mid.Amer"}, got.Options)
	assert.Equal(t, "N.Amer", got.Selected)
}

func TestAPI_SelectUpdatesChart(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)
	before := f.chart.Latest().Seq

	w := f.do(t, http.MethodPost, "/api/selection", strings.NewReader(`{"value":"Asia"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var snap selection.Snapshot
	decode(t, w, &snap)
	assert.Equal(t, "Asia", snap.Store)
	assert.Equal(t, "Asia", snap.Chart)
	assert.True(t, snap.Converged)

	frame := f.chart.Latest()
	assert.Greater(t, frame.Seq, before)
	assert.Equal(t, "Asia", frame.Category)
	assert.Equal(t, 7, frame.Records)

	w = f.do(t, http.MethodGet, "/api/selection", nil, "")
	decode(t, w, &snap)
	assert.Equal(t, "Asia", snap.Selector)
}

func TestAPI_SelectUnknownOption(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)

	w := f.do(t, http.MethodPost, "/api/selection", strings.NewReader(`{"value":"Atlantis"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Atlantis")
	assert.Equal(t, "N.Amer", f.page.View().Selection.Store)
}

func TestAPI_SelectBadBody(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)

	w := f.do(t, http.MethodPost, "/api/selection", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/selection", strings.NewReader(`not json`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectForm(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)

	form := url.Values{"value": {"Europe"}}
	w := f.do(t, http.MethodPost, "/select", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, "Europe", f.chart.Latest().Category)

	w = f.do(t, http.MethodPost, "/select", strings.NewReader(""), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectForm_NotReady(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), false)

	form := url.Values{"value": {"Europe"}}
	w := f.do(t, http.MethodPost, "/select", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPI_Records(t *testing.T) {
	f := newFixture(t, dataset.WorldPhones(), true)

	w := f.do(t, http.MethodGet, "/api/records?category=Asia", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var recs []map[string]any
	decode(t, w, &recs)
	require.Len(t, recs, 7)
	assert.Equal(t, "1951", recs[0]["year"])
	assert.Equal(t, "Asia", recs[0]["region"])
	assert.Equal(t, float64(2876), recs[0]["phones"])

	w = f.do(t, http.MethodGet, "/api/records", nil, "")
	decode(t, w, &recs)
	assert.Len(t, recs, 49)

	w = f.do(t, http.MethodGet, "/api/records?category=Atlantis", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
