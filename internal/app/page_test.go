package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/regionplot/internal/dataset"
	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/selection"
	"github.com/roach88/regionplot/internal/table"
)

func TestNew_RequiresSourceAndRenderer(t *testing.T) {
	_, err := New(Config{Renderer: &render.Recorder{}})
	require.Error(t, err)

	_, err = New(Config{Source: &stubSource{}})
	require.Error(t, err)
}

func TestPage_StatusLoadingBeforeStart(t *testing.T) {
	f := startPage(t, regions("Asia", "Europe"), false)

	st := f.page.Status()
	assert.Equal(t, StateLoading, st.State)
	assert.Equal(t, MessageLoading, st.Message)
	assert.False(t, st.Ready())
}

func TestPage_StartSelectsFirstOption(t *testing.T) {
	f := startPage(t, regions("Asia", "Europe"), false)
	require.NoError(t, f.page.Start(context.Background()))

	st := f.page.Status()
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, MessageReady, st.Message)
	assert.Equal(t, 2, st.Records)
	assert.Len(t, st.Dataset, 64)

	v := f.page.View()
	assert.Equal(t, []string{"Asia", "Europe"}, v.Selection.Options)
	assert.Equal(t, "Asia", v.Selection.Store)
	assert.Equal(t, "Asia", v.Selection.Chart)
	assert.True(t, v.Selection.Converged)
	assert.Equal(t, 2, v.Records.Len())

	last, ok := f.chart.Last()
	require.True(t, ok)
	assert.Equal(t, "Asia", last.Category)
	require.Len(t, last.Records, 1)
	assert.Equal(t, 1.0, last.Records[0].Value)
}

func TestPage_WorldPhones(t *testing.T) {
	tab, err := dataset.WorldPhones().Load(context.Background())
	require.NoError(t, err)

	f := startPage(t, tab, false)
	require.NoError(t, f.page.Start(context.Background()))
	assert.Equal(t, 49, f.page.Status().Records)
	assert.Equal(t, "N.Amer", f.page.View().Selection.Chart)

	require.NoError(t, f.page.Select(context.Background(), SourceHTTP, "Asia"))

	last, _ := f.chart.Last()
	assert.Equal(t, "Asia", last.Category)
	require.Len(t, last.Records, 7)
	assert.Equal(t, "1951", last.Records[0].Primary)
	assert.Equal(t, "1961", last.Records[6].Primary)
}

func TestPage_Select(t *testing.T) {
	f := startPage(t, regions("Asia", "Europe"), false)
	require.NoError(t, f.page.Start(context.Background()))

	require.NoError(t, f.page.Select(context.Background(), SourceHTTP, "Europe"))

	v := f.page.View()
	assert.Equal(t, "Europe", v.Selection.Store)
	assert.Equal(t, "Europe", v.Selection.Selector)
	assert.Equal(t, "Europe", v.Selection.Chart)
	assert.Equal(t, int64(3), v.Seq)
}

func TestPage_SelectUnknownOption(t *testing.T) {
	f := startPage(t, regions("Asia", "Europe"), false)
	require.NoError(t, f.page.Start(context.Background()))
	renders := f.chart.Len()

	err := f.page.Select(context.Background(), SourceHTTP, "Mars")
	require.Error(t, err)
	assert.True(t, selection.IsUnknownOption(err))

	assert.Equal(t, "Asia", f.page.View().Selection.Store)
	assert.Equal(t, renders, f.chart.Len())
}

func TestPage_SelectBeforeReady(t *testing.T) {
	f := startPage(t, regions("Asia"), false)

	err := f.page.Select(context.Background(), SourceHTTP, "Asia")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestPage_StartMalformed(t *testing.T) {
	tab := regions("Asia", "Europe")
	tab.Cells = [][]any{{1}}
	f := startPage(t, tab, false)

	err := f.page.Start(context.Background())
	require.Error(t, err)
	assert.True(t, table.IsMalformed(err))

	st := f.page.Status()
	assert.Equal(t, StateError, st.State)
	assert.True(t, strings.HasPrefix(st.Message, "Error: malformed table"), st.Message)
	assert.Equal(t, 0, f.chart.Len())
}

func TestPage_StartLoadError(t *testing.T) {
	f := startPage(t, regions("Asia"), false)
	f.source.set(table.CrossTab{}, errors.New("disk on fire"))

	err := f.page.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error: disk on fire", f.page.Status().Message)
}

func TestPage_ReloadKeepsSelection(t *testing.T) {
	f := startPage(t, regions("Asia", "Europe"), false)
	ctx := context.Background()
	require.NoError(t, f.page.Start(ctx))
	require.NoError(t, f.page.Select(ctx, SourceHTTP, "Europe"))

	f.source.set(regions("Europe", "Africa"), nil)
	require.NoError(t, f.page.Reload(ctx))

	v := f.page.View()
	assert.Equal(t, []string{"Europe", "Africa"}, v.Selection.Options)
	assert.Equal(t, "Europe", v.Selection.Chart)
	assert.True(t, v.Selection.Converged)
}

func TestPage_ReloadDropsVanishedSelection(t *testing.T) {
	f := startPage(t, regions("Asia", "Europe"), false)
	ctx := context.Background()
	require.NoError(t, f.page.Start(ctx))
	require.NoError(t, f.page.Select(ctx, SourceHTTP, "Europe"))

	f.source.set(regions("Africa"), nil)
	require.NoError(t, f.page.Reload(ctx))

	v := f.page.View()
	assert.Equal(t, "Africa", v.Selection.Store)
	assert.Equal(t, "Africa", v.Selection.Chart)
	assert.True(t, v.Selection.Converged)
}

func TestPage_ReloadFailureKeepsRecords(t *testing.T) {
	f := startPage(t, regions("Asia", "Europe"), false)
	ctx := context.Background()
	require.NoError(t, f.page.Start(ctx))

	bad := regions("Asia")
	bad.Cells = [][]any{{"many"}}
	f.source.set(bad, nil)

	err := f.page.Reload(ctx)
	require.Error(t, err)
	assert.True(t, table.IsUnsupportedValue(err))

	st := f.page.Status()
	assert.True(t, st.Ready())
	assert.NotEmpty(t, st.LastError)
	assert.Equal(t, 2, f.page.View().Records.Len())

	// A later good reload clears the error.
	f.source.set(regions("Asia", "Europe", "Africa"), nil)
	require.NoError(t, f.page.Reload(ctx))
	assert.Empty(t, f.page.Status().LastError)
	assert.Equal(t, 3, f.page.Status().Records)
}

func TestPage_ReloadRecoversFailedStart(t *testing.T) {
	f := startPage(t, regions("Asia"), false)
	ctx := context.Background()
	f.source.set(table.CrossTab{}, errors.New("not yet"))
	require.Error(t, f.page.Start(ctx))

	f.source.set(regions("Asia"), nil)
	require.NoError(t, f.page.Reload(ctx))
	assert.True(t, f.page.Status().Ready())
	assert.Equal(t, "Asia", f.page.View().Selection.Chart)
}

func TestPage_ViewIsCopy(t *testing.T) {
	f := startPage(t, regions("Asia", "Europe"), false)
	require.NoError(t, f.page.Start(context.Background()))

	v := f.page.View()
	v.Selection.Options[0] = "mutated"
	assert.Equal(t, "Asia", f.page.View().Selection.Options[0])
}
