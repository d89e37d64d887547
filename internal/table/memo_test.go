package table

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemo_HitReturnsEqualSet(t *testing.T) {
	m := NewMemo()
	roles := Roles{Primary: "year", Secondary: "region"}

	first, err := m.Normalize(scenarioTable(), roles)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Hits())

	second, err := m.Normalize(scenarioTable(), roles)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Hits())
	assert.True(t, first.Equal(second))

	fresh, err := Normalize(scenarioTable(), roles)
	require.NoError(t, err)
	assert.True(t, fresh.Equal(second))
}

func TestMemo_RolesAreKeyed(t *testing.T) {
	m := NewMemo()
	_, err := m.Normalize(scenarioTable(), Roles{})
	require.NoError(t, err)
	_, err = m.Normalize(scenarioTable(), Roles{Primary: "year"})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 0, m.Hits())
}

func TestMemo_ErrorsNotCached(t *testing.T) {
	m := NewMemo()
	bad := scenarioTable()
	bad.Cells = bad.Cells[:1]

	_, err := m.Normalize(bad, Roles{})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Equal(t, 0, m.Len())

	unsupported := scenarioTable()
	unsupported.Cells[1][1] = "x"
	_, err = m.Normalize(unsupported, Roles{})
	var ue *UnsupportedValueTypeError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Europe", ue.RowLabel)
	assert.Equal(t, 0, m.Len())
}

func TestMemo_Concurrent(t *testing.T) {
	m := NewMemo()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs, err := m.Normalize(scenarioTable(), Roles{})
			assert.NoError(t, err)
			assert.Equal(t, 4, rs.Len())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, m.Len())
}
