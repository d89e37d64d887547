package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Encoding(t *testing.T) {
	data, err := phonesSet().MarshalSnapshot()
	require.NoError(t, err)

	want := `{"schema":{"primary":"year","secondary":"region","value":"phones"},` +
		`"categories":["Asia","Europe","Africa"],` +
		`"records":[["1956","Asia",5],["1956","Europe",10],["1957","Asia",7],["1957","Europe",12]]}`
	assert.Equal(t, want, string(data))
}

func TestSnapshot_RoundTripsFilteredView(t *testing.T) {
	asia := phonesSet().Filter("Asia")

	data, err := asia.MarshalSnapshot()
	require.NoError(t, err)

	got, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.True(t, got.Equal(asia))
	assert.Equal(t, []string{"Asia", "Europe", "Africa"}, got.Categories())
}

func TestSnapshot_EmptySet(t *testing.T) {
	rs := NewRecordSet(Schema{Primary: "a", Secondary: "b", Value: "v"}, nil, nil)

	data, err := rs.MarshalSnapshot()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"categories":[]`)
	assert.Contains(t, string(data), `"records":[]`)

	got, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestSnapshot_FractionalValues(t *testing.T) {
	rs := NewRecordSet(
		Schema{Primary: "year", Secondary: "region", Value: "phones"},
		[]string{"Asia"},
		[]Record{{Primary: "1956", Secondary: "Asia", Value: 7.25}},
	)
	data, err := rs.MarshalSnapshot()
	require.NoError(t, err)

	got, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, 7.25, got.At(0).Value)
}

func TestSnapshot_IdentityFollowsContent(t *testing.T) {
	a, err := phonesSet().MarshalSnapshot()
	require.NoError(t, err)
	b, err := phonesSet().MarshalSnapshot()
	require.NoError(t, err)
	c, err := phonesSet().Filter("Asia").MarshalSnapshot()
	require.NoError(t, err)

	assert.Equal(t, SnapshotIdentity(a), SnapshotIdentity(b))
	assert.NotEqual(t, SnapshotIdentity(a), SnapshotIdentity(c))
	assert.Len(t, SnapshotIdentity(a), 64)
}

func TestUnmarshalSnapshot_Invalid(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte(`{"records":[["x"]]}`))
	require.Error(t, err)

	_, err = UnmarshalSnapshot([]byte(`not json`))
	require.Error(t, err)
}
