package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phonesSet() RecordSet {
	return NewRecordSet(
		Schema{Primary: "year", Secondary: "region", Value: "phones"},
		[]string{"Asia", "Europe", "Africa"},
		[]Record{
			{Primary: "1956", Secondary: "Asia", Value: 5},
			{Primary: "1956", Secondary: "Europe", Value: 10},
			{Primary: "1957", Secondary: "Asia", Value: 7},
			{Primary: "1957", Secondary: "Europe", Value: 12},
		},
	)
}

func TestRecordSet_FilterPreservesOrder(t *testing.T) {
	rs := phonesSet()

	asia := rs.Filter("Asia")
	require.Equal(t, 2, asia.Len())
	assert.Equal(t, "1956", asia.At(0).Primary)
	assert.Equal(t, "1957", asia.At(1).Primary)

	for _, rec := range rs.Filter("Europe").Records() {
		assert.Equal(t, "Europe", rec.Secondary)
	}
}

func TestRecordSet_FilterEmptyCategory(t *testing.T) {
	rs := phonesSet()

	// Africa is in the domain but has no observations.
	assert.True(t, rs.HasCategory("Africa"))
	assert.Equal(t, 0, rs.Filter("Africa").Len())

	assert.False(t, rs.HasCategory("Mars"))
	assert.Equal(t, 0, rs.Filter("Mars").Len())
}

func TestRecordSet_FilterOfFilter(t *testing.T) {
	rs := phonesSet()
	once := rs.Filter("Asia")
	twice := once.Filter("Asia")
	assert.True(t, once.Equal(twice))
	assert.Equal(t, 0, once.Filter("Europe").Len())
}

func TestRecordSet_FilterKeepsSchemaAndDomain(t *testing.T) {
	rs := phonesSet()
	asia := rs.Filter("Asia")
	assert.Equal(t, rs.Schema(), asia.Schema())
	assert.Equal(t, rs.Categories(), asia.Categories())
}

func TestRecordSet_CopiesAreIndependent(t *testing.T) {
	records := []Record{{Primary: "1956", Secondary: "Asia", Value: 5}}
	cats := []string{"Asia"}
	rs := NewRecordSet(Schema{Primary: "year", Secondary: "region", Value: "phones"}, cats, records)

	records[0].Value = 99
	cats[0] = "Mars"
	assert.Equal(t, 5.0, rs.At(0).Value)
	assert.Equal(t, []string{"Asia"}, rs.Categories())

	out := rs.Records()
	out[0].Value = 42
	assert.Equal(t, 5.0, rs.At(0).Value)

	gotCats := rs.Categories()
	gotCats[0] = "Mars"
	assert.True(t, rs.HasCategory("Asia"))
}

func TestRecordSet_Equal(t *testing.T) {
	a := phonesSet()
	b := phonesSet()
	assert.True(t, a.Equal(b))

	c := NewRecordSet(a.Schema(), a.Categories(), a.Records()[:3])
	assert.False(t, a.Equal(c))

	d := NewRecordSet(Schema{Primary: "year", Secondary: "region", Value: "count"}, a.Categories(), a.Records())
	assert.False(t, a.Equal(d))

	e := NewRecordSet(a.Schema(), []string{"Asia", "Europe"}, a.Records())
	assert.False(t, a.Equal(e))
}

func TestRecordSet_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(phonesSet().Filter("Asia"))
	require.NoError(t, err)
	assert.Equal(t,
		`[{"year":"1956","region":"Asia","phones":5},{"year":"1957","region":"Asia","phones":7}]`,
		string(data))
}

func TestRecordSet_MarshalJSONEmpty(t *testing.T) {
	var rs RecordSet
	data, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
