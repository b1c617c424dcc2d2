package table

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
	Since   string          `json:"since"`
	Owner   string          `json:"owner"`
}

func accountView(t *testing.T) *View[account] {
	t.Helper()
	v, err := NewView([]Column[account]{
		Text("name", "Name", func(a account) string { return a.Name }),
		Money("revenue", "Revenue", func(a account) decimal.Decimal { return a.Revenue }),
		Date("since", "Customer Since", func(a account) string { return a.Since }),
		Text("owner", "Owner", func(a account) string { return a.Owner }),
	}, "name", "owner")
	require.NoError(t, err)
	return v
}

func names(rows []account) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestApply_SortByRevenueDescending(t *testing.T) {
	rows := []account{
		{Name: "Acme", Revenue: decimal.NewFromInt(500)},
		{Name: "Bosco", Revenue: decimal.NewFromInt(1500)},
	}

	out, err := accountView(t).Apply(rows, Query{Sort: SortState{Key: "revenue", Desc: true}})

	require.NoError(t, err)
	assert.Equal(t, []string{"Bosco", "Acme"}, names(out))
	assert.Equal(t, "1500", out[0].Revenue.String())
}

func TestApply_SearchIsCaseInsensitive(t *testing.T) {
	rows := []account{
		{Name: "Acme", Revenue: decimal.NewFromInt(500)},
		{Name: "Bosco", Revenue: decimal.NewFromInt(1500)},
	}

	out, err := accountView(t).Apply(rows, Query{Search: "aCm"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, names(out))
}

func TestApply_SearchMatchesAnyDesignatedField(t *testing.T) {
	rows := []account{
		{Name: "Acme", Owner: "Dana"},
		{Name: "Bosco", Owner: "Lee"},
		{Name: "Cobalt", Owner: "Danielle"},
	}

	out, err := accountView(t).Apply(rows, Query{Search: "dan"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Cobalt"}, names(out))

	out, err = accountView(t).Apply(rows, Query{Search: "bosc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bosco"}, names(out))
}

func TestApply_SearchIgnoresNonDesignatedFields(t *testing.T) {
	rows := []account{{Name: "Acme", Since: "2024-01-02"}}

	out, err := accountView(t).Apply(rows, Query{Search: "2024"})

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestApply_EmptySearchKeepsOrder(t *testing.T) {
	rows := []account{{Name: "Zed"}, {Name: "Acme"}, {Name: "Moss"}}

	out, err := accountView(t).Apply(rows, Query{})

	require.NoError(t, err)
	assert.Equal(t, []string{"Zed", "Acme", "Moss"}, names(out))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	rows := []account{
		{Name: "Acme", Revenue: decimal.NewFromInt(1)},
		{Name: "Bosco", Revenue: decimal.NewFromInt(2)},
	}
	before := slices.Clone(rows)

	_, err := accountView(t).Apply(rows, Query{Sort: SortState{Key: "revenue", Desc: true}})

	require.NoError(t, err)
	assert.Equal(t, before, rows)
}

func TestApply_AscendingThenDescendingReverses(t *testing.T) {
	rows := []account{
		{Name: "Moss"}, {Name: "Acme"}, {Name: "Zed"}, {Name: "Bosco"},
	}
	v := accountView(t)

	asc, err := v.Apply(rows, Query{Sort: SortState{Key: "name"}})
	require.NoError(t, err)
	desc, err := v.Apply(rows, Query{Sort: SortState{Key: "name", Desc: true}})
	require.NoError(t, err)

	reversed := slices.Clone(asc)
	slices.Reverse(reversed)
	assert.Equal(t, names(reversed), names(desc))
}

func TestApply_NullNumbersSortAsZero(t *testing.T) {
	var rows []account
	require.NoError(t, json.Unmarshal([]byte(`[
		{"name":"Up","revenue":250},
		{"name":"Missing","revenue":null},
		{"name":"Down","revenue":-40},
		{"name":"Absent"}
	]`), &rows))

	out, err := accountView(t).Apply(rows, Query{Sort: SortState{Key: "revenue"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"Down", "Missing", "Absent", "Up"}, names(out))
}

func TestApply_DatesCompareChronologically(t *testing.T) {
	rows := []account{
		{Name: "b", Since: "2023-11-05"},
		{Name: "a", Since: "2024-02-01T10:00:00Z"},
		{Name: "c", Since: "03/15/2022"},
		{Name: "none", Since: ""},
	}

	out, err := accountView(t).Apply(rows, Query{Sort: SortState{Key: "since"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"none", "c", "b", "a"}, names(out))
}

func TestApply_StringsCompareCaseSensitively(t *testing.T) {
	rows := []account{{Name: "beta"}, {Name: "Alpha"}, {Name: "alpha"}}

	out, err := accountView(t).Apply(rows, Query{Sort: SortState{Key: "name"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "alpha", "beta"}, names(out))
}

func TestApply_TiesKeepInputOrder(t *testing.T) {
	rows := []account{
		{Name: "first", Revenue: decimal.NewFromInt(10)},
		{Name: "second", Revenue: decimal.NewFromInt(10)},
		{Name: "third", Revenue: decimal.NewFromInt(5)},
	}

	out, err := accountView(t).Apply(rows, Query{Sort: SortState{Key: "revenue", Desc: true}})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, names(out))
}

func TestApply_UnknownSortColumn(t *testing.T) {
	_, err := accountView(t).Apply([]account{{Name: "x"}}, Query{Sort: SortState{Key: "nope"}})

	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestNewView_RejectsUnknownSearchField(t *testing.T) {
	_, err := NewView([]Column[account]{
		Text("name", "Name", func(a account) string { return a.Name }),
	}, "owner")

	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSortState_Toggle(t *testing.T) {
	headers := accountView(t).Headers()
	name, revenue := headers[0], headers[1]

	state := SortState{}.Toggle(revenue)
	assert.Equal(t, SortState{Key: "revenue", Desc: true}, state)

	state = state.Toggle(revenue)
	assert.Equal(t, SortState{Key: "revenue", Desc: false}, state)

	state = state.Toggle(name)
	assert.Equal(t, SortState{Key: "name", Desc: false}, state)

	state = state.Toggle(name)
	assert.Equal(t, SortState{Key: "name", Desc: true}, state)
}

func TestFrame_SumAndCells(t *testing.T) {
	rows := []account{
		{Name: "Acme", Revenue: decimal.RequireFromString("500.25")},
		{Name: "Bosco", Revenue: decimal.RequireFromString("1500")},
	}
	v := accountView(t)

	frame, err := v.Materialize(rows, Query{Search: "o", Sort: SortState{Key: "name"}})

	require.NoError(t, err)
	require.Equal(t, 1, frame.Len())
	assert.True(t, frame.Filtered())
	assert.Equal(t, "Bosco", frame.Rows[0][0].Text)
	assert.Equal(t, "1500.00", frame.Rows[0][1].Text)
	assert.Equal(t, "1500", frame.Sum("revenue").String())
	assert.True(t, frame.Sum("name").IsZero())
}

func TestHeaderJSON_KindAsText(t *testing.T) {
	v := accountView(t)

	raw, err := json.Marshal(v.Headers())
	require.NoError(t, err)

	var headers []map[string]any
	require.NoError(t, json.Unmarshal(raw, &headers))
	require.Len(t, headers, 4)
	assert.Equal(t, "string", headers[0]["kind"])
	assert.Equal(t, "number", headers[1]["kind"])
	assert.Equal(t, "date", headers[2]["kind"])
}
