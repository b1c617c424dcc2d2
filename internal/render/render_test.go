package render

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"bi_dashboard/internal/config"
	"bi_dashboard/internal/reports"
	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body string
}

func (s stubFetcher) Get(_ context.Context, _ string, _ map[string]string, result any) error {
	return json.Unmarshal([]byte(s.body), result)
}

func (s stubFetcher) Post(_ context.Context, _ string, _ any, result any) error {
	return json.Unmarshal([]byte(s.body), result)
}

func usd() *Formatter {
	return NewFormatter(config.Config{Currency: "USD", Language: "en-US"})
}

func salesDataset(t *testing.T) *reports.Dataset {
	t.Helper()
	ds, err := reports.SalesByCustomer().Fetch(context.Background(), stubFetcher{body: `{
		"customers": [
			{"customerName": "Acme", "invoiceCount": 2, "totalRevenue": 500, "lastSaleDate": "2024-03-05"},
			{"customerName": "Bosco", "invoiceCount": 7, "totalRevenue": 1500, "lastSaleDate": ""}
		],
		"summary": {"totalRevenue": 2000, "customerCount": 2, "invoiceCount": 9}
	}`}, reports.Params{})
	require.NoError(t, err)
	return ds
}

func TestFormatterMoney(t *testing.T) {
	f := usd()

	got := f.Money(decimal.RequireFromString("1234.5"))

	assert.True(t, strings.HasPrefix(got, "$"), got)
	assert.Contains(t, got, "1,234.50")
	assert.Contains(t, f.Money(decimal.Zero), "0.00")
}

func TestFormatterMoney_UnknownCurrency(t *testing.T) {
	f := NewFormatter(config.Config{Currency: "", Language: "en"})

	assert.Equal(t, "12.00", f.Money(decimal.NewFromInt(12)))
}

func TestFormatterDate(t *testing.T) {
	f := usd()

	assert.Equal(t, "Mar 5, 2024", f.Date("2024-03-05"))
	assert.Equal(t, "Mar 5, 2024", f.Date("2024-03-05T10:00:00Z"))
	assert.Equal(t, "N/A", f.Date(""))
	assert.Equal(t, "soon", f.Date("soon"))
}

func TestFormatterCountAndPercent(t *testing.T) {
	f := usd()

	assert.Equal(t, "12,345", f.Count(decimal.NewFromInt(12345)))
	assert.Equal(t, "12.5%", f.Percent(decimal.RequireFromString("12.5")))
	assert.Equal(t, "40 days", f.Card(reports.Card{Kind: reports.CardDays, Amount: decimal.NewFromInt(40)}))
	assert.Equal(t, "N/A", f.Card(reports.Card{Kind: reports.CardText}))
}

func TestHeaderTitle(t *testing.T) {
	h := table.Header{Key: "revenue", Title: "Revenue"}

	assert.Equal(t, "Revenue ▼", HeaderTitle(h, table.SortState{Key: "revenue", Desc: true}))
	assert.Equal(t, "Revenue ▲", HeaderTitle(h, table.SortState{Key: "revenue"}))
	assert.Equal(t, "Revenue", HeaderTitle(h, table.SortState{Key: "customer"}))
}

func TestRendererReport(t *testing.T) {
	ds := salesDataset(t)
	frame, err := ds.Apply(table.Query{Sort: ds.DefaultSort()})
	require.NoError(t, err)

	out := NewRenderer(usd()).Report(ds, frame, 0)

	assert.Contains(t, out, "Sales by Customer")
	assert.Contains(t, out, "Revenue ▼")
	assert.Contains(t, out, "1,500.00")
	assert.Contains(t, out, "Mar 5, 2024")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "2 of 2 rows")
	assert.Less(t, strings.Index(out, "Bosco"), strings.Index(out, "Acme"))
}

func TestRendererReport_NoMatches(t *testing.T) {
	ds := salesDataset(t)
	frame, err := ds.Apply(table.Query{Search: "zeta"})
	require.NoError(t, err)

	out := NewRenderer(usd()).Report(ds, frame, 0)

	assert.Contains(t, out, `No rows match "zeta".`)
}

func TestRendererDetail(t *testing.T) {
	ds := salesDataset(t)
	frame, err := ds.Detail("Acme")
	require.NoError(t, err)

	out := NewRenderer(usd()).Detail(frame)

	assert.Contains(t, out, "Customer")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "500.00")
}

func TestFooter(t *testing.T) {
	frame := table.Frame{Rows: make([][]table.Cell, 3), Search: "ac", Sort: table.SortState{Key: "revenue", Desc: true}}

	assert.Equal(t, `2 of 10 rows (3 match) · search "ac" · sorted by revenue desc`, Footer(10, frame, 2))
}

func TestReportJSON(t *testing.T) {
	ds := salesDataset(t)
	frame, err := ds.Apply(table.Query{Search: "bos"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewRenderer(usd()).ReportJSON(ds, frame)))

	var decoded struct {
		Report string           `json:"report"`
		Total  int              `json:"total"`
		Count  int              `json:"count"`
		Rows   []map[string]any `json:"rows"`
		Cards  []struct {
			Label string `json:"label"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "sales-by-customer", decoded.Report)
	assert.Equal(t, 2, decoded.Total)
	assert.Equal(t, 1, decoded.Count)
	require.Len(t, decoded.Rows, 1)
	assert.Equal(t, "Bosco", decoded.Rows[0]["customer"])
	assert.Equal(t, "1500", decoded.Rows[0]["revenue"])
	assert.NotEmpty(t, decoded.Cards)
}
