package render

import (
	"encoding/json"
	"io"
	"time"

	"bi_dashboard/internal/reports"
	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

type cardJSON struct {
	Label  string           `json:"label"`
	Value  string           `json:"value"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type reportJSON struct {
	Report    string           `json:"report"`
	Title     string           `json:"title"`
	Params    reports.Params   `json:"params"`
	FetchedAt time.Time        `json:"fetched_at"`
	Total     int              `json:"total"`
	Count     int              `json:"count"`
	Search    string           `json:"search,omitempty"`
	Sort      table.SortState  `json:"sort"`
	Cards     []cardJSON       `json:"cards,omitempty"`
	Columns   []table.Header   `json:"columns"`
	Rows      []map[string]any `json:"rows"`
}

// ReportJSON is the machine-readable form of a rendered report. Numbers keep
// full precision.
func (r *Renderer) ReportJSON(ds *reports.Dataset, frame table.Frame) any {
	out := reportJSON{
		Report:    ds.Report,
		Title:     ds.Title,
		Params:    ds.Params,
		FetchedAt: ds.FetchedAt,
		Total:     ds.Len(),
		Count:     frame.Len(),
		Search:    frame.Search,
		Sort:      frame.Sort,
		Columns:   frame.Headers,
		Rows:      Rows(frame),
	}
	if ds.Summary != nil {
		for _, c := range ds.Summary.Cards() {
			card := cardJSON{Label: c.Label, Value: r.format.Card(c)}
			if c.Kind != reports.CardText {
				amount := c.Amount
				card.Amount = &amount
			}
			out.Cards = append(out.Cards, card)
		}
	}
	return out
}

// Rows flattens a frame into key/value objects.
func Rows(frame table.Frame) []map[string]any {
	rows := make([]map[string]any, 0, frame.Len())
	for _, row := range frame.Rows {
		obj := make(map[string]any, len(row))
		for i, cell := range row {
			if cell.Kind == table.KindNumber {
				obj[frame.Headers[i].Key] = cell.Number
			} else {
				obj[frame.Headers[i].Key] = cell.Text
			}
		}
		rows = append(rows, obj)
	}
	return rows
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
