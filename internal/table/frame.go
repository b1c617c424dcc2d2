package table

import (
	"github.com/shopspring/decimal"
)

type Header struct {
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Kind        Kind    `json:"kind"`
	Money       bool    `json:"money,omitempty"`
	Integer     bool    `json:"integer,omitempty"`
	Width       float64 `json:"-"`
	DefaultDesc bool    `json:"-"`
}

func (h Header) defaultDesc() bool {
	return h.DefaultDesc
}

type Cell struct {
	Kind   Kind            `json:"-"`
	Text   string          `json:"text"`
	Number decimal.Decimal `json:"-"`
}

// Frame is a materialised view: the rows left after filtering and sorting,
// flattened into cells for rendering and export.
type Frame struct {
	Headers []Header  `json:"headers"`
	Rows    [][]Cell  `json:"rows"`
	Search  string    `json:"search,omitempty"`
	Sort    SortState `json:"sort"`
}

func (f Frame) Len() int {
	return len(f.Rows)
}

func (f Frame) Empty() bool {
	return len(f.Rows) == 0
}

func (f Frame) Filtered() bool {
	return f.Search != ""
}

func (f Frame) ColumnIndex(key string) int {
	for i, h := range f.Headers {
		if h.Key == key {
			return i
		}
	}
	return -1
}

// Sum adds up a number column across the frame's rows.
func (f Frame) Sum(key string) decimal.Decimal {
	idx := f.ColumnIndex(key)
	if idx < 0 || f.Headers[idx].Kind != KindNumber {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, row := range f.Rows {
		total = total.Add(row[idx].Number)
	}
	return total
}
