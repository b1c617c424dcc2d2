package reports

import (
	"fmt"
	"time"

	"bi_dashboard/internal/table"
)

// Dataset is one fetched report. The typed rows stay inside; callers work
// with frames.
type Dataset struct {
	Report    string
	Title     string
	Params    Params
	Summary   Summary
	FetchedAt time.Time

	count       int
	headers     []table.Header
	searchKeys  []string
	defaultSort table.SortState
	apply       func(table.Query) (table.Frame, error)
	detail      func(id string) (table.Frame, bool)
}

func newDataset[T any, E Envelope[T]](d *Definition[T, E], rows []T, summary Summary, params Params) *Dataset {
	return &Dataset{
		Report:      d.name,
		Title:       d.title,
		Params:      params,
		Summary:     summary,
		FetchedAt:   time.Now(),
		count:       len(rows),
		headers:     d.view.Headers(),
		searchKeys:  d.view.SearchKeys(),
		defaultSort: d.sort,
		apply: func(q table.Query) (table.Frame, error) {
			return d.view.Materialize(rows, q)
		},
		detail: func(id string) (table.Frame, bool) {
			if d.rowID == nil {
				return table.Frame{}, false
			}
			for _, row := range rows {
				if d.rowID(row) == id {
					return d.view.Frame([]T{row}, table.Query{}), true
				}
			}
			return table.Frame{}, false
		},
	}
}

func (ds *Dataset) Len() int {
	return ds.count
}

func (ds *Dataset) Headers() []table.Header {
	return ds.headers
}

func (ds *Dataset) Header(key string) (table.Header, bool) {
	for _, h := range ds.headers {
		if h.Key == key {
			return h, true
		}
	}
	return table.Header{}, false
}

func (ds *Dataset) SearchKeys() []string {
	return ds.searchKeys
}

func (ds *Dataset) DefaultSort() table.SortState {
	return ds.defaultSort
}

func (ds *Dataset) Apply(q table.Query) (table.Frame, error) {
	return ds.apply(q)
}

// Detail returns a single-row frame for the row with the given id, the
// expanded-row view.
func (ds *Dataset) Detail(id string) (table.Frame, error) {
	frame, ok := ds.detail(id)
	if !ok {
		return table.Frame{}, fmt.Errorf("%s %q: %w", ds.Report, id, ErrRowNotFound)
	}
	return frame, nil
}
