package table

import (
	"errors"
	"fmt"
)

var ErrUnknownColumn = errors.New("unknown column")

type Query struct {
	Search string    `json:"search,omitempty"`
	Sort   SortState `json:"sort"`
}

// View binds a row type to its columns and to the subset of columns a search
// term is matched against.
type View[T any] struct {
	columns []Column[T]
	index   map[string]int
	search  []Column[T]
}

func NewView[T any](columns []Column[T], searchKeys ...string) (*View[T], error) {
	v := &View[T]{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := v.index[col.Key]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Key)
		}
		v.index[col.Key] = i
	}
	for _, key := range searchKeys {
		col, ok := v.Column(key)
		if !ok {
			return nil, fmt.Errorf("search field %q: %w", key, ErrUnknownColumn)
		}
		v.search = append(v.search, col)
	}
	return v, nil
}

func MustView[T any](columns []Column[T], searchKeys ...string) *View[T] {
	v, err := NewView(columns, searchKeys...)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *View[T]) Column(key string) (Column[T], bool) {
	idx, ok := v.index[key]
	if !ok {
		return Column[T]{}, false
	}
	return v.columns[idx], true
}

func (v *View[T]) Columns() []Column[T] {
	return v.columns
}

func (v *View[T]) Headers() []Header {
	headers := make([]Header, len(v.columns))
	for i, col := range v.columns {
		headers[i] = col.header()
	}
	return headers
}

func (v *View[T]) SearchKeys() []string {
	keys := make([]string, len(v.search))
	for i, col := range v.search {
		keys[i] = col.Key
	}
	return keys
}

// Apply filters then sorts rows. The input slice is never modified. An empty
// sort key keeps the filtered rows in input order.
func (v *View[T]) Apply(rows []T, q Query) ([]T, error) {
	fields := make([]func(T) string, len(v.search))
	for i, col := range v.search {
		fields[i] = col.TextOf
	}
	out := Filter(rows, q.Search, fields...)
	if q.Sort.Key == "" {
		return out, nil
	}
	col, ok := v.Column(q.Sort.Key)
	if !ok {
		return nil, fmt.Errorf("sort by %q: %w", q.Sort.Key, ErrUnknownColumn)
	}
	return Sort(out, col, q.Sort.Desc), nil
}

func (v *View[T]) Frame(rows []T, q Query) Frame {
	frame := Frame{
		Headers: v.Headers(),
		Rows:    make([][]Cell, 0, len(rows)),
		Search:  q.Search,
		Sort:    q.Sort,
	}
	for _, row := range rows {
		cells := make([]Cell, len(v.columns))
		for i, col := range v.columns {
			cells[i] = col.cell(row)
		}
		frame.Rows = append(frame.Rows, cells)
	}
	return frame
}

// Materialize is Apply followed by Frame.
func (v *View[T]) Materialize(rows []T, q Query) (Frame, error) {
	out, err := v.Apply(rows, q)
	if err != nil {
		return Frame{}, err
	}
	return v.Frame(out, q), nil
}
