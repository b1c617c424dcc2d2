package table

import (
	"slices"
	"strings"
)

type SortState struct {
	Key  string `json:"key,omitempty"`
	Desc bool   `json:"desc,omitempty"`
}

// Toggle flips the direction when col is already the sort column; otherwise
// it switches to col with the column's default direction.
func (s SortState) Toggle(col Header) SortState {
	if s.Key == col.Key {
		return SortState{Key: s.Key, Desc: !s.Desc}
	}
	return SortState{Key: col.Key, Desc: col.defaultDesc()}
}

func (s SortState) Direction() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// Sort returns a sorted copy of rows. Equal elements keep their input order.
func Sort[T any](rows []T, col Column[T], desc bool) []T {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		cmp := compare(col, a, b)
		if desc {
			return -cmp
		}
		return cmp
	})
	return out
}

func compare[T any](col Column[T], a, b T) int {
	switch col.Kind {
	case KindNumber:
		return col.NumberOf(a).Cmp(col.NumberOf(b))
	case KindDate:
		left, _ := ParseDate(col.TextOf(a))
		right, _ := ParseDate(col.TextOf(b))
		return left.Compare(right)
	default:
		return strings.Compare(col.TextOf(a), col.TextOf(b))
	}
}
