package table

import (
	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const (
	defaultTextWidth   = 24
	defaultNumberWidth = 16
	defaultDateWidth   = 14
)

// Column describes one field of a row type: how to read it, how to compare
// it and how to present it.
type Column[T any] struct {
	Key         string
	Title       string
	Kind        Kind
	Money       bool
	Integer     bool
	Width       float64
	DefaultDesc bool

	text   func(T) string
	number func(T) decimal.Decimal
}

func Text[T any](key, title string, fn func(T) string) Column[T] {
	return Column[T]{Key: key, Title: title, Kind: KindString, Width: defaultTextWidth, text: fn}
}

func Date[T any](key, title string, fn func(T) string) Column[T] {
	return Column[T]{Key: key, Title: title, Kind: KindDate, Width: defaultDateWidth, DefaultDesc: true, text: fn}
}

func Number[T any](key, title string, fn func(T) decimal.Decimal) Column[T] {
	return Column[T]{Key: key, Title: title, Kind: KindNumber, Width: defaultNumberWidth, DefaultDesc: true, number: fn}
}

func Money[T any](key, title string, fn func(T) decimal.Decimal) Column[T] {
	col := Number(key, title, fn)
	col.Money = true
	return col
}

func Count[T any](key, title string, fn func(T) int) Column[T] {
	col := Number(key, title, func(row T) decimal.Decimal {
		return decimal.NewFromInt(int64(fn(row)))
	})
	col.Integer = true
	col.Width = 12
	return col
}

func (c Column[T]) Ascending() Column[T] {
	c.DefaultDesc = false
	return c
}

func (c Column[T]) WithWidth(width float64) Column[T] {
	c.Width = width
	return c
}

// TextOf returns the raw text of the field. Number columns render with two
// decimals, count columns without.
func (c Column[T]) TextOf(row T) string {
	if c.Kind == KindNumber {
		n := c.NumberOf(row)
		if c.Integer {
			return n.StringFixed(0)
		}
		return n.StringFixed(2)
	}
	if c.text == nil {
		return ""
	}
	return c.text(row)
}

func (c Column[T]) NumberOf(row T) decimal.Decimal {
	if c.number == nil {
		return decimal.Zero
	}
	return c.number(row)
}

func (c Column[T]) header() Header {
	return Header{
		Key:     c.Key,
		Title:   c.Title,
		Kind:    c.Kind,
		Money:   c.Money,
		Integer: c.Integer,
		Width:   c.Width,

		DefaultDesc: c.DefaultDesc,
	}
}

func (c Column[T]) cell(row T) Cell {
	cell := Cell{Kind: c.Kind, Text: c.TextOf(row)}
	if c.Kind == KindNumber {
		cell.Number = c.NumberOf(row)
	}
	return cell
}
