package table

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is a row of an endpoint without a typed schema.
type Record map[string]any

func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return decimal.NewFromFloat(v).String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Number coerces the field to a decimal. Missing, null and non-numeric values
// count as zero.
func (r Record) Number(key string) decimal.Decimal {
	switch v := r[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// InferColumns builds columns for records by looking at every value of each
// key: all-numeric keys become number columns, keys whose non-empty values all
// parse as dates become date columns, everything else is text. Keys are
// ordered alphabetically.
func InferColumns(records []Record) []Column[Record] {
	seen := map[string]bool{}
	for _, rec := range records {
		for key := range rec {
			seen[key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	columns := make([]Column[Record], 0, len(keys))
	for _, key := range keys {
		columns = append(columns, inferColumn(key, records))
	}
	return columns
}

func inferColumn(key string, records []Record) Column[Record] {
	numeric, dated := true, true
	present := 0
	for _, rec := range records {
		value, ok := rec[key]
		if !ok || value == nil {
			continue
		}
		present++
		switch v := value.(type) {
		case float64, json.Number, int, int64:
			dated = false
		case string:
			numeric = false
			if _, ok := ParseDate(v); !ok && strings.TrimSpace(v) != "" {
				dated = false
			}
		default:
			numeric, dated = false, false
		}
	}
	title := humanize(key)
	switch {
	case present > 0 && numeric:
		return Number(key, title, func(r Record) decimal.Decimal { return r.Number(key) })
	case present > 0 && dated:
		return Date(key, title, func(r Record) string { return r.String(key) })
	default:
		return Text(key, title, func(r Record) string { return r.String(key) })
	}
}

func humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteRune(r)
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
