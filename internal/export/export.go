package export

import (
	"errors"
	"fmt"
	"strings"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

// ErrNoRows is returned instead of writing an empty file.
var ErrNoRows = errors.New("no rows to export")

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use csv or xlsx)", s)
	}
}

func (f Format) Extension() string {
	return "." + string(f)
}

const (
	totalsLabel         = "Totals"
	filteredTotalsLabel = "Totals (filtered)"
)

// Totals is the closing row of a spreadsheet export.
type Totals struct {
	Label  string
	Values map[string]decimal.Decimal
}

func (t Totals) Empty() bool {
	return len(t.Values) == 0
}

// ResolveTotals picks the figures for the totals row. An unfiltered frame
// gets the server aggregate as delivered. A filtered frame gets the same
// columns summed over the rows actually exported, so the row never disagrees
// with the detail above it.
func ResolveTotals(frame table.Frame, server map[string]decimal.Decimal) Totals {
	if len(server) == 0 {
		return Totals{}
	}
	if !frame.Filtered() {
		values := make(map[string]decimal.Decimal, len(server))
		for key, v := range server {
			if frame.ColumnIndex(key) >= 0 {
				values[key] = v
			}
		}
		return Totals{Label: totalsLabel, Values: values}
	}

	values := make(map[string]decimal.Decimal, len(server))
	for key := range server {
		idx := frame.ColumnIndex(key)
		if idx < 0 || frame.Headers[idx].Kind != table.KindNumber {
			continue
		}
		values[key] = frame.Sum(key)
	}
	return Totals{Label: filteredTotalsLabel, Values: values}
}
