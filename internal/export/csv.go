package export

import (
	"bufio"
	"io"
	"strings"

	"bi_dashboard/internal/table"
)

const csvDecimals = 2

// WriteCSV emits the frame as CSV: a header row of column titles, then one
// line per row. Text fields are always quoted; number fields are bare with
// fixed decimals.
func WriteCSV(w io.Writer, frame table.Frame) error {
	if frame.Empty() {
		return ErrNoRows
	}

	bw := bufio.NewWriter(w)
	header := make([]string, len(frame.Headers))
	for i, h := range frame.Headers {
		header[i] = quoteCSV(h.Title)
	}
	writeCSVLine(bw, header)

	line := make([]string, len(frame.Headers))
	for _, row := range frame.Rows {
		for i, cell := range row {
			line[i] = csvField(cell)
		}
		writeCSVLine(bw, line[:len(row)])
	}
	return bw.Flush()
}

func csvField(cell table.Cell) string {
	if cell.Kind == table.KindNumber {
		return cell.Number.StringFixed(csvDecimals)
	}
	return quoteCSV(cell.Text)
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeCSVLine(w *bufio.Writer, fields []string) {
	_, _ = w.WriteString(strings.Join(fields, ","))
	_, _ = w.WriteString("\r\n")
}
