package export

import (
	"fmt"
	"io"
	"strings"

	"bi_dashboard/internal/table"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet  = "Sheet1"
	maxSheetName  = 31
	integerFormat = "#,##0"
	numberFormat  = "#,##0.00"
)

// Sheet describes one spreadsheet export.
type Sheet struct {
	Name   string
	Frame  table.Frame
	Totals Totals
	// Symbol prefixes money cells, e.g. "$".
	Symbol string
}

type styles struct {
	header, money, integer, number     int
	totalLabel, totalMoney, totalCount int
	totalNumber                        int
}

func newStyles(f *excelize.File, symbol string) (styles, error) {
	money := moneyFormat(symbol)
	var s styles
	for _, def := range []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.header, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}}}},
		{&s.money, &excelize.Style{CustomNumFmt: &money}},
		{&s.integer, &excelize.Style{CustomNumFmt: ptr(integerFormat)}},
		{&s.number, &excelize.Style{CustomNumFmt: ptr(numberFormat)}},
		{&s.totalLabel, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.totalMoney, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &money}},
		{&s.totalCount, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: ptr(integerFormat)}},
		{&s.totalNumber, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: ptr(numberFormat)}},
	} {
		id, err := f.NewStyle(def.style)
		if err != nil {
			return styles{}, fmt.Errorf("create style: %w", err)
		}
		*def.dst = id
	}
	return s, nil
}

func (s styles) forHeader(h table.Header, total bool) (int, bool) {
	if h.Kind != table.KindNumber {
		return 0, false
	}
	switch {
	case h.Money && total:
		return s.totalMoney, true
	case h.Money:
		return s.money, true
	case h.Integer && total:
		return s.totalCount, true
	case h.Integer:
		return s.integer, true
	case total:
		return s.totalNumber, true
	default:
		return s.number, true
	}
}

// WriteXLSX writes a single-sheet workbook: a bold header, number cells with
// currency or count formats, fixed column widths and an optional totals row.
func WriteXLSX(w io.Writer, sheet Sheet) error {
	frame := sheet.Frame
	if frame.Empty() {
		return ErrNoRows
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := SheetName(sheet.Name)
	if err := f.SetSheetName(defaultSheet, name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	st, err := newStyles(f, sheet.Symbol)
	if err != nil {
		return err
	}

	header := make([]any, len(frame.Headers))
	for i, h := range frame.Headers {
		header[i] = h.Title
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if h.Width > 0 {
			if err := f.SetColWidth(name, col, col, h.Width); err != nil {
				return fmt.Errorf("set width of %s: %w", col, err)
			}
		}
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(frame.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, st.header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for r, row := range frame.Rows {
		values := make([]any, len(row))
		for c, cell := range row {
			if cell.Kind == table.KindNumber {
				values[c] = cell.Number.InexactFloat64()
			} else {
				values[c] = cell.Text
			}
		}
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, start, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	lastRow := len(frame.Rows) + 1
	for c, h := range frame.Headers {
		style, ok := st.forHeader(h, false)
		if !ok {
			continue
		}
		top, _ := excelize.CoordinatesToCellName(c+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(c+1, lastRow)
		if err := f.SetCellStyle(name, top, bottom, style); err != nil {
			return fmt.Errorf("style column %q: %w", h.Key, err)
		}
	}

	if !sheet.Totals.Empty() {
		if err := writeTotals(f, name, frame, sheet.Totals, st, lastRow+1); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTotals(f *excelize.File, sheet string, frame table.Frame, totals Totals, st styles, row int) error {
	labelCell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetCellValue(sheet, labelCell, totals.Label); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, labelCell, labelCell, st.totalLabel); err != nil {
		return err
	}
	for c, h := range frame.Headers {
		v, ok := totals.Values[h.Key]
		if !ok {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(c+1, row)
		if err := f.SetCellValue(sheet, cell, v.InexactFloat64()); err != nil {
			return fmt.Errorf("write total %q: %w", h.Key, err)
		}
		if style, ok := st.forHeader(h, true); ok {
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// SheetName trims a title to what Excel accepts as a sheet name.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		return defaultSheet
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}

func moneyFormat(symbol string) string {
	if symbol == "" {
		return numberFormat
	}
	quoted := `"` + strings.ReplaceAll(symbol, `"`, ``) + `"`
	return quoted + numberFormat + ";-" + quoted + numberFormat
}

func ptr[T any](v T) *T {
	return &v
}
