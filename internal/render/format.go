package render

import (
	"strings"

	"bi_dashboard/internal/config"
	"bi_dashboard/internal/reports"
	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	displayDate  = "Jan 2, 2006"
	notAvailable = "N/A"
)

// Formatter renders money, counts and dates for the configured locale.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	code    string
	valid   bool
}

func NewFormatter(cfg config.Config) *Formatter {
	tag, err := language.Parse(cfg.Language)
	if err != nil {
		tag = language.AmericanEnglish
	}
	code := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	unit, err := currency.ParseISO(code)
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
		code:    code,
		valid:   err == nil && code != "",
	}
}

// Money formats an amount with the currency symbol, "$ 1,234.50" for USD in
// English. A zero value formats as zero.
func (f *Formatter) Money(d decimal.Decimal) string {
	if !f.valid {
		return strings.TrimSpace(f.code + " " + f.printer.Sprintf("%.2f", d.InexactFloat64()))
	}
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(d.InexactFloat64())))
}

func (f *Formatter) Count(d decimal.Decimal) string {
	return f.printer.Sprintf("%d", d.Round(0).IntPart())
}

func (f *Formatter) Number(d decimal.Decimal) string {
	return f.printer.Sprintf("%.2f", d.InexactFloat64())
}

func (f *Formatter) Percent(d decimal.Decimal) string {
	return f.printer.Sprintf("%.1f%%", d.InexactFloat64())
}

// Date renders an API date as "Jan 2, 2006". Empty values are N/A and
// values that do not parse are shown as received.
func (f *Formatter) Date(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return notAvailable
	}
	t, ok := table.ParseDate(raw)
	if !ok {
		return raw
	}
	return t.Format(displayDate)
}

func (f *Formatter) Cell(h table.Header, c table.Cell) string {
	switch h.Kind {
	case table.KindNumber:
		switch {
		case h.Money:
			return f.Money(c.Number)
		case h.Integer:
			return f.Count(c.Number)
		default:
			return f.Number(c.Number)
		}
	case table.KindDate:
		return f.Date(c.Text)
	default:
		return c.Text
	}
}

func (f *Formatter) Card(c reports.Card) string {
	switch c.Kind {
	case reports.CardMoney:
		return f.Money(c.Amount)
	case reports.CardPercent:
		return f.Percent(c.Amount)
	case reports.CardDays:
		return f.Count(c.Amount) + " days"
	case reports.CardText:
		if c.Text == "" {
			return notAvailable
		}
		return c.Text
	default:
		return f.Count(c.Amount)
	}
}
