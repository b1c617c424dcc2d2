package reports

import (
	"net/http"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

type OverdueInvoice struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	Customer      string          `json:"customerName"`
	InvoiceDate   string          `json:"invoiceDate"`
	DueDate       string          `json:"dueDate"`
	DaysOverdue   int             `json:"daysOverdue"`
	Balance       decimal.Decimal `json:"balance"`
}

type OverdueSummary struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`
	InvoiceCount int             `json:"invoiceCount"`
	Customers    int             `json:"customerCount"`
	AverageDays  decimal.Decimal `json:"averageDaysOverdue"`
}

func (s OverdueSummary) Cards() []Card {
	return []Card{
		moneyCard("Balance over 90 days", s.TotalBalance),
		countCard("Invoices", s.InvoiceCount),
		countCard("Customers", s.Customers),
		{Label: "Average days overdue", Kind: CardDays, Amount: s.AverageDays},
	}
}

func (s OverdueSummary) Totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{"balance": s.TotalBalance}
}

type overdueEnvelope struct {
	Invoices list[OverdueInvoice] `json:"invoices"`
	Stats    OverdueSummary       `json:"summary"`
}

func (e overdueEnvelope) Items() []OverdueInvoice { return e.Invoices }
func (e overdueEnvelope) Summary() Summary        { return e.Stats }

func ARover90() *Definition[OverdueInvoice, overdueEnvelope] {
	columns := []table.Column[OverdueInvoice]{
		table.Text("invoice_number", "Invoice #", func(i OverdueInvoice) string { return i.InvoiceNumber }).WithWidth(14),
		table.Text("customer", "Customer", func(i OverdueInvoice) string { return i.Customer }).WithWidth(32),
		table.Date("invoice_date", "Invoice Date", func(i OverdueInvoice) string { return i.InvoiceDate }),
		table.Date("due_date", "Due Date", func(i OverdueInvoice) string { return i.DueDate }),
		table.Count("days_overdue", "Days Overdue", func(i OverdueInvoice) int { return i.DaysOverdue }),
		table.Money("balance", "Balance", func(i OverdueInvoice) decimal.Decimal { return i.Balance }),
	}
	return &Definition[OverdueInvoice, overdueEnvelope]{
		name:   "ar-over-90",
		title:  "AR Over 90 Days",
		path:   "/api/reports/departments/accounting/ar-over90-full",
		method: http.MethodGet,
		view:   table.MustView(columns, "customer", "invoice_number"),
		sort:   table.SortState{Key: "balance", Desc: true},
		rowID:  func(i OverdueInvoice) string { return i.InvoiceNumber },
	}
}

// Buckets is an aging breakdown of an open balance.
type Buckets struct {
	Current    decimal.Decimal `json:"current"`
	Days1To30  decimal.Decimal `json:"days1to30"`
	Days31To60 decimal.Decimal `json:"days31to60"`
	Days61To90 decimal.Decimal `json:"days61to90"`
	Over90     decimal.Decimal `json:"over90"`
	Total      decimal.Decimal `json:"total"`
}

func (b Buckets) totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"current":    b.Current,
		"days_1_30":  b.Days1To30,
		"days_31_60": b.Days31To60,
		"days_61_90": b.Days61To90,
		"over_90":    b.Over90,
		"total":      b.Total,
	}
}

func (b Buckets) cards(parties string, count int) []Card {
	share := decimal.Zero
	if !b.Total.IsZero() {
		share = b.Over90.Div(b.Total).Mul(decimal.NewFromInt(100)).Round(1)
	}
	return []Card{
		moneyCard("Total outstanding", b.Total),
		moneyCard("Current", b.Current),
		moneyCard("Over 90 days", b.Over90),
		percentCard("Share over 90", share),
		countCard(parties, count),
	}
}

func bucketColumns[T any](get func(T) Buckets) []table.Column[T] {
	money := func(key, title string, pick func(Buckets) decimal.Decimal) table.Column[T] {
		return table.Money(key, title, func(row T) decimal.Decimal { return pick(get(row)) }).WithWidth(14)
	}
	return []table.Column[T]{
		money("current", "Current", func(b Buckets) decimal.Decimal { return b.Current }),
		money("days_1_30", "1-30", func(b Buckets) decimal.Decimal { return b.Days1To30 }),
		money("days_31_60", "31-60", func(b Buckets) decimal.Decimal { return b.Days31To60 }),
		money("days_61_90", "61-90", func(b Buckets) decimal.Decimal { return b.Days61To90 }),
		money("over_90", "Over 90", func(b Buckets) decimal.Decimal { return b.Over90 }),
		money("total", "Total", func(b Buckets) decimal.Decimal { return b.Total }),
	}
}

type AgingSummary struct {
	Buckets Buckets `json:"totals"`
	Count   int     `json:"count"`

	parties string
}

func (s AgingSummary) Cards() []Card {
	return s.Buckets.cards(s.parties, s.Count)
}

func (s AgingSummary) Totals() map[string]decimal.Decimal {
	return s.Buckets.totals()
}

type ReceivableAging struct {
	CustomerID ID     `json:"customerId"`
	Customer   string `json:"customerName"`
	Buckets
}

type receivableAgingEnvelope struct {
	Customers list[ReceivableAging] `json:"customers"`
	Stats     AgingSummary          `json:"summary"`
}

func (e receivableAgingEnvelope) Items() []ReceivableAging { return e.Customers }

func (e receivableAgingEnvelope) Summary() Summary {
	s := e.Stats
	s.parties = "Customers"
	if s.Count == 0 {
		s.Count = len(e.Customers)
	}
	return s
}

func ARAging() *Definition[ReceivableAging, receivableAgingEnvelope] {
	columns := append([]table.Column[ReceivableAging]{
		table.Text("customer", "Customer", func(r ReceivableAging) string { return r.Customer }).WithWidth(32).Ascending(),
	}, bucketColumns(func(r ReceivableAging) Buckets { return r.Buckets })...)
	return &Definition[ReceivableAging, receivableAgingEnvelope]{
		name:   "ar-aging",
		title:  "Accounts Receivable Aging",
		path:   "/api/reports/departments/accounting/ar-aging",
		method: http.MethodGet,
		view:   table.MustView(columns, "customer"),
		rowID:  func(r ReceivableAging) string { return r.CustomerID.String() },
	}
}
