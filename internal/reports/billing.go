package reports

import (
	"net/http"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

type BilledInvoice struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	Customer      string          `json:"customerName"`
	InvoiceDate   string          `json:"invoiceDate"`
	DueDate       string          `json:"dueDate"`
	Amount        decimal.Decimal `json:"amount"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	Status        string          `json:"status"`
}

type BillingSummary struct {
	TotalBilled  decimal.Decimal `json:"totalBilled"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	InvoiceCount int             `json:"invoiceCount"`
}

func (s BillingSummary) Cards() []Card {
	return []Card{
		moneyCard("Billed", s.TotalBilled),
		moneyCard("Paid", s.TotalPaid),
		moneyCard("Outstanding", s.Outstanding),
		countCard("Invoices", s.InvoiceCount),
	}
}

func (s BillingSummary) Totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"amount":      s.TotalBilled,
		"amount_paid": s.TotalPaid,
	}
}

type billingEnvelope struct {
	Invoices list[BilledInvoice] `json:"invoices"`
	Stats    BillingSummary      `json:"summary"`
}

func (e billingEnvelope) Items() []BilledInvoice { return e.Invoices }
func (e billingEnvelope) Summary() Summary       { return e.Stats }

// InvoiceBilling is the one report fetched with POST; the date range travels
// in the body.
func InvoiceBilling() *Definition[BilledInvoice, billingEnvelope] {
	columns := []table.Column[BilledInvoice]{
		table.Text("invoice_number", "Invoice #", func(i BilledInvoice) string { return i.InvoiceNumber }).WithWidth(14),
		table.Text("customer", "Customer", func(i BilledInvoice) string { return i.Customer }).WithWidth(32),
		table.Date("invoice_date", "Invoice Date", func(i BilledInvoice) string { return i.InvoiceDate }),
		table.Date("due_date", "Due Date", func(i BilledInvoice) string { return i.DueDate }),
		table.Money("amount", "Amount", func(i BilledInvoice) decimal.Decimal { return i.Amount }),
		table.Money("amount_paid", "Paid", func(i BilledInvoice) decimal.Decimal { return i.AmountPaid }),
		table.Text("status", "Status", func(i BilledInvoice) string { return i.Status }).WithWidth(10),
	}
	return &Definition[BilledInvoice, billingEnvelope]{
		name:   "invoice-billing",
		title:  "Invoice Billing",
		path:   "/api/reports/departments/accounting/invoice-billing",
		method: http.MethodPost,
		view:   table.MustView(columns, "customer", "invoice_number"),
		sort:   table.SortState{Key: "invoice_date", Desc: true},
		rowID:  func(i BilledInvoice) string { return i.InvoiceNumber },
	}
}
