package reports

import (
	"net/http"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

const (
	ChurnStatusChurned = "churned"
	ChurnStatusAtRisk  = "at-risk"
	ChurnStatusActive  = "active"
)

type ChurnCustomer struct {
	ID              ID              `json:"customerId"`
	Name            string          `json:"customerName"`
	LastInvoiceDate string          `json:"lastInvoiceDate"`
	DaysInactive    int             `json:"daysSinceLastInvoice"`
	InvoiceCount    int             `json:"invoiceCount"`
	LifetimeRevenue decimal.Decimal `json:"lifetimeRevenue"`
	Status          string          `json:"status"`
}

type ChurnSummary struct {
	TotalCustomers int             `json:"totalCustomers"`
	Churned        int             `json:"churnedCount"`
	AtRisk         int             `json:"atRiskCount"`
	ChurnRate      decimal.Decimal `json:"churnRate"`
	RevenueAtRisk  decimal.Decimal `json:"revenueAtRisk"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

func (s ChurnSummary) Cards() []Card {
	return []Card{
		countCard("Customers", s.TotalCustomers),
		countCard("Churned", s.Churned),
		countCard("At risk", s.AtRisk),
		percentCard("Churn rate", s.ChurnRate),
		moneyCard("Revenue at risk", s.RevenueAtRisk),
	}
}

func (s ChurnSummary) Totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{"revenue": s.TotalRevenue}
}

type churnEnvelope struct {
	Customers list[ChurnCustomer] `json:"customers"`
	Stats     ChurnSummary        `json:"summary"`
}

func (e churnEnvelope) Items() []ChurnCustomer { return e.Customers }
func (e churnEnvelope) Summary() Summary       { return e.Stats }

func Churn() *Definition[ChurnCustomer, churnEnvelope] {
	columns := []table.Column[ChurnCustomer]{
		table.Text("id", "ID", func(c ChurnCustomer) string { return c.ID.String() }).WithWidth(10),
		table.Text("name", "Customer", func(c ChurnCustomer) string { return c.Name }).WithWidth(32),
		table.Text("status", "Status", func(c ChurnCustomer) string { return c.Status }).WithWidth(10),
		table.Date("last_invoice", "Last Invoice", func(c ChurnCustomer) string { return c.LastInvoiceDate }),
		table.Count("days_inactive", "Days Inactive", func(c ChurnCustomer) int { return c.DaysInactive }),
		table.Count("invoice_count", "Invoices", func(c ChurnCustomer) int { return c.InvoiceCount }),
		table.Money("revenue", "Lifetime Revenue", func(c ChurnCustomer) decimal.Decimal { return c.LifetimeRevenue }),
	}
	return &Definition[ChurnCustomer, churnEnvelope]{
		name:   "churn",
		title:  "Customer Churn Analysis",
		path:   "/api/customer-churn/analysis",
		method: http.MethodGet,
		view:   table.MustView(columns, "name", "status"),
		sort:   table.SortState{Key: "days_inactive", Desc: true},
		rowID:  func(c ChurnCustomer) string { return c.ID.String() },
	}
}
