package reports

import (
	"net/http"
	"slices"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

type CustomerSales struct {
	CustomerID   ID              `json:"customerId"`
	Customer     string          `json:"customerName"`
	InvoiceCount int             `json:"invoiceCount"`
	Revenue      decimal.Decimal `json:"totalRevenue"`
	LastSale     string          `json:"lastSaleDate"`
}

type SalesSummary struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	CustomerCount int             `json:"customerCount"`
	InvoiceCount  int             `json:"invoiceCount"`

	// Top customer share of revenue, derived from the rows after the fetch.
	Top5  decimal.Decimal `json:"-"`
	Top10 decimal.Decimal `json:"-"`
}

func (s SalesSummary) Cards() []Card {
	return []Card{
		moneyCard("Revenue", s.TotalRevenue),
		countCard("Customers", s.CustomerCount),
		countCard("Invoices", s.InvoiceCount),
		percentCard("Top 5 share", s.Top5),
		percentCard("Top 10 share", s.Top10),
	}
}

func (s SalesSummary) Totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"revenue":       s.TotalRevenue,
		"invoice_count": decimal.NewFromInt(int64(s.InvoiceCount)),
	}
}

type salesEnvelope struct {
	Customers list[CustomerSales] `json:"customers"`
	Stats     SalesSummary        `json:"summary"`
}

func (e salesEnvelope) Items() []CustomerSales { return e.Customers }
func (e salesEnvelope) Summary() Summary       { return e.Stats }

// Concentration returns the percentage of total revenue earned from the n
// largest customers, rounded to one decimal. Zero revenue yields zero.
func Concentration(rows []CustomerSales, n int) decimal.Decimal {
	if n <= 0 || len(rows) == 0 {
		return decimal.Zero
	}
	revenues := make([]decimal.Decimal, len(rows))
	total := decimal.Zero
	for i, row := range rows {
		revenues[i] = row.Revenue
		total = total.Add(row.Revenue)
	}
	if !total.IsPositive() {
		return decimal.Zero
	}
	slices.SortFunc(revenues, func(a, b decimal.Decimal) int { return b.Cmp(a) })

	top := decimal.Zero
	for _, revenue := range revenues[:min(n, len(revenues))] {
		top = top.Add(revenue)
	}
	return top.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
}

func SalesByCustomer() *Definition[CustomerSales, salesEnvelope] {
	columns := []table.Column[CustomerSales]{
		table.Text("customer", "Customer", func(c CustomerSales) string { return c.Customer }).WithWidth(32).Ascending(),
		table.Count("invoice_count", "Invoices", func(c CustomerSales) int { return c.InvoiceCount }),
		table.Money("revenue", "Revenue", func(c CustomerSales) decimal.Decimal { return c.Revenue }),
		table.Date("last_sale", "Last Sale", func(c CustomerSales) string { return c.LastSale }),
	}
	return &Definition[CustomerSales, salesEnvelope]{
		name:   "sales-by-customer",
		title:  "Sales by Customer",
		path:   "/api/reports/sales/by-customer",
		method: http.MethodGet,
		view:   table.MustView(columns, "customer"),
		sort:   table.SortState{Key: "revenue", Desc: true},
		rowID: func(c CustomerSales) string {
			if c.CustomerID != "" {
				return c.CustomerID.String()
			}
			return c.Customer
		},
		after: func(rows []CustomerSales, summary Summary) Summary {
			s, _ := summary.(SalesSummary)
			s.Top5 = Concentration(rows, 5)
			s.Top10 = Concentration(rows, 10)
			if s.CustomerCount == 0 {
				s.CustomerCount = len(rows)
			}
			return s
		},
	}
}
