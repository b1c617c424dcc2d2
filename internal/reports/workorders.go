package reports

import (
	"net/http"
	"strings"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

type WorkOrder struct {
	Number     string          `json:"workOrderNumber"`
	Customer   string          `json:"customerName"`
	Status     string          `json:"status"`
	OpenedDate string          `json:"openedDate"`
	ClosedDate string          `json:"closedDate"`
	Technician string          `json:"technician"`
	Total      decimal.Decimal `json:"total"`
}

func (w WorkOrder) closed() bool {
	switch strings.ToLower(w.Status) {
	case "closed", "completed", "cancelled", "canceled":
		return true
	}
	return w.ClosedDate != ""
}

// WorkOrderSummary is counted from the rows; the endpoint returns only the
// list.
type WorkOrderSummary struct {
	Count int
	Open  int
	Value decimal.Decimal
}

func (s WorkOrderSummary) Cards() []Card {
	return []Card{
		countCard("Work orders", s.Count),
		countCard("Open", s.Open),
		moneyCard("Total value", s.Value),
	}
}

func (s WorkOrderSummary) Totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{"total": s.Value}
}

type workOrderEnvelope struct {
	list[WorkOrder]
}

func (e workOrderEnvelope) Items() []WorkOrder { return e.list }

func (e workOrderEnvelope) Summary() Summary {
	s := WorkOrderSummary{Count: len(e.list), Value: decimal.Zero}
	for _, w := range e.list {
		if !w.closed() {
			s.Open++
		}
		s.Value = s.Value.Add(w.Total)
	}
	return s
}

func WorkOrders() *Definition[WorkOrder, workOrderEnvelope] {
	columns := []table.Column[WorkOrder]{
		table.Text("number", "WO #", func(w WorkOrder) string { return w.Number }).WithWidth(12),
		table.Text("customer", "Customer", func(w WorkOrder) string { return w.Customer }).WithWidth(28),
		table.Text("status", "Status", func(w WorkOrder) string { return w.Status }).WithWidth(12),
		table.Date("opened_date", "Opened", func(w WorkOrder) string { return w.OpenedDate }),
		table.Date("closed_date", "Closed", func(w WorkOrder) string { return w.ClosedDate }),
		table.Text("technician", "Technician", func(w WorkOrder) string { return w.Technician }).WithWidth(20),
		table.Money("total", "Total", func(w WorkOrder) decimal.Decimal { return w.Total }),
	}
	return &Definition[WorkOrder, workOrderEnvelope]{
		name:   "work-orders",
		title:  "Work Orders",
		path:   "/api/work-orders",
		method: http.MethodGet,
		view:   table.MustView(columns, "number", "customer", "technician"),
		sort:   table.SortState{Key: "opened_date", Desc: true},
		rowID:  func(w WorkOrder) string { return w.Number },
	}
}
