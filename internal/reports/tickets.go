package reports

import (
	"net/http"
	"strings"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

type Ticket struct {
	Number    string `json:"ticketNumber"`
	Subject   string `json:"subject"`
	Customer  string `json:"customerName"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	CreatedAt string `json:"createdAt"`
}

type TicketSummary struct {
	Count  int
	Open   int
	Urgent int
}

func (s TicketSummary) Cards() []Card {
	return []Card{
		countCard("Tickets", s.Count),
		countCard("Open", s.Open),
		countCard("High priority", s.Urgent),
	}
}

func (s TicketSummary) Totals() map[string]decimal.Decimal {
	return nil
}

type ticketEnvelope struct {
	list[Ticket]
}

func (e ticketEnvelope) Items() []Ticket { return e.list }

func (e ticketEnvelope) Summary() Summary {
	s := TicketSummary{Count: len(e.list)}
	for _, t := range e.list {
		switch strings.ToLower(t.Status) {
		case "closed", "resolved":
		default:
			s.Open++
		}
		switch strings.ToLower(t.Priority) {
		case "high", "urgent", "critical":
			s.Urgent++
		}
	}
	return s
}

func SupportTickets() *Definition[Ticket, ticketEnvelope] {
	columns := []table.Column[Ticket]{
		table.Text("number", "Ticket #", func(t Ticket) string { return t.Number }).WithWidth(12),
		table.Text("subject", "Subject", func(t Ticket) string { return t.Subject }).WithWidth(40),
		table.Text("customer", "Customer", func(t Ticket) string { return t.Customer }).WithWidth(28),
		table.Text("status", "Status", func(t Ticket) string { return t.Status }).WithWidth(12),
		table.Text("priority", "Priority", func(t Ticket) string { return t.Priority }).WithWidth(10),
		table.Date("created_at", "Created", func(t Ticket) string { return t.CreatedAt }),
	}
	return &Definition[Ticket, ticketEnvelope]{
		name:   "support-tickets",
		title:  "Support Tickets",
		path:   "/api/support-tickets",
		method: http.MethodGet,
		view:   table.MustView(columns, "subject", "customer", "number"),
		sort:   table.SortState{Key: "created_at", Desc: true},
		rowID:  func(t Ticket) string { return t.Number },
	}
}
