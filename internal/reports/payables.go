package reports

import (
	"net/http"

	"bi_dashboard/internal/table"
)

type PayableAging struct {
	VendorID ID     `json:"vendorId"`
	Vendor   string `json:"vendorName"`
	Buckets
}

type payableAgingEnvelope struct {
	Vendors list[PayableAging] `json:"vendors"`
	Stats   AgingSummary       `json:"summary"`
}

func (e payableAgingEnvelope) Items() []PayableAging { return e.Vendors }

func (e payableAgingEnvelope) Summary() Summary {
	s := e.Stats
	s.parties = "Vendors"
	if s.Count == 0 {
		s.Count = len(e.Vendors)
	}
	return s
}

func APAging() *Definition[PayableAging, payableAgingEnvelope] {
	columns := append([]table.Column[PayableAging]{
		table.Text("vendor", "Vendor", func(p PayableAging) string { return p.Vendor }).WithWidth(32).Ascending(),
	}, bucketColumns(func(p PayableAging) Buckets { return p.Buckets })...)
	return &Definition[PayableAging, payableAgingEnvelope]{
		name:   "ap-aging",
		title:  "Accounts Payable Aging",
		path:   "/api/reports/departments/accounting/ap-aging",
		method: http.MethodGet,
		view:   table.MustView(columns, "vendor"),
		rowID:  func(p PayableAging) string { return p.VendorID.String() },
	}
}
