package reports

import "fmt"

type Catalog struct {
	reports map[string]Report
	order   []string
}

func NewCatalog(reports ...Report) *Catalog {
	c := &Catalog{reports: make(map[string]Report, len(reports))}
	for _, r := range reports {
		if _, dup := c.reports[r.Name()]; dup {
			continue
		}
		c.reports[r.Name()] = r
		c.order = append(c.order, r.Name())
	}
	return c
}

func DefaultCatalog() *Catalog {
	return NewCatalog(
		Churn(),
		ARover90(),
		ARAging(),
		APAging(),
		SalesByCustomer(),
		InvoiceBilling(),
		Inventory(),
		WorkOrders(),
		KnowledgeBase(),
		SupportTickets(),
		SalesForecast(),
	)
}

func (c *Catalog) Lookup(name string) (Report, error) {
	r, ok := c.reports[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownReport, name, c.Names())
	}
	return r, nil
}

func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) All() []Report {
	out := make([]Report, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.reports[name])
	}
	return out
}
