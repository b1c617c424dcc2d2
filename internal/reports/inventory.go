package reports

import (
	"net/http"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Warehouse   string          `json:"warehouse"`
	OnHand      decimal.Decimal `json:"quantityOnHand"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	TotalValue  decimal.Decimal `json:"totalValue"`
}

type InventorySummary struct {
	TotalValue decimal.Decimal `json:"totalValue"`
	TotalUnits decimal.Decimal `json:"totalUnits"`
	ItemCount  int             `json:"itemCount"`
}

func (s InventorySummary) Cards() []Card {
	return []Card{
		moneyCard("Inventory value", s.TotalValue),
		{Label: "Units on hand", Kind: CardCount, Amount: s.TotalUnits},
		countCard("Items", s.ItemCount),
	}
}

func (s InventorySummary) Totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"on_hand":     s.TotalUnits,
		"total_value": s.TotalValue,
	}
}

type inventoryEnvelope struct {
	Rows  list[InventoryItem] `json:"items"`
	Stats InventorySummary    `json:"summary"`
}

func (e inventoryEnvelope) Items() []InventoryItem { return e.Rows }

func (e inventoryEnvelope) Summary() Summary {
	s := e.Stats
	if s.ItemCount == 0 {
		s.ItemCount = len(e.Rows)
	}
	return s
}

func Inventory() *Definition[InventoryItem, inventoryEnvelope] {
	columns := []table.Column[InventoryItem]{
		table.Text("sku", "SKU", func(i InventoryItem) string { return i.SKU }).WithWidth(14),
		table.Text("description", "Description", func(i InventoryItem) string { return i.Description }).WithWidth(36),
		table.Text("warehouse", "Warehouse", func(i InventoryItem) string { return i.Warehouse }).WithWidth(14),
		table.Number("on_hand", "On Hand", func(i InventoryItem) decimal.Decimal { return i.OnHand }).WithWidth(12),
		table.Money("unit_cost", "Unit Cost", func(i InventoryItem) decimal.Decimal { return i.UnitCost }),
		table.Money("total_value", "Total Value", func(i InventoryItem) decimal.Decimal { return i.TotalValue }),
	}
	return &Definition[InventoryItem, inventoryEnvelope]{
		name:   "inventory",
		title:  "Inventory Valuation",
		path:   "/api/reports/inventory/valuation",
		method: http.MethodGet,
		view:   table.MustView(columns, "sku", "description"),
		sort:   table.SortState{Key: "total_value", Desc: true},
		rowID:  func(i InventoryItem) string { return i.SKU },
	}
}
