package reports

import (
	"net/http"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

// ForecastPoint is one period of the sales forecast. The prediction itself is
// computed by the backend.
type ForecastPoint struct {
	Period   string          `json:"period"`
	Actual   decimal.Decimal `json:"actual"`
	Forecast decimal.Decimal `json:"forecast"`
	Lower    decimal.Decimal `json:"lowerBound"`
	Upper    decimal.Decimal `json:"upperBound"`
}

type ForecastSummary struct {
	Model         string          `json:"model"`
	Accuracy      decimal.Decimal `json:"accuracy"`
	NextPeriod    decimal.Decimal `json:"nextPeriodForecast"`
	GrowthRate    decimal.Decimal `json:"growthRate"`
	TotalForecast decimal.Decimal `json:"totalForecast"`
	TotalActual   decimal.Decimal `json:"totalActual"`
}

func (s ForecastSummary) Cards() []Card {
	cards := []Card{
		moneyCard("Next period", s.NextPeriod),
		percentCard("Growth", s.GrowthRate),
		percentCard("Model accuracy", s.Accuracy),
	}
	if s.Model != "" {
		cards = append(cards, Card{Label: "Model", Kind: CardText, Text: s.Model})
	}
	return cards
}

func (s ForecastSummary) Totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"actual":   s.TotalActual,
		"forecast": s.TotalForecast,
	}
}

type forecastEnvelope struct {
	Points list[ForecastPoint] `json:"forecast"`
	Stats  ForecastSummary     `json:"summary"`
}

func (e forecastEnvelope) Items() []ForecastPoint { return e.Points }
func (e forecastEnvelope) Summary() Summary       { return e.Stats }

func SalesForecast() *Definition[ForecastPoint, forecastEnvelope] {
	columns := []table.Column[ForecastPoint]{
		table.Text("period", "Period", func(p ForecastPoint) string { return p.Period }).WithWidth(12),
		table.Money("actual", "Actual", func(p ForecastPoint) decimal.Decimal { return p.Actual }),
		table.Money("forecast", "Forecast", func(p ForecastPoint) decimal.Decimal { return p.Forecast }),
		table.Money("lower", "Low", func(p ForecastPoint) decimal.Decimal { return p.Lower }),
		table.Money("upper", "High", func(p ForecastPoint) decimal.Decimal { return p.Upper }),
	}
	return &Definition[ForecastPoint, forecastEnvelope]{
		name:   "sales-forecast",
		title:  "Sales Forecast",
		path:   "/api/sales/forecast",
		method: http.MethodGet,
		view:   table.MustView(columns, "period"),
		sort:   table.SortState{Key: "period"},
		rowID:  func(p ForecastPoint) string { return p.Period },
	}
}
