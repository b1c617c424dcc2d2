package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bi_dashboard/internal/table"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	ErrUnknownReport = errors.New("unknown report")
	ErrRowNotFound   = errors.New("row not found")

	validate = validator.New()
)

// Fetcher is the part of the API client a report needs.
type Fetcher interface {
	Get(ctx context.Context, path string, query map[string]string, result any) error
	Post(ctx context.Context, path string, body any, result any) error
}

type Params struct {
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero" validate:"omitempty,gtefield=From"`
}

func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "To" {
			return fmt.Errorf("invalid params: end date must not be before start date")
		}
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// Query is the startDate/endDate pair every report endpoint accepts.
func (p Params) Query() map[string]string {
	query := map[string]string{}
	if !p.From.IsZero() {
		query["startDate"] = p.From.Format(dateLayout)
	}
	if !p.To.IsZero() {
		query["endDate"] = p.To.Format(dateLayout)
	}
	return query
}

type CardKind int

const (
	CardCount CardKind = iota
	CardMoney
	CardPercent
	CardText
	CardDays
)

// Card is one headline figure of a report summary.
type Card struct {
	Label  string          `json:"label"`
	Kind   CardKind        `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
	Text   string          `json:"text,omitempty"`
}

func countCard(label string, n int) Card {
	return Card{Label: label, Kind: CardCount, Amount: decimal.NewFromInt(int64(n))}
}

func moneyCard(label string, amount decimal.Decimal) Card {
	return Card{Label: label, Kind: CardMoney, Amount: amount}
}

func percentCard(label string, pct decimal.Decimal) Card {
	return Card{Label: label, Kind: CardPercent, Amount: pct}
}

// Summary is the server-computed aggregate delivered alongside the rows.
// Totals maps column keys to the figure the export totals row shows.
type Summary interface {
	Cards() []Card
	Totals() map[string]decimal.Decimal
}

type Report interface {
	Name() string
	Title() string
	Endpoint() string
	Headers() []table.Header
	DefaultSort() table.SortState
	Fetch(ctx context.Context, client Fetcher, params Params) (*Dataset, error)
}

// Envelope is the decoded response body of a report endpoint.
type Envelope[T any] interface {
	Items() []T
	Summary() Summary
}

type Definition[T any, E Envelope[T]] struct {
	name   string
	title  string
	path   string
	method string
	view   *table.View[T]
	sort   table.SortState
	rowID  func(T) string
	after  func([]T, Summary) Summary
}

func (d *Definition[T, E]) Name() string     { return d.name }
func (d *Definition[T, E]) Title() string    { return d.title }
func (d *Definition[T, E]) Endpoint() string { return d.path }

func (d *Definition[T, E]) View() *table.View[T]         { return d.view }
func (d *Definition[T, E]) Headers() []table.Header      { return d.view.Headers() }
func (d *Definition[T, E]) DefaultSort() table.SortState { return d.sort }

func (d *Definition[T, E]) Fetch(ctx context.Context, client Fetcher, params Params) (*Dataset, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var env E
	var err error
	switch d.method {
	case http.MethodPost:
		err = client.Post(ctx, d.path, dateBody(params), &env)
	default:
		err = client.Get(ctx, d.path, params.Query(), &env)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", d.name, err)
	}

	rows := env.Items()
	summary := env.Summary()
	if d.after != nil {
		summary = d.after(rows, summary)
	}
	return newDataset(d, rows, summary, params), nil
}

func dateBody(params Params) map[string]string {
	body := map[string]string{}
	for k, v := range params.Query() {
		body[k] = v
	}
	return body
}
