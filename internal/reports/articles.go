package reports

import (
	"net/http"

	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
)

type Article struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Author    string `json:"author"`
	UpdatedAt string `json:"updatedAt"`
	Views     int    `json:"views"`
}

type ArticleSummary struct {
	Count      int
	Categories int
	Views      int
}

func (s ArticleSummary) Cards() []Card {
	return []Card{
		countCard("Articles", s.Count),
		countCard("Categories", s.Categories),
		countCard("Views", s.Views),
	}
}

func (s ArticleSummary) Totals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{"views": decimal.NewFromInt(int64(s.Views))}
}

type articleEnvelope struct {
	list[Article]
}

func (e articleEnvelope) Items() []Article { return e.list }

func (e articleEnvelope) Summary() Summary {
	categories := map[string]struct{}{}
	s := ArticleSummary{Count: len(e.list)}
	for _, a := range e.list {
		if a.Category != "" {
			categories[a.Category] = struct{}{}
		}
		s.Views += a.Views
	}
	s.Categories = len(categories)
	return s
}

func KnowledgeBase() *Definition[Article, articleEnvelope] {
	columns := []table.Column[Article]{
		table.Text("id", "ID", func(a Article) string { return a.ID.String() }).WithWidth(8),
		table.Text("title", "Title", func(a Article) string { return a.Title }).WithWidth(44),
		table.Text("category", "Category", func(a Article) string { return a.Category }).WithWidth(18),
		table.Text("author", "Author", func(a Article) string { return a.Author }).WithWidth(18),
		table.Date("updated_at", "Updated", func(a Article) string { return a.UpdatedAt }),
		table.Count("views", "Views", func(a Article) int { return a.Views }),
	}
	return &Definition[Article, articleEnvelope]{
		name:   "kb-articles",
		title:  "Knowledge Base Articles",
		path:   "/api/knowledge-base/articles",
		method: http.MethodGet,
		view:   table.MustView(columns, "title", "category"),
		sort:   table.SortState{Key: "title"},
		rowID: func(a Article) string {
			if a.ID == "" {
				return a.Title
			}
			return a.ID.String()
		},
	}
}
