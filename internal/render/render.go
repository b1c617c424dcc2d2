package render

import (
	"fmt"
	"strings"

	"bi_dashboard/internal/reports"
	"bi_dashboard/internal/table"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

const (
	arrowUp   = "▲"
	arrowDown = "▼"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	cardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cardValueStyle = lipgloss.NewStyle().Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type Renderer struct {
	format *Formatter
}

func NewRenderer(format *Formatter) *Renderer {
	return &Renderer{format: format}
}

func (r *Renderer) Formatter() *Formatter {
	return r.format
}

// Cards lays the summary figures out side by side.
func (r *Renderer) Cards(cards []reports.Card) string {
	if len(cards) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(cards))
	for _, c := range cards {
		boxes = append(boxes, cardStyle.Render(
			cardLabelStyle.Render(c.Label)+"\n"+cardValueStyle.Render(r.format.Card(c)),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// Table renders a frame. The sort column carries an arrow in its header.
// limit <= 0 shows every row.
func (r *Renderer) Table(frame table.Frame, limit int) string {
	headers := make([]string, len(frame.Headers))
	for i, h := range frame.Headers {
		headers[i] = HeaderTitle(h, frame.Sort)
	}

	rows := frame.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(row))
		for i, cell := range row {
			line[i] = r.format.Cell(frame.Headers[i], cell)
		}
		data = append(data, line)
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			if col < len(frame.Headers) && frame.Headers[col].Kind == table.KindNumber {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})
	return t.Render()
}

func HeaderTitle(h table.Header, sort table.SortState) string {
	if sort.Key != h.Key {
		return h.Title
	}
	if sort.Desc {
		return h.Title + " " + arrowDown
	}
	return h.Title + " " + arrowUp
}

// Report renders title, summary cards, the table and a footer line.
func (r *Renderer) Report(ds *reports.Dataset, frame table.Frame, limit int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(ds.Title))
	if period := Period(ds.Params); period != "" {
		b.WriteString(" " + mutedStyle.Render(period))
	}
	b.WriteString("\n")
	if ds.Summary != nil {
		if cards := r.Cards(ds.Summary.Cards()); cards != "" {
			b.WriteString(cards + "\n")
		}
	}
	if frame.Empty() {
		b.WriteString(mutedStyle.Render(emptyMessage(frame)) + "\n")
		return b.String()
	}
	b.WriteString(r.Table(frame, limit) + "\n")
	b.WriteString(mutedStyle.Render(Footer(ds.Len(), frame, limit)) + "\n")
	return b.String()
}

// Detail renders one row as label/value lines, the expanded-row view.
func (r *Renderer) Detail(frame table.Frame) string {
	if frame.Empty() {
		return ""
	}
	width := 0
	for _, h := range frame.Headers {
		width = max(width, lipgloss.Width(h.Title))
	}
	var b strings.Builder
	for i, h := range frame.Headers {
		label := cardLabelStyle.Render(fmt.Sprintf("%-*s", width, h.Title))
		b.WriteString(label + "  " + r.format.Cell(h, frame.Rows[0][i]) + "\n")
	}
	return b.String()
}

func (r *Renderer) Error(title, message string) string {
	return titleStyle.Render(title) + "\n" + errorStyle.Render("✗ "+message) + "\n"
}

func Footer(total int, frame table.Frame, limit int) string {
	shown := frame.Len()
	if limit > 0 && shown > limit {
		shown = limit
	}
	parts := []string{fmt.Sprintf("%d of %d rows", shown, total)}
	if frame.Len() != total {
		parts[0] = fmt.Sprintf("%d of %d rows (%d match)", shown, total, frame.Len())
	}
	if frame.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", frame.Search))
	}
	if frame.Sort.Key != "" {
		parts = append(parts, "sorted by "+frame.Sort.Key+" "+frame.Sort.Direction())
	}
	return strings.Join(parts, " · ")
}

func Period(p reports.Params) string {
	from, to := "", ""
	if !p.From.IsZero() {
		from = p.From.Format(displayDate)
	}
	if !p.To.IsZero() {
		to = p.To.Format(displayDate)
	}
	switch {
	case from != "" && to != "":
		return from + " - " + to
	case from != "":
		return "from " + from
	case to != "":
		return "until " + to
	default:
		return ""
	}
}

func emptyMessage(frame table.Frame) string {
	if frame.Search != "" {
		return fmt.Sprintf("No rows match %q.", frame.Search)
	}
	return "No data for this period."
}
