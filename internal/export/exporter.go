package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"bi_dashboard/internal/config"
	"bi_dashboard/internal/table"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Request is one export of the frame currently on screen.
type Request struct {
	Report string
	Title  string
	From   time.Time
	To     time.Time
	Frame  table.Frame
	// Totals is the server aggregate for the whole report.
	Totals map[string]decimal.Decimal
	Format Format
	// Path overrides the generated file name when set.
	Path string
}

type Exporter struct {
	dir    string
	symbol string
	logger *zap.Logger
	now    func() time.Time
}

func NewExporter(cfg config.Config, logger *zap.Logger) *Exporter {
	dir := strings.TrimSpace(cfg.ExportDir)
	if dir == "" {
		dir = "."
	}
	return &Exporter{
		dir:    dir,
		symbol: CurrencySymbol(cfg.Currency, cfg.Language),
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// Export writes the file and returns its path. An empty frame writes nothing
// and returns ErrNoRows.
func (e *Exporter) Export(req Request) (string, error) {
	if req.Frame.Empty() {
		return "", ErrNoRows
	}

	var buf bytes.Buffer
	switch req.Format {
	case FormatCSV:
		if err := WriteCSV(&buf, req.Frame); err != nil {
			return "", err
		}
	case FormatXLSX:
		title := req.Title
		if title == "" {
			title = req.Report
		}
		err := WriteXLSX(&buf, Sheet{
			Name:   title,
			Frame:  req.Frame,
			Totals: ResolveTotals(req.Frame, req.Totals),
			Symbol: e.symbol,
		})
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported export format %q", req.Format)
	}

	path := req.Path
	if path == "" {
		path = filepath.Join(e.dir, FileName(req.Report, req.From, req.To, e.now(), req.Format))
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return "", err
	}

	e.logger.Info("report exported",
		zap.String("report", req.Report),
		zap.String("format", string(req.Format)),
		zap.String("path", path),
		zap.Int("rows", req.Frame.Len()),
		zap.Bool("filtered", req.Frame.Filtered()),
	)
	return path, nil
}

// writeFile replaces path atomically through a temp file in the same dir.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save export file: %w", err)
	}
	return nil
}

// FileName builds <report>[_<from>][_<to>]_<today>.<ext>.
func FileName(report string, from, to, now time.Time, format Format) string {
	parts := []string{unsafeName.ReplaceAllString(report, "-")}
	if parts[0] == "" {
		parts[0] = "report"
	}
	if !from.IsZero() {
		parts = append(parts, from.Format(dateLayout))
	}
	if !to.IsZero() {
		parts = append(parts, to.Format(dateLayout))
	}
	parts = append(parts, now.Format(dateLayout))
	return strings.Join(parts, "_") + format.Extension()
}

// CurrencySymbol returns the local symbol for an ISO currency code, "$" for
// USD in English. Unknown codes fall back to the code itself.
func CurrencySymbol(code, lang string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit))
}
