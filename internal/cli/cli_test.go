package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"bi_dashboard/internal/api"
	"bi_dashboard/internal/config"
	"bi_dashboard/internal/dashboard"
	"bi_dashboard/internal/export"
	"bi_dashboard/internal/fetch"
	"bi_dashboard/internal/llm"
	"bi_dashboard/internal/render"
	"bi_dashboard/internal/reports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const salesBody = `{
	"customers": [
		{"customerId": 1, "customerName": "Acme", "invoiceCount": 2, "totalRevenue": 500},
		{"customerId": 2, "customerName": "Bosco", "invoiceCount": 4, "totalRevenue": 1500}
	],
	"summary": {"totalRevenue": 2000, "customerCount": 2, "invoiceCount": 6}
}`

type backend struct {
	mu      sync.Mutex
	failing map[string]bool
	queries map[string]string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.queries[r.URL.Path] = r.URL.RawQuery
	fail := b.failing[r.URL.Path]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Database unavailable"}`))
		return
	}
	switch r.URL.Path {
	case "/api/reports/sales/by-customer":
		_, _ = w.Write([]byte(salesBody))
	case "/api/support-tickets":
		_, _ = w.Write([]byte(`[{"ticketNumber":"T-1","subject":"Broken printer"}]`))
	case "/api/custom":
		_, _ = w.Write([]byte(`{"data":[{"name":"low","amount":3},{"name":"high","amount":10}]}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (b *backend) fail(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[path] = true
}

func (b *backend) query(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[path]
}

type harness struct {
	runner  *Runner
	out     *bytes.Buffer
	backend *backend
	dir     string
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	b := &backend{failing: map[string]bool{}, queries: map[string]string{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.Config{
		APIBaseURL:  srv.URL,
		Timeout:     5 * time.Second,
		ExportDir:   dir,
		Currency:    "USD",
		Language:    "en-US",
		Concurrency: 2,
	}
	logger := zap.NewNop()
	client := api.NewClientWithTokens(cfg, api.StaticToken("t"), logger)
	session := dashboard.NewSession(reports.DefaultCatalog(), client, export.NewExporter(cfg, logger), logger)
	llmClient, err := llm.NewClient(cfg, logger)
	require.NoError(t, err)

	if opts.Command == "" {
		opts.Command = cmdREPL
	}
	r := NewRunner(opts, logger, client, session, fetch.NewGroup(cfg, logger), render.NewRenderer(render.NewFormatter(cfg)), llmClient)
	out := &bytes.Buffer{}
	r.out = out
	return &harness{runner: r, out: out, backend: b, dir: dir}
}

func TestRunner_ShowJSON(t *testing.T) {
	h := newHarness(t, Options{Command: cmdShow, Args: []string{"sales-by-customer"}, Search: "aCm", JSON: true})

	require.NoError(t, h.runner.Run(context.Background()))

	var got struct {
		Total int              `json:"total"`
		Count int              `json:"count"`
		Rows  []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Count)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "Acme", got.Rows[0]["customer"])
}

func TestRunner_ShowSortedAscending(t *testing.T) {
	h := newHarness(t, Options{Command: cmdShow, Args: []string{"sales-by-customer"}, Sort: "revenue", Asc: true})

	require.NoError(t, h.runner.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Revenue")
	assert.Less(t, strings.Index(out, "Acme"), strings.Index(out, "Bosco"))
}

func TestRunner_ShowSortUsesColumnDefault(t *testing.T) {
	h := newHarness(t, Options{Command: cmdShow, Args: []string{"sales-by-customer"}, Sort: "revenue"})

	require.NoError(t, h.runner.Run(context.Background()))

	out := h.out.String()
	assert.Less(t, strings.Index(out, "Bosco"), strings.Index(out, "Acme"))
}

func TestRunner_ShowPassesPeriod(t *testing.T) {
	h := newHarness(t, Options{Command: cmdShow, Args: []string{"sales-by-customer"}, From: "2024-01-01", To: "2024-01-31"})

	require.NoError(t, h.runner.Run(context.Background()))
	assert.Equal(t, "endDate=2024-01-31&startDate=2024-01-01", h.backend.query("/api/reports/sales/by-customer"))
}

func TestRunner_ShowServerError(t *testing.T) {
	h := newHarness(t, Options{Command: cmdShow, Args: []string{"sales-by-customer"}})
	h.backend.fail("/api/reports/sales/by-customer")

	err := h.runner.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Database unavailable", friendlyError(err))
}

func TestRunner_Export(t *testing.T) {
	h := newHarness(t, Options{Command: cmdExport, Args: []string{"sales-by-customer"}, Format: "xlsx"})

	require.NoError(t, h.runner.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Exported 2 rows to ")
	matches, err := filepath.Glob(filepath.Join(h.dir, "sales-by-customer_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRunner_ExportEmptyViewWritesNothing(t *testing.T) {
	h := newHarness(t, Options{Command: cmdExport, Args: []string{"sales-by-customer"}, Search: "nobody"})

	err := h.runner.Run(context.Background())

	assert.ErrorIs(t, err, export.ErrNoRows)
	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunner_DashboardPartialFailure(t *testing.T) {
	h := newHarness(t, Options{Command: cmdDashboard, Args: []string{"sales-by-customer", "support-tickets"}})
	h.backend.fail("/api/support-tickets")

	require.NoError(t, h.runner.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Bosco")
	assert.Contains(t, out, "Database unavailable")
}

func TestRunner_DashboardAllFailed(t *testing.T) {
	h := newHarness(t, Options{Command: cmdDashboard, Args: []string{"support-tickets"}})
	h.backend.fail("/api/support-tickets")

	assert.Error(t, h.runner.Run(context.Background()))
}

func TestRunner_DashboardUnknownReport(t *testing.T) {
	h := newHarness(t, Options{Command: cmdDashboard, Args: []string{"payroll"}})

	assert.ErrorIs(t, h.runner.Run(context.Background()), reports.ErrUnknownReport)
}

func TestRunner_RawSorted(t *testing.T) {
	h := newHarness(t, Options{Command: cmdRaw, Args: []string{"/api/custom"}, Sort: "amount", Desc: true, JSON: true})

	require.NoError(t, h.runner.Run(context.Background()))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "high", rows[0]["name"])
	assert.Equal(t, "low", rows[1]["name"])
}

func TestRunner_ReportsJSON(t *testing.T) {
	h := newHarness(t, Options{Command: cmdReports, JSON: true})

	require.NoError(t, h.runner.Run(context.Background()))

	var infos []reportInfo
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &infos))
	require.Len(t, infos, 11)
	assert.Equal(t, "churn", infos[0].Name)
}

func TestRunner_AskWithoutLLM(t *testing.T) {
	h := newHarness(t, Options{Command: cmdAsk, Args: []string{"top", "customers?"}})

	err := h.runner.Run(context.Background())

	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestRunner_REPL(t *testing.T) {
	h := newHarness(t, Options{})
	h.runner.in = strings.NewReader(strings.Join([]string{
		"refresh",
		"tab sales-by-customer",
		"search bosco",
		"sort nope",
		"export csv",
		"range 2024-03-01 2024-01-01",
		"bogus",
		"exit",
		"reports",
	}, "\n"))

	require.NoError(t, h.runner.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Open a report first")
	assert.Contains(t, out, "Bosco")
	assert.Contains(t, out, "unknown column")
	assert.Contains(t, out, "Exported 1 rows to ")
	assert.Contains(t, out, "end date must not be before start date")
	assert.Contains(t, out, `unknown command "bogus"`)
	assert.NotContains(t, out, "Support Tickets", "input after exit is not read")
}

func TestRunner_REPLRangeRefetches(t *testing.T) {
	h := newHarness(t, Options{})
	h.runner.in = strings.NewReader("range 2024-01-01 -\ntab sales-by-customer\nexit\n")

	require.NoError(t, h.runner.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Period: from Jan 1, 2024")
	assert.Equal(t, "startDate=2024-01-01", h.backend.query("/api/reports/sales/by-customer"))
}
