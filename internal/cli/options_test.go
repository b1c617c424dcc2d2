package cli

import (
	"io"
	"testing"
	"time"

	"bi_dashboard/internal/config"
	"bi_dashboard/internal/export"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_DefaultsToREPL(t *testing.T) {
	opts, err := ParseArgs(nil, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, cmdREPL, opts.Command)
	assert.Empty(t, opts.Args)
}

func TestParseArgs_FlagsAfterCommand(t *testing.T) {
	opts, err := ParseArgs([]string{"show", "sales-by-customer", "-s", "acme", "--sort", "revenue", "--desc", "--limit", "5", "--json"}, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, cmdShow, opts.Command)
	assert.Equal(t, []string{"sales-by-customer"}, opts.Args)
	assert.Equal(t, "acme", opts.Search)
	assert.Equal(t, "revenue", opts.Sort)
	assert.True(t, opts.Desc)
	assert.Equal(t, 5, opts.Limit)
	assert.True(t, opts.JSON)
}

func TestParseArgs_Errors(t *testing.T) {
	cases := map[string][]string{
		"show without report":  {"show"},
		"export two reports":   {"export", "churn", "inventory"},
		"raw without path":     {"raw"},
		"ask without question": {"ask", " "},
		"reports with args":    {"reports", "churn"},
		"unknown command":      {"payroll"},
		"asc and desc":         {"show", "churn", "--asc", "--desc"},
		"bad format":           {"export", "churn", "--format", "pdf"},
		"bad date":             {"show", "churn", "--from", "01/02/2024"},
		"reversed range":       {"show", "churn", "--from", "2024-02-01", "--to", "2024-01-01"},
		"negative limit":       {"show", "churn", "--limit", "-1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseArgs(args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	_, err := ParseArgs([]string{"--help"}, io.Discard)

	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestOptions_ApplyOnlyOverridesGivenFlags(t *testing.T) {
	base := config.Config{
		APIBaseURL: "https://reports.example.com",
		APIToken:   "from-env",
		Timeout:    20 * time.Second,
		LLMModel:   "model-a",
	}

	opts, err := ParseArgs([]string{"reports", "--token", "from-flag", "--timeout", "45s"}, io.Discard)
	require.NoError(t, err)
	cfg := opts.Apply(base)

	assert.Equal(t, "https://reports.example.com", cfg.APIBaseURL)
	assert.Equal(t, "from-flag", cfg.APIToken)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "model-a", cfg.LLMModel)
}

func TestOptions_ApplyClearsWithEmptyFlag(t *testing.T) {
	opts, err := ParseArgs([]string{"reports", "--log-file", ""}, io.Discard)
	require.NoError(t, err)

	cfg := opts.Apply(config.Config{LogFile: "./bi-dashboard.log"})

	assert.Empty(t, cfg.LogFile)
}

func TestOptions_ExportFormat(t *testing.T) {
	assert.Equal(t, export.FormatCSV, Options{}.exportFormat())
	assert.Equal(t, export.FormatXLSX, Options{Out: "report.xlsx"}.exportFormat())
	assert.Equal(t, export.FormatCSV, Options{Out: "report.xlsx", Format: "csv"}.exportFormat())
	assert.Equal(t, export.FormatXLSX, Options{Format: "excel"}.exportFormat())
}
