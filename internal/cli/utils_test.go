package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bi_dashboard/internal/api"
	"bi_dashboard/internal/dashboard"
	"bi_dashboard/internal/export"
	"bi_dashboard/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendlyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("fetch churn: %w", api.ErrMissingToken), "No API token: set API_TOKEN, pass --token or write the token to --token-file."},
		{fmt.Errorf("%w: %w", api.ErrUnauthorized, &api.APIError{StatusCode: 401, Message: "expired"}), "Access denied: the API token is invalid or expired."},
		{fmt.Errorf("fetch churn: %w", &api.APIError{StatusCode: 500, Message: "Database unavailable"}), "Database unavailable"},
		{export.ErrNoRows, "Nothing to export: the current view has no rows."},
		{dashboard.ErrNoTab, "Open a report first: tab <report>."},
		{llm.ErrNotConfigured, "The assistant is not configured: set LLM_API_KEY and LLM_MODEL."},
		{fmt.Errorf("ask: %w", llm.ErrEmptyResponse), "The assistant returned no answer; try again."},
		{fmt.Errorf("get: %w", context.DeadlineExceeded), "The request timed out; try again or raise --timeout."},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, friendlyError(tc.err))
	}
}

func TestCommandError_KeepsCause(t *testing.T) {
	err := &commandError{err: fmt.Errorf("export: %w", export.ErrNoRows)}

	assert.ErrorIs(t, err, export.ErrNoRows)
	assert.Equal(t, "Nothing to export: the current view has no rows.", err.Error())
}

func TestParseRange(t *testing.T) {
	from, to, err := parseRange("2024-01-01 2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.Local), to)

	from, to, err = parseRange("- 2024-03-31")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.False(t, to.IsZero())

	from, to, err = parseRange("clear")
	require.NoError(t, err)
	assert.True(t, from.IsZero() && to.IsZero())

	_, _, err = parseRange("2024-01-01")
	assert.Error(t, err)
	_, _, err = parseRange("yesterday today")
	assert.Error(t, err)
}

func TestToolArgs(t *testing.T) {
	args := map[string]any{
		"report": " churn ",
		"limit":  float64(7),
		"desc":   true,
		"from":   "2024-02-01",
		"to":     "2024-02-29T15:04:05Z",
		"bad":    "Feb 30",
	}

	report, ok := getStringArg(args, "report")
	assert.True(t, ok)
	assert.Equal(t, "churn", report)
	assert.Equal(t, 7, getIntArg(args, "limit", defaultOutputLimit))
	assert.Equal(t, defaultOutputLimit, getIntArg(args, "missing", defaultOutputLimit))
	assert.True(t, getBoolArg(args, "desc"))
	assert.False(t, getBoolArg(args, "missing"))

	from, err := getDateArg(args, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local), from)

	to, err := getDateArg(args, "to")
	require.NoError(t, err)
	assert.Equal(t, 29, to.Day())

	none, err := getDateArg(args, "missing")
	require.NoError(t, err)
	assert.True(t, none.IsZero())

	_, err = getDateArg(args, "bad")
	assert.Error(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultOutputLimit, clampLimit(0))
	assert.Equal(t, 3, clampLimit(3))
	assert.Equal(t, maxOutputLimit, clampLimit(500))
}
