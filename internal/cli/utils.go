package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bi_dashboard/internal/api"
	"bi_dashboard/internal/dashboard"
	"bi_dashboard/internal/export"
	"bi_dashboard/internal/llm"
	"bi_dashboard/internal/reports"
	"bi_dashboard/internal/table"

	"go.uber.org/zap"
)

const (
	defaultOutputLimit = 10
	maxOutputLimit     = 50
	dashboardRows      = 5
)

type response struct {
	Query      string
	AnswerText string
	Period     period
	ToolCalls  []toolCallRecord
	NextStep   string
}

type period struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type toolCallRecord struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
	MS   int64          `json:"ms"`
	OK   bool           `json:"ok"`
	Err  string         `json:"err,omitempty"`
}

func trackCall[T any](logger *zap.Logger, name string, args map[string]any, fn func() (T, error)) (T, toolCallRecord, error) {
	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)
	record := toolCallRecord{
		Name: name,
		Args: args,
		MS:   elapsed.Milliseconds(),
		OK:   err == nil,
	}
	if err != nil {
		record.Err = err.Error()
	}
	logToolRecord(logger, record)
	return result, record, err
}

// friendlyError is the one-line message shown to the user for err.
func friendlyError(err error) string {
	var apiErr *api.APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrMissingToken):
		return "No API token: set API_TOKEN, pass --token or write the token to --token-file."
	case errors.Is(err, api.ErrUnauthorized):
		return "Access denied: the API token is invalid or expired."
	case errors.Is(err, api.ErrNotFound):
		return "The API endpoint was not found; check --base-url."
	case errors.Is(err, reports.ErrRowNotFound):
		return "No row with that id in the current report."
	case errors.Is(err, export.ErrNoRows):
		return "Nothing to export: the current view has no rows."
	case errors.Is(err, dashboard.ErrNoTab):
		return "Open a report first: tab <report>."
	case errors.Is(err, dashboard.ErrNotLoaded):
		return "The report has not loaded yet; try refresh."
	case errors.Is(err, llm.ErrNotConfigured):
		return "The assistant is not configured: set LLM_API_KEY and LLM_MODEL."
	case errors.Is(err, llm.ErrEmptyResponse):
		return "The assistant returned no answer; try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out; try again or raise --timeout."
	case errors.As(err, &apiErr) && apiErr.UserMessage() != "":
		return apiErr.UserMessage()
	default:
		return err.Error()
	}
}

// commandError carries the friendly text of a failed command while keeping
// the cause for errors.Is.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return friendlyError(e.err) }
func (e *commandError) Unwrap() error { return e.err }

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func periodOf(p reports.Params) period {
	return period{From: formatDate(p.From), To: formatDate(p.To)}
}

func getStringArg(args map[string]any, key string) (string, bool) {
	value, ok := args[key]
	if !ok || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func getIntArg(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return int(parsed)
		}
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(v)
		return parsed
	}
	return false
}

// getDateArg reads an optional YYYY-MM-DD argument. Full timestamps are
// accepted too and cut to the day.
func getDateArg(args map[string]any, key string) (time.Time, error) {
	value, ok := getStringArg(args, key)
	if !ok || value == "" {
		return time.Time{}, nil
	}
	if parsed, err := parseDate(value); err == nil {
		return parsed, nil
	}
	if parsed, ok := table.ParseDate(value); ok {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("invalid %s: %q is not a YYYY-MM-DD date", key, value)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultOutputLimit
	case limit > maxOutputLimit:
		return maxOutputLimit
	default:
		return limit
	}
}

func toolErrorPayload(message string) string {
	payload := map[string]string{
		"error": message,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"error":"%s"}`, message)
	}
	return string(encoded)
}

func logToolRecord(logger *zap.Logger, record toolCallRecord) {
	if logger == nil {
		return
	}
	logger.Info("tool call",
		zap.String("name", record.Name),
		zap.Any("args", record.Args),
		zap.Int64("ms", record.MS),
		zap.Bool("ok", record.OK),
		zap.String("err", record.Err),
	)
}
