package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	ErrMissingToken = errors.New("api token is required")
	ErrUnauthorized = errors.New("api unauthorized")
	ErrNotFound     = errors.New("api resource not found")
)

// APIError is a non-2xx answer from the reporting API. Message carries the
// server's own error text when the body had one.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Message)
	case e.Body != "":
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Body)
	default:
		return fmt.Sprintf("api error: %s", e.Status)
	}
}

// UserMessage is the text shown inline next to the failed view.
func (e *APIError) UserMessage() string {
	return e.Message
}

func apiErrorFromResponse(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Message:    serverMessage(resp.Body()),
		Body:       body,
	}
	if apiErr.Status == "" {
		apiErr.Status = fmt.Sprintf("%d %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
	default:
		return apiErr
	}
}

// serverMessage digs the error text out of bodies shaped like
// {"error":"..."}, {"message":"..."} or {"error":{"message":"..."}}.
func serverMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message", "detail"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
			return strings.TrimSpace(nested.Message)
		}
	}
	return ""
}
