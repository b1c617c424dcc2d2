package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"bi_dashboard/internal/config"
	"bi_dashboard/internal/table"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// Client wraps the reporting REST API: it attaches the bearer token, tags
// every request with an id and turns non-2xx answers into *APIError.
// Retries are left to the caller (a manual refresh).
type Client struct {
	http   *resty.Client
	tokens TokenSource
	logger *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	return NewClientWithTokens(cfg, NewTokenSource(cfg), logger)
}

func NewClientWithTokens(cfg config.Config, tokens TokenSource, logger *zap.Logger) *Client {
	logger = logger.Named("api")

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetLogger(logger.Sugar()).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if r.Header.Get(requestIDHeader) == "" {
				r.SetHeader(requestIDHeader, uuid.NewString())
			}
			return nil
		}).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			logger.Debug("api response",
				zap.String("method", resp.Request.Method),
				zap.String("url", resp.Request.URL),
				zap.Int("status", resp.StatusCode()),
				zap.Duration("elapsed", resp.Time()),
				zap.String("request_id", resp.Request.Header.Get(requestIDHeader)),
			)
			return nil
		})

	return &Client{
		http:   httpClient,
		tokens: tokens,
		logger: logger,
	}
}

func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

func (c *Client) Get(ctx context.Context, path string, query map[string]string, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

// Raw fetches an endpoint without a typed schema. The body may be a bare
// array of objects or an object holding one.
func (c *Client) Raw(ctx context.Context, path string, query map[string]string) ([]table.Record, error) {
	var payload json.RawMessage
	if err := c.Get(ctx, path, query, &payload); err != nil {
		return nil, err
	}
	return decodeRecords(payload)
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, result any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return err
	}

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("api request %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return apiErrorFromResponse(resp)
	}
	if result == nil || len(bytes.TrimSpace(resp.Body())) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

var preferredListKeys = []string{"data", "items", "rows", "results", "records"}

func decodeRecords(payload json.RawMessage) ([]table.Record, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || string(payload) == "null" {
		return nil, nil
	}

	decode := func(raw json.RawMessage) ([]table.Record, error) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var records []table.Record
		if err := dec.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	if payload[0] == '[' {
		records, err := decode(payload)
		if err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return records, nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(payload, &object); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	keys := append([]string(nil), preferredListKeys...)
	rest := make([]string, 0, len(object))
	for key := range object {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	for _, key := range keys {
		raw, ok := object[key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		if records, err := decode(raw); err == nil {
			return records, nil
		}
	}
	return nil, fmt.Errorf("decode records: no list of objects in response")
}
