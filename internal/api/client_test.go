package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bi_dashboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.Config{APIBaseURL: srv.URL, Timeout: 5 * time.Second}
	return NewClientWithTokens(cfg, tokens, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestClientGet_AttachesBearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.Query().Get("startDate")
		writeJSON(w, http.StatusOK, `{"value":42}`)
	}, StaticToken("secret-token"))

	var out struct {
		Value int `json:"value"`
	}
	err := client.Get(context.Background(), "/api/support-tickets", map[string]string{"startDate": "2024-01-01"}, &out)

	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "2024-01-01", gotQuery)
}

func TestClientPost_SendsJSONBody(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{}`)
	}, StaticToken("t"))

	err := client.Post(context.Background(), "/api/billing", map[string]string{"startDate": "2024-01-01"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got["startDate"])
}

func TestClient_MissingTokenSkipsRequest(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, StaticToken("  "))

	err := client.Get(context.Background(), "/api/x", nil, nil)

	assert.ErrorIs(t, err, ErrMissingToken)
	assert.False(t, called)
}

func TestClient_ServerErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error":"Database unavailable"}`)
	}, StaticToken("t"))

	err := client.Get(context.Background(), "/api/x", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Database unavailable", apiErr.UserMessage())
}

func TestClient_ErrorWithoutServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}, StaticToken("t"))

	err := client.Get(context.Background(), "/api/x", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, apiErr.UserMessage())
	assert.Contains(t, apiErr.Error(), "bad gateway")
}

func TestClient_UnauthorizedAndNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/missing" {
			writeJSON(w, http.StatusNotFound, `{"message":"no such report"}`)
			return
		}
		writeJSON(w, http.StatusUnauthorized, `{"error":{"message":"token expired"}}`)
	}, StaticToken("t"))

	err := client.Get(context.Background(), "/api/x", nil, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "token expired", apiErr.Message)

	err = client.Get(context.Background(), "/api/missing", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileToken_ReadOnEveryRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o600))

	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{}`)
	}, FileToken{Path: path})

	require.NoError(t, client.Get(context.Background(), "/a", nil, nil))
	require.NoError(t, os.WriteFile(path, []byte("second"), 0o600))
	require.NoError(t, client.Get(context.Background(), "/a", nil, nil))

	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestFileToken_MissingFile(t *testing.T) {
	_, err := FileToken{Path: filepath.Join(t.TempDir(), "absent")}.Token()

	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewTokenSource_PrefersConfiguredToken(t *testing.T) {
	src := NewTokenSource(config.Config{APIToken: "abc", TokenFile: "/nope"})

	token, err := src.Token()

	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestClientRaw(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bare array", body: `[{"a":1},{"a":2}]`, want: 2},
		{name: "data envelope", body: `{"total":3,"data":[{"a":1}]}`, want: 1},
		{name: "named list", body: `{"summary":{"n":1},"tickets":[{"a":1},{"a":2},{"a":3}]}`, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			}, StaticToken("t"))

			records, err := client.Raw(context.Background(), "/api/raw", nil)

			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestClientRaw_NoList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"total":3}`)
	}, StaticToken("t"))

	_, err := client.Raw(context.Background(), "/api/raw", nil)

	assert.Error(t, err)
}
