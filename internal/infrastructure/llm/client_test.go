package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{}, nil)

	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, "gpt-4o-mini", c.model)
	assert.Equal(t, 8*time.Second, c.http.GetClient().Timeout)
	assert.Equal(t, 0, c.http.RetryCount)
}

func TestNewClient_ConnectTimeout(t *testing.T) {
	tests := []struct {
		name    string
		connect time.Duration
		want    time.Duration
	}{
		{"default", 0, 3 * time.Second},
		{"configured", 750 * time.Millisecond, 750 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(Config{ConnectTimeout: tt.connect}, nil)

			transport, ok := c.http.GetClient().Transport.(*http.Transport)
			require.True(t, ok, "expected a dedicated *http.Transport")
			assert.NotNil(t, transport.DialContext)
			assert.Equal(t, tt.want, transport.TLSHandshakeTimeout)
		})
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.InDelta(t, 0.1, req.Temperature, 1e-9)
		if !assert.Len(t, req.Messages, 2) {
			return
		}
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be json", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "pick one", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"selectedId\":\"1\"}"}}]}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Model: "test-model", Temperature: 0.1}, zap.NewNop())
	out, err := c.Complete(context.Background(), "be json", "pick one")

	require.NoError(t, err)
	assert.Equal(t, `{"selectedId":"1"}`, out)
}

func TestComplete_NotConfigured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}, nil).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, domain.ErrAINotConfigured)
	assert.Equal(t, int32(0), calls.Load())
}

func TestComplete_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		delay   time.Duration
		timeout time.Duration
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`},
		{name: "timeout", status: http.StatusOK, body: `{}`, delay: 200 * time.Millisecond, timeout: 50 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				time.Sleep(tt.delay)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(Config{BaseURL: server.URL, APIKey: "k", Timeout: tt.timeout}, zap.NewNop())
			_, err := c.Complete(context.Background(), "s", "u")

			assert.ErrorIs(t, err, domain.ErrAIFailure)
			assert.Equal(t, int32(1), calls.Load(), "exactly one attempt")
		})
	}
}
