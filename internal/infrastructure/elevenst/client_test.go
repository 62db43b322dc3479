package elevenst

import (
	"context"
	"errors"
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

func newTestClient(url, key string) *Client {
	return NewClient(Config{
		BaseURL:        url,
		APIKey:         key,
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
	}, zap.NewNop())
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{APIKey: "k"}, nil)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, "k", client.apiKey)
	assert.NotNil(t, client.http)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, 5*time.Second, client.http.GetClient().Timeout)
	assert.Equal(t, 0, client.http.RetryCount)
}

func TestSearchProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "ProductSearch", q.Get("apiCode"))
		assert.Equal(t, "닭가슴살", q.Get("keyword"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.Equal(t, "2", q.Get("pageNum"))
		assert.Equal(t, "1009255", q.Get("dispCtgrNo"))

		w.Header().Set("Content-Type", "text/xml; charset=UTF-8")
		w.Write([]byte(sampleDocument))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	products, err := client.SearchProducts(context.Background(), "닭가슴살", 2, 20, "1009255")

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "1001", products[0].ExternalID)
	assert.Equal(t, 12900, products[0].Price)
}

func TestSearchProducts_NoCategoryHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["dispCtgrNo"]
		assert.False(t, present)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	products, err := newTestClient(server.URL, "test-key").SearchProducts(context.Background(), "현미", 1, 10, "")
	require.NoError(t, err)
	assert.Empty(t, products, "empty body")
}

func TestSearchProducts_Errors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		var called atomic.Bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called.Store(true)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, " ").SearchProducts(context.Background(), "현미", 1, 10, "")
		assert.ErrorIs(t, err, domain.ErrMarketplaceNotConfigured)
		assert.False(t, called.Load())
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, "k").SearchProducts(context.Background(), "현미", 1, 10, "")
		assert.ErrorIs(t, err, domain.ErrMarketplaceFailure)
	})

	t.Run("malformed document", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<Products><Product>"))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, "k").SearchProducts(context.Background(), "현미", 1, 10, "")
		assert.ErrorIs(t, err, domain.ErrMarketplaceFailure)
	})

	t.Run("read timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.Write([]byte(sampleDocument))
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL, APIKey: "k", ReadTimeout: 50 * time.Millisecond}, zap.NewNop())
		_, err := client.SearchProducts(context.Background(), "현미", 1, 10, "")
		assert.ErrorIs(t, err, domain.ErrMarketplaceFailure)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(sampleDocument))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestClient(server.URL, "k").SearchProducts(ctx, "현미", 1, 10, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMarketplaceFailure))
	})
}

func TestSearchProducts_RateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k", RequestsPerSecond: 0.001, Burst: 1}, zap.NewNop())

	_, err := client.SearchProducts(context.Background(), "현미", 1, 10, "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.SearchProducts(ctx, "현미", 1, 10, "")
	assert.ErrorIs(t, err, domain.ErrMarketplaceFailure)
	assert.Equal(t, int32(1), calls.Load())
}
