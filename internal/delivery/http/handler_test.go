package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShopping struct {
	err        error
	lastPage   int
	lastSize   int
	lastSearch string
	lastReq    domain.ResolveRequest
}

func (f *fakeShopping) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.ResolveResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ResolveResult{IngredientName: req.IngredientName, Source: domain.SourceReal}, nil
}

func (f *fakeShopping) ResolveBatch(ctx context.Context, reqs []domain.ResolveRequest) ([]*domain.ResolveResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.ResolveResult, len(reqs))
	for i, r := range reqs {
		out[i] = &domain.ResolveResult{IngredientName: r.IngredientName}
	}
	return out, nil
}

func (f *fakeShopping) Search(ctx context.Context, keyword string, page, size int) (*domain.SearchResult, error) {
	f.lastSearch, f.lastPage, f.lastSize = keyword, page, size
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SearchResult{Source: domain.SourceReal}, nil
}

func (f *fakeShopping) EstimateCostPer100g(ctx context.Context, ingredientName string) (int, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	return 990, true, nil
}

type fakeBudget struct {
	err error
}

func (f *fakeBudget) Propose(ctx context.Context, req domain.BudgetProposalRequest) (*domain.BudgetProposal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.BudgetProposal{Budget: req.MonthlyBudget, Status: domain.StatusLocked}, nil
}

func newFakeRouter(shopping *fakeShopping, budget *fakeBudget) *gin.Engine {
	h := NewHandler(shopping, budget, nil)
	router := gin.New()
	router.GET("/search", h.SearchProducts)
	router.POST("/resolve", h.ResolveIngredient)
	router.POST("/batch", h.ResolveBatch)
	router.GET("/cost", h.CostPer100g)
	router.POST("/budget", h.ProposeBudget)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var body apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", domain.ErrInvalidRequest, http.StatusBadRequest},
		{"wrapped invalid request", fmt.Errorf("item 2: %w", domain.ErrInvalidRequest), http.StatusBadRequest},
		{"fetch failed", fmt.Errorf("%w: timeout", domain.ErrFetchFailed), http.StatusBadGateway},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestHandler_SearchProducts_Paging(t *testing.T) {
	t.Run("defaults page and size", func(t *testing.T) {
		shopping := &fakeShopping{}
		w := doRequest(newFakeRouter(shopping, &fakeBudget{}), http.MethodGet, "/search?keyword=두부", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "두부", shopping.lastSearch)
		assert.Equal(t, 1, shopping.lastPage)
		assert.Equal(t, 20, shopping.lastSize)
	})

	t.Run("passes explicit paging", func(t *testing.T) {
		shopping := &fakeShopping{}
		doRequest(newFakeRouter(shopping, &fakeBudget{}), http.MethodGet, "/search?keyword=두부&page=3&size=5", "")

		assert.Equal(t, 3, shopping.lastPage)
		assert.Equal(t, 5, shopping.lastSize)
	})

	t.Run("rejects non numeric paging", func(t *testing.T) {
		w := doRequest(newFakeRouter(&fakeShopping{}, &fakeBudget{}), http.MethodGet, "/search?keyword=두부&page=abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, decodeEnvelope(t, w).Success)
	})
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		method      string
		path        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{"search fetch failed", domain.ErrFetchFailed, http.MethodGet, "/search?keyword=x", "", http.StatusBadGateway, domain.ErrFetchFailed.Error()},
		{"resolve invalid", domain.ErrInvalidRequest, http.MethodPost, "/resolve", `{"ingredientName":"x"}`, http.StatusBadRequest, domain.ErrInvalidRequest.Error()},
		{"batch internal", errors.New("db exploded"), http.MethodPost, "/batch", `{"items":[{"ingredientName":"x"}]}`, http.StatusInternalServerError, "internal server error"},
		{"cost fetch failed", domain.ErrFetchFailed, http.MethodGet, "/cost?ingredient=x", "", http.StatusBadGateway, domain.ErrFetchFailed.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newFakeRouter(&fakeShopping{err: tt.err}, &fakeBudget{}), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeEnvelope(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestHandler_BindingErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"resolve missing ingredientName", "/resolve", `{"allocatedBudget":1000}`},
		{"resolve invalid json", "/resolve", `{invalid json}`},
		{"batch without items", "/batch", `{}`},
		{"batch item missing ingredientName", "/batch", `{"items":[{"allocatedBudget":1000}]}`},
		{"budget invalid json", "/budget", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shopping := &fakeShopping{}
			w := doRequest(newFakeRouter(shopping, &fakeBudget{}), http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, decodeEnvelope(t, w).Success)
			assert.Empty(t, shopping.lastReq.IngredientName, "service must not be called")
		})
	}
}

func TestHandler_CostPer100g(t *testing.T) {
	w := doRequest(newFakeRouter(&fakeShopping{}, &fakeBudget{}), http.MethodGet, "/cost?ingredient=연어", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                `json:"success"`
		Data    costPer100gResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, costPer100gResponse{Ingredient: "연어", CostPer100g: 990, Found: true}, body.Data)
}

func TestHandler_ProposeBudget_ServiceError(t *testing.T) {
	w := doRequest(newFakeRouter(&fakeShopping{}, &fakeBudget{err: domain.ErrInvalidRequest}), http.MethodPost, "/budget", `{"monthlyBudget":0}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
