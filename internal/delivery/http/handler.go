package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShoppingUsecase is what the handler needs from the shopping service
type ShoppingUsecase interface {
	Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.ResolveResult, error)
	ResolveBatch(ctx context.Context, reqs []domain.ResolveRequest) ([]*domain.ResolveResult, error)
	Search(ctx context.Context, keyword string, page, size int) (*domain.SearchResult, error)
	EstimateCostPer100g(ctx context.Context, ingredientName string) (int, bool, error)
}

// BudgetUsecase is what the handler needs from the budget service
type BudgetUsecase interface {
	Propose(ctx context.Context, req domain.BudgetProposalRequest) (*domain.BudgetProposal, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	shopping ShoppingUsecase
	budget   BudgetUsecase
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(shopping ShoppingUsecase, budget BudgetUsecase, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{shopping: shopping, budget: budget, logger: log}
}

// apiResponse is the envelope of every API response
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type resolveBatchRequest struct {
	Items []domain.ResolveRequest `json:"items" binding:"required,dive"`
}

type costPer100gResponse struct {
	Ingredient  string `json:"ingredient"`
	CostPer100g int    `json:"costPer100g"`
	Found       bool   `json:"found"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dietcoach-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles GET /shopping/search?keyword=&page=&size=
func (h *Handler) SearchProducts(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		h.badRequest(c, "page must be an integer")
		return
	}
	size, err := intQuery(c, "size", 20)
	if err != nil {
		h.badRequest(c, "size must be an integer")
		return
	}

	result, err := h.shopping.Search(c.Request.Context(), c.Query("keyword"), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, result)
}

// ResolveIngredient handles POST /shopping/resolve
func (h *Handler) ResolveIngredient(c *gin.Context) {
	var req domain.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.shopping.Resolve(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, result)
}

// ResolveBatch handles POST /shopping/resolve/batch
func (h *Handler) ResolveBatch(c *gin.Context) {
	var req resolveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	results, err := h.shopping.ResolveBatch(c.Request.Context(), req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, results)
}

// CostPer100g handles GET /shopping/cost-per-100g?ingredient=
func (h *Handler) CostPer100g(c *gin.Context) {
	ingredient := c.Query("ingredient")

	cost, found, err := h.shopping.EstimateCostPer100g(c.Request.Context(), ingredient)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, costPer100gResponse{Ingredient: ingredient, CostPer100g: cost, Found: found})
}

// ProposeBudget handles POST /budget/proposal
func (h *Handler) ProposeBudget(c *gin.Context) {
	var req domain.BudgetProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	proposal, err := h.budget.Propose(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, proposal)
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Message: "OK", Data: data})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: message})
}

// fail maps domain errors onto status codes
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("[HTTP] request failed",
			logger.Trace(c.Request.Context()),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, apiResponse{Success: false, Message: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
