package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/dietcoach/backend/internal/pkg/jsonutil"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"go.uber.org/zap"
)

const rerankSystemPrompt = "You are a backend JSON generator. Output ONLY valid JSON. " +
	"Do not wrap the answer in markdown and do not add commentary."

// Rerank outcomes reported to metrics
const (
	RerankPicked        = "picked"
	RerankNotConfigured = "not_configured"
	RerankError         = "error"
	RerankUnparsable    = "unparsable"
	RerankUnknownID     = "unknown_id"
)

type rerankDecision struct {
	SelectedID string `json:"selectedId"`
	Reason     string `json:"reason"`
}

// ProductReranker asks a chat model to pick one product among the scorer's top candidates.
// Every failure is answered with nil so the scorer's pick stands. It never retries.
type ProductReranker struct {
	ai      domain.ChatCompleter
	topK    int
	metrics domain.MetricsRecorder
	logger  *zap.Logger
}

// NewProductReranker creates a reranker that shows the model at most topK candidates
func NewProductReranker(ai domain.ChatCompleter, topK int, metrics domain.MetricsRecorder, log *zap.Logger) *ProductReranker {
	if topK <= 0 {
		topK = 5
	}
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductReranker{ai: ai, topK: topK, metrics: metrics, logger: log}
}

// Rerank returns the model's choice among candidates, or nil when it has no usable opinion
func (r *ProductReranker) Rerank(ctx context.Context, ingredientName string, budget int, candidates []domain.ScoredCandidate) *domain.CandidateProduct {
	if r.ai == nil || len(candidates) == 0 {
		return nil
	}
	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}

	raw, err := r.ai.Complete(ctx, rerankSystemPrompt, buildRerankPrompt(ingredientName, budget, candidates))
	if err != nil {
		outcome := RerankError
		if errors.Is(err, domain.ErrAINotConfigured) {
			outcome = RerankNotConfigured
		}
		r.miss(ctx, outcome, zap.Error(err))
		return nil
	}

	var decision rerankDecision
	if err := jsonutil.Decode(raw, &decision); err != nil {
		r.miss(ctx, RerankUnparsable, zap.Error(err), zap.Int("response_len", len(raw)))
		return nil
	}

	id := strings.TrimSpace(decision.SelectedID)
	for _, c := range candidates {
		if c.Product.ExternalID == id {
			r.metrics.ObserveRerank(RerankPicked)
			r.logger.Info("[AI_RERANKER] picked",
				logger.Trace(ctx),
				zap.String("ingredient", ingredientName),
				zap.String("id", id),
				zap.String("title", c.Product.Title),
				zap.String("reason", decision.Reason),
			)
			picked := c.Product
			return &picked
		}
	}

	r.miss(ctx, RerankUnknownID, zap.String("id", id))
	return nil
}

func (r *ProductReranker) miss(ctx context.Context, outcome string, fields ...zap.Field) {
	r.metrics.ObserveRerank(outcome)
	fields = append([]zap.Field{logger.Trace(ctx), zap.String("outcome", outcome)}, fields...)
	r.logger.Warn("[AI_RERANKER] no pick, keeping scorer choice", fields...)
}

func buildRerankPrompt(ingredientName string, budget int, candidates []domain.ScoredCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ingredient: %s\n", ingredientName)
	fmt.Fprintf(&b, "Budget: %d KRW\n", budget)
	b.WriteString("Candidates:\n")
	for _, c := range candidates {
		category := c.Product.CategoryName
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(&b, "- [ID:%s] %s | %d KRW | %s\n", c.Product.ExternalID, c.Product.Title, c.Product.Price, category)
	}
	b.WriteString("\nSelect ONE best product ID for human food. ")
	b.WriteString(`Return ONLY JSON format: {"selectedId": "...", "reason": "..."}`)
	return b.String()
}
