package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxPageSize = 100

// ShoppingServiceConfig holds configuration for the shopping service
type ShoppingServiceConfig struct {
	PageSize         int
	RerankEnabled    bool
	BatchConcurrency int
}

// ShoppingService resolves ingredients to purchasable products
type ShoppingService struct {
	normalizer *QueryNormalizer
	categories *CategoryService
	source     domain.ProductSource
	scorer     *ProductScorer
	reranker   *ProductReranker
	config     ShoppingServiceConfig
	logger     *zap.Logger
}

// NewShoppingService creates a new shopping service with dependencies. reranker may be nil.
func NewShoppingService(
	normalizer *QueryNormalizer,
	categories *CategoryService,
	source domain.ProductSource,
	scorer *ProductScorer,
	reranker *ProductReranker,
	config ShoppingServiceConfig,
	log *zap.Logger,
) *ShoppingService {
	if config.PageSize <= 0 {
		config.PageSize = 20
	}
	if config.BatchConcurrency <= 0 {
		config.BatchConcurrency = 4
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ShoppingService{
		normalizer: normalizer,
		categories: categories,
		source:     source,
		scorer:     scorer,
		reranker:   reranker,
		config:     config,
		logger:     log,
	}
}

// Resolve picks the single best product for an ingredient.
// Flow: normalize -> target category -> search -> filter -> score -> rerank -> result.
// A nil Product in the result means nothing survived filtering.
func (s *ShoppingService) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.ResolveResult, error) {
	name := strings.TrimSpace(req.IngredientName)
	if name == "" {
		return nil, fmt.Errorf("%w: ingredient name is blank", domain.ErrInvalidRequest)
	}
	if req.AllocatedBudget <= 0 {
		return nil, fmt.Errorf("%w: allocated budget must be positive", domain.ErrInvalidRequest)
	}
	if req.TotalGram < 0 {
		return nil, fmt.Errorf("%w: total gram must not be negative", domain.ErrInvalidRequest)
	}

	query := s.normalizer.Normalize(name)
	target := s.categories.TargetCategory(ctx, query)

	found, err := s.source.Search(ctx, query, 1, s.config.PageSize, target)
	if err != nil {
		return nil, err
	}

	result := &domain.ResolveResult{
		IngredientName: name,
		Query:          query,
		TargetCategory: target,
		Source:         found.Source,
	}

	ranked := s.scorer.Rank(s.filter(found.Products), name, req.AllocatedBudget)
	best := s.scorer.Best(ctx, ranked, name, req.AllocatedBudget)
	if best == nil {
		return result, nil
	}

	chosen := *best
	if s.config.RerankEnabled && s.reranker != nil && len(ranked) > 1 {
		if picked := s.reranker.Rerank(ctx, name, req.AllocatedBudget, ranked); picked != nil {
			for _, c := range ranked {
				if c.Product.ExternalID == picked.ExternalID {
					chosen = c
					break
				}
			}
			result.RerankedByAI = true
		}
	}

	p := chosen.Product
	result.Product = &domain.ProductCard{
		Name:      p.Title,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		DetailURL: p.ProductURL,
	}
	result.PricePer100g = p.CostPer100g()
	result.Reasons = chosen.Reasons()
	if req.TotalGram > 0 && p.GramPerUnit > 0 {
		result.Packs = int((req.TotalGram + int64(p.GramPerUnit) - 1) / int64(p.GramPerUnit))
	}

	s.logger.Info("[SHOPPING] resolved",
		logger.Trace(ctx),
		zap.String("ingredient", name),
		zap.String("query", query),
		zap.String("source", string(result.Source)),
		zap.String("title", p.Title),
		zap.Bool("reranked", result.RerankedByAI),
	)
	return result, nil
}

// ResolveBatch resolves every request with bounded concurrency and keeps input order.
// Any caller error fails the whole batch.
func (s *ShoppingService) ResolveBatch(ctx context.Context, reqs []domain.ResolveRequest) ([]*domain.ResolveResult, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no items", domain.ErrInvalidRequest)
	}

	results := make([]*domain.ResolveResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.BatchConcurrency)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Resolve(gctx, req)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Search returns one page of candidates for a keyword
func (s *ShoppingService) Search(ctx context.Context, keyword string, page, size int) (*domain.SearchResult, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("%w: keyword is blank", domain.ErrInvalidRequest)
	}
	if page < 1 || size < 1 || size > maxPageSize {
		return nil, fmt.Errorf("%w: page must be >= 1 and size within 1..%d", domain.ErrInvalidRequest, maxPageSize)
	}
	return s.source.Search(ctx, keyword, page, size, "")
}

// EstimateCostPer100g returns the median price per 100g among acceptable candidates
// with a known weight. found is false when no candidate qualifies.
func (s *ShoppingService) EstimateCostPer100g(ctx context.Context, ingredientName string) (cost int, found bool, err error) {
	name := strings.TrimSpace(ingredientName)
	if name == "" {
		return 0, false, fmt.Errorf("%w: ingredient name is blank", domain.ErrInvalidRequest)
	}

	query := s.normalizer.Normalize(name)
	result, err := s.source.Search(ctx, query, 1, s.config.PageSize, s.categories.TargetCategory(ctx, query))
	if err != nil {
		return 0, false, err
	}

	var costs []int
	for _, p := range s.filter(result.Products) {
		if c := p.CostPer100g(); c > 0 {
			costs = append(costs, c)
		}
	}
	if len(costs) == 0 {
		return 0, false, nil
	}

	return median(costs), true, nil
}

// filter keeps candidates whose category and title pass the category service
func (s *ShoppingService) filter(products []domain.CandidateProduct) []domain.CandidateProduct {
	kept := make([]domain.CandidateProduct, 0, len(products))
	for _, p := range products {
		if s.categories.Accepts(p.CategoryCode, p.CategoryName, p.Title) {
			kept = append(kept, p)
		}
	}
	return kept
}

func median(values []int) int {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
