package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// HybridProductSource searches the live marketplace and falls back to the mock
// catalog when the live call fails or finds nothing.
type HybridProductSource struct {
	real             domain.MarketplaceClient
	mock             domain.MockCatalog
	useMockWhenError bool
	metrics          domain.MetricsRecorder
	logger           *zap.Logger
}

// NewHybridProductSource creates a product source. With useMockWhenError false a live
// failure is returned as ErrFetchFailed and an empty live page stays empty.
func NewHybridProductSource(
	real domain.MarketplaceClient,
	mock domain.MockCatalog,
	useMockWhenError bool,
	metrics domain.MetricsRecorder,
	log *zap.Logger,
) *HybridProductSource {
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HybridProductSource{
		real:             real,
		mock:             mock,
		useMockWhenError: useMockWhenError,
		metrics:          metrics,
		logger:           log,
	}
}

// Search returns one page of candidates with their source marker.
// Weights missing from the listing are parsed from the title and the price per 100g is filled in.
func (s *HybridProductSource) Search(ctx context.Context, keyword string, page, size int, categoryHint string) (*domain.SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || page < 1 || size < 1 {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()
	products, err := s.searchReal(ctx, keyword, page, size, categoryHint)
	took := time.Since(start).Milliseconds()

	if err != nil {
		s.logger.Warn("[SHOPPING_CLIENT] REAL_FAIL",
			logger.Trace(ctx),
			zap.String("keyword", keyword),
			zap.Int64("took_ms", took),
			zap.Bool("fallback", s.useMockWhenError),
			zap.Error(err),
		)
		if !s.useMockWhenError {
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}
		return s.searchMock(ctx, keyword, page, size), nil
	}

	if len(products) == 0 && s.useMockWhenError {
		s.logger.Info("[SHOPPING_CLIENT] REAL empty, using mock",
			logger.Trace(ctx),
			zap.String("keyword", keyword),
			zap.Int64("took_ms", took),
		)
		return s.searchMock(ctx, keyword, page, size), nil
	}

	s.logger.Info("[SHOPPING_CLIENT] REAL",
		logger.Trace(ctx),
		zap.String("keyword", keyword),
		zap.String("category", categoryHint),
		zap.Int("count", len(products)),
		zap.Int64("took_ms", took),
	)
	s.metrics.ObserveSource(domain.SourceReal)
	return &domain.SearchResult{Products: withParsedWeights(products), Source: domain.SourceReal}, nil
}

func (s *HybridProductSource) searchReal(ctx context.Context, keyword string, page, size int, categoryHint string) ([]domain.CandidateProduct, error) {
	if s.real == nil {
		return nil, domain.ErrMarketplaceNotConfigured
	}
	return s.real.SearchProducts(ctx, keyword, page, size, categoryHint)
}

func (s *HybridProductSource) searchMock(ctx context.Context, keyword string, page, size int) *domain.SearchResult {
	var products []domain.CandidateProduct
	if s.mock != nil {
		products = s.mock.Search(keyword, page, size)
	}

	s.logger.Info("[SHOPPING_CLIENT] MOCK",
		logger.Trace(ctx),
		zap.String("keyword", keyword),
		zap.Int("count", len(products)),
	)
	s.metrics.ObserveSource(domain.SourceMock)
	return &domain.SearchResult{Products: withParsedWeights(products), Source: domain.SourceMock}
}

func withParsedWeights(products []domain.CandidateProduct) []domain.CandidateProduct {
	if products == nil {
		return []domain.CandidateProduct{}
	}
	for i := range products {
		if products[i].GramPerUnit <= 0 {
			products[i].GramPerUnit = ParseGrams(products[i].Title)
		}
		products[i].PricePer100g = products[i].CostPer100g()
	}
	return products
}
