package usecase

import (
	"context"
	"sync"

	"github.com/dietcoach/backend/internal/domain"
)

// MockChatCompleter is a mock implementation of domain.ChatCompleter
type MockChatCompleter struct {
	response   string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (m *MockChatCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// MockMarketplaceClient is a mock implementation of domain.MarketplaceClient
type MockMarketplaceClient struct {
	mu           sync.Mutex
	products     []domain.CandidateProduct
	byKeyword    map[string][]domain.CandidateProduct
	err          error
	calls        int
	lastKeyword  string
	lastPage     int
	lastSize     int
	lastCategory string
}

func (m *MockMarketplaceClient) SearchProducts(ctx context.Context, keyword string, page, size int, categoryHint string) ([]domain.CandidateProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastKeyword = keyword
	m.lastPage = page
	m.lastSize = size
	m.lastCategory = categoryHint
	if m.err != nil {
		return nil, m.err
	}
	if m.byKeyword != nil {
		return append([]domain.CandidateProduct(nil), m.byKeyword[keyword]...), nil
	}
	return append([]domain.CandidateProduct(nil), m.products...), nil
}

// MockCatalog is a mock implementation of domain.MockCatalog
type MockCatalog struct {
	products []domain.CandidateProduct
	calls    int
}

func (m *MockCatalog) Search(keyword string, page, size int) []domain.CandidateProduct {
	m.calls++
	return append([]domain.CandidateProduct(nil), m.products...)
}

// recordingMetrics remembers every observation
type recordingMetrics struct {
	mu        sync.Mutex
	sources   []domain.Source
	reranks   []string
	proposals []domain.ProposalStatus
	tiers     []int
}

func (m *recordingMetrics) ObserveSource(source domain.Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, source)
}

func (m *recordingMetrics) ObserveRerank(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reranks = append(m.reranks, outcome)
}

func (m *recordingMetrics) ObserveProposal(status domain.ProposalStatus, tier int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals = append(m.proposals, status)
	m.tiers = append(m.tiers, tier)
}
