package domain

import "context"

// MarketplaceClient fetches live search results from a marketplace
type MarketplaceClient interface {
	SearchProducts(ctx context.Context, keyword string, page, size int, categoryHint string) ([]CandidateProduct, error)
}

// MockCatalog serves deterministic candidates when the marketplace is unusable
type MockCatalog interface {
	Search(keyword string, page, size int) []CandidateProduct
}

// ChatCompleter sends one system instruction plus one user prompt to a model and returns its raw text
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ProductSource returns candidates together with their source marker
type ProductSource interface {
	Search(ctx context.Context, keyword string, page, size int, categoryHint string) (*SearchResult, error)
}

// MetricsRecorder counts pipeline outcomes
type MetricsRecorder interface {
	ObserveSource(source Source)
	ObserveRerank(outcome string)
	ObserveProposal(status ProposalStatus, tier int)
}

// NopMetrics discards every observation
type NopMetrics struct{}

func (NopMetrics) ObserveSource(Source)                {}
func (NopMetrics) ObserveRerank(string)                {}
func (NopMetrics) ObserveProposal(ProposalStatus, int) {}
