package domain

import (
	"fmt"
	"strings"
)

// Source marks where a set of candidates came from
type Source string

const (
	SourceReal Source = "REAL"
	SourceMock Source = "MOCK"
)

// CandidateProduct represents one marketplace listing under consideration
type CandidateProduct struct {
	ExternalID   string `json:"externalId"`
	Title        string `json:"title"`
	Price        int    `json:"price"`
	GramPerUnit  int    `json:"gramPerUnit"` // 0 means unknown
	PricePer100g int    `json:"pricePer100g,omitempty"`
	CategoryCode string `json:"categoryCode,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
	MallName     string `json:"mallName"`
	ProductURL   string `json:"productUrl"`
	ImageURL     string `json:"imageUrl"`
}

// CostPer100g returns the price of 100 grams, or 0 when the weight is unknown
func (p CandidateProduct) CostPer100g() int {
	if p.GramPerUnit <= 0 || p.Price <= 0 {
		return 0
	}
	return p.Price * 100 / p.GramPerUnit
}

// Adjustment is one tagged step of a candidate's score
type Adjustment struct {
	Tag   string  `json:"tag"`
	Delta float64 `json:"delta"`
}

// String renders the adjustment as "tag +12.3"
func (a Adjustment) String() string {
	return fmt.Sprintf("%s %+.1f", a.Tag, a.Delta)
}

// ScoredCandidate pairs a candidate with its score and the ordered trail of adjustments
type ScoredCandidate struct {
	Product     CandidateProduct `json:"product"`
	Score       float64          `json:"score"`
	Adjustments []Adjustment     `json:"adjustments"`
	Dropped     bool             `json:"dropped"`
	DropReason  string           `json:"dropReason,omitempty"`
}

// Reasons formats the adjustment trail for logs and responses
func (s ScoredCandidate) Reasons() []string {
	reasons := make([]string, 0, len(s.Adjustments))
	for _, a := range s.Adjustments {
		reasons = append(reasons, a.String())
	}
	return reasons
}

// ReasonString joins the trail into one line
func (s ScoredCandidate) ReasonString() string {
	return strings.Join(s.Reasons(), ", ")
}

// SearchResult is a page of candidates tagged with its source marker
type SearchResult struct {
	Products []CandidateProduct `json:"products"`
	Source   Source             `json:"source"`
}

// ProductCard is the trimmed product shape handed to meal-plan collaborators
type ProductCard struct {
	Name      string `json:"name"`
	Price     int    `json:"price"`
	ImageURL  string `json:"imageUrl"`
	DetailURL string `json:"detailUrl"`
}

// ResolveRequest asks for the single best product for an ingredient
type ResolveRequest struct {
	IngredientName  string `json:"ingredientName" binding:"required"`
	AllocatedBudget int    `json:"allocatedBudget"`
	TotalGram       int64  `json:"totalGram,omitempty"`
}

// ResolveResult is the outcome of one ingredient resolution. Product is nil when nothing survived filtering.
type ResolveResult struct {
	IngredientName string       `json:"ingredientName"`
	Query          string       `json:"query"`
	TargetCategory string       `json:"targetCategory,omitempty"`
	Product        *ProductCard `json:"product"`
	Source         Source       `json:"source"`
	PricePer100g   int          `json:"pricePer100g,omitempty"`
	Packs          int          `json:"packs,omitempty"`
	RerankedByAI   bool         `json:"rerankedByAi"`
	Reasons        []string     `json:"reasons,omitempty"`
}
