package usecase

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"go.uber.org/zap"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Scoring weights
const (
	budgetFitWeight   = 50.0 // Reward for spending up to the allocated budget
	overBudgetWeight  = 80.0 // Penalty per budget-multiple over
	hugeOverRatio     = 2.0
	hugeOverPenalty   = 100.0
	packagingPenalty  = 100.0
	bulkPenalty       = 50.0
	bulkGramThreshold = 10000
	exactMatchBonus   = 30.0
	tooCheapPenalty   = 30.0
	tooCheapRatio     = 0.1
	tooCheapMinBudget = 2000 // Below this every listing looks cheap
	hardDropScore     = -9999.0
)

// packagingTokens mark gift boxes, bundles and wholesale listings rather than an ingredient
var packagingTokens = []string{
	"box", "set", "bundle", "gift", "random", "package",
	"박스", "상자", "세트", "선물", "묶음", "랜덤", "구성", "패키지", "업소용", "식자재",
}

// nonFoodTokens mark objects that are not food at all
var nonFoodTokens = []string{
	"case", "storage", "container", "toy", "tool", "machine", "decor",
	"용기", "보관", "케이스", "도구", "장난감", "모형", "인테리어", "씨앗", "묘목", "재배", "화분",
}

var bulkTokens = []string{"10kg", "20kg", "100개", "50개", "대량"}

// ProductScorer ranks marketplace candidates for an ingredient and budget
type ProductScorer struct {
	normalizer *QueryNormalizer
	logger     *zap.Logger
}

// NewProductScorer creates a new product scorer
func NewProductScorer(normalizer *QueryNormalizer, log *zap.Logger) *ProductScorer {
	if normalizer == nil {
		normalizer = NewQueryNormalizer()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductScorer{normalizer: normalizer, logger: log}
}

// Score computes the score and adjustment trail of one candidate. A non-positive
// budget skips every budget-relative factor.
func (s *ProductScorer) Score(p domain.CandidateProduct, ingredientName string, budget int) domain.ScoredCandidate {
	title := normalizeTitle(p.Title)
	category := strings.ToLower(p.CategoryName)

	if reason := hardDropReason(p, title, category); reason != "" {
		return domain.ScoredCandidate{
			Product:     p,
			Score:       hardDropScore,
			Adjustments: []domain.Adjustment{{Tag: "hard-drop:" + reason, Delta: hardDropScore}},
			Dropped:     true,
			DropReason:  reason,
		}
	}

	sc := domain.ScoredCandidate{Product: p}
	add := func(tag string, delta float64) {
		sc.Score += delta
		sc.Adjustments = append(sc.Adjustments, domain.Adjustment{Tag: tag, Delta: delta})
	}

	if budget > 0 {
		price := float64(p.Price)
		b := float64(budget)
		if p.Price <= budget {
			add("budget-fit", price/b*budgetFitWeight)
		} else {
			overRatio := (price - b) / b
			add("over-budget", -overRatio*overBudgetWeight)
			if overRatio > hugeOverRatio {
				add("huge-over-budget", -hugeOverPenalty)
			}
		}
	}

	if containsAny(title, packagingTokens) {
		add("packaging-token", -packagingPenalty)
	}
	if containsAny(title, bulkTokens) {
		add("bulk-token", -bulkPenalty)
	}

	grams := p.GramPerUnit
	if grams <= 0 {
		grams = ParseGrams(p.Title)
	}
	if grams >= bulkGramThreshold {
		add("bulk-weight", -bulkPenalty)
	}

	if name := strings.ToLower(s.normalizer.Normalize(ingredientName)); name != "" && strings.Contains(title, name) {
		add("exact-match", exactMatchBonus)
	}

	if budget > tooCheapMinBudget && float64(p.Price) < float64(budget)*tooCheapRatio {
		add("too-cheap", -tooCheapPenalty)
	}

	return sc
}

// Rank scores every candidate and returns the survivors best first.
// Equal scores keep their input order.
func (s *ProductScorer) Rank(candidates []domain.CandidateProduct, ingredientName string, budget int) []domain.ScoredCandidate {
	ranked := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		sc := s.Score(c, ingredientName, budget)
		if sc.Dropped {
			continue
		}
		ranked = append(ranked, sc)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// SelectBest returns the highest scoring survivor, or nil when every candidate was dropped
func (s *ProductScorer) SelectBest(ctx context.Context, candidates []domain.CandidateProduct, ingredientName string, budget int) *domain.ScoredCandidate {
	return s.Best(ctx, s.Rank(candidates, ingredientName, budget), ingredientName, budget)
}

// Best logs and returns the head of an already ranked list
func (s *ProductScorer) Best(ctx context.Context, ranked []domain.ScoredCandidate, ingredientName string, budget int) *domain.ScoredCandidate {
	if len(ranked) == 0 {
		s.logger.Info("[PRODUCT_SCORER] NO_SELECTION",
			logger.Trace(ctx),
			zap.String("ingredient", ingredientName),
			zap.Int("budget", budget),
		)
		return nil
	}

	best := ranked[0]
	s.logger.Info("[PRODUCT_SCORER] SELECTED",
		logger.Trace(ctx),
		zap.String("ingredient", ingredientName),
		zap.Int("budget", budget),
		zap.String("title", best.Product.Title),
		zap.Int("price", best.Product.Price),
		zap.Float64("score", best.Score),
		zap.Int("survivors", len(ranked)),
		zap.String("reasons", best.ReasonString()),
	)
	return &best
}

func hardDropReason(p domain.CandidateProduct, title, category string) string {
	switch {
	case title == "":
		return "blank-title"
	case p.Price <= 0:
		return "non-positive-price"
	case containsAny(title, petFoodTerms) || containsAny(category, petFoodTerms):
		return "pet-food"
	case containsAny(title, nonFoodTokens):
		return "non-food"
	}
	return ""
}

// normalizeTitle lowercases a title and collapses its whitespace
func normalizeTitle(title string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(strings.ToLower(title), " "))
}
