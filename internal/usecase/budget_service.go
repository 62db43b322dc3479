package usecase

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Monthly volume assumptions
const (
	planDays              = 30
	defaultDailyCalories  = 2000
	proteinCaloriePercent = 30
	proteinKcalPerGramX10 = 12 // 1.2 kcal per gram of raw protein source
	carbCaloriePercent    = 40
	carbKcalPerGramX10    = 30 // 3.0 kcal per gram of raw carbohydrate source
	vegetableGramsMonthly = 3000
	fruitGramsMonthly     = 2000
	maxTier               = 3
)

const skuSearchURL = "https://search.11st.co.kr/Search.tmall?kwd="

// tierSKU fills share (num/den) of a role's monthly volume with one SKU
type tierSKU struct {
	role      domain.Role
	name      string
	sku       string
	price     int
	unitGrams int
	num       int
	den       int
}

// budgetTiers lists SKU substitutions from tier 0 (premium) to tier 3 (cheapest).
// Within a tier the shares of each role add up to 1.
var budgetTiers = [maxTier + 1][]tierSKU{
	{
		{domain.RoleProtein, "소고기", "호주산 척아이롤 1kg", 25000, 1000, 1, 2},
		{domain.RoleProtein, "연어", "생연어 횟감 500g", 22000, 500, 1, 2},
		{domain.RoleCarb, "고구마", "꿀고구마 3kg", 18000, 3000, 1, 3},
		{domain.RoleCarb, "잡곡", "혼합 15곡 4kg", 18000, 4000, 2, 3},
		{domain.RoleVegetable, "샐러드", "손질 샐러드 1kg", 12000, 1000, 1, 1},
		{domain.RoleFruit, "사과", "부사 사과 3kg", 25000, 3000, 1, 1},
	},
	{
		{domain.RoleProtein, "닭가슴살", "냉동 닭가슴살 1kg", 11000, 1000, 4, 5},
		{domain.RoleProtein, "돼지고기", "한돈 뒷다리살 1kg", 8900, 1000, 1, 5},
		{domain.RoleCarb, "현미", "국산 현미 10kg", 29000, 10000, 1, 1},
		{domain.RoleVegetable, "냉동야채", "냉동 혼합야채 2kg", 11000, 2000, 1, 1},
		{domain.RoleFruit, "바나나", "바나나 1송이", 4500, 1200, 1, 1},
	},
	{
		{domain.RoleProtein, "닭가슴살", "냉동 닭가슴살 1kg 팩", 9900, 1000, 4, 5},
		{domain.RoleProtein, "계란", "무항생제 대란 30구", 7500, 1800, 1, 5},
		{domain.RoleCarb, "현미", "국산 현미 10kg", 29000, 10000, 1, 1},
		{domain.RoleVegetable, "양배추", "통 양배추 1망 (3입)", 8000, 6000, 1, 1},
		{domain.RoleFruit, "냉동베리", "냉동 블루베리 1kg", 9900, 1000, 1, 1},
	},
	{
		{domain.RoleProtein, "닭가슴살", "브라질산 닭가슴살 2kg", 14000, 2000, 1, 2},
		{domain.RoleProtein, "계란", "대란 30구 특가", 6500, 1800, 3, 10},
		{domain.RoleProtein, "두부", "시장 두부 1kg", 3000, 1000, 1, 5},
		{domain.RoleCarb, "쌀", "정부미/특가 쌀 10kg", 24000, 10000, 1, 1},
		{domain.RoleVegetable, "양배추", "통 양배추 1망 (3입)", 8000, 6000, 1, 1},
		{domain.RoleFruit, "바나나", "바나나 1송이", 4500, 1200, 1, 1},
	},
}

// BudgetService builds a monthly basket and degrades its quality tier until it fits the budget
type BudgetService struct {
	metrics domain.MetricsRecorder
	logger  *zap.Logger
}

// NewBudgetService creates a new budget service
func NewBudgetService(metrics domain.MetricsRecorder, log *zap.Logger) *BudgetService {
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BudgetService{metrics: metrics, logger: log}
}

// Propose walks tiers 0..3 and returns the first basket whose cost fits the budget.
// When even tier 3 is too expensive its basket is returned with an over-budget warning.
func (s *BudgetService) Propose(ctx context.Context, req domain.BudgetProposalRequest) (*domain.BudgetProposal, error) {
	if req.MonthlyBudget <= 0 {
		return nil, fmt.Errorf("%w: monthly budget must be positive", domain.ErrInvalidRequest)
	}
	calories := req.TargetCalories
	if calories <= 0 {
		calories = defaultDailyCalories
	}

	volumes := requiredVolumes(calories)
	var (
		basket []domain.BasketLine
		cost   int
		tier   int
	)
	for tier = 0; tier <= maxTier; tier++ {
		basket = buildBasket(tier, volumes)
		cost = basketCost(basket)

		s.logger.Debug("[BUDGET] tier priced",
			logger.Trace(ctx),
			zap.Int("tier", tier),
			zap.Int("cost", cost),
			zap.Int("budget", req.MonthlyBudget),
		)
		if cost <= req.MonthlyBudget {
			break
		}
	}

	proposal := &domain.BudgetProposal{
		Budget:      req.MonthlyBudget,
		FinalCost:   cost,
		Tier:        tier,
		Status:      domain.StatusLocked,
		Ingredients: basket,
	}
	if tier > maxTier {
		proposal.Tier = maxTier
		proposal.Status = domain.StatusWarningOverBudget
		proposal.WarningMessage = fmt.Sprintf(
			"입력하신 예산(%d원)으로는 필요한 영양소(%dkcal 기준)를 모두 채우기 어렵습니다. "+
				"%d원이 부족하며, 최소한의 구성으로 맞춘 금액은 %d원입니다.",
			req.MonthlyBudget, calories, cost-req.MonthlyBudget, cost,
		)
	}

	s.metrics.ObserveProposal(proposal.Status, proposal.Tier)
	s.logger.Info("[BUDGET] proposal",
		logger.Trace(ctx),
		zap.Int("budget", proposal.Budget),
		zap.Int("calories", calories),
		zap.Int("tier", proposal.Tier),
		zap.Int("final_cost", proposal.FinalCost),
		zap.String("status", string(proposal.Status)),
	)
	return proposal, nil
}

// requiredVolumes returns the monthly grams each role must cover
func requiredVolumes(dailyCalories int) map[domain.Role]int {
	return map[domain.Role]int{
		domain.RoleProtein:   ceilDiv(dailyCalories*planDays*proteinCaloriePercent*10, 100*proteinKcalPerGramX10),
		domain.RoleCarb:      ceilDiv(dailyCalories*planDays*carbCaloriePercent*10, 100*carbKcalPerGramX10),
		domain.RoleVegetable: vegetableGramsMonthly,
		domain.RoleFruit:     fruitGramsMonthly,
	}
}

// buildBasket prices the tier's SKUs against the required volumes. Lines that would
// need zero units are left out.
func buildBasket(tier int, volumes map[domain.Role]int) []domain.BasketLine {
	skus := budgetTiers[tier]
	basket := make([]domain.BasketLine, 0, len(skus))
	for _, sku := range skus {
		quantity := ceilDiv(volumes[sku.role]*sku.num, sku.den*sku.unitGrams)
		if quantity <= 0 {
			continue
		}
		basket = append(basket, domain.BasketLine{
			Name:     sku.name,
			SkuName:  sku.sku,
			Price:    sku.price,
			Quantity: quantity,
			Link:     skuSearchURL + url.QueryEscape(sku.sku),
		})
	}
	return basket
}

func basketCost(basket []domain.BasketLine) int {
	total := 0
	for _, line := range basket {
		total += line.Cost()
	}
	return total
}

func ceilDiv(a, b int) int {
	if b <= 0 || a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
