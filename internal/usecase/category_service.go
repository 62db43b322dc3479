package usecase

import (
	"context"
	"strings"

	"github.com/dietcoach/backend/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

type categoryRule struct {
	keyword string
	code    string
}

// categoryRules maps ingredient keywords to 11st display category codes.
// Order matters: the first keyword contained in the ingredient name wins.
var categoryRules = []categoryRule{
	{"계란", "1129543"},
	{"달걀", "1129543"},
	{"닭가슴살", "1009255"},
	{"돼지", "1001482"},
	{"소고기", "1001480"},
	{"쇠고기", "1001480"},
	{"김치", "1129438"},
	{"김", "1007765"},
	{"미역", "1007768"},
	{"다시마", "1007766"},
	{"연어", "1001471"},
	{"소금", "1002090"},
	{"간장", "1340679"},
	{"올리브유", "1341017"},
	{"만두", "1129450"},
	{"샐러드", "1129455"},
	{"요거트", "1001475"},
}

// allowedCategoryCodes lists food display categories. Only consulted in strict mode.
var allowedCategoryCodes = buildCodeSet(
	"1001335", "1001336", "1001338", "1001341",
	"1001470", "1001471", "1001472", "1001473",
	"1001480", "1001481", "1001482", "1001483", "1001484",
	"1001486", "1001487", "1001488",
	"1001475", "1001476", "1001477",
	"1002081", "1002085", "1002087", "1002088", "1002089", "1002090",
	"1002091", "1002092", "1002093", "1002094", "1002095",
	"1007765", "1007766", "1007768", "1009255",
	"1129367", "1129369", "1129384", "1129438", "1129444", "1129447",
	"1129450", "1129455", "1129460", "1129469", "1129471", "1129479", "1129543",
	"1340349", "1340350", "1340679", "1341017",
	"1348299", "1348303",
)

// bannedCategoryKeywords reject non-food display categories by name
var bannedCategoryKeywords = []string{
	"선물세트", "반려동물", "강아지", "고양이", "펫", "사료",
	"다이어트", "보조식품", "건강기능", "주류", "무알콜", "비알콜",
	"가구", "인테리어", "생활용품", "주방용품", "그릇", "냄비", "조리도구",
	"장난감", "문구", "도서", "음반", "DVD",
	"가전", "디지털", "컴퓨터", "휴대폰", "무드등", "램프", "조명",
	"틀", "몰드", "에그팬", "주방",
	"니트", "원피스", "셔츠", "바지", "팬츠", "의류", "티셔츠",
	"커피머신", "제조기", "믹서기", "계란틀", "요리틀", "모양틀", "에그몰드", "GF",
}

// petFoodTerms slip into human food categories, so titles are checked as well
var petFoodTerms = []string{
	"사료", "강아지", "고양이", "반려", "펫", "애견", "애묘",
	"pet food", "dog food", "cat food",
}

func buildCodeSet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// CategoryService targets ingredients at marketplace categories and filters out non-food listings.
// All of its tables are read-only after package initialization.
type CategoryService struct {
	strictCodes bool
	logger      *zap.Logger
}

// NewCategoryService creates a category service. With strictCodes a listing whose
// category code is set but unknown is rejected too.
func NewCategoryService(strictCodes bool, log *zap.Logger) *CategoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{strictCodes: strictCodes, logger: log}
}

// TargetCategory returns the preferred category code for an ingredient, or "" when none applies
func (s *CategoryService) TargetCategory(ctx context.Context, ingredientName string) string {
	name := norm.NFC.String(strings.TrimSpace(ingredientName))
	if name == "" {
		return ""
	}

	for _, rule := range categoryRules {
		if strings.Contains(name, rule.keyword) {
			s.logger.Debug("[CATEGORY_TARGET] matched",
				logger.Trace(ctx),
				zap.String("ingredient", name),
				zap.String("keyword", rule.keyword),
				zap.String("category", rule.code),
			)
			return rule.code
		}
	}
	return ""
}

// IsValidCategory rejects listings whose category name carries a banned keyword.
// A missing code is accepted.
func (s *CategoryService) IsValidCategory(code, name string) bool {
	if containsAny(name, bannedCategoryKeywords) {
		return false
	}
	if s.strictCodes && strings.TrimSpace(code) != "" {
		_, ok := allowedCategoryCodes[strings.TrimSpace(code)]
		return ok
	}
	return true
}

// IsValidTitle rejects blank titles and titles naming pet food
func (s *CategoryService) IsValidTitle(title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	return !containsAny(strings.ToLower(title), petFoodTerms)
}

// Accepts applies both the category and the title check to a listing
func (s *CategoryService) Accepts(code, name, title string) bool {
	return s.IsValidCategory(code, name) && s.IsValidTitle(title)
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	s = norm.NFC.String(s)
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
