package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Compiled regex patterns for query normalization
var (
	// Matches unit expressions like "500g", "1.5kg", "2ea", "3팩", "2인분".
	// stripUnitExpressions drops a match only when the unit ends the word.
	unitExpressionPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:kg|g|ml|lbs?|l|oz|ea|cm|mm|개|통|봉|팩|입|인분)`)

	// Anything that is not a letter, digit or whitespace
	specialCharPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// packagingQualifiers are dropped from queries: storage, origin and preparation qualifiers
var packagingQualifiers = map[string]bool{
	"냉동": true, "냉장": true, "국산": true, "국내산": true, "수입": true,
	"친환경": true, "유기농": true, "무농약": true,
	"세척": true, "손질": true, "슬라이스": true, "다진": true, "자른": true,
	"통": true, "껍질": true, "벗긴": true,
	"frozen": true, "chilled": true, "domestic": true, "imported": true,
	"organic": true, "sliced": true, "diced": true, "peeled": true,
}

// synonyms folds alternate names onto the canonical search keyword
var synonyms = map[string]string{
	"달걀": "계란", "쇠고기": "소고기", "닭가슴": "닭가슴살", "닭 가슴살": "닭가슴살",
	"방울 토마토": "방울토마토", "현미밥": "현미",
}

// QueryNormalizer turns ingredient names into marketplace search keywords
type QueryNormalizer struct{}

// NewQueryNormalizer creates a new query normalizer
func NewQueryNormalizer() *QueryNormalizer {
	return &QueryNormalizer{}
}

// Normalize strips unit expressions, punctuation and packaging qualifiers,
// then folds synonyms. When every token is a qualifier the trimmed input is returned.
func (n *QueryNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(norm.NFC.String(raw))
	if trimmed == "" {
		return ""
	}

	cleaned := stripUnitExpressions(trimmed)
	cleaned = specialCharPattern.ReplaceAllString(cleaned, " ")

	var kept []string
	for _, token := range strings.Fields(cleaned) {
		if packagingQualifiers[strings.ToLower(token)] {
			continue
		}
		kept = append(kept, token)
	}

	if len(kept) == 0 {
		return trimmed
	}

	joined := strings.Join(kept, " ")
	if canonical, ok := synonyms[joined]; ok {
		return canonical
	}
	return joined
}

// stripUnitExpressions replaces unit expressions with a space unless the unit runs on
// into a letter of the same script: "3개월" and "500gram" stay, "1kg대용량" is split.
func stripUnitExpressions(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range unitExpressionPattern.FindAllStringIndex(s, -1) {
		if continuesWord(s[:loc[1]], s[loc[1]:]) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteByte(' ')
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func continuesWord(match, rest string) bool {
	next, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || !unicode.IsLetter(next) {
		return false
	}
	unit, _ := utf8.DecodeLastRuneInString(match)
	return unicode.Is(unicode.Hangul, unit) == unicode.Is(unicode.Hangul, next)
}
