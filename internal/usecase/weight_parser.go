package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Longer units come first so "1lb" is never read as liters
var (
	multiplyWeightPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|lbs?|oz|ml|g|l)\s*[x*×]\s*(\d+)`)
	simpleWeightPattern   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|lbs?|oz|ml|g|l)\b`)
)

const (
	gramsPerPound = 453.592
	gramsPerOunce = 28.3495

	// Matches above this are typos or part numbers, not weights
	maxPlausibleGrams = math.MaxInt32
)

// ParseGrams extracts the package weight in grams from a product title.
// Every multiplicative ("500g x 3") and simple ("1kg") match is evaluated and the
// largest value wins, so a title stating both the unit weight and the package total
// resolves to the total. Returns 0 when no weight is found.
func ParseGrams(title string) int {
	if strings.TrimSpace(title) == "" {
		return 0
	}

	best := 0.0
	for _, m := range multiplyWeightPattern.FindAllStringSubmatch(title, -1) {
		count, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		if grams := toGrams(m[1], m[2]) * float64(count); plausible(grams) && grams > best {
			best = grams
		}
	}
	for _, m := range simpleWeightPattern.FindAllStringSubmatch(title, -1) {
		if grams := toGrams(m[1], m[2]); plausible(grams) && grams > best {
			best = grams
		}
	}

	return int(best)
}

func plausible(grams float64) bool {
	return !math.IsNaN(grams) && grams > 0 && grams <= maxPlausibleGrams
}

// toGrams converts a number and unit to grams. Unparseable numbers yield 0.
func toGrams(number, unit string) float64 {
	value, err := strconv.ParseFloat(normalizeDecimal(number), 64)
	if err != nil {
		return 0
	}

	switch strings.ToLower(unit) {
	case "kg", "l":
		return value * 1000
	case "lb", "lbs":
		return value * gramsPerPound
	case "oz":
		return value * gramsPerOunce
	default:
		return value
	}
}

// normalizeDecimal treats a comma followed by exactly three digits as a thousands
// separator ("1,000") and any other comma as a decimal point ("1,5").
func normalizeDecimal(number string) string {
	idx := strings.IndexByte(number, ',')
	if idx < 0 {
		return number
	}
	if len(number)-idx-1 == 3 {
		return number[:idx] + number[idx+1:]
	}
	return number[:idx] + "." + number[idx+1:]
}
