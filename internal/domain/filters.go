package domain

import "strings"

// Search filter labels as the storefront presents them.
const (
	FilterAll       = "全部"
	DefaultCategory = "未分类"

	ConditionFilterNew        = "全新"
	ConditionFilterNineFiveUp = "95新及以上"

	PriceFilterUpTo500   = "0-500元"
	PriceFilter500To1000 = "500-1000元"
	PriceFilterAbove1000 = "1000元以上"
)

const (
	priceBandMiddleBoundary = 500
	priceBandUpperBoundary  = 1000
)

var filterAliases = map[string]string{
	"":             FilterAll,
	"ALL":          FilterAll,
	"NEW":          ConditionFilterNew,
	"95-AND-ABOVE": ConditionFilterNineFiveUp,
	"0-500":        PriceFilterUpTo500,
	"500-1000":     PriceFilter500To1000,
	"1000+":        PriceFilterAbove1000,
}

// NormalizeFilter maps accepted aliases onto the canonical labels. Labels it
// does not know are returned trimmed but otherwise untouched.
func NormalizeFilter(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := filterAliases[strings.ToUpper(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

func IsFilterAll(raw string) bool {
	return NormalizeFilter(raw) == FilterAll
}

// MatchesCondition applies a condition tier. Unknown tiers match everything.
func MatchesCondition(filter string, level ConditionLevel) bool {
	switch NormalizeFilter(filter) {
	case FilterAll:
		return true
	case ConditionFilterNew:
		return level == ConditionNew
	case ConditionFilterNineFiveUp:
		return level.Rank() <= ConditionNineFive.Rank()
	default:
		return true
	}
}

// MatchesPrice applies a price band: [0,500], (500,1000] and (1000,+inf).
// Unknown bands match everything.
func MatchesPrice(filter string, price float64) bool {
	switch NormalizeFilter(filter) {
	case FilterAll:
		return true
	case PriceFilterUpTo500:
		return price >= 0 && price <= priceBandMiddleBoundary
	case PriceFilter500To1000:
		return price > priceBandMiddleBoundary && price <= priceBandUpperBoundary
	case PriceFilterAbove1000:
		return price > priceBandUpperBoundary
	default:
		return true
	}
}
