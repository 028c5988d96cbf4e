package prompt

const (
	wordsPerPage  = 380
	minWordBudget = 320
)

// Layout is the page geometry that drives the word estimate.
type Layout struct {
	LineSpacing float64
	FontSizePt  int
}

// DefaultLayout is single-ish spacing at 12pt.
var DefaultLayout = Layout{LineSpacing: 1.15, FontSizePt: 12}

// LayoutForPages picks the spacing used for generation: documents of six
// pages or more are assumed to be set at 1.5 spacing.
func LayoutForPages(pageTarget int) Layout {
	if pageTarget >= 6 {
		return Layout{LineSpacing: 1.5, FontSizePt: 12}
	}
	return DefaultLayout
}

// EstimateWords converts a page target into a word budget.
func EstimateWords(pageTarget int, lineSpacing float64, fontSizePt int) int {
	factor := 1.0
	if lineSpacing >= 1.5 {
		factor *= 1.18
	}
	if fontSizePt >= 14 {
		factor *= 1.12
	}
	words := int(float64(wordsPerPage) * factor * float64(pageTarget))
	return max(minWordBudget, words)
}

// Distribution is the advisory split of the word budget.
type Distribution struct {
	Intro      int `json:"intro"`
	Main       int `json:"main"`
	Conclusion int `json:"conclusion"`
}

// Distribute splits a budget 15/70/15, truncating each share.
func Distribute(budget int) Distribution {
	return Distribution{
		Intro:      int(float64(budget) * 0.15),
		Main:       int(float64(budget) * 0.70),
		Conclusion: int(float64(budget) * 0.15),
	}
}
