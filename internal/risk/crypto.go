// Package risk holds the per-domain safety heuristics applied to a
// live tick before an alert is allowed out.
package risk

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TargetRange is the price band a crypto market's title promises,
// e.g. "Between $90,000 and $95,000". A point target has Min == Max.
type TargetRange struct {
	Min float64
	Max float64
}

var numberPattern = regexp.MustCompile(`(\d+\.?\d*)`)

// ParsePriceTargets extracts the target range from a market's text.
// The sub-title wins when present; titles like "Will BTC hit $100,000?"
// only carry the target in one place. Returns false when no numeric
// target can be found, in which case the caller must abstain.
func ParsePriceTargets(title, subTitle string) (TargetRange, bool) {
	text := subTitle
	if text == "" {
		text = title
	}
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, "$", "")

	matches := numberPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return TargetRange{}, false
	}

	numbers := make([]float64, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return TargetRange{}, false
	}

	sort.Float64s(numbers)

	if len(numbers) == 1 {
		return TargetRange{Min: numbers[0], Max: numbers[0]}, true
	}

	max := numbers[len(numbers)-1]
	min := numbers[len(numbers)-2]
	return collapseUnitMismatch(min, max), true
}

// collapseUnitMismatch corrects ambiguous "$100k"-style phrasing: when
// the smaller candidate sits under 100 and the larger above 1000, the
// small number is almost certainly a stray (a "k" suffix, a percentage,
// a date) and both bounds collapse to the large one. Heuristic, and
// fragile on titles that genuinely span three orders of magnitude.
func collapseUnitMismatch(min, max float64) TargetRange {
	if min < 100 && max > 1000 {
		return TargetRange{Min: max, Max: max}
	}
	return TargetRange{Min: min, Max: max}
}

// CryptoVerdict reports the gap computation for logging alongside the
// pass/fail decision.
type CryptoVerdict struct {
	Safe       bool
	GapPercent float64
	Boundary   float64
	InRange    bool
}

// EvaluateCrypto judges whether the oracle price sits far enough
// outside the target range for the remaining time. A price inside the
// range is always unsafe: the market can still resolve either way.
func EvaluateCrypto(currentPrice float64, targets TargetRange, hoursLeft float64) CryptoVerdict {
	var gapPercent float64
	var boundary float64

	switch {
	case currentPrice > targets.Max:
		gapPercent = (currentPrice - targets.Max) / currentPrice * 100
		boundary = targets.Max
	case currentPrice < targets.Min:
		gapPercent = (targets.Min - currentPrice) / currentPrice * 100
		boundary = targets.Min
	default:
		return CryptoVerdict{Safe: false, GapPercent: 0, InRange: true}
	}

	var safe bool
	switch {
	case hoursLeft <= 1:
		safe = gapPercent > 1.0
	case hoursLeft <= 6:
		safe = gapPercent > 3.0
	case hoursLeft <= 12:
		safe = gapPercent > 5.0
	default:
		safe = gapPercent > 8.0
	}

	return CryptoVerdict{Safe: safe, GapPercent: gapPercent, Boundary: boundary}
}
