package receipt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BestAmountFromMatches selects the best amount using scoring priorities.
// A TOTAL context outranks a bigger bare number: receipts list line items
// larger than the total often enough (discounts, partial payments).
func BestAmountFromMatches(matches []string) (decimal.Decimal, string, bool) {
	type cand struct {
		amt   decimal.Decimal
		raw   string
		score int
	}
	scoreFor := func(raw string) int {
		s := 0
		low := strings.ToLower(raw)
		if strings.Contains(low, "rd$") || strings.Contains(low, "dop") {
			s += 10
		}
		if strings.Contains(low, "total") {
			s += 8
		}
		if strings.Contains(low, "itbis") {
			// tax line, almost never the amount we want
			s -= 6
		}
		if strings.Contains(raw, ".") || strings.Contains(raw, ",") {
			s += 5
		}
		if strings.HasSuffix(raw, ".00") || strings.HasSuffix(raw, ",00") {
			s += 3
		}
		if len(onlyDigits(raw)) >= 4 {
			s += 1
		}
		return s
	}
	var cands []cand
	for _, m := range matches {
		amt, err := ParseAmountFromMatch(m)
		if err != nil || amt.LessThanOrEqual(decimal.Zero) {
			continue
		}
		cands = append(cands, cand{amt: amt, raw: m, score: scoreFor(m)})
	}
	if len(cands) == 0 {
		return decimal.Zero, "", false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		replace := false
		if c.score > best.score {
			replace = true
		} else if c.score == best.score {
			if c.amt.GreaterThan(best.amt) {
				replace = true
			} else if c.amt.Equal(best.amt) && len(c.raw) > len(best.raw) {
				replace = true
			}
		}
		if replace {
			best = c
		}
	}
	return best.amt, best.raw, true
}
