package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var centsRE = regexp.MustCompile(`[.,]\d{2}$`)

// ParseAmountFromMatch normalizes a matched substring into a decimal amount.
// Dominican receipts usually print US-style grouping (RD$1,500.00) but OCR
// frequently mangles separators, so a trailing two-digit group after either
// separator is treated as cents and everything else as grouping noise.
func ParseAmountFromMatch(found string) (decimal.Decimal, error) {
	foundTrim := strings.TrimSpace(found)
	if foundTrim == "" {
		return decimal.Zero, fmt.Errorf("empty")
	}

	cents := int64(0)
	intPart := foundTrim
	if centsRE.MatchString(foundTrim) {
		sep := strings.LastIndexAny(foundTrim, ".,")
		intPart = foundTrim[:sep]
		c, err := strconv.ParseInt(foundTrim[sep+1:], 10, 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse cents of %q: %w", found, err)
		}
		cents = c
	}

	digits := onlyDigits(intPart)
	if digits == "" {
		return decimal.Zero, fmt.Errorf("no digits extracted from %q", found)
	}
	whole, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", digits, err)
	}
	if whole < 0 {
		whole = -whole
	}
	return decimal.New(whole*100+cents, -2), nil
}
