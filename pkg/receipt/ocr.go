// Package receipt extracts a candidate expense amount from a photographed
// receipt. The result is only ever a suggestion to pre-fill a draft; drafts
// still go through the ledger validator like any hand-typed one.
package receipt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var amountPatterns = []string{
	// labeled totals take priority: "TOTAL A PAGAR: RD$1,500.00"
	`(?i)(?:total(?:\s+a\s+pagar)?|monto|importe)[:\s]*(?:RD\$|DOP)?[\s]*([0-9\.,]+)`,
	`(?i)RD\$[\s]*([0-9\.,]+)`,
	`(?i)DOP[\s]*([0-9\.,]+)`,
	`([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{2})?)`,
	`([0-9]{4,7}\.[0-9]{2})`,
}

// ExtractAmountFromImage performs light preprocessing + Tesseract OCR and
// attempts to extract the receipt total. Returns the amount, a confidence
// proxy in [0,1], and the raw matched substring. ErrNoAmount when nothing
// plausible was found.
func ExtractAmountFromImage(path string) (decimal.Decimal, float64, string, error) {
	tmp, cleanup := prepareImage(path)
	defer cleanup()

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("spa", "eng")
	_ = client.SetWhitelist("0123456789RD$OPdopTtoalAires.,:()/- ")
	_ = client.SetImage(tmp)
	text, err := client.Text()
	if err != nil {
		return decimal.Zero, 0, "", fmt.Errorf("ocr error: %w", err)
	}
	text = normalizeOCRText(text)
	log.Debug().Str("path", path).Str("snippet", snippet(text, 180)).Msg("receipt OCR raw text")

	matches := findMatches(text)
	if len(matches) == 0 {
		return decimal.Zero, 0, "", ErrNoAmount
	}
	amt, raw, ok := BestAmountFromMatches(matches)
	if !ok {
		return decimal.Zero, 0, "", ErrNoAmount
	}

	// Confidence proxy based on match length vs OCR text size, boosted when
	// an explicit currency marker or cents suffix is present.
	conf := float64(len(raw)) / float64(len(text)+1)
	if conf > 1 {
		conf = 1
	}
	lowRaw := strings.ToLower(raw)
	if strings.Contains(lowRaw, "rd$") || strings.Contains(lowRaw, "dop") ||
		strings.HasSuffix(lowRaw, ".00") || centsRE.MatchString(lowRaw) {
		if conf < 0.85 {
			conf = 0.85
		}
	}
	return amt, conf, raw, nil
}

// findMatches collects candidate amount substrings from normalized OCR text,
// keeping the currency marker attached so scoring can prioritize it.
func findMatches(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, p := range amountPatterns {
		re := regexp.MustCompile(p)
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			s := strings.TrimSpace(m[1])
			if s == "" {
				continue
			}
			full := strings.ToLower(m[0])
			lowS := strings.ToLower(s)
			if (strings.Contains(full, "rd$") || strings.Contains(full, "dop")) &&
				!strings.Contains(lowS, "rd$") && !strings.Contains(lowS, "dop") {
				s = "RD$" + s
			}
			if strings.Contains(full, "total") && !strings.Contains(lowS, "total") {
				s = "TOTAL " + s
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			if !isPlausibleAmount(s) {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

// snippet returns a shortened version of text for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// normalizeOCRText collapses whitespace and replaces newlines/tabs.
func normalizeOCRText(t string) string {
	t = strings.ReplaceAll(t, "\n", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	return strings.Join(strings.Fields(t), " ")
}
