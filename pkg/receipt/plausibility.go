package receipt

import "strings"

// isPlausibleAmount applies lightweight heuristics to decide whether a
// matched numeric substring likely represents a monetary amount rather than
// a phone number, an NCF sequence, or a card/RNC fragment. The heuristics are
// intentionally conservative: prefer strings that include currency hints or
// grouping separators, and reject very long digit-only strings or those
// starting with 0.
func isPlausibleAmount(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	low := strings.ToLower(s)
	if strings.Contains(low, "rd$") || strings.Contains(low, "dop") || strings.Contains(low, "$") {
		return true
	}
	if strings.Contains(s, ".") || strings.Contains(s, ",") {
		d := onlyDigits(s)
		return len(d) >= 3 && d[0] != '0'
	}
	d := onlyDigits(s)
	if d == "" {
		return false
	}
	if d[0] == '0' {
		// phone numbers and NCF serials lead with zeros; amounts don't
		return false
	}
	if len(d) > 7 {
		return false
	}
	if len(d) < 2 {
		return false
	}
	return true
}

// onlyDigits extracts decimal digits from a string.
func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
