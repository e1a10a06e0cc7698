// Package normalize converts raw price and label text scraped from market
// pages into typed values. All functions are pure: a value that cannot be
// parsed degrades to the zero value plus a false flag, never an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reCurrency = regexp.MustCompile(`[£$€¥₹]`)
	reNonNum   = regexp.MustCompile(`[^\d.]`)
	reSpaces   = regexp.MustCompile(`\s+`)
	reSep      = regexp.MustCompile(`[_-]+`)
)

// specialTokens are promotional/edition labels that stay fully uppercased
// when formatting card text.
var specialTokens = map[string]struct{}{
	"TOTW": {}, "TOTS": {}, "TOTY": {}, "UCL": {},
	"OTW": {}, "ICON": {}, "HERO": {}, "WC": {},
}

// ParsePrice converts a raw price string into whole coins.
// It tolerates currency symbols, thousands separators, decimal points and a
// trailing K (×1 000) or M (×1 000 000) suffix, case-insensitive:
// "54,500" → 54500, "54.5K" → 54500, "1.2M" → 1200000, "$54,500" → 54500.
// Returns false when the cleaned remainder is empty or not a number.
func ParsePrice(text string) (int, bool) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return 0, false
	}

	text = reCurrency.ReplaceAllString(text, "")

	multiplier := 1.0
	if strings.Contains(text, "M") {
		multiplier = 1_000_000
		text = strings.ReplaceAll(text, "M", "")
	} else if strings.Contains(text, "K") {
		multiplier = 1_000
		text = strings.ReplaceAll(text, "K", "")
	}

	text = reNonNum.ReplaceAllString(text, "")
	if text == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || value < 0 {
		return 0, false
	}

	return int(value * multiplier), true
}

// CleanText collapses internal whitespace runs to single spaces and trims.
// Returns "" for empty or whitespace-only input.
func CleanText(text string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(text, " "))
}

// FormatCardLabel normalizes card type/rarity values such as
// "totw_gold_rare" into readable form ("TOTW Gold Rare"). Underscores and
// hyphens become spaces; tokens are title-cased unless they are a known
// all-caps edition label. Returns "" for empty input.
func FormatCardLabel(text string) string {
	cleaned := strings.TrimSpace(reSep.ReplaceAllString(text, " "))
	if cleaned == "" {
		return ""
	}

	tokens := strings.Fields(cleaned)
	for i, token := range tokens {
		upper := strings.ToUpper(token)
		if _, ok := specialTokens[upper]; ok {
			tokens[i] = upper
			continue
		}
		tokens[i] = capitalize(token)
	}

	return strings.Join(tokens, " ")
}

// FormatPrice renders an integer coin value with thousands separators for
// display ("54,500"). Nil-safe so callers can pass optional fields directly.
func FormatPrice(value *int) string {
	if value == nil {
		return "N/A"
	}

	s := strconv.Itoa(*value)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func capitalize(token string) string {
	lower := strings.ToLower(token)
	r := []rune(lower)
	if len(r) == 0 {
		return token
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
