package crawler

import (
	"regexp"
	"strings"
)

type priceRule struct {
	pattern *regexp.Regexp
	format  func(match []string) string
}

func dollars(match []string) string { return "$" + match[1] }

// priceRules are tried in order; the first match wins.
var priceRules = []priceRule{
	// $1,500  €99.50
	{regexp.MustCompile(`[$€]\d[\d,]*(?:\.\d{2})?`), func(m []string) string { return m[0] }},
	// asking 1500, price: 1500
	{regexp.MustCompile(`(?i)(?:asking|price|obo|shipped)\s*:?\s*(\d[\d,]*)`), dollars},
	// 1500 USD, 1500 obo
	{regexp.MustCompile(`(?i)(\d[\d,]+)\s*(?:USD|obo|shipped|firm)`), dollars},
}

// ExtractPrice pulls a price out of free text. ok is false when no price was
// found, which callers must treat as "unknown", not zero.
func ExtractPrice(text string) (price string, ok bool) {
	if !strings.ContainsAny(text, "0123456789") {
		return "", false
	}
	for _, rule := range priceRules {
		if m := rule.pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimRight(rule.format(m), ","), true
		}
	}
	return "", false
}
