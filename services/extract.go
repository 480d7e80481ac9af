package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// currencyReplacer drops currency glyphs and thousands separators before
	// any price matching happens. Stripping commas first means "1,500" is
	// parsed as the single token 1500.
	currencyReplacer = strings.NewReplacer("₪", "", "$", "", "€", "", ",", "")

	// priceRegexp captures a decimal number with up to two fraction digits.
	priceRegexp = regexp.MustCompile(`\d+(?:\.\d{1,2})?`)
)

// cities is the ordered bilingual gazetteer used for location extraction.
// Hebrew entries come before English ones and the first match wins, so the
// order is load-bearing.
var cities = []string{
	"תל אביב",
	"חיפה",
	"ירושלים",
	"באר שבע",
	"נתניה",
	"פתח תקווה",
	"אשדוד",
	"רישון לציון",
	"אשקלון",
	"רעננה",
	"רמת גן",
	"הרצליה",
	"כפר סבא",
	"חולון",
	"בת ים",
	"רמלה",
	"Tel Aviv",
	"Haifa",
	"Jerusalem",
	"Beer Sheva",
	"Netanya",
	"Petah Tikva",
}

// NormalizeText collapses whitespace and strips characters that are neither
// alphanumeric, whitespace, nor in the Hebrew Unicode block. Empty input
// yields an empty string. The result is stable under repeated application.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return r
		case r >= 0x0590 && r <= 0x05FF:
			return r
		default:
			return ' '
		}
	}, text)

	return strings.Join(strings.Fields(mapped), " ")
}

// ExtractPrice pulls the first numeric token out of a price fragment.
// Currency glyphs and commas are removed before matching, so grouped digits
// are parsed as one concatenated number. Returns ok=false when the text holds
// no digits.
func ExtractPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	cleaned := currencyReplacer.Replace(text)
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0, false
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// ExtractCity matches the gazetteer against the text, case-insensitively, in
// list order. The canonical-cased gazetteer entry is returned, not the input
// spelling. Returns ok=false when no entry is contained in the text.
func ExtractCity(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	lower := strings.ToLower(text)
	for _, city := range cities {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city, true
		}
	}
	return "", false
}
