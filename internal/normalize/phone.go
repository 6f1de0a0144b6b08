package normalize

import (
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is Côte d'Ivoire; local numbers are written without +225.
const DefaultRegion = "CI"

// NormalizePhone formats a phone number to E.164. Numbers that do not parse
// keep their digits with spaces and hyphens removed.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if num, err := phonenumbers.Parse(trimmed, DefaultRegion); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' || r == '.' {
			return -1
		}
		return r
	}, trimmed)
}

// WaLink builds a wa.me deep link with a prefilled text, "" without a usable number.
func WaLink(phone, text string) string {
	digits := waDigits(phone)
	if digits == "" {
		return ""
	}
	link := "https://wa.me/" + digits
	if text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link
}

func waDigits(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return ""
	}
	if num, err := phonenumbers.Parse(trimmed, DefaultRegion); err == nil && phonenumbers.IsValidNumber(num) {
		return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+")
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, trimmed)
	if len(digits) == 10 {
		digits = "225" + digits
	}
	return digits
}

// ClientKey identifies a client by phone number, else by lower-cased name.
func ClientKey(numero, nom string) string {
	if p := NormalizePhone(numero); p != "" {
		return p
	}
	return frLower.String(strings.TrimSpace(nom))
}
