package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	frLower = cases.Lower(language.French)
	frUpper = cases.Upper(language.French)
)

// Fold strips diacritics, lower-cases and trims s. "Biétry " -> "bietry".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.NewReplacer("’", "'", " ", " ", " ", " ").Replace(out)
	return strings.TrimSpace(frLower.String(out))
}

// Lower lower-cases and trims s, keeping accents. Composed and decomposed
// forms compare equal after it.
func Lower(s string) string {
	out := norm.NFC.String(s)
	out = strings.NewReplacer("’", "'", "\u00a0", " ", "\u202f", " ").Replace(out)
	return strings.TrimSpace(frLower.String(out))
}

// ParseBool accepts native booleans and "oui"/"true" in any case.
func ParseBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "oui" || s == "true"
	case []byte:
		return ParseBool(string(t))
	}
	return false
}

const TypeOther = "Autre"

// canonicalTypes is keyed by folded spelling.
var canonicalTypes = map[string]string{
	"villa":            "Villa",
	"studio":           "Studio",
	"appartement":      "Appartement",
	"duplex":           "Duplex",
	"maison":           "Maison",
	"bureau":           "Bureau",
	"local commercial": "Local commercial",
	"terrain":          "Terrain",
	"immeuble":         "Immeuble",
	"entrepot":         "Entrepôt",
	"chambre":          "Chambre",
	"residence":        "Résidence",
	"loft":             "Loft",
	"penthouse":        "Penthouse",
	"rez-de-chaussee":  "Rez-de-chaussée",
	"rez de chaussee":  "Rez-de-chaussée",
}

// CanonicalType maps a free-text property type onto the fixed vocabulary.
// Unknown types are passed through with only their first letter upper-cased.
func CanonicalType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TypeOther
	}
	if c, ok := canonicalTypes[Fold(raw)]; ok {
		return c
	}
	return Capitalize(raw)
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := frLower.String(s)
	r, size := utf8.DecodeRuneInString(lower)
	return frUpper.String(string(r)) + lower[size:]
}

// FirstSegment returns the trimmed text before the first comma.
func FirstSegment(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// SplitFeatures splits a characteristics string on commas, pipes and newlines.
func SplitFeatures(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
