package assistant

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"immodash/internal/normalize"
)

// PriceFilter bounds a search by price in FCFA. A zero bound is unset.
type PriceFilter struct {
	Min int64 `json:"min,omitempty"`
	Max int64 `json:"max,omitempty"`
}

// Query is a user message prepared once for every rule.
type Query struct {
	Raw   string
	Text  string // folded, punctuation collapsed to single spaces
	Zone  string
	Type  string
	Price *PriceFilter
}

// Filtered reports whether the message names a type, a zone or a price bound.
func (q Query) Filtered() bool {
	return q.Zone != "" || q.Type != "" || q.Price != nil
}

func parse(raw string) Query {
	text := clean(raw)
	return Query{
		Raw:   raw,
		Text:  text,
		Zone:  detectZone(text),
		Type:  detectType(text),
		Price: detectPriceFilter(text),
	}
}

var groupedThousands = regexp.MustCompile(`\b\d{1,3}(?: \d{3})+\b`)

// clean folds s and keeps only letters, digits and decimal separators
// between digits. "200 000" is rejoined into "200000".
func clean(s string) string {
	rs := []rune(normalize.Fold(s))
	var b strings.Builder
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case (r == '.' || r == ',') && i > 0 && i+1 < len(rs) && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	return groupedThousands.ReplaceAllStringFunc(out, func(m string) string {
		return strings.ReplaceAll(m, " ", "")
	})
}

// hasWord reports whether one of the phrases starts at a word boundary of text.
// Phrases go through clean first, so "rendez-vous" matches "rendez vous".
func hasWord(text string, phrases ...string) bool {
	padded := " " + text
	for _, p := range phrases {
		if strings.Contains(padded, " "+clean(p)) {
			return true
		}
	}
	return false
}

type alias struct {
	key  string
	name string
}

// byLength sorts aliases longest first so "2 plateaux" is tried before "plateau".
func byLength(m map[string]string) []alias {
	out := make([]alias, 0, len(m))
	for k, v := range m {
		out = append(out, alias{key: clean(k), name: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].key) != len(out[j].key) {
			return len(out[i].key) > len(out[j].key)
		}
		return out[i].key < out[j].key
	})
	return out
}

var zoneAliases = byLength(map[string]string{
	"cocody":        "Cocody",
	"plateau":       "Plateau",
	"2 plateaux":    "Deux Plateaux",
	"deux plateaux": "Deux Plateaux",
	"marcory":       "Marcory",
	"zone 4":        "Zone 4",
	"bietry":        "Biétry",
	"koumassi":      "Koumassi",
	"yopougon":      "Yopougon",
	"yop":           "Yopougon",
	"abobo":         "Abobo",
	"adjame":        "Adjamé",
	"treichville":   "Treichville",
	"port bouet":    "Port-Bouët",
	"port-bouet":    "Port-Bouët",
	"vridi":         "Vridi",
	"attecoube":     "Attécoubé",
	"bingerville":   "Bingerville",
	"anyama":        "Anyama",
	"songon":        "Songon",
	"riviera":       "Riviera",
	"palmeraie":     "Palmeraie",
	"angre":         "Angré",
	"faya":          "Faya",
	"williamsville": "Williamsville",
	"grand bassam":  "Grand-Bassam",
	"grand-bassam":  "Grand-Bassam",
	"bassam":        "Grand-Bassam",
	"assinie":       "Assinie",
	"ii plateaux":   "Deux Plateaux",
	"vallons":       "Vallons",
	"m'badon":       "M'Badon",
	"mbadon":        "M'Badon",
	"blockhauss":    "Blockhauss",
	"golf":          "Golf",
	"ambassades":    "Ambassades",
	"cite des arts": "Cité des Arts",
	"residentiel":   "Résidentiel",
	"niangon":       "Niangon",
	"sicogi":        "Sicogi",
	"akouedo":       "Akouédo",
	"abatta":        "Abatta",
	"bonoumin":      "Bonoumin",
	"djorogobite":   "Djorogobité",
	"gonzagueville": "Gonzagueville",
	"anoumabo":      "Anoumabo",
	"remblais":      "Remblais",
	"220 logements": "220 Logements",
})

// plain "chambre" is left out: "3 chambres" counts bedrooms, not a property type.
var typeAliases = byLength(map[string]string{
	"villa":            "Villa",
	"studio":           "Studio",
	"appartement":      "Appartement",
	"appart":           "Appartement",
	"appt":             "Appartement",
	"duplex":           "Duplex",
	"triplex":          "Triplex",
	"maison":           "Maison",
	"bureau":           "Bureau",
	"local commercial": "Local commercial",
	"magasin":          "Magasin",
	"boutique":         "Boutique",
	"terrain":          "Terrain",
	"immeuble":         "Immeuble",
	"entrepot":         "Entrepôt",
	"residence":        "Résidence",
	"loft":             "Loft",
	"penthouse":        "Penthouse",
	"chambre salon":    "Chambre salon",
	"rez de chaussee":  "Rez-de-chaussée",
	"rdc":              "Rez-de-chaussée",
})

func detectAlias(text string, aliases []alias) string {
	padded := " " + text
	for _, a := range aliases {
		if strings.Contains(padded, " "+a.key) {
			return a.name
		}
	}
	return ""
}

// DetectZone returns the display name of the first commune or neighbourhood
// mentioned in text, longest alias first. Empty when none is found.
func DetectZone(text string) string { return detectZone(clean(text)) }

func detectZone(cleaned string) string { return detectAlias(cleaned, zoneAliases) }

// DetectType returns the canonical property type mentioned in text.
func DetectType(text string) string { return detectType(clean(text)) }

func detectType(cleaned string) string { return detectAlias(cleaned, typeAliases) }

const amount = `(\d+(?:[.,]\d+)?)\s*([km])?(?:\s*f(?:cfa)?)?\b`

var (
	betweenRe = regexp.MustCompile(`\bentre\s+` + amount + `\s+et\s+` + amount)
	maxRe     = regexp.MustCompile(`\b(?:moins de|max(?:imum)?|jusqu a|pas plus de|inferieur a)\s+` + amount)
	minRe     = regexp.MustCompile(`\b(?:plus de|min(?:imum)?|a partir de|au moins|superieur a)\s+` + amount)
	roomsRe   = regexp.MustCompile(`^\s*(?:ch\b|chambre|piece|salle|salon|toilette|douche|wc\b|sdb\b)`)
)

// DetectPriceFilter extracts a price range from text:
// "entre X et Y", "moins de|max|jusqu'à X" and "plus de|min|à partir de X".
// Amounts accept a "k" (thousand) or "m" (million) suffix and an optional
// "f"/"fcfa" currency, glued or spaced. Nil when no bound parses.
func DetectPriceFilter(text string) *PriceFilter { return detectPriceFilter(clean(text)) }

func detectPriceFilter(text string) *PriceFilter {
	if m := betweenRe.FindStringSubmatchIndex(text); m != nil && !roomsAfter(text, m[1]) {
		lo := parseAmount(text[m[2]:m[3]], group(text, m, 4))
		hi := parseAmount(text[m[6]:m[7]], group(text, m, 8))
		if lo > hi {
			lo, hi = hi, lo
		}
		if hi > 0 {
			return &PriceFilter{Min: lo, Max: hi}
		}
	}
	var f PriceFilter
	if m := maxRe.FindStringSubmatchIndex(text); m != nil && !roomsAfter(text, m[1]) {
		f.Max = parseAmount(text[m[2]:m[3]], group(text, m, 4))
	}
	if m := minRe.FindStringSubmatchIndex(text); m != nil && !roomsAfter(text, m[1]) {
		f.Min = parseAmount(text[m[2]:m[3]], group(text, m, 4))
	}
	if f.Min == 0 && f.Max == 0 {
		return nil
	}
	return &f
}

func group(text string, m []int, i int) string {
	if m[i] < 0 {
		return ""
	}
	return text[m[i]:m[i+1]]
}

// roomsAfter reports whether the matched number counts rooms rather than money
// ("plus de 3 chambres", "moins de 2 salles de bain").
func roomsAfter(text string, end int) bool {
	return roomsRe.MatchString(text[end:])
}

func parseAmount(num, suffix string) int64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", "."), 64)
	if err != nil || f <= 0 {
		return 0
	}
	switch suffix {
	case "k":
		f *= 1_000
	case "m":
		f *= 1_000_000
	}
	return int64(f + 0.5)
}
