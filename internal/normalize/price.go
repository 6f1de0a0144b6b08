package normalize

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frPrinter = message.NewPrinter(language.French)

// ParsePrice keeps only the digits of v. Anything unparseable is 0.
func ParsePrice(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		if t > 0 && t < math.MaxInt64 {
			return int64(t)
		}
		return 0
	case int:
		return max(int64(t), 0)
	case int64:
		return max(t, 0)
	}
	s := stringify(v)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatPrice renders a FCFA amount: "N/A", "2.5M FCFA", "750k FCFA" or "500 FCFA".
func FormatPrice(p int64) string {
	switch {
	case p <= 0:
		return "N/A"
	case p >= 999_950: // rounds to 1000k; show it as 1M
		return oneDecimal(float64(p)/1_000_000) + "M FCFA"
	case p >= 1_000:
		return oneDecimal(float64(p)/1_000) + "k FCFA"
	}
	return FormatAmount(p) + " FCFA"
}

// FormatAmount groups digits the French way.
func FormatAmount(n int64) string {
	return frPrinter.Sprintf("%d", n)
}

func oneDecimal(x float64) string {
	s := strconv.FormatFloat(math.Round(x*10)/10, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
