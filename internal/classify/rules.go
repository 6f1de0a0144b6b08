package classify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"immodash/internal/normalize"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules is the keyword data driving triage. Phrases are matched as
// case-insensitive substrings; accents count.
type Rules struct {
	MinLength int      `yaml:"min_length"`
	Demand    []string `yaml:"demand"`
	Offer     []string `yaml:"offer"`
}

// DefaultRules returns the rules shipped with the binary.
func DefaultRules() Rules {
	r, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("classify: embedded rules: %v", err))
	}
	return r
}

// LoadRules reads a YAML rules file. An empty path yields the defaults.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(b)
}

func ParseRules(b []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	if len(r.Demand) == 0 {
		return Rules{}, fmt.Errorf("parse rules: no demand phrases")
	}
	if r.MinLength < 0 {
		r.MinLength = 0
	}
	return r, nil
}

// matcher holds the lower-cased phrases. Accents are kept: "à louer" must
// not match "va louer".
type matcher struct {
	demand []string
	offer  []string
}

func newMatcher(r Rules) matcher {
	return matcher{demand: lowerAll(r.Demand), offer: lowerAll(r.Offer)}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := normalize.Lower(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
