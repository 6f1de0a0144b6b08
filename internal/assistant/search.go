package assistant

import (
	"strings"

	"immodash/internal/domain"
)

// MaxResults is how many listings a search reply shows.
const MaxResults = 7

// Filter composes optional search predicates; every supplied one must hold.
type Filter struct {
	Type            string
	Zone            string
	Price           *PriceFilter
	IncludeOccupied bool
}

// Search returns the properties matching f, in snapshot order.
func Search(props []domain.Property, f Filter) []domain.Property {
	typ := clean(f.Type)
	zone := clean(f.Zone)
	out := make([]domain.Property, 0)
	for _, p := range props {
		if !f.IncludeOccupied && !p.Disponible {
			continue
		}
		if typ != "" && !strings.Contains(clean(p.TypeBien), typ) {
			continue
		}
		if zone != "" && !inZone(p, zone) {
			continue
		}
		if f.Price != nil && !inRange(p.RawPrice, f.Price) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func inZone(p domain.Property, zone string) bool {
	for _, field := range []string{p.Zone, p.Commune, p.Quartier, p.Description} {
		if field != "" && strings.Contains(clean(field), zone) {
			return true
		}
	}
	return false
}

// inRange excludes unknown prices as soon as a bound is set.
func inRange(price int64, f *PriceFilter) bool {
	if price <= 0 {
		return false
	}
	if f.Min > 0 && price < f.Min {
		return false
	}
	if f.Max > 0 && price > f.Max {
		return false
	}
	return true
}
