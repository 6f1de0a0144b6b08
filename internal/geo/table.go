package geo

import (
	"sort"
	"strings"

	"immodash/internal/domain"
	"immodash/internal/normalize"
)

// Center is the Abidjan city-center fallback.
var Center = domain.Coordinates{Lat: 5.321, Lng: -4.020}

// knownPlaces holds default positions of communes and well-known
// neighbourhoods, keyed by folded name.
var knownPlaces = map[string]domain.Coordinates{
	"cocody":      {Lat: 5.349, Lng: -3.985},
	"marcory":     {Lat: 5.304, Lng: -3.978},
	"treichville": {Lat: 5.294, Lng: -4.010},
	"koumassi":    {Lat: 5.298, Lng: -3.948},
	"port-bouet":  {Lat: 5.253, Lng: -3.955},
	"port bouet":  {Lat: 5.253, Lng: -3.955},
	"yopougon":    {Lat: 5.342, Lng: -4.083},
	"abobo":       {Lat: 5.416, Lng: -4.019},
	"plateau":     {Lat: 5.321, Lng: -4.020},
	"le plateau":  {Lat: 5.321, Lng: -4.020},
	"adjame":      {Lat: 5.362, Lng: -4.027},
	"attecoube":   {Lat: 5.334, Lng: -4.038},
	"bingerville": {Lat: 5.356, Lng: -3.896},
	"songon":      {Lat: 5.309, Lng: -4.249},
	"anyama":      {Lat: 5.494, Lng: -4.051},

	"riviera":           {Lat: 5.353, Lng: -3.966},
	"riviera 2":         {Lat: 5.353, Lng: -3.966},
	"riviera 3":         {Lat: 5.364, Lng: -3.952},
	"riviera 4":         {Lat: 5.346, Lng: -3.972},
	"riviera golf":      {Lat: 5.336, Lng: -3.982},
	"riviera palmeraie": {Lat: 5.372, Lng: -3.959},
	"palmeraie":         {Lat: 5.372, Lng: -3.959},
	"angre":             {Lat: 5.390, Lng: -3.985},
	"deux plateaux":     {Lat: 5.359, Lng: -3.998},
	"2 plateaux":        {Lat: 5.359, Lng: -3.998},
	"vallon":            {Lat: 5.347, Lng: -3.992},
	"agban":             {Lat: 5.350, Lng: -4.010},

	"bietry":      {Lat: 5.289, Lng: -3.978},
	"zone 4":      {Lat: 5.297, Lng: -3.969},
	"zone 4c":     {Lat: 5.297, Lng: -3.969},
	"residentiel": {Lat: 5.295, Lng: -3.980},

	"bassam":       {Lat: 5.206, Lng: -3.738},
	"grand-bassam": {Lat: 5.206, Lng: -3.738},
	"assinie":      {Lat: 5.148, Lng: -3.287},

	"abidjan": {Lat: 5.321, Lng: -4.020},
}

type place struct {
	key string
	at  domain.Coordinates
}

// places is knownPlaces longest key first, so "riviera palmeraie" beats "riviera".
var places = func() []place {
	out := make([]place, 0, len(knownPlaces))
	for k, c := range knownPlaces {
		out = append(out, place{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].key) != len(out[j].key) {
			return len(out[i].key) > len(out[j].key)
		}
		return out[i].key < out[j].key
	})
	return out
}()

const minPartial = 4

// KnownPlace finds the default position of name. Names match exactly
// after folding, else by substring in either direction.
func KnownPlace(name string) (domain.Coordinates, bool) {
	term := normalize.Fold(name)
	if term == "" {
		return domain.Coordinates{}, false
	}
	if c, ok := knownPlaces[term]; ok {
		return c, true
	}
	for _, p := range places {
		if strings.Contains(term, p.key) {
			return p.at, true
		}
	}
	if len(term) < minPartial {
		return domain.Coordinates{}, false
	}
	for _, p := range places {
		if strings.Contains(p.key, term) {
			return p.at, true
		}
	}
	return domain.Coordinates{}, false
}
