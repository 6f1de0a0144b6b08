// Package geo places properties on the map. Lookups go through a chain of
// increasingly coarse fallbacks and always end with a coordinate.
package geo

import (
	"context"
	"math/rand"
	"strings"

	"github.com/mmcloughlin/geohash"
	"github.com/rs/zerolog/log"

	"immodash/internal/adapters/observability"
	"immodash/internal/domain"
	"immodash/internal/normalize"
)

// Step names the link of the chain that produced a coordinate.
type Step string

const (
	StepStored   Step = "stored"
	StepExact    Step = "exact"
	StepQuartier Step = "quartier"
	StepTable    Step = "table"
	StepCommune  Step = "commune"
	StepCenter   Step = "center"
)

const (
	tableJitter = 0.01
	pointJitter = 0.00025
	cellChars   = 7
	cachePrefix = "geo:"
)

type Resolver struct {
	geocoder  domain.Geocoder
	cache     domain.Cache
	rand      func() float64
	cacheOnly bool
}

type Option func(*Resolver)

// WithCache persists lookups, including misses, without expiry.
func WithCache(c domain.Cache) Option { return func(r *Resolver) { r.cache = c } }

// WithRand replaces the jitter source; f must return values in [0, 1).
func WithRand(f func() float64) Option { return func(r *Resolver) { r.rand = f } }

// NewResolver builds a resolver. A nil geocoder skips the external steps.
func NewResolver(g domain.Geocoder, opts ...Option) *Resolver {
	r := &Resolver{geocoder: g, rand: rand.Float64}
	for _, o := range opts {
		o(r)
	}
	return r
}

// CacheOnly returns a copy that answers from the cache and never calls the geocoder.
func (r *Resolver) CacheOnly() *Resolver {
	cp := *r
	cp.cacheOnly = true
	return &cp
}

type cached struct {
	Found bool    `json:"found"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// cacheKey lower-cases and trims query.
func cacheKey(query string) string {
	return cachePrefix + strings.ToLower(strings.TrimSpace(query))
}

// lookup asks the cache, then the geocoder. miss is true when a cache-only
// resolver would have needed the network to answer.
func (r *Resolver) lookup(ctx context.Context, query string) (c domain.Coordinates, ok, miss bool) {
	key := cacheKey(query)
	if r.cache != nil {
		var hit cached
		found, err := r.cache.Get(ctx, key, &hit)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("geocode cache read failed")
		}
		if found && err == nil {
			return domain.Coordinates{Lat: hit.Lat, Lng: hit.Lng}, hit.Found, false
		}
	}
	if r.geocoder == nil {
		return domain.Coordinates{}, false, false
	}
	if r.cacheOnly {
		return domain.Coordinates{}, false, true
	}

	c, ok, err := r.geocoder.Lookup(ctx, query)
	if err != nil {
		// network trouble is not an answer: leave it uncached and fall through
		log.Warn().Err(err).Str("query", query).Msg("geocode lookup failed")
		return domain.Coordinates{}, false, false
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, cached{Found: ok, Lat: c.Lat, Lng: c.Lng}, 0); err != nil {
			log.Warn().Err(err).Str("query", query).Msg("geocode cache write failed")
		}
	}
	return c, ok, false
}

// address splits a property into quartier and commune. A "Commune, Quartier"
// zone fills whichever part the row left empty.
func address(p domain.Property) (quartier, commune string) {
	quartier = strings.TrimSpace(p.Quartier)
	commune = strings.TrimSpace(p.Commune)
	parts := strings.Split(p.Zone, ",")
	if commune == "" {
		commune = strings.TrimSpace(parts[0])
	}
	if quartier == "" && len(parts) > 1 {
		quartier = strings.TrimSpace(parts[1])
	}
	return quartier, commune
}

// Resolve returns a coordinate for p. It never fails.
func (r *Resolver) Resolve(ctx context.Context, p domain.Property) domain.Coordinates {
	c, _, _ := r.resolve(ctx, p)
	return c
}

// ResolveStep is Resolve plus the chain step that answered.
func (r *Resolver) ResolveStep(ctx context.Context, p domain.Property) (domain.Coordinates, Step) {
	c, step, _ := r.resolve(ctx, p)
	return c, step
}

func (r *Resolver) resolve(ctx context.Context, p domain.Property) (domain.Coordinates, Step, bool) {
	if p.Coordinates != nil {
		return r.done(*p.Coordinates, StepStored, false)
	}
	quartier, commune := address(p)
	missed := false

	if quartier != "" && commune != "" {
		c, ok, miss := r.lookup(ctx, quartier+", "+commune)
		missed = missed || miss
		if ok {
			return r.done(c, StepExact, missed)
		}
	}
	if quartier != "" {
		c, ok, miss := r.lookup(ctx, quartier+", Abidjan")
		missed = missed || miss
		if ok {
			return r.done(c, StepQuartier, missed)
		}
	}
	// the table is keyed by commune; a quartier only stands in when the commune is unknown
	key := commune
	if key == "" {
		key = quartier
	}
	if c, ok := KnownPlace(key); ok {
		c.Lat += r.jitter(tableJitter)
		c.Lng += r.jitter(tableJitter)
		return r.done(c, StepTable, missed)
	}
	if commune != "" {
		c, ok, miss := r.lookup(ctx, commune+", Abidjan")
		missed = missed || miss
		if ok {
			return r.done(c, StepCommune, missed)
		}
	}
	return r.done(Center, StepCenter, missed)
}

func (r *Resolver) done(c domain.Coordinates, step Step, missed bool) (domain.Coordinates, Step, bool) {
	observability.ObserveGeocode(string(step))
	return c, step, missed
}

// jitter is uniform in [-radius, radius).
func (r *Resolver) jitter(radius float64) float64 {
	return (r.rand()*2 - 1) * radius
}

// ResolveBatch places every property. Properties sharing a (quartier, commune)
// pair are resolved once and spread by a micro-jitter.
func (r *Resolver) ResolveBatch(ctx context.Context, props []domain.Property) []domain.MapPoint {
	points, _ := r.Locate(ctx, props)
	return points
}

// Locate is ResolveBatch plus the number of address groups a cache-only
// resolver could not settle without the network.
func (r *Resolver) Locate(ctx context.Context, props []domain.Property) ([]domain.MapPoint, int) {
	type group struct {
		at     domain.Coordinates
		missed bool
	}
	groups := make(map[string]group)
	misses := 0
	out := make([]domain.MapPoint, 0, len(props))

	for _, p := range props {
		if p.Coordinates != nil {
			out = append(out, point(p, *p.Coordinates))
			continue
		}
		quartier, commune := address(p)
		key := normalize.Fold(quartier) + "|" + normalize.Fold(commune)
		g, seen := groups[key]
		if !seen {
			c, _, missed := r.resolve(ctx, p)
			g = group{at: c, missed: missed}
			groups[key] = g
			if missed {
				misses++
			}
		}
		c := g.at
		c.Lat += r.jitter(pointJitter)
		c.Lng += r.jitter(pointJitter)
		out = append(out, point(p, c))
	}
	return out, misses
}

func point(p domain.Property, c domain.Coordinates) domain.MapPoint {
	return domain.MapPoint{
		Property:    p,
		Coordinates: c,
		Cell:        geohash.EncodeWithPrecision(c.Lat, c.Lng, cellChars),
	}
}

// Bounds frames a set of points for centering a map.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// BoundsOf returns nil for an empty set.
func BoundsOf(points []domain.MapPoint) *Bounds {
	if len(points) == 0 {
		return nil
	}
	first := points[0].Coordinates
	b := Bounds{North: first.Lat, South: first.Lat, East: first.Lng, West: first.Lng}
	for _, p := range points[1:] {
		c := p.Coordinates
		b.North = max(b.North, c.Lat)
		b.South = min(b.South, c.Lat)
		b.East = max(b.East, c.Lng)
		b.West = min(b.West, c.Lng)
	}
	return &b
}

// Cells counts points per geohash cell, for clustering markers.
func Cells(points []domain.MapPoint) map[string]int {
	out := make(map[string]int)
	for _, p := range points {
		out[p.Cell]++
	}
	return out
}
