package geo_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"immodash/internal/domain"
	"immodash/internal/geo"
)

type fakeGeocoder struct {
	known map[string]domain.Coordinates
	fail  map[string]bool
	calls []string
}

func (f *fakeGeocoder) Lookup(_ context.Context, q string) (domain.Coordinates, bool, error) {
	f.calls = append(f.calls, q)
	if f.fail[q] {
		return domain.Coordinates{}, false, errors.New("connection reset")
	}
	c, ok := f.known[q]
	return c, ok, nil
}

type mapCache struct{ m map[string][]byte }

func newMapCache() *mapCache { return &mapCache{m: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	c.m[key] = b
	return err
}

func (c *mapCache) Del(_ context.Context, key string) error {
	delete(c.m, key)
	return nil
}

func fixed(v float64) func() float64 { return func() float64 { return v } }

func near(a, b domain.Coordinates, eps float64) bool {
	return math.Abs(a.Lat-b.Lat) <= eps && math.Abs(a.Lng-b.Lng) <= eps
}

func TestResolve_Chain(t *testing.T) {
	g := &fakeGeocoder{
		known: map[string]domain.Coordinates{
			"Angré 7e tranche, Cocody": {Lat: 5.40, Lng: -3.98},
			"Sable, Abidjan":           {Lat: 5.25, Lng: -3.93},
			"Akeikoi, Abidjan":         {Lat: 5.44, Lng: -4.00},
		},
		fail: map[string]bool{"Perdu, Abidjan": true},
	}
	r := geo.NewResolver(g, geo.WithRand(fixed(0.9)))
	ctx := context.Background()

	cases := []struct {
		name string
		p    domain.Property
		step geo.Step
		want domain.Coordinates
		eps  float64
	}{
		{"exact", domain.Property{Quartier: "Angré 7e tranche", Commune: "Cocody"}, geo.StepExact, domain.Coordinates{Lat: 5.40, Lng: -3.98}, 0},
		{"quartier", domain.Property{Quartier: "Sable", Commune: "Port-Bouët"}, geo.StepQuartier, domain.Coordinates{Lat: 5.25, Lng: -3.93}, 0},
		{"table", domain.Property{Quartier: "Inconnu", Commune: "Cocody"}, geo.StepTable, domain.Coordinates{Lat: 5.349, Lng: -3.985}, 0.01},
		{"table after error", domain.Property{Quartier: "Perdu", Commune: "Marcory"}, geo.StepTable, domain.Coordinates{Lat: 5.304, Lng: -3.978}, 0.01},
		{"commune", domain.Property{Commune: "Akeikoi"}, geo.StepCommune, domain.Coordinates{Lat: 5.44, Lng: -4.00}, 0},
		{"center", domain.Property{Commune: "Nulle part"}, geo.StepCenter, geo.Center, 0},
		{"empty", domain.Property{}, geo.StepCenter, geo.Center, 0},
		{"stored", domain.Property{Commune: "Cocody", Coordinates: &domain.Coordinates{Lat: 5.1, Lng: -4.1}}, geo.StepStored, domain.Coordinates{Lat: 5.1, Lng: -4.1}, 0},
	}
	for _, tc := range cases {
		got, step := r.ResolveStep(ctx, tc.p)
		if step != tc.step || !near(got, tc.want, tc.eps+1e-9) {
			t.Errorf("%s: got %+v via %s, want %+v via %s", tc.name, got, step, tc.want, tc.step)
		}
	}
}

func TestResolve_TableJitterStaysInRadius(t *testing.T) {
	center := domain.Coordinates{Lat: 5.349, Lng: -3.985}
	for _, v := range []float64{0, 0.25, 0.5, 0.999999} {
		r := geo.NewResolver(nil, geo.WithRand(fixed(v)))
		got := r.Resolve(context.Background(), domain.Property{Quartier: "Introuvable", Commune: "Cocody"})
		if !near(got, center, 0.01+1e-9) {
			t.Fatalf("rand=%v: %+v outside ±0.01 of %+v", v, got, center)
		}
	}
}

func TestResolve_TableUsesCommuneOverQuartier(t *testing.T) {
	cases := []struct {
		name string
		p    domain.Property
		want domain.Coordinates
	}{
		{"quartier names another commune", domain.Property{Quartier: "Plateau Dokui", Commune: "Abobo"}, domain.Coordinates{Lat: 5.416, Lng: -4.019}},
		{"quartier in the table", domain.Property{Quartier: "Angré 8e tranche", Commune: "Cocody"}, domain.Coordinates{Lat: 5.349, Lng: -3.985}},
		{"quartier only", domain.Property{Quartier: "Biétry"}, domain.Coordinates{Lat: 5.289, Lng: -3.978}},
	}
	for _, tc := range cases {
		for _, v := range []float64{0, 0.5, 0.999999} {
			r := geo.NewResolver(nil, geo.WithRand(fixed(v)))
			got, step := r.ResolveStep(context.Background(), tc.p)
			if step != geo.StepTable || !near(got, tc.want, 0.01+1e-9) {
				t.Errorf("%s rand=%v: got %+v via %s, want ±0.01 of %+v", tc.name, v, got, step, tc.want)
			}
		}
	}
}

func TestResolve_ZoneFallsBackToCommuneAndQuartier(t *testing.T) {
	g := &fakeGeocoder{known: map[string]domain.Coordinates{"Riviera 3, Cocody": {Lat: 5.37, Lng: -3.95}}}
	r := geo.NewResolver(g)
	c, step := r.ResolveStep(context.Background(), domain.Property{Zone: "Cocody, Riviera 3"})
	if step != geo.StepExact || c.Lat != 5.37 {
		t.Fatalf("zone split: %+v %s", c, step)
	}
}

func TestResolve_Cache(t *testing.T) {
	g := &fakeGeocoder{known: map[string]domain.Coordinates{"Angré, Cocody": {Lat: 5.39, Lng: -3.98}}}
	cache := newMapCache()
	r := geo.NewResolver(g, geo.WithCache(cache), geo.WithRand(fixed(0.5)))
	ctx := context.Background()

	p := domain.Property{Quartier: "Angré", Commune: "Cocody"}
	r.Resolve(ctx, p)
	r.Resolve(ctx, domain.Property{Quartier: " ANGRÉ", Commune: "Cocody "})
	if len(g.calls) != 1 {
		t.Fatalf("second lookup must come from the cache: %v", g.calls)
	}
	if _, ok := cache.m["geo:angré, cocody"]; !ok {
		t.Fatalf("cache key not normalized: %v", cache.m)
	}

	g.calls = nil
	miss := domain.Property{Quartier: "Nowhere", Commune: "Cocody"}
	r.Resolve(ctx, miss)
	r.Resolve(ctx, miss)
	if len(g.calls) != 2 {
		t.Fatalf("negative answers must be cached too: %v", g.calls)
	}
}

func TestResolve_ErrorsAreNotCached(t *testing.T) {
	g := &fakeGeocoder{fail: map[string]bool{"Sable, Marcory": true}}
	cache := newMapCache()
	r := geo.NewResolver(g, geo.WithCache(cache))
	r.Resolve(context.Background(), domain.Property{Quartier: "Sable", Commune: "Marcory"})
	if _, ok := cache.m["geo:sable, marcory"]; ok {
		t.Fatalf("failed lookup was cached")
	}
}

func TestCacheOnly(t *testing.T) {
	g := &fakeGeocoder{known: map[string]domain.Coordinates{"Angré, Cocody": {Lat: 5.39, Lng: -3.98}}}
	cache := newMapCache()
	full := geo.NewResolver(g, geo.WithCache(cache), geo.WithRand(fixed(0.5)))
	quick := full.CacheOnly()
	ctx := context.Background()
	props := []domain.Property{
		{ID: "1", Quartier: "Angré", Commune: "Cocody"},
		{ID: "2", Quartier: "Angré", Commune: "Cocody"},
		{ID: "3", Quartier: "Sable", Commune: "Marcory"},
	}

	points, misses := quick.Locate(ctx, props)
	if len(g.calls) != 0 {
		t.Fatalf("cache-only resolver called the geocoder: %v", g.calls)
	}
	if len(points) != 3 || misses != 2 {
		t.Fatalf("points %d misses %d", len(points), misses)
	}

	full.ResolveBatch(ctx, props)
	g.calls = nil
	points, misses = quick.Locate(ctx, props)
	if misses != 0 || len(g.calls) != 0 {
		t.Fatalf("after warm-up: misses %d calls %v", misses, g.calls)
	}
	if !near(points[0].Coordinates, domain.Coordinates{Lat: 5.39, Lng: -3.98}, 0.00025) {
		t.Fatalf("warm point: %+v", points[0].Coordinates)
	}
}

func TestResolveBatch_GroupsAndSpreads(t *testing.T) {
	g := &fakeGeocoder{known: map[string]domain.Coordinates{"Angré, Cocody": {Lat: 5.39, Lng: -3.98}}}
	vals := []float64{0.1, 0.9, 0.3, 0.7, 0.5, 0.2}
	i := 0
	seq := func() float64 { v := vals[i%len(vals)]; i++; return v }
	r := geo.NewResolver(g, geo.WithRand(seq))

	props := []domain.Property{
		{ID: "1", Quartier: "Angré", Commune: "Cocody"},
		{ID: "2", Quartier: "angre", Commune: "COCODY"},
		{ID: "3", Quartier: "Angré", Commune: "Cocody", Coordinates: &domain.Coordinates{Lat: 5.0, Lng: -4.0}},
	}
	points := r.ResolveBatch(context.Background(), props)
	if len(g.calls) != 1 {
		t.Fatalf("one lookup per address group, got %v", g.calls)
	}
	if len(points) != 3 {
		t.Fatalf("points: %d", len(points))
	}
	base := domain.Coordinates{Lat: 5.39, Lng: -3.98}
	if !near(points[0].Coordinates, base, 0.00025) || !near(points[1].Coordinates, base, 0.00025) {
		t.Fatalf("micro-jitter radius: %+v %+v", points[0].Coordinates, points[1].Coordinates)
	}
	if points[0].Coordinates == points[1].Coordinates {
		t.Fatalf("co-located properties must not overlap exactly")
	}
	if points[2].Coordinates != (domain.Coordinates{Lat: 5.0, Lng: -4.0}) {
		t.Fatalf("stored coordinates must be kept: %+v", points[2].Coordinates)
	}
	if len(points[0].Cell) != 7 || points[0].Cell[:5] != points[1].Cell[:5] {
		t.Fatalf("cells: %q %q", points[0].Cell, points[1].Cell)
	}
}

func TestBoundsAndCells(t *testing.T) {
	if geo.BoundsOf(nil) != nil {
		t.Fatalf("empty set has no bounds")
	}
	points := []domain.MapPoint{
		{Coordinates: domain.Coordinates{Lat: 5.3, Lng: -4.0}, Cell: "s00twy0"},
		{Coordinates: domain.Coordinates{Lat: 5.4, Lng: -3.9}, Cell: "s00twy0"},
		{Coordinates: domain.Coordinates{Lat: 5.2, Lng: -4.1}, Cell: "s00tqz1"},
	}
	b := geo.BoundsOf(points)
	if b.North != 5.4 || b.South != 5.2 || b.East != -3.9 || b.West != -4.1 {
		t.Fatalf("bounds: %+v", *b)
	}
	if cells := geo.Cells(points); cells["s00twy0"] != 2 || cells["s00tqz1"] != 1 {
		t.Fatalf("cells: %v", cells)
	}
}

func TestKnownPlace(t *testing.T) {
	cases := map[string]bool{
		"Cocody":                 true,
		"COCODY RIVIERA":         true,
		"Biétry":                 true,
		"Riviera Palmeraie":      true,
		"palm":                   true,
		"abc":                    false,
		"":                       false,
		"Quartier introuvable 9": false,
	}
	for in, want := range cases {
		if _, ok := geo.KnownPlace(in); ok != want {
			t.Errorf("KnownPlace(%q) = %v, want %v", in, ok, want)
		}
	}
	if c, _ := geo.KnownPlace("Riviera Palmeraie"); c.Lat != 5.372 {
		t.Fatalf("longest key first: %+v", c)
	}
}
