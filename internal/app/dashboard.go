package app

import (
	"context"
	"strings"

	"immodash/internal/domain"
	"immodash/internal/normalize"
	"immodash/internal/stats"
)

// PropertyFilter narrows the listing table. Zero fields match everything.
type PropertyFilter struct {
	Type     string
	Status   string
	Commune  string
	Zone     string
	Query    string
	Meuble   *bool
	Chambres int
	MinPrice int64
	MaxPrice int64
}

func (f PropertyFilter) match(p domain.Property) bool {
	if f.Type != "" && normalize.Fold(p.TypeBien) != normalize.Fold(normalize.CanonicalType(f.Type)) {
		return false
	}
	if f.Status != "" && normalize.Fold(p.Status) != normalize.Fold(f.Status) {
		return false
	}
	if f.Commune != "" && normalize.Fold(stats.CommuneOf(p)) != normalize.Fold(f.Commune) {
		return false
	}
	if f.Zone != "" && !containsFolded(f.Zone, p.Zone, p.Commune, p.Quartier) {
		return false
	}
	if f.Query != "" && !containsFolded(f.Query, p.RefBien, p.TypeBien, p.Zone, p.Commune, p.Quartier, p.Description) {
		return false
	}
	if f.Meuble != nil && p.Meuble != *f.Meuble {
		return false
	}
	if f.Chambres > 0 && p.Chambres != f.Chambres {
		return false
	}
	if f.MinPrice > 0 || f.MaxPrice > 0 {
		if p.RawPrice <= 0 {
			return false
		}
		if f.MinPrice > 0 && p.RawPrice < f.MinPrice {
			return false
		}
		if f.MaxPrice > 0 && p.RawPrice > f.MaxPrice {
			return false
		}
	}
	return true
}

func containsFolded(needle string, fields ...string) bool {
	n := normalize.Fold(needle)
	for _, f := range fields {
		if strings.Contains(normalize.Fold(f), n) {
			return true
		}
	}
	return false
}

// FilterProperties keeps source order.
func FilterProperties(props []domain.Property, f PropertyFilter) []domain.Property {
	out := make([]domain.Property, 0, len(props))
	for _, p := range props {
		if f.match(p) {
			out = append(out, p)
		}
	}
	return out
}

type DashboardService struct {
	snaps Snapshotter
}

func NewDashboardService(s Snapshotter) *DashboardService { return &DashboardService{snaps: s} }

func (d *DashboardService) Stats(ctx context.Context) (domain.Stats, error) {
	snap, err := d.snaps.Snapshot(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return snap.Stats, nil
}

func (d *DashboardService) Properties(ctx context.Context, f PropertyFilter) ([]domain.Property, error) {
	snap, err := d.snaps.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return FilterProperties(snap.Properties, f), nil
}

// Images lists the listings with at least one photo, in listing order.
func (d *DashboardService) Images(ctx context.Context) ([]domain.Property, error) {
	snap, err := d.snaps.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return normalize.WithImages(snap.Properties), nil
}

// PropertyByRef finds a listing by its reference, ignoring case.
func (d *DashboardService) PropertyByRef(ctx context.Context, ref string) (domain.Property, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Property{}, domain.ErrNotFound
	}
	snap, err := d.snaps.Snapshot(ctx)
	if err != nil {
		return domain.Property{}, err
	}
	for _, p := range snap.Properties {
		if strings.EqualFold(p.RefBien, ref) {
			return p, nil
		}
	}
	return domain.Property{}, domain.ErrNotFound
}

// Visits filters by display status when status is set.
func (d *DashboardService) Visits(ctx context.Context, status string) ([]domain.Visit, error) {
	snap, err := d.snaps.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Visit, 0, len(snap.Visits))
	for _, v := range snap.Visits {
		if status == "" || normalize.Fold(v.Status) == normalize.Fold(status) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (d *DashboardService) Clients(ctx context.Context, statut string) ([]domain.Client, error) {
	snap, err := d.snaps.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Client, 0, len(snap.Clients))
	for _, c := range snap.Clients {
		if statut == "" || normalize.Fold(c.Statut) == normalize.Fold(statut) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *DashboardService) Requests(ctx context.Context) (domain.Requests, error) {
	snap, err := d.snaps.Snapshot(ctx)
	if err != nil {
		return domain.Requests{}, err
	}
	return snap.Requests, nil
}
