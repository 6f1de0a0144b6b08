package crm

import (
	"sort"
	"time"

	"immodash/internal/domain"
	"immodash/internal/normalize"
)

// InactiveAfterMonths without a visit turns a client inactive.
const InactiveAfterMonths = 3

// DeriveClients folds visits into clients keyed by phone number, else name.
// Clients are ordered by most recent visit, undated clients last.
func DeriveClients(visits []domain.Visit, now time.Time) []domain.Client {
	byKey := make(map[string]*domain.Client, len(visits))
	order := make([]string, 0, len(visits))
	zones := make(map[string]map[string]struct{})
	refs := make(map[string]map[string]struct{})

	for _, v := range visits {
		key := normalize.ClientKey(v.Numero, v.NomPrenom)
		c, ok := byKey[key]
		if !ok {
			c = &domain.Client{
				ID:           len(order) + 1, // first-seen order
				Key:          key,
				NomPrenom:    v.NomPrenom,
				Numero:       v.Numero,
				ZonesInteret: []string{},
				BiensInteret: []string{},
			}
			byKey[key] = c
			order = append(order, key)
			zones[key] = map[string]struct{}{}
			refs[key] = map[string]struct{}{}
		}

		c.TotalVisites++
		if v.VisiteProg {
			c.VisitesConfirmees++
		}
		if z := normalize.FirstSegment(v.LocalInteresse); z != "" {
			if _, seen := zones[key][z]; !seen {
				zones[key][z] = struct{}{}
				c.ZonesInteret = append(c.ZonesInteret, z)
			}
		}
		if v.RefBien != "" {
			if _, seen := refs[key][v.RefBien]; !seen {
				refs[key][v.RefBien] = struct{}{}
				c.BiensInteret = append(c.BiensInteret, v.RefBien)
			}
		}
		c.Visites = append(c.Visites, v)

		if d := v.ParsedDate; d != nil {
			if c.PremiereVisite == nil || d.Before(*c.PremiereVisite) {
				c.PremiereVisite = d
			}
			if c.DerniereVisite == nil || d.After(*c.DerniereVisite) {
				c.DerniereVisite = d
			}
		}
	}

	out := make([]domain.Client, 0, len(order))
	for _, k := range order {
		c := byKey[k]
		c.Statut = ClientStatus(*c, now)
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DerniereVisite, out[j].DerniereVisite
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	return out
}

// ClientStatus is recomputed from the client's counters and last visit.
func ClientStatus(c domain.Client, now time.Time) string {
	statut := domain.ClientNew
	if c.VisitesConfirmees > 0 || c.TotalVisites > 2 {
		statut = domain.ClientActive
	}
	if c.DerniereVisite != nil && c.DerniereVisite.Before(now.AddDate(0, -InactiveAfterMonths, 0)) {
		statut = domain.ClientInactive
	}
	return statut
}

// ContactLink opens a WhatsApp conversation with the client.
func ContactLink(c domain.Client) string {
	return normalize.WaLink(c.Numero, "Bonjour "+c.NomPrenom+", nous revenons vers vous concernant votre recherche immobilière.")
}
