package normalize_test

import (
	"testing"
	"time"

	"immodash/internal/domain"
	"immodash/internal/normalize"
)

func TestNormalizeProperty_Defaults(t *testing.T) {
	p := normalize.NormalizeProperty(nil)
	if p.TypeBien != "Autre" || p.RawPrice != 0 || p.PrixFormate != "N/A" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.Disponible || p.Status != domain.StatusOccupied {
		t.Fatalf("empty record must be occupied, got %+v", p)
	}
}

func TestNormalizeProperty_DatabaseRow(t *testing.T) {
	raw := domain.RawRecord{
		"id":                      float64(12),
		"type_de_bien":            "  villa ",
		"type_offre":              "Location",
		"zone_geographique":       "Cocody, Riviera 3",
		"commune":                 "Cocody",
		"quartier":                "Riviera 3",
		"prix":                    "1 200 000 FCFA",
		"disponible":              "OUI",
		"meubles":                 "non",
		"chambre":                 "4",
		"caracteristiques":        "piscine, garage | jardin",
		"groupe_whatsapp_origine": "120363041234@g.us",
		"telephone_bien":          "07 07 12 34 56",
	}
	p := normalize.NormalizeProperty(raw)
	if p.ID != "12" {
		t.Fatalf("id: %q", p.ID)
	}
	if p.TypeBien != "Villa" {
		t.Fatalf("type: %q", p.TypeBien)
	}
	if p.RawPrice != 1200000 || p.PrixFormate != "1.2M FCFA" {
		t.Fatalf("price: %d %q", p.RawPrice, p.PrixFormate)
	}
	if !p.Disponible || p.Status != domain.StatusAvailable || p.Meuble {
		t.Fatalf("flags: %+v", p)
	}
	if p.Chambres != 4 {
		t.Fatalf("chambres: %d", p.Chambres)
	}
	if len(p.Features) != 3 || p.Features[2] != "jardin" {
		t.Fatalf("features: %v", p.Features)
	}
	if p.Description != "piscine, garage | jardin" {
		t.Fatalf("description should fall back to caracteristiques, got %q", p.Description)
	}
}

func TestNormalizeProperty_SheetHeaders(t *testing.T) {
	p := normalize.NormalizeProperty(domain.RawRecord{
		"Type de bien": "Entrepot",
		"Prix":         "750000",
		"Disponible":   true,
	})
	if p.TypeBien != "Entrepôt" || p.RawPrice != 750000 || !p.Disponible {
		t.Fatalf("unexpected: %+v", p)
	}
}

func TestStatusMatchesAvailability(t *testing.T) {
	values := []any{nil, "", "oui", "Oui", "OUI", "non", "true", "yes", true, false, float64(1)}
	for _, v := range values {
		p := normalize.NormalizeProperty(domain.RawRecord{"disponible": v})
		if (p.Status == domain.StatusAvailable) != p.Disponible {
			t.Fatalf("disponible=%v status=%q for %#v", p.Disponible, p.Status, v)
		}
	}
}

func TestCanonicalType(t *testing.T) {
	cases := map[string]string{
		"":                 "Autre",
		"STUDIO":           "Studio",
		"résidence":        "Résidence",
		"Residence":        "Résidence",
		"local commercial": "Local commercial",
		"rez de chaussée":  "Rez-de-chaussée",
		"MAGASIN":          "Magasin",
		"maison BASSE":     "Maison basse",
		"écurie":           "Écurie",
	}
	for in, want := range cases {
		if got := normalize.CanonicalType(in); got != want {
			t.Errorf("CanonicalType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFold(t *testing.T) {
	if got := normalize.Fold("  Biétry À Port-Bouët "); got != "bietry a port-bouet" {
		t.Fatalf("Fold: %q", got)
	}
	if got := normalize.Fold("jusqu’à"); got != "jusqu'a" {
		t.Fatalf("Fold apostrophe: %q", got)
	}
}

func TestLower(t *testing.T) {
	// "a" + combining grave composes to "à"
	if got := normalize.Lower("  Villa A\u0300 LOUER "); got != "villa à louer" {
		t.Fatalf("Lower: %q", got)
	}
	if got := normalize.Lower("Quelqu’un"); got != "quelqu'un" {
		t.Fatalf("Lower apostrophe: %q", got)
	}
}

func TestNormalizeVisit(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	v := normalize.NormalizeVisit(domain.RawRecord{
		"id":              7,
		"numero":          "0707123456",
		"date_rv":         "09/03/2026",
		"visite_prog":     "Oui",
		"local_interesse": "Cocody, Angré",
	}, now)
	if v.NomPrenom != domain.DefaultClientName {
		t.Fatalf("name default: %q", v.NomPrenom)
	}
	if v.ParsedDate == nil || v.ParsedDate.Day() != 9 || v.ParsedDate.Hour() != 10 {
		t.Fatalf("parsed date: %v", v.ParsedDate)
	}
	if v.Status != domain.VisitDone {
		t.Fatalf("status: %q", v.Status)
	}
	if v.DateRv != "09/03/2026" {
		t.Fatalf("raw date kept: %q", v.DateRv)
	}
}

func TestNormalizeVisit_UnparseableDate(t *testing.T) {
	now := time.Now()
	v := normalize.NormalizeVisit(domain.RawRecord{"date_rv": "demain matin", "visite_prog": true}, now)
	if v.ParsedDate != nil {
		t.Fatalf("expected nil date, got %v", v.ParsedDate)
	}
	if v.Status != domain.VisitPending || v.DateRv != "demain matin" {
		t.Fatalf("unexpected: %+v", v)
	}
}

func TestVisitStatus(t *testing.T) {
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	at := func(d time.Time) *time.Time { return &d }
	cases := []struct {
		name string
		prog bool
		date *time.Time
		want string
	}{
		{"not scheduled", false, at(now), domain.VisitUnconfirmed},
		{"no date", true, nil, domain.VisitPending},
		{"yesterday", true, at(now.AddDate(0, 0, -1)), domain.VisitDone},
		{"earlier today", true, at(now.Add(-8 * time.Hour)), domain.VisitToday},
		{"later today", true, at(now.Add(14 * time.Hour)), domain.VisitToday},
		{"tomorrow", true, at(now.AddDate(0, 0, 1)), domain.VisitScheduled},
	}
	for _, c := range cases {
		if got := normalize.VisitStatus(c.prog, c.date, now); got != c.want {
			t.Errorf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}

func TestParseVisitDate(t *testing.T) {
	for _, s := range []string{"2026-03-09", "2026-03-09T14:30:00Z", "2026-03-09 14:30:00", "09/03/2026 14:30"} {
		if d := normalize.ParseVisitDate(s); d == nil || d.Day() != 9 || d.Month() != time.March {
			t.Errorf("ParseVisitDate(%q) = %v", s, d)
		}
	}
	for _, s := range []any{"", "n/a", "32/13/2026", nil, 12} {
		if d := normalize.ParseVisitDate(s); d != nil {
			t.Errorf("ParseVisitDate(%#v) = %v, want nil", s, d)
		}
	}
}

func TestClientKey(t *testing.T) {
	a := normalize.ClientKey("07 07 12 34 56", "Kouassi")
	b := normalize.ClientKey("07-07-12-34-56", "K. Kouassi")
	if a == "" || a != b {
		t.Fatalf("same number must share a key: %q vs %q", a, b)
	}
	if got := normalize.ClientKey("", "  Awa KONE "); got != "awa kone" {
		t.Fatalf("name fallback: %q", got)
	}
}

func TestNormalizeMessage(t *testing.T) {
	m := normalize.NormalizeMessage(domain.RawRecord{
		"id":         "ABC",
		"message":    nil,
		"groupe":     "1203630@g.us",
		"telephone":  "0102030405",
		"expediteur": "Yao",
	})
	if m.Body != "" || m.Source != "1203630@g.us" || m.Sender != "Yao" {
		t.Fatalf("unexpected: %+v", m)
	}
}
