package normalize

import (
	"time"

	"immodash/internal/domain"
)

// NormalizeVisit converts a raw visit row. Status is computed against now.
func NormalizeVisit(raw domain.RawRecord, now time.Time) domain.Visit {
	if raw == nil {
		raw = domain.RawRecord{}
	}
	rawDate := firstRawAlias(raw, visitAliases, "date_rv")
	parsed := ParseVisitDate(rawDate)
	prog := ParseBool(firstRawAlias(raw, visitAliases, "visite_prog"))

	name := firstAlias(raw, visitAliases, "nom_prenom")
	if name == "" {
		name = domain.DefaultClientName
	}
	return domain.Visit{
		ID:             firstAlias(raw, visitAliases, "id"),
		NomPrenom:      name,
		Numero:         firstAlias(raw, visitAliases, "numero"),
		DateRv:         lookupDisplay(rawDate),
		ParsedDate:     parsed,
		LocalInteresse: firstAlias(raw, visitAliases, "local"),
		RefBien:        firstAlias(raw, visitAliases, "ref_bien"),
		VisiteProg:     prog,
		Status:         VisitStatus(prog, parsed, now),
	}
}

func NormalizeVisits(rows []domain.RawRecord, now time.Time) []domain.Visit {
	out := make([]domain.Visit, 0, len(rows))
	for _, r := range rows {
		out = append(out, NormalizeVisit(r, now))
	}
	return out
}

// Refresh recomputes the date-dependent status of visits for a new now.
func Refresh(visits []domain.Visit, now time.Time) {
	for i := range visits {
		visits[i].Status = VisitStatus(visits[i].VisiteProg, visits[i].ParsedDate, now)
	}
}

// lookupDisplay keeps the raw text of a date for display.
func lookupDisplay(v any) string {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006 15:04")
	}
	return stringify(v)
}
