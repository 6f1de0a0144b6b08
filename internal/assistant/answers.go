package assistant

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"immodash/internal/domain"
	"immodash/internal/normalize"
	"immodash/internal/stats"
)

const (
	listVisits   = 3
	listRequests = 3
	listZones    = 5
	listRecent   = 5
)

func answerGreeting(Query, domain.Snapshot) string {
	return "Bonjour ! Je suis connecté à votre base de données immobilière. Que cherchez-vous ?"
}

func answerHelp(Query, domain.Snapshot) string {
	return "Je peux vous renseigner sur :\n" +
		"• le résumé du portefeuille (« résumé »)\n" +
		"• vos visites (« agenda »)\n" +
		"• les demandes WhatsApp (« demandes »)\n" +
		"• le pipeline (« prospects »)\n" +
		"• la répartition par commune (« communes »)\n" +
		"• le prix moyen (« prix moyen »)\n" +
		"• les dernières annonces (« récents »)\n" +
		"• une recherche (« villa à Cocody entre 200k et 600k »)"
}

func answerSummary(_ Query, s domain.Snapshot) string {
	st := s.Stats
	var b strings.Builder
	b.WriteString("Résumé du portefeuille :\n")
	fmt.Fprintf(&b, "• %d biens, dont %d disponibles (%d%%) et %d occupés\n",
		st.TotalBiens, st.BiensDisponibles, st.TauxDisponibilite, st.BiensOccupes)
	fmt.Fprintf(&b, "• Prix moyen : %s\n", normalize.FormatPrice(st.PrixMoyen))
	fmt.Fprintf(&b, "• %d visites, dont %d confirmées et %d aujourd'hui\n",
		st.TotalVisites, st.VisitesConfirmees, st.VisitesAujourdhui)
	fmt.Fprintf(&b, "• %d clients\n", st.TotalClients)
	fmt.Fprintf(&b, "• %d demandes d'agents, %d messages privés",
		len(s.Requests.AgentDemands), len(s.Requests.PrivateMessages))
	return b.String()
}

func answerVisits(_ Query, s domain.Snapshot) string {
	var today, upcoming []domain.Visit
	for _, v := range s.Visits {
		switch v.Status {
		case domain.VisitToday:
			today = append(today, v)
		case domain.VisitScheduled, domain.VisitPending:
			upcoming = append(upcoming, v)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := upcoming[i].ParsedDate, upcoming[j].ParsedDate
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})

	var b strings.Builder
	switch len(today) {
	case 0:
		b.WriteString("Aucune visite prévue aujourd'hui.")
	case 1:
		b.WriteString("Vous avez 1 visite aujourd'hui :")
	default:
		fmt.Fprintf(&b, "Vous avez %d visites aujourd'hui :", len(today))
	}
	for _, v := range today {
		b.WriteString("\n" + visitLine(v))
	}
	if len(upcoming) > 0 {
		b.WriteString("\nProchaines visites :")
		for _, v := range upcoming[:min(listVisits, len(upcoming))] {
			b.WriteString("\n" + visitLine(v))
		}
	}
	return b.String()
}

func visitLine(v domain.Visit) string {
	line := "• " + v.NomPrenom
	if v.LocalInteresse != "" {
		line += " : " + v.LocalInteresse
	}
	switch {
	case v.ParsedDate != nil:
		line += " (" + v.ParsedDate.Format("02/01 15:04") + ")"
	case v.DateRv != "":
		line += " (" + v.DateRv + ")"
	}
	return line
}

func answerRequests(_ Query, s domain.Snapshot) string {
	demands := s.Requests.AgentDemands
	var b strings.Builder
	fmt.Fprintf(&b, "%d demande(s) d'agents et %d message(s) privé(s).",
		len(demands), len(s.Requests.PrivateMessages))
	for _, m := range demands[:min(listRequests, len(demands))] {
		label := m.GroupLabel
		if label == "" {
			label = "Groupe inconnu"
		}
		b.WriteString("\n• " + label + " : " + excerpt(m.Body, 60))
	}
	return b.String()
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func answerPipeline(_ Query, s domain.Snapshot) string {
	counts := make(map[domain.Stage]int, len(domain.Stages))
	for _, it := range s.Pipeline {
		counts[it.Stage]++
	}
	parts := make([]string, 0, len(domain.Stages))
	for _, st := range domain.Stages {
		parts = append(parts, fmt.Sprintf("%s : %d", st.Title(), counts[st]))
	}
	return fmt.Sprintf("Vous avez %d nouveaux prospects à traiter dans le pipeline.\n%s",
		counts[domain.StageLeads], strings.Join(parts, " | "))
}

func answerZones(_ Query, s domain.Snapshot) string {
	type kv struct {
		name string
		n    int
	}
	rows := make([]kv, 0, len(s.Stats.ParCommune))
	for k, n := range s.Stats.ParCommune {
		rows = append(rows, kv{k, n})
	}
	if len(rows) == 0 {
		return "Aucun bien enregistré pour le moment."
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n > rows[j].n
		}
		return rows[i].name < rows[j].name
	})
	var b strings.Builder
	b.WriteString("Répartition par commune :")
	for _, r := range rows[:min(listZones, len(rows))] {
		fmt.Fprintf(&b, "\n• %s : %d", r.name, r.n)
	}
	if len(rows) > listZones {
		fmt.Fprintf(&b, "\n… et %d autre(s) commune(s).", len(rows)-listZones)
	}
	return b.String()
}

func answerPriceAverage(_ Query, s domain.Snapshot) string {
	avg := stats.Average(Search(s.Properties, Filter{}))
	if avg == 0 {
		return "Aucun bien disponible avec un prix connu pour calculer une moyenne."
	}
	return fmt.Sprintf("Le prix moyen des biens disponibles est de %s.", normalize.FormatPrice(avg))
}

func answerRecent(_ Query, s domain.Snapshot) string {
	type dated struct {
		p domain.Property
		t *time.Time
	}
	rows := make([]dated, 0, len(s.Properties))
	for _, p := range s.Properties {
		rows = append(rows, dated{p, normalize.ParseVisitDate(p.DatePublication)})
	}
	if len(rows) == 0 {
		return "Aucune annonce pour le moment."
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].t, rows[j].t
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	var b strings.Builder
	b.WriteString("Dernières annonces :")
	for _, r := range rows[:min(listRecent, len(rows))] {
		line := propertyLine(r.p)
		if r.t != nil {
			line += " (" + r.t.Format("02/01") + ")"
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func answerSearch(q Query, s domain.Snapshot) string {
	f := Filter{
		Type:            q.Type,
		Zone:            q.Zone,
		Price:           q.Price,
		IncludeOccupied: hasWord(q.Text, "tous", "toutes", "occupe"),
	}
	found := Search(s.Properties, f)
	if len(found) == 0 {
		return "Je n'ai trouvé aucun bien correspondant. Essayez sans filtres, par exemple « villa » ou « Cocody »."
	}

	var b strings.Builder
	what := "bien(s)"
	if q.Type != "" {
		what = strings.ToLower(q.Type) + "(s)"
	}
	fmt.Fprintf(&b, "J'ai trouvé %d %s", len(found), what)
	if !f.IncludeOccupied {
		b.WriteString(" disponible(s)")
	}
	if q.Zone != "" {
		b.WriteString(" à " + q.Zone)
	}
	if q.Price != nil {
		b.WriteString(" " + describePrice(q.Price))
	}
	b.WriteString(" :")
	for _, p := range found[:min(MaxResults, len(found))] {
		b.WriteString("\n" + propertyLine(p))
	}
	if extra := len(found) - MaxResults; extra > 0 {
		fmt.Fprintf(&b, "\n+%d autre(s). Affinez votre recherche.", extra)
	}
	if hasWord(q.Text, "moyen", "moyenne") {
		if avg := stats.Average(found); avg > 0 {
			fmt.Fprintf(&b, "\nPrix moyen : %s.", normalize.FormatPrice(avg))
		}
	}
	return b.String()
}

func describePrice(f *PriceFilter) string {
	switch {
	case f.Min > 0 && f.Max > 0:
		return "entre " + normalize.FormatPrice(f.Min) + " et " + normalize.FormatPrice(f.Max)
	case f.Max > 0:
		return "à moins de " + normalize.FormatPrice(f.Max)
	}
	return "à partir de " + normalize.FormatPrice(f.Min)
}

func propertyLine(p domain.Property) string {
	line := "• " + p.TypeBien
	if loc := p.Location(); loc != "" {
		line += " à " + loc
	}
	line += " : " + p.PrixFormate
	if p.Chambres > 0 {
		line += fmt.Sprintf(", %d ch.", p.Chambres)
	}
	if p.RefBien != "" {
		line += " [" + p.RefBien + "]"
	}
	return line
}

func answerCount(_ Query, s domain.Snapshot) string {
	return fmt.Sprintf("Nous avons actuellement %d biens au total, dont %d disponibles. Dites par exemple « Chercher villa à Cocody ».",
		len(s.Properties), len(Search(s.Properties, Filter{})))
}

func answerPoliteness(Query, domain.Snapshot) string {
	return "Avec plaisir !"
}

func answerFallback(Query, domain.Snapshot) string {
	return "Je n'ai pas bien compris. Tapez « aide » pour voir ce que je peux faire."
}
