package crm

import (
	"immodash/internal/domain"
)

// StageFor derives the initial board stage of a visit. Negotiation is only
// ever reached by moving a card by hand.
func StageFor(v domain.Visit) domain.Stage {
	switch {
	case v.Status == domain.VisitDone:
		return domain.StageClosed
	case v.Status == domain.VisitToday, v.VisiteProg:
		return domain.StageScheduled
	}
	return domain.StageLeads
}

// DerivePipeline maps each visit to one card. A stage stored upstream for
// the card wins over the derived one.
func DerivePipeline(visits []domain.Visit, stored map[string]domain.Stage) []domain.PipelineItem {
	out := make([]domain.PipelineItem, 0, len(visits))
	for _, v := range visits {
		stage := StageFor(v)
		if s, ok := stored[v.ID]; ok && s.Valid() {
			stage = s
		}
		out = append(out, domain.PipelineItem{
			ID:       v.ID,
			Title:    orDefault(v.NomPrenom, domain.DefaultClientName),
			Property: orDefault(v.LocalInteresse, "Bien non spécifié"),
			Date:     dateLabel(v),
			Tags:     tagsFor(v),
			Stage:    stage,
			Visit:    v,
		})
	}
	return out
}

func dateLabel(v domain.Visit) string {
	if v.ParsedDate != nil {
		return v.ParsedDate.Format("02/01/2006")
	}
	if v.DateRv != "" {
		return v.DateRv
	}
	return "Date inconnue"
}

func tagsFor(v domain.Visit) []string {
	if v.VisiteProg {
		return []string{"Programmée"}
	}
	return []string{"À planifier"}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
