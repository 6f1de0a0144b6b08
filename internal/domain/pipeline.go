package domain

type Stage string

const (
	StageLeads       Stage = "leads"
	StageScheduled   Stage = "scheduled"
	StageNegotiation Stage = "negotiation"
	StageClosed      Stage = "closed"
)

// Stages lists the board columns in display order.
var Stages = []Stage{StageLeads, StageScheduled, StageNegotiation, StageClosed}

func (s Stage) Valid() bool {
	switch s {
	case StageLeads, StageScheduled, StageNegotiation, StageClosed:
		return true
	}
	return false
}

// Title is the column heading shown on the board.
func (s Stage) Title() string {
	switch s {
	case StageLeads:
		return "Prospects"
	case StageScheduled:
		return "Visites Programmées"
	case StageNegotiation:
		return "Offres en cours"
	case StageClosed:
		return "Signé / Terminé"
	}
	return string(s)
}

type PipelineItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Property string   `json:"property"`
	Date     string   `json:"date"`
	Tags     []string `json:"tags"`
	Stage    Stage    `json:"stage"`
	Visit    Visit    `json:"visit"`
}
