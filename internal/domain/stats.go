package domain

import "time"

type Stats struct {
	TotalBiens         int            `json:"totalBiens"`
	BiensDisponibles   int            `json:"biensDisponibles"`
	BiensOccupes       int            `json:"biensOccupes"`
	TauxDisponibilite  int            `json:"tauxDisponibilite"`
	TauxOccupation     int            `json:"tauxOccupation"`
	Meubles            int            `json:"meubles"`
	NonMeubles         int            `json:"nonMeubles"`
	ParType            map[string]int `json:"parType"`
	ParZone            map[string]int `json:"parZone"`
	ParCommune         map[string]int `json:"parCommune"`
	ParDisponibilite   map[string]int `json:"parDisponibilite"`
	ParChambres        map[string]int `json:"parChambres"`
	ParTranchePrix     map[string]int `json:"parTranchePrix"`
	PrixMoyen          int64          `json:"prixMoyen"`
	PrixMin            int64          `json:"prixMin"`
	PrixMax            int64          `json:"prixMax"`
	TotalVisites       int            `json:"totalVisites"`
	VisitesConfirmees  int            `json:"visitesConfirmees"`
	VisitesAujourdhui  int            `json:"visitesAujourdhui"`
	VisitesProgrammees int            `json:"visitesProgrammees"`
	VisitesTerminees   int            `json:"visitesTerminees"`
	VisitesEnAttente   int            `json:"visitesEnAttente"`
	VisitesNonConfirm  int            `json:"visitesNonConfirmees"`
	TotalClients       int            `json:"totalClients"`
}

// Snapshot is the in-memory dataset every read model is derived from.
type Snapshot struct {
	Properties []Property     `json:"properties"`
	Visits     []Visit        `json:"visits"`
	Clients    []Client       `json:"clients"`
	Pipeline   []PipelineItem `json:"pipeline"`
	Requests   Requests       `json:"requests"`
	Stats      Stats          `json:"stats"`
	LoadedAt   time.Time      `json:"loadedAt"`
}
