package domain

import "time"

const (
	VisitUnconfirmed = "Non confirmée"
	VisitPending     = "En attente"
	VisitDone        = "Terminée"
	VisitToday       = "Aujourd'hui"
	VisitScheduled   = "Programmée"
)

const DefaultClientName = "Client Inconnu"

type Visit struct {
	ID             string     `json:"id"`
	NomPrenom      string     `json:"nomPrenom"`
	Numero         string     `json:"numero"`
	DateRv         string     `json:"dateRv"`
	ParsedDate     *time.Time `json:"parsedDate"`
	LocalInteresse string     `json:"localInteresse"`
	RefBien        string     `json:"refBien,omitempty"`
	VisiteProg     bool       `json:"visiteProg"`
	Status         string     `json:"status"`
}

const (
	ClientActive   = "Actif"
	ClientInactive = "Inactif"
	ClientNew      = "Nouveau"
)

// Client is folded from visits sharing the same phone number or name.
type Client struct {
	ID                int        `json:"id"`
	Key               string     `json:"key"`
	NomPrenom         string     `json:"nomPrenom"`
	Numero            string     `json:"numero"`
	TotalVisites      int        `json:"totalVisites"`
	VisitesConfirmees int        `json:"visitesConfirmees"`
	ZonesInteret      []string   `json:"zonesInteret"`
	BiensInteret      []string   `json:"biensInteret"`
	Visites           []Visit    `json:"visites"`
	PremiereVisite    *time.Time `json:"premiereVisite"`
	DerniereVisite    *time.Time `json:"derniereVisite"`
	Statut            string     `json:"statut"`
}
