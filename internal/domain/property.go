package domain

// RawRecord is one row as returned by the data store: column name -> value.
// Values may be strings, numbers, booleans, time.Time or nil.
type RawRecord = map[string]any

const (
	StatusAvailable = "Disponible"
	StatusOccupied  = "Occupé"
)

// Property is a listing after normalization.
type Property struct {
	ID               string   `json:"id"`
	RefBien          string   `json:"refBien,omitempty"`
	PublicationID    string   `json:"publicationId,omitempty"`
	ContentHash      string   `json:"contentHash,omitempty"`
	TypeBien         string   `json:"typeBien"`
	TypeOffre        string   `json:"typeOffre"`
	Zone             string   `json:"zone"`
	Commune          string   `json:"commune"`
	Quartier         string   `json:"quartier"`
	RawPrice         int64    `json:"rawPrice"`
	PrixFormate      string   `json:"prixFormate"`
	Disponible       bool     `json:"disponible"`
	Meuble           bool     `json:"meuble"`
	Chambres         int      `json:"chambres"`
	Status           string   `json:"status"`
	DatePublication  string   `json:"datePublication"`
	PubliePar        string   `json:"publiePar"`
	Expediteur       string   `json:"expediteur"`
	GroupeWhatsApp   string   `json:"groupeWhatsApp"`
	ImageURL         string   `json:"imageUrl"`
	Caracteristiques string   `json:"caracteristiques"`
	Description      string   `json:"description"`
	Features         []string `json:"features"`
	Telephone        string   `json:"telephone"`
	// Coordinates is set when the row already carries a valid position.
	Coordinates *Coordinates `json:"coordinates,omitempty"`

	// Photos linked through the images table by publication id.
	Images     []Image  `json:"images,omitempty"`
	ImageURLs  []string `json:"imageUrls,omitempty"`
	PhotoCount int      `json:"photoCount"`
}

// Image is one WhatsApp photo attached to a publication.
type Image struct {
	ID            string `json:"id"`
	PublicationID string `json:"publicationId"`
	URL           string `json:"url"`
	ThumbURL      string `json:"thumbUrl,omitempty"`
	Order         int    `json:"order"`
	MessageID     string `json:"messageId,omitempty"`
	Horodatage    string `json:"horodatage,omitempty"`
}

// Location joins commune and quartier for display, falling back to zone.
func (p Property) Location() string {
	switch {
	case p.Commune != "" && p.Quartier != "":
		return p.Commune + " - " + p.Quartier
	case p.Commune != "":
		return p.Commune
	case p.Quartier != "":
		return p.Quartier
	}
	return p.Zone
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapPoint is a property enriched for map rendering.
type MapPoint struct {
	Property    Property    `json:"property"`
	Coordinates Coordinates `json:"coordinates"`
	Cell        string      `json:"cell"`
}
