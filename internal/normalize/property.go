package normalize

import (
	"math"
	"strings"
	"unicode/utf8"

	"immodash/internal/domain"
)

// NormalizeProperty converts a raw listing row. It never fails: missing
// fields fall back to empty strings, zero or false.
func NormalizeProperty(raw domain.RawRecord) domain.Property {
	if raw == nil {
		raw = domain.RawRecord{}
	}
	price := ParsePrice(firstRawAlias(raw, propertyAliases, "prix"))
	dispo := ParseBool(firstRawAlias(raw, propertyAliases, "disponible"))
	carac := firstAlias(raw, propertyAliases, "caracteristiques")
	desc := firstAlias(raw, propertyAliases, "message")
	if desc == "" {
		desc = carac
	}

	p := domain.Property{
		ID:               firstAlias(raw, propertyAliases, "id"),
		RefBien:          firstAlias(raw, propertyAliases, "ref_bien"),
		PublicationID:    firstAlias(raw, propertyAliases, "publication_id"),
		ContentHash:      firstAlias(raw, propertyAliases, "content_hash"),
		TypeBien:         CanonicalType(firstAlias(raw, propertyAliases, "type_bien")),
		TypeOffre:        firstAlias(raw, propertyAliases, "type_offre"),
		Zone:             firstAlias(raw, propertyAliases, "zone"),
		Commune:          firstAlias(raw, propertyAliases, "commune"),
		Quartier:         firstAlias(raw, propertyAliases, "quartier"),
		RawPrice:         price,
		PrixFormate:      FormatPrice(price),
		Disponible:       dispo,
		Meuble:           ParseBool(firstRawAlias(raw, propertyAliases, "meuble")),
		Chambres:         intFlexible(firstRawAlias(raw, propertyAliases, "chambres")),
		Status:           domain.StatusOccupied,
		DatePublication:  ShortDate(firstRawAlias(raw, propertyAliases, "date_publication")),
		PubliePar:        firstAlias(raw, propertyAliases, "publie_par"),
		Expediteur:       firstAlias(raw, propertyAliases, "expediteur"),
		GroupeWhatsApp:   firstAlias(raw, propertyAliases, "groupe"),
		ImageURL:         firstAlias(raw, propertyAliases, "image"),
		Caracteristiques: carac,
		Description:      desc,
		Features:         SplitFeatures(carac),
		Telephone:        firstAlias(raw, propertyAliases, "telephone"),
	}
	if dispo {
		p.Status = domain.StatusAvailable
	}
	p.Coordinates = storedCoordinates(raw)
	return p
}

// storedCoordinates returns the row's own position, nil when absent, zero or out of range.
func storedCoordinates(raw domain.RawRecord) *domain.Coordinates {
	lat, okLat := floatFlexible(firstRawAlias(raw, propertyAliases, "latitude"))
	lng, okLng := floatFlexible(firstRawAlias(raw, propertyAliases, "longitude"))
	if !okLat || !okLng || (lat == 0 && lng == 0) {
		return nil
	}
	if math.Abs(lat) > 90 || math.Abs(lng) > 180 || math.IsNaN(lat) || math.IsNaN(lng) {
		return nil
	}
	return &domain.Coordinates{Lat: lat, Lng: lng}
}

// NormalizeProperties maps NormalizeProperty over rows.
func NormalizeProperties(rows []domain.RawRecord) []domain.Property {
	out := make([]domain.Property, 0, len(rows))
	for _, r := range rows {
		out = append(out, NormalizeProperty(r))
	}
	return out
}

const (
	fingerprintMaxLen = 250
	fingerprintMinLen = 20
)

// TextFingerprint reduces a description to its first 250 ASCII letters and digits.
func TextFingerprint(s string) string {
	var b strings.Builder
	for _, r := range Fold(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == fingerprintMaxLen {
				break
			}
		}
	}
	return b.String()
}

// Dedupe drops listings whose description reads like a search request
// (returned separately) and repeated listings. A listing repeats an earlier
// one when it shares its publication id, its content hash, or its text fingerprint.
func Dedupe(props []domain.Property, isDemand func(string) bool) (kept, demands []domain.Property) {
	seenPub := make(map[string]struct{}, len(props))
	seenHash := make(map[string]struct{}, len(props))
	seenText := make(map[string]struct{}, len(props))
	kept = make([]domain.Property, 0, len(props))

	for _, p := range props {
		if isDemand != nil && isDemand(p.Description) {
			demands = append(demands, p)
			continue
		}
		pubKey := p.PublicationID
		if pubKey == "" {
			pubKey = "id:" + p.ID
		}
		if _, dup := seenPub[pubKey]; dup {
			continue
		}
		seenPub[pubKey] = struct{}{}

		if p.ContentHash != "" {
			if _, dup := seenHash[p.ContentHash]; dup {
				continue
			}
			seenHash[p.ContentHash] = struct{}{}
		}

		if utf8.RuneCountInString(p.Description) > fingerprintMinLen {
			if fp := TextFingerprint(p.Description); len(fp) > fingerprintMinLen {
				if _, dup := seenText[fp]; dup {
					continue
				}
				seenText[fp] = struct{}{}
			}
		}
		kept = append(kept, p)
	}
	return kept, demands
}
