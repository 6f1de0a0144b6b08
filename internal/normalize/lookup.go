package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

/********** alias registries (single source of truth) **********/

// Database column names first, legacy spreadsheet headers after.
var propertyAliases = map[string][]string{
	"id":               {"id", "ID"},
	"ref_bien":         {"ref_bien", "reference", "Ref Bien", "ref"},
	"publication_id":   {"publication_id", "publicationId"},
	"content_hash":     {"content_hash", "contentHash"},
	"type_bien":        {"type_de_bien", "type_bien", "typeBien", "Type de bien", "type"},
	"type_offre":       {"type_offre", "typeOffre", "Type d'offre", "offre"},
	"zone":             {"zone_geographique", "zone", "Zone", "Zone géographique"},
	"commune":          {"commune", "Commune"},
	"quartier":         {"quartier", "Quartier"},
	"prix":             {"prix", "Prix", "price", "loyer"},
	"disponible":       {"disponible", "Disponible", "disponibilite", "Disponibilité"},
	"meuble":           {"meubles", "meuble", "Meublé", "Meublés"},
	"chambres":         {"chambre", "chambres", "nombre_de_chambres", "Chambres", "Nombre de chambres"},
	"date_publication": {"date_publication", "Date de publication", "created_at"},
	"publie_par":       {"publie_par", "Publié par"},
	"expediteur":       {"expediteur", "Expéditeur"},
	"groupe":           {"groupe_whatsapp_origine", "groupe_whatsapp", "Groupe WhatsApp"},
	"image":            {"lien_image", "image_url", "imageUrl", "Image"},
	"caracteristiques": {"caracteristiques", "Caractéristiques"},
	"message":          {"message_initial", "description", "Description"},
	"telephone":        {"telephone_bien", "telephone", "telephone_expediteur", "Téléphone"},
	"telephone_exp":    {"telephone_expediteur", "telephone_bien", "telephone"},
	"latitude":         {"latitude", "lat"},
	"longitude":        {"longitude", "lng", "lon"},
}

var visitAliases = map[string][]string{
	"id":          {"id", "ID"},
	"nom_prenom":  {"nom_prenom", "Nom & Prénom", "Nom et Prénom", "nom"},
	"numero":      {"numero", "Numéro", "telephone", "phone"},
	"date_rv":     {"date_rv", "Date RV", "date", "date_visite"},
	"local":       {"local_interesse", "Local intéressé", "localInteresse"},
	"ref_bien":    {"ref_bien", "Ref Bien"},
	"visite_prog": {"visite_prog", "Visite prog", "visiteProg"},
}

var imageAliases = map[string][]string{
	"id":             {"id"},
	"publication_id": {"publication_id", "publicationId"},
	"url":            {"lien_image", "url", "image_url"},
	"thumb":          {"lien_thumb", "thumb_url"},
	"order":          {"image_order", "order", "position"},
	"message_id":     {"message_id", "messageId"},
	"horodatage":     {"horodatage", "created_at"},
}

var messageAliases = map[string][]string{
	"id":        {"id", "message_id"},
	"message":   {"message", "body", "text"},
	"source":    {"groupe", "source", "chat_id", "remote_jid"},
	"phone":     {"telephone", "phone", "sender_phone"},
	"sender":    {"expediteur", "sender", "push_name"},
	"group":     {"nom_groupe", "group_name"},
	"timestamp": {"horodatage", "created_at", "timestamp"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	if v, ok := m[path]; ok {
		return v
	}
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr renders whatever sits at path as a trimmed string.
func lookupStr(m map[string]any, path string) string {
	return strings.TrimSpace(stringify(lookupAny(m, path)))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// firstAlias returns the first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstRawAlias returns the first non-nil raw value for a named alias set.
func firstRawAlias(m map[string]any, aliases map[string][]string, key string) any {
	for _, p := range aliases[key] {
		if v := lookupAny(m, p); v != nil {
			if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

// intFlexible reads a non-negative int from float64/int/string values like "3" or "3 ch".
func intFlexible(v any) int {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return int(t)
		}
	case int:
		if t > 0 {
			return t
		}
	case int64:
		if t > 0 {
			return int(t)
		}
	case string, []byte:
		s := strings.TrimSpace(stringify(t))
		end := 0
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if n, err := strconv.Atoi(s[:end]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// floatFlexible reads a float from native numbers or numeric strings ("5,349" included).
func floatFlexible(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string, []byte:
		s := strings.ReplaceAll(strings.TrimSpace(stringify(t)), ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
