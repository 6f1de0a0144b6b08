package normalize

import (
	"strings"

	"immodash/internal/domain"
)

// NormalizeMessage converts a raw publication row. A missing body is "".
func NormalizeMessage(raw domain.RawRecord) domain.Message {
	if raw == nil {
		raw = domain.RawRecord{}
	}
	m := domain.Message{
		ID:        firstAlias(raw, messageAliases, "id"),
		Source:    firstAlias(raw, messageAliases, "source"),
		Phone:     firstAlias(raw, messageAliases, "phone"),
		Sender:    firstAlias(raw, messageAliases, "sender"),
		GroupName: firstAlias(raw, messageAliases, "group"),
		Timestamp: ShortDate(firstRawAlias(raw, messageAliases, "timestamp")),
	}
	// The body keeps its whitespace: length checks run on the raw text.
	if v := firstRawAlias(raw, messageAliases, "message"); v != nil {
		m.Body = stringify(v)
	}
	return m
}

func NormalizeMessages(rows []domain.RawRecord) []domain.Message {
	out := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, NormalizeMessage(r))
	}
	return out
}

// ListingAsMessage turns a listing whose text is a search request into a
// group message. Its group id is forced to the @g.us form.
func ListingAsMessage(p domain.Property) domain.Message {
	group := p.GroupeWhatsApp
	source := "groupe@g.us"
	if group != "" {
		source = group
		if !strings.Contains(group, "@") {
			source = group + "@g.us"
		}
	}
	phone := p.Telephone
	return domain.Message{
		ID:          "locaux_" + p.ID,
		Body:        p.Description,
		Source:      source,
		Phone:       phone,
		Sender:      p.Expediteur,
		GroupName:   group,
		Timestamp:   p.DatePublication,
		FromListing: true,
		RefBien:     p.RefBien,
	}
}
