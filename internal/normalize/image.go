package normalize

import (
	"sort"

	"immodash/internal/domain"
)

// NormalizeImage converts a raw photo row.
func NormalizeImage(raw domain.RawRecord) domain.Image {
	if raw == nil {
		raw = domain.RawRecord{}
	}
	return domain.Image{
		ID:            firstAlias(raw, imageAliases, "id"),
		PublicationID: firstAlias(raw, imageAliases, "publication_id"),
		URL:           firstAlias(raw, imageAliases, "url"),
		ThumbURL:      firstAlias(raw, imageAliases, "thumb"),
		Order:         intFlexible(firstRawAlias(raw, imageAliases, "order")),
		MessageID:     firstAlias(raw, imageAliases, "message_id"),
		Horodatage:    ShortDate(firstRawAlias(raw, imageAliases, "horodatage")),
	}
}

// GroupImages buckets photo rows by publication id, each bucket in image
// order. Rows without a publication id are dropped.
func GroupImages(rows []domain.RawRecord) map[string][]domain.Image {
	out := make(map[string][]domain.Image)
	for _, r := range rows {
		img := NormalizeImage(r)
		if img.PublicationID == "" {
			continue
		}
		out[img.PublicationID] = append(out[img.PublicationID], img)
	}
	for _, imgs := range out {
		sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Order < imgs[j].Order })
	}
	return out
}

// AttachImages links each property to the photos of its publication. The
// listing's own image stays primary; the first linked photo fills it when empty.
func AttachImages(props []domain.Property, byPub map[string][]domain.Image) []domain.Property {
	for i := range props {
		p := &props[i]
		if p.PublicationID == "" {
			continue
		}
		imgs := byPub[p.PublicationID]
		if len(imgs) == 0 {
			continue
		}
		p.Images = imgs
		p.PhotoCount = len(imgs)
		p.ImageURLs = make([]string, 0, len(imgs))
		for _, img := range imgs {
			if img.URL != "" {
				p.ImageURLs = append(p.ImageURLs, img.URL)
			}
		}
		if p.ImageURL == "" && len(p.ImageURLs) > 0 {
			p.ImageURL = p.ImageURLs[0]
		}
	}
	return props
}

// WithImages keeps the listings that have something to show in a gallery.
func WithImages(props []domain.Property) []domain.Property {
	out := make([]domain.Property, 0, len(props))
	for _, p := range props {
		if p.ImageURL != "" || len(p.Images) > 0 {
			out = append(out, p)
		}
	}
	return out
}
