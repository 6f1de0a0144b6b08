package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"immodash/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu           sync.Mutex
	props        []domain.RawRecord
	visits       []domain.RawRecord
	pubs         []domain.RawRecord
	stages       map[string]domain.Stage
	names        map[string]string
	images       []domain.RawRecord
	err          error
	imagesErr    error
	updateErr    error
	fetches      int
	groupFetches int
	lastLimit    int
}

func (f *fakeStore) FetchProperties(ctx context.Context) ([]domain.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.props, nil
}

func (f *fakeStore) FetchVisits(ctx context.Context) ([]domain.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visits, nil
}

func (f *fakeStore) FetchPublications(ctx context.Context, limit int) ([]domain.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	return f.pubs, nil
}

func (f *fakeStore) FetchPipelineStages(ctx context.Context) (map[string]domain.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]domain.Stage, len(f.stages))
	for k, v := range f.stages {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) UpdatePipelineStatus(ctx context.Context, id string, stage domain.Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.stages == nil {
		f.stages = map[string]domain.Stage{}
	}
	f.stages[id] = stage
	return nil
}

func (f *fakeStore) FetchGroupNames(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groupFetches++
	return f.names, nil
}

func (f *fakeStore) FetchImages(ctx context.Context) ([]domain.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.imagesErr != nil {
		return nil, f.imagesErr
	}
	return f.images, nil
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeStore) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

type fakeUsers struct{ byEmail map[string]domain.User }

func (f *fakeUsers) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errStoreDown = errors.New("store down")

func seededStore() *fakeStore {
	return &fakeStore{
		props: []domain.RawRecord{
			{"id": int64(1), "ref_bien": "REF-001", "publication_id": "pub-1", "type_de_bien": "villa", "commune": "Cocody", "quartier": "Angré", "prix": "500000", "disponible": "oui",
				"message_initial": "Belle villa 4 pièces avec piscine et jardin à Angré"},
			{"id": int64(2), "type_de_bien": "villa", "commune": "Cocody", "quartier": "Angré", "prix": "500000", "disponible": "oui",
				"message_initial": "Belle villa 4 pièces avec piscine et jardin à Angré"},
			{"id": int64(3), "type_de_bien": "studio", "commune": "Marcory", "prix": "150000", "disponible": "non", "meubles": "oui", "chambre": int64(1)},
			{"id": int64(4), "groupe_whatsapp_origine": "12345",
				"message_initial": "Je cherche une villa à Cocody pour mon client"},
		},
		visits: []domain.RawRecord{
			{"id": "10", "nom_prenom": "Awa Koné", "numero": "0707070707", "date_rv": "2026-10-20 10:00", "local_interesse": "Villa Angré", "visite_prog": "oui"},
			{"id": "11", "nom_prenom": "Yao", "numero": "0505050505", "visite_prog": "non"},
		},
		pubs: []domain.RawRecord{
			{"id": "m1", "message": "Bonjour chers collègues, je cherche un duplex à Riviera", "groupe": "555@g.us", "telephone": "2250707070707"},
			{"id": "m2", "message": "Villa 3 pièces à louer à Cocody, très propre", "groupe": "555@g.us"},
			{"id": "m3", "message": "Bonjour", "groupe": "2250101010101@c.us"},
		},
		stages: map[string]domain.Stage{"11": domain.StageNegotiation},
		names:  map[string]string{"12345@g.us": "Agents Cocody"},
		images: []domain.RawRecord{
			{"id": int64(21), "publication_id": "pub-1", "lien_image": "https://cdn.immodash.ci/pub-1/2.jpg", "image_order": int64(1)},
			{"id": int64(20), "publication_id": "pub-1", "lien_image": "https://cdn.immodash.ci/pub-1/1.jpg", "image_order": int64(0)},
			{"id": int64(22), "publication_id": "pub-9", "lien_image": "https://cdn.immodash.ci/pub-9/1.jpg"},
		},
	}
}
