package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"immodash/internal/adapters/observability"
	"immodash/internal/classify"
	"immodash/internal/crm"
	"immodash/internal/domain"
	"immodash/internal/normalize"
	"immodash/internal/stats"
)

const (
	DefaultSnapshotTTL       = 5 * time.Minute
	DefaultPublicationsLimit = 500

	// GroupNamesKey holds the jid -> name table in the group cache.
	GroupNamesKey = "groups:names"
	groupNamesTTL = 3600
)

// Snapshotter hands out the current dataset.
type Snapshotter interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Refresh(ctx context.Context) (domain.Snapshot, error)
	Invalidate()
}

// Sources is one round of raw store reads.
type Sources struct {
	Properties   []domain.RawRecord
	Visits       []domain.RawRecord
	Publications []domain.RawRecord
	Stages       map[string]domain.Stage
	GroupNames   map[string]string
	Images       []domain.RawRecord
}

// Derive builds every read model from raw rows. It is pure: same sources and
// now give the same snapshot.
func Derive(src Sources, c *classify.Classifier, now time.Time) (domain.Snapshot, classify.Result) {
	props := normalize.NormalizeProperties(src.Properties)
	kept, demandListings := normalize.Dedupe(props, c.IsDemandText)
	kept = normalize.AttachImages(kept, normalize.GroupImages(src.Images))
	visits := normalize.NormalizeVisits(src.Visits, now)

	msgs := normalize.NormalizeMessages(src.Publications)
	for _, p := range demandListings {
		msgs = append(msgs, normalize.ListingAsMessage(p))
	}
	res := c.Classify(msgs)
	classify.Decorate(res.AgentDemands, src.GroupNames)
	classify.Decorate(res.PrivateMessages, src.GroupNames)

	return domain.Snapshot{
		Properties: kept,
		Visits:     visits,
		Clients:    crm.DeriveClients(visits, now),
		Pipeline:   crm.DerivePipeline(visits, src.Stages),
		Requests: domain.Requests{
			AgentDemands:    res.AgentDemands,
			PrivateMessages: res.PrivateMessages,
		},
		Stats:    stats.Compute(kept, visits),
		LoadedAt: now,
	}, res
}

type SnapshotOption func(*SnapshotCache)

func WithTTL(d time.Duration) SnapshotOption { return func(s *SnapshotCache) { s.ttl = d } }

func WithClock(now func() time.Time) SnapshotOption { return func(s *SnapshotCache) { s.now = now } }

func WithPublicationsLimit(n int) SnapshotOption {
	return func(s *SnapshotCache) { s.limit = n }
}

// WithGroupCache keeps group names in c between refreshes.
func WithGroupCache(c domain.Cache) SnapshotOption { return func(s *SnapshotCache) { s.cache = c } }

// SnapshotCache holds the last derived snapshot for ttl. Refreshes are not
// coalesced: concurrent callers on an expired cache each fetch.
type SnapshotCache struct {
	store      domain.Store
	classifier *classify.Classifier
	cache      domain.Cache
	ttl        time.Duration
	limit      int
	now        func() time.Time

	mu      sync.Mutex
	snap    *domain.Snapshot
	expired bool
}

func NewSnapshotCache(store domain.Store, c *classify.Classifier, opts ...SnapshotOption) *SnapshotCache {
	s := &SnapshotCache{
		store:      store,
		classifier: c,
		ttl:        DefaultSnapshotTTL,
		limit:      DefaultPublicationsLimit,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns the cached snapshot while it is fresh, else refreshes.
func (s *SnapshotCache) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	if s.snap != nil && !s.expired && s.now().Sub(s.snap.LoadedAt) < s.ttl {
		snap := *s.snap
		s.mu.Unlock()
		return snap, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh reloads from the store. On failure the last good snapshot is
// returned if there is one.
func (s *SnapshotCache) Refresh(ctx context.Context) (domain.Snapshot, error) {
	src, err := s.fetch(ctx)
	if err != nil {
		s.mu.Lock()
		last := s.snap
		s.mu.Unlock()
		if last != nil {
			observability.ObserveSnapshot("stale")
			log.Warn().Err(err).Time("loaded_at", last.LoadedAt).Msg("snapshot refresh failed; serving last good")
			return *last, nil
		}
		observability.ObserveSnapshot("error")
		return domain.Snapshot{}, err
	}

	snap, res := Derive(src, s.classifier, s.now())
	observability.ObserveSnapshot("ok")
	observability.ObserveTriage(len(res.AgentDemands), len(res.PrivateMessages), res.Discarded, res.Duplicates)
	log.Debug().
		Int("properties", len(snap.Properties)).
		Int("visits", len(snap.Visits)).
		Int("demands", len(res.AgentDemands)).
		Msg("snapshot refreshed")

	s.mu.Lock()
	s.snap = &snap
	s.expired = false
	s.mu.Unlock()
	return snap, nil
}

// Invalidate forces the next Snapshot call to refetch.
func (s *SnapshotCache) Invalidate() {
	s.mu.Lock()
	s.expired = true
	s.mu.Unlock()
}

func (s *SnapshotCache) fetch(ctx context.Context) (Sources, error) {
	var src Sources
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		src.Properties, err = s.store.FetchProperties(gctx)
		if err != nil {
			return fmt.Errorf("fetch properties: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		src.Visits, err = s.store.FetchVisits(gctx)
		if err != nil {
			return fmt.Errorf("fetch visits: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		src.Publications, err = s.store.FetchPublications(gctx, s.limit)
		if err != nil {
			return fmt.Errorf("fetch publications: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		src.Stages, err = s.store.FetchPipelineStages(gctx)
		if err != nil {
			return fmt.Errorf("fetch pipeline stages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// names only decorate labels; a failure degrades to derived labels
		src.GroupNames = s.groupNames(gctx)
		return nil
	})
	g.Go(func() error {
		// photos are optional too; listings keep their own lien_image
		imgs, err := s.store.FetchImages(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("images unavailable")
			return nil
		}
		src.Images = imgs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Sources{}, err
	}
	return src, nil
}

func (s *SnapshotCache) groupNames(ctx context.Context) map[string]string {
	names := map[string]string{}
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, GroupNamesKey, &names); ok && err == nil {
			return names
		}
	}
	fetched, err := s.store.FetchGroupNames(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("group names unavailable")
		return names
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, GroupNamesKey, fetched, groupNamesTTL); err != nil {
			log.Warn().Err(err).Msg("group names cache write failed")
		}
	}
	return fetched
}
