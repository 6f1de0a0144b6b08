package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"immodash/internal/domain"
	"immodash/internal/geo"
)

const warmTimeout = 30 * time.Minute

type MapView struct {
	Points  []domain.MapPoint `json:"points"`
	Bounds  *geo.Bounds       `json:"bounds,omitempty"`
	Cells   map[string]int    `json:"cells"`
	Warming bool              `json:"warming"`
}

// MapService answers from the geocode cache only. Addresses it cannot place
// yet are geocoded by one background warm-up at a time.
type MapService struct {
	snaps    Snapshotter
	resolver *geo.Resolver
	quick    *geo.Resolver

	warming atomic.Bool
	wg      sync.WaitGroup
	base    context.Context
	stop    context.CancelFunc
}

func NewMapService(s Snapshotter, r *geo.Resolver) *MapService {
	base, stop := context.WithCancel(context.Background())
	return &MapService{snaps: s, resolver: r, quick: r.CacheOnly(), base: base, stop: stop}
}

func (m *MapService) Map(ctx context.Context, f PropertyFilter) (MapView, error) {
	snap, err := m.snaps.Snapshot(ctx)
	if err != nil {
		return MapView{}, err
	}
	props := FilterProperties(snap.Properties, f)
	points, misses := m.quick.Locate(ctx, props)
	if misses > 0 {
		m.warm(props)
	}
	return MapView{
		Points:  points,
		Bounds:  geo.BoundsOf(points),
		Cells:   geo.Cells(points),
		Warming: m.warming.Load(),
	}, nil
}

// warm runs the full chain detached from the request.
func (m *MapService) warm(props []domain.Property) {
	if !m.warming.CompareAndSwap(false, true) {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.warming.Store(false)
		ctx, cancel := context.WithTimeout(m.base, warmTimeout)
		defer cancel()
		start := time.Now()
		m.resolver.ResolveBatch(ctx, props)
		log.Info().Int("properties", len(props)).Dur("took", time.Since(start)).Msg("geocode warm-up done")
	}()
}

// Wait blocks until a running warm-up finishes.
func (m *MapService) Wait() { m.wg.Wait() }

// Close cancels a running warm-up and waits for it to return.
func (m *MapService) Close() {
	m.stop()
	m.wg.Wait()
}
