package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"immodash/internal/adapters/observability"
	"immodash/internal/crm"
	"immodash/internal/domain"
)

// ErrMoveNotSaved means the store rejected a move; the board has been resynced.
var ErrMoveNotSaved = errors.New("pipeline move not saved")

type PipelineService struct {
	store domain.Store
	snaps Snapshotter

	mu       sync.Mutex
	board    *crm.Board
	loadedAt time.Time
}

func NewPipelineService(store domain.Store, s Snapshotter) *PipelineService {
	return &PipelineService{store: store, snaps: s}
}

// ensure (re)loads the board when it is missing, flagged for resync, or
// older than the snapshot.
func (p *PipelineService) ensure(ctx context.Context) (*crm.Board, error) {
	snap, err := p.snaps.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.board == nil:
		p.board = crm.NewBoard(snap.Pipeline)
		p.loadedAt = snap.LoadedAt
	case p.board.NeedsResync() || snap.LoadedAt.After(p.loadedAt):
		p.board.Load(snap.Pipeline)
		p.loadedAt = snap.LoadedAt
	}
	return p.board, nil
}

func (p *PipelineService) Columns(ctx context.Context) ([]crm.Column, error) {
	b, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return b.Columns(), nil
}

// Move applies the move on the board, persists it, then commits. When the
// store fails the card is marked failed and the whole board is reloaded.
func (p *PipelineService) Move(ctx context.Context, id string, to domain.Stage) (domain.PipelineItem, error) {
	b, err := p.ensure(ctx)
	if err != nil {
		return domain.PipelineItem{}, err
	}
	from, err := b.Move(id, to)
	if err != nil {
		observability.ObservePipelineMove("rejected")
		return domain.PipelineItem{}, err
	}
	if from == to {
		item, _ := b.Item(id)
		observability.ObservePipelineMove("noop")
		return item, nil
	}

	if err := p.store.UpdatePipelineStatus(ctx, id, to); err != nil {
		_ = b.Fail(id)
		observability.ObservePipelineMove("failed")
		log.Warn().Err(err).Str("id", id).Str("from", string(from)).Str("to", string(to)).Msg("pipeline move not persisted")
		p.resync(ctx, b)
		return domain.PipelineItem{}, fmt.Errorf("%w: %w", ErrMoveNotSaved, err)
	}
	if err := b.Commit(id); err != nil {
		return domain.PipelineItem{}, err
	}
	observability.ObservePipelineMove("committed")
	p.snaps.Invalidate()
	item, _ := b.Item(id)
	return item, nil
}

func (p *PipelineService) resync(ctx context.Context, b *crm.Board) {
	snap, err := p.snaps.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("pipeline resync failed")
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	b.Resync(snap.Pipeline)
	p.loadedAt = snap.LoadedAt
}
