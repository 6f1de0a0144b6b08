package crm

import (
	"sync"

	"immodash/internal/domain"
)

// CardState tracks an optimistic move of one card.
//
//	idle -> pendingMove (Move)
//	pendingMove -> committed (Commit) | reverting (Fail)
//	committed -> pendingMove (Move)
//	reverting -> idle (Resync reloads the whole board)
type CardState string

const (
	CardIdle        CardState = "idle"
	CardPendingMove CardState = "pendingMove"
	CardCommitted   CardState = "committed"
	CardReverting   CardState = "reverting"
)

type card struct {
	item  domain.PipelineItem
	state CardState
}

// Column is one stage of the board with its cards in load order.
type Column struct {
	Stage domain.Stage          `json:"stage"`
	Title string                `json:"title"`
	Items []domain.PipelineItem `json:"items"`
}

// Board is the kanban read model. Moves apply locally first; a failed
// persistence marks the board for a full resync instead of undoing the move.
type Board struct {
	mu          sync.Mutex
	cards       map[string]*card
	order       []string
	needsResync bool
}

func NewBoard(items []domain.PipelineItem) *Board {
	b := &Board{}
	b.Load(items)
	return b
}

// Load replaces every card. All cards start idle.
func (b *Board) Load(items []domain.PipelineItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cards = make(map[string]*card, len(items))
	b.order = b.order[:0]
	for _, it := range items {
		if _, dup := b.cards[it.ID]; dup {
			continue
		}
		b.cards[it.ID] = &card{item: it, state: CardIdle}
		b.order = append(b.order, it.ID)
	}
	b.needsResync = false
}

// Resync is the recovery after a failed move: the board is rebuilt from source.
func (b *Board) Resync(items []domain.PipelineItem) { b.Load(items) }

// Move puts a card in its new column before persistence. Moving a card to
// the stage it already sits in is a no-op.
func (b *Board) Move(id string, to domain.Stage) (from domain.Stage, err error) {
	if !to.Valid() {
		return "", domain.ErrInvalidStage
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[id]
	if !ok {
		return "", domain.ErrUnknownCard
	}
	if c.state == CardPendingMove || c.state == CardReverting {
		return c.item.Stage, domain.ErrCardBusy
	}
	from = c.item.Stage
	if from == to {
		return from, nil
	}
	c.item.Stage = to
	c.state = CardPendingMove
	return from, nil
}

// Commit records that the pending move was persisted.
func (b *Board) Commit(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[id]
	if !ok {
		return domain.ErrUnknownCard
	}
	if c.state != CardPendingMove {
		return domain.ErrCardBusy
	}
	c.state = CardCommitted
	return nil
}

// Fail records that persistence failed. The card stays where it was dropped
// until Resync reloads the board.
func (b *Board) Fail(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[id]
	if !ok {
		return domain.ErrUnknownCard
	}
	if c.state != CardPendingMove {
		return domain.ErrCardBusy
	}
	c.state = CardReverting
	b.needsResync = true
	return nil
}

func (b *Board) NeedsResync() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.needsResync
}

func (b *Board) State(id string) (CardState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[id]
	if !ok {
		return "", false
	}
	return c.state, true
}

func (b *Board) Item(id string) (domain.PipelineItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[id]
	if !ok {
		return domain.PipelineItem{}, false
	}
	return c.item, true
}

// Items returns all cards in load order.
func (b *Board) Items() []domain.PipelineItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.PipelineItem, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.cards[id].item)
	}
	return out
}

// Columns groups cards by stage in display order.
func (b *Board) Columns() []Column {
	items := b.Items()
	cols := make([]Column, len(domain.Stages))
	idx := make(map[domain.Stage]int, len(domain.Stages))
	for i, s := range domain.Stages {
		cols[i] = Column{Stage: s, Title: s.Title(), Items: []domain.PipelineItem{}}
		idx[s] = i
	}
	for _, it := range items {
		if i, ok := idx[it.Stage]; ok {
			cols[i].Items = append(cols[i].Items, it)
		}
	}
	return cols
}
