package board

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/kanban/internal/domain"
)

// ItemType tells whether a dragged or hovered item is a column or a card.
type ItemType string

const (
	ItemColumn ItemType = "column"
	ItemCard   ItemType = "card"
)

type DragItem struct {
	ID   uuid.UUID `json:"id"`
	Type ItemType  `json:"type"`
}

// DragEndEvent is the finished drag gesture: the item that was dragged and
// the item it was dropped on. Over is nil when it was dropped outside any
// target.
type DragEndEvent struct {
	Active DragItem  `json:"active"`
	Over   *DragItem `json:"over,omitempty"`
}

// Placement is one persisted position change caused by a drag. ColumnID is
// set for cards only.
type Placement struct {
	Type     ItemType   `json:"type"`
	ID       uuid.UUID  `json:"id"`
	ColumnID *uuid.UUID `json:"column_id,omitempty"`
	Position int        `json:"position"`
}

// dragPlan is the outcome of a drag: the optimistic board state and the
// writes that persist it, in issue order.
type dragPlan struct {
	op     operation
	kind   string
	event  EventType
	next   *domain.BoardDetail
	writes []Placement
}

// HandleDragEnd applies a finished drag to the board. The reordered state is
// stored as the snapshot before any write is issued; then one write per
// changed item is sent, in order. If a write fails the board is reloaded from
// the store and ErrReorderFailed is returned. A drag that changes nothing
// returns the current board.
func (s *Service) HandleDragEnd(ctx context.Context, userID, boardID uuid.UUID, ev DragEndEvent) (*domain.BoardDetail, error) {
	d, version, err := s.versionedBoard(ctx, userID, boardID)
	if err != nil {
		return nil, s.fail(ctx, userID, opGetBoard, err, "board_id", boardID)
	}

	plan, err := planDragEnd(d, ev)
	if err != nil {
		return nil, fmt.Errorf("board.HandleDragEnd: %w", err)
	}
	if plan == nil {
		return d, nil
	}

	// Another writer changed the snapshot since it was read: the plan would
	// overwrite that change, so readers reload instead.
	if !s.setSnapshot(ctx, plan.next, version) {
		s.dropSnapshot(ctx, boardID)
	}

	for _, p := range plan.writes {
		if err := s.persist(ctx, userID, p); err != nil {
			return nil, s.rollback(ctx, userID, boardID, plan, p, err)
		}
	}

	s.metrics.Reorder(plan.kind, true)
	s.metrics.Operation(plan.op.name, true)
	s.publish(ctx, Event{Type: plan.event, BoardID: boardID, Data: plan.writes})
	return plan.next, nil
}

func (s *Service) persist(ctx context.Context, userID uuid.UUID, p Placement) error {
	if p.Type == ItemColumn {
		return s.store.Columns().UpdatePosition(ctx, userID, p.ID, p.Position)
	}
	return s.store.Cards().Move(ctx, userID, p.ID, *p.ColumnID, p.Position)
}

// rollback discards the optimistic state after a failed write by reloading
// the board, and reports the failure. Subscribers are told to refetch, since
// the writes issued before the failure did land.
func (s *Service) rollback(ctx context.Context, userID, boardID uuid.UUID, plan *dragPlan, p Placement, cause error) error {
	s.metrics.Reorder(plan.kind, false)
	s.metrics.Operation(plan.op.name, false)
	log.Error().Err(cause).
		Str("operation", plan.op.name).
		Str("user_id", userID.String()).
		Str("board_id", boardID.String()).
		Str("item_id", p.ID.String()).
		Msg("board: reorder write failed")
	s.notice(ctx, userID, plan.op.failure())

	s.metrics.Refetch()
	if _, err := s.reload(ctx, userID, boardID); err != nil {
		log.Error().Err(err).Str("board_id", boardID.String()).Msg("board: reload after failed reorder")
		s.dropSnapshot(ctx, boardID)
	}
	s.publish(ctx, Event{Type: EventBoardReloaded, BoardID: boardID})
	return fmt.Errorf("board.HandleDragEnd: %w: %w", ErrReorderFailed, cause)
}

// planDragEnd computes the effect of ev on d without modifying d. It returns
// nil when the drag changes nothing.
func planDragEnd(d *domain.BoardDetail, ev DragEndEvent) (*dragPlan, error) {
	if ev.Over == nil || ev.Active.ID == ev.Over.ID {
		return nil, nil
	}

	switch {
	case ev.Active.Type == ItemColumn && ev.Over.Type == ItemColumn:
		return planColumnMove(d, ev.Active.ID, ev.Over.ID)
	case ev.Active.Type == ItemCard && (ev.Over.Type == ItemCard || ev.Over.Type == ItemColumn):
		return planCardMove(d, ev.Active.ID, *ev.Over)
	}
	return nil, nil
}

func planColumnMove(d *domain.BoardDetail, activeID, overID uuid.UUID) (*dragPlan, error) {
	_, from := d.Column(activeID)
	_, to := d.Column(overID)
	if from < 0 || to < 0 {
		return nil, fmt.Errorf("column %s onto %s: %w", activeID, overID, ErrInvalidMove)
	}

	next := d.Clone()
	next.Columns = move(next.Columns, from, to)

	var writes []Placement
	for i, col := range next.Columns {
		if col.Position == i {
			continue
		}
		col.Position = i
		writes = append(writes, Placement{Type: ItemColumn, ID: col.ID, Position: i})
	}
	if len(writes) == 0 {
		return nil, nil
	}
	return &dragPlan{op: opReorderColumns, kind: "columns", event: EventColumnsReordered, next: next, writes: writes}, nil
}

func planCardMove(d *domain.BoardDetail, activeID uuid.UUID, over DragItem) (*dragPlan, error) {
	card, src := d.Card(activeID)
	if card == nil {
		return nil, fmt.Errorf("card %s: %w", activeID, ErrInvalidMove)
	}
	from := slices.IndexFunc(src.Cards, func(c *domain.CardDetail) bool { return c.ID == activeID })

	var dst *domain.ColumnDetail
	var to int
	if over.Type == ItemCard {
		var overCard *domain.CardDetail
		if overCard, dst = d.Card(over.ID); overCard == nil {
			return nil, fmt.Errorf("card %s onto card %s: %w", activeID, over.ID, ErrInvalidMove)
		}
		to = slices.IndexFunc(dst.Cards, func(c *domain.CardDetail) bool { return c.ID == over.ID })
	} else {
		if dst, _ = d.Column(over.ID); dst == nil {
			return nil, fmt.Errorf("card %s onto column %s: %w", activeID, over.ID, ErrInvalidMove)
		}
		// Dropped on the column itself: append.
		to = len(dst.Cards)
		if dst.ID == src.ID {
			to--
		}
	}

	next := d.Clone()
	nsrc, _ := next.Column(src.ID)
	ndst, _ := next.Column(dst.ID)

	if nsrc.ID == ndst.ID {
		if from == to {
			return nil, nil
		}
		nsrc.Cards = move(nsrc.Cards, from, to)
		writes := placeCards(nsrc, activeID)
		return &dragPlan{op: opReorderCards, kind: "cards", event: EventCardsReordered, next: next, writes: writes}, nil
	}

	nsrc.Cards, ndst.Cards = transfer(nsrc.Cards, ndst.Cards, from, to)
	srcWrites := placeCards(nsrc, uuid.Nil)
	dstWrites := placeCards(ndst, activeID)

	// The moved card is written first, then the source column's remainder,
	// then the destination's displaced cards.
	i := slices.IndexFunc(dstWrites, func(p Placement) bool { return p.ID == activeID })
	writes := make([]Placement, 0, len(srcWrites)+len(dstWrites))
	writes = append(writes, dstWrites[i])
	writes = append(writes, srcWrites...)
	writes = append(writes, slices.Delete(dstWrites, i, i+1)...)

	return &dragPlan{op: opMoveCard, kind: "move", event: EventCardMoved, next: next, writes: writes}, nil
}

// placeCards sets position = index and the column ID on every card of col
// and returns a placement for each card that changed, plus always one for
// the card with ID moved.
func placeCards(col *domain.ColumnDetail, moved uuid.UUID) []Placement {
	var out []Placement
	for i, card := range col.Cards {
		if card.Position == i && card.ColumnID == col.ID && card.ID != moved {
			continue
		}
		card.Position = i
		card.ColumnID = col.ID
		columnID := col.ID
		out = append(out, Placement{Type: ItemCard, ID: card.ID, ColumnID: &columnID, Position: i})
	}
	return out
}
